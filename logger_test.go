// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

package nbt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logRecord struct {
	source string
	msg    string
	level  Level
}

// recordingLogger captures records for assertions and can be forced to fail.
type recordingLogger struct {
	failWith  error
	records   []logRecord
	threshold Level
}

func (r *recordingLogger) Log(source string, level Level, format string, args ...any) error {
	if r.failWith != nil {
		return r.failWith
	}
	if level < r.threshold {
		return nil
	}
	r.records = append(r.records, logRecord{
		source: source,
		msg:    fmt.Sprintf(format, args...),
		level:  level,
	})
	return nil
}

func (r *recordingLogger) LogBytes(source string, level Level, prefix string, data []byte, sep string) error {
	if r.failWith != nil {
		return r.failWith
	}
	if level < r.threshold {
		return nil
	}
	msg := prefix
	for i, b := range data {
		if i > 0 {
			msg += sep
		}
		msg += fmt.Sprintf("%02X", b)
	}
	r.records = append(r.records, logRecord{source: source, msg: msg, level: level})
	return nil
}

func (r *recordingLogger) SetLevel(level Level) { r.threshold = level }

func (r *recordingLogger) Level() Level { return r.threshold }

var _ Logger = (*recordingLogger)(nil)

func TestLevelString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		want  string
		level Level
	}{
		{name: "debug", level: LevelDebug, want: "DEBUG"},
		{name: "info", level: LevelInfo, want: "INFO"},
		{name: "warn", level: LevelWarn, want: "WARNING"},
		{name: "error", level: LevelError, want: "ERROR"},
		{name: "fatal", level: LevelFatal, want: "FATAL"},
		{name: "unknown", level: Level(42), want: "LEVEL(42)"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.level.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		in      string
		want    Level
		wantErr bool
	}{
		{name: "debug", in: "debug", want: LevelDebug},
		{name: "info mixed case", in: "Info", want: LevelInfo},
		{name: "warn short", in: "warn", want: LevelWarn},
		{name: "warning long", in: "WARNING", want: LevelWarn},
		{name: "error", in: "error", want: LevelError},
		{name: "err short", in: "err", want: LevelError},
		{name: "fatal padded", in: " fatal ", want: LevelFatal},
		{name: "unknown", in: "loud", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrIllegalArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogfToleratesNilLogger(t *testing.T) {
	t.Parallel()

	// Must not panic.
	Logf(nil, "test", LevelInfo, "value %d", 1)
	LogBytesf(nil, "test", LevelDebug, ">> ", []byte{0x01}, " ")
}

func TestLogfSwallowsLoggerFailures(t *testing.T) {
	t.Parallel()

	failing := &recordingLogger{failWith: NewError(ModuleLogger, OpLog, ErrOutOfMemory)}

	// Logger failures must never surface to the caller.
	Logf(failing, "test", LevelError, "dropped")
	LogBytesf(failing, "test", LevelError, "<< ", []byte{0xFF}, " ")
	assert.Empty(t, failing.records)
}

func TestLogfForwards(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}
	Logf(logger, "i2c", LevelInfo, "slave address set to 0x%02X", 0x18)

	require.Len(t, logger.records, 1)
	assert.Equal(t, "i2c", logger.records[0].source)
	assert.Equal(t, LevelInfo, logger.records[0].level)
	assert.Equal(t, "slave address set to 0x18", logger.records[0].msg)
}
