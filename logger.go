// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

package nbt

import (
	"fmt"
	"strings"
)

// Level ranks log records from most verbose to most severe.
type Level uint8

// Log levels in ascending severity.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the tag used by the line-oriented logger backends.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return fmt.Sprintf("LEVEL(%d)", uint8(l))
	}
}

// ParseLevel maps a configuration string onto a Level. It accepts the String
// forms in any case plus the common short spellings "warn" and "err".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "err", "error":
		return LevelError, nil
	case "fatal":
		return LevelFatal, nil
	default:
		return LevelDebug, fmt.Errorf("unknown log level %q: %w", s, ErrIllegalArgument)
	}
}

// Logger consumes log records emitted by stack layers. Implementations own
// the level filter: callers hand over every record and the logger decides
// whether it passes the configured threshold. Loggers are the one component
// that may be shared across goroutines, so SetLevel and Level must be safe
// for concurrent use.
type Logger interface {
	// Log records a printf-style message attributed to source.
	Log(source string, level Level, format string, args ...any) error

	// LogBytes records a raw frame dump: prefix followed by the bytes of
	// data rendered as hex and joined by sep.
	LogBytes(source string, level Level, prefix string, data []byte, sep string) error

	// SetLevel changes the minimum level that passes the filter.
	SetLevel(level Level)

	// Level returns the current filter threshold.
	Level() Level
}

// Logf forwards a record to l when a logger is attached. A nil logger and
// logger failures are both ignored: a bus transaction never fails because
// logging did.
func Logf(l Logger, source string, level Level, format string, args ...any) {
	if l == nil {
		return
	}
	_ = l.Log(source, level, format, args...)
}

// LogBytesf is Logf for raw frame dumps.
func LogBytesf(l Logger, source string, level Level, prefix string, data []byte, sep string) {
	if l == nil {
		return
	}
	_ = l.LogBytes(source, level, prefix, data, sep)
}
