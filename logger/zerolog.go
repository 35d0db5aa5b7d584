// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

package logger

import (
	"io"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/jsteinbaeck/optiga-nbt-rpi-port"
	"github.com/jsteinbaeck/optiga-nbt-rpi-port/internal/hexfmt"
)

// Zerolog adapts a zerolog.Logger to the stack's logging contract. The
// source tag travels as the "source" field. The adapter keeps its own
// threshold (default LevelInfo) in addition to whatever level the wrapped
// logger enforces.
type Zerolog struct {
	log   zerolog.Logger
	level atomic.Uint32
}

// NewZerolog wraps an existing zerolog.Logger.
func NewZerolog(zl zerolog.Logger) *Zerolog {
	l := &Zerolog{log: zl}
	l.level.Store(uint32(nbt.LevelInfo))
	return l
}

// NewConsole returns a Zerolog backend writing human-readable lines to w.
func NewConsole(w io.Writer) *Zerolog {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	return NewZerolog(zerolog.New(output).With().Timestamp().Logger())
}

// Log emits one event when level passes the threshold.
func (l *Zerolog) Log(source string, level nbt.Level, format string, args ...any) error {
	if level < l.Level() {
		return nil
	}
	l.log.WithLevel(zerologLevel(level)).Str("source", source).Msgf(format, args...)
	return nil
}

// LogBytes emits a frame dump as a single event.
func (l *Zerolog) LogBytes(source string, level nbt.Level, prefix string, data []byte, sep string) error {
	if level < l.Level() {
		return nil
	}
	l.log.WithLevel(zerologLevel(level)).Str("source", source).Msg(hexfmt.Dump(prefix, data, sep))
	return nil
}

// SetLevel changes the adapter's threshold.
func (l *Zerolog) SetLevel(level nbt.Level) { l.level.Store(uint32(level)) }

// Level returns the adapter's threshold.
func (l *Zerolog) Level() nbt.Level { return nbt.Level(l.level.Load()) }

// zerologLevel maps stack levels onto zerolog's. WithLevel never terminates
// the process, so LevelFatal records stay ordinary events.
func zerologLevel(level nbt.Level) zerolog.Level {
	switch level {
	case nbt.LevelDebug:
		return zerolog.DebugLevel
	case nbt.LevelInfo:
		return zerolog.InfoLevel
	case nbt.LevelWarn:
		return zerolog.WarnLevel
	case nbt.LevelError:
		return zerolog.ErrorLevel
	case nbt.LevelFatal:
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

var _ nbt.Logger = (*Zerolog)(nil)
