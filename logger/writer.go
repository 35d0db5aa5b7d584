// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

// Package logger provides the log sinks shipped with the stack: a plain
// line-oriented writer, a zerolog adapter, and an asynchronous queue that
// decouples bus transactions from slow sinks.
package logger

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/jsteinbaeck/optiga-nbt-rpi-port"
	"github.com/jsteinbaeck/optiga-nbt-rpi-port/internal/hexfmt"
)

// Writer is a line-oriented logger writing records of the form
//
//	[source   ] [LEVEL  ] message
//
// to an io.Writer. The default threshold is LevelInfo. Records are written
// under a mutex so a Writer may be shared across goroutines.
type Writer struct {
	w     io.Writer
	mu    sync.Mutex
	level atomic.Uint32
}

// NewWriter returns a Writer logging to w at LevelInfo.
func NewWriter(w io.Writer) *Writer {
	l := &Writer{w: w}
	l.level.Store(uint32(nbt.LevelInfo))
	return l
}

// Log writes one record when level passes the threshold.
func (l *Writer) Log(source string, level nbt.Level, format string, args ...any) error {
	if level < l.Level() {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := fmt.Fprintf(l.w, "[%-9s] [%-7s] %s\n", source, level, fmt.Sprintf(format, args...)); err != nil {
		return nbt.WrapError(nbt.ModuleLogger, nbt.OpLog, nbt.ErrUnspecified, err)
	}
	return nil
}

// LogBytes writes a frame dump as a single record.
func (l *Writer) LogBytes(source string, level nbt.Level, prefix string, data []byte, sep string) error {
	if level < l.Level() {
		return nil
	}
	return l.Log(source, level, "%s", hexfmt.Dump(prefix, data, sep))
}

// SetLevel changes the threshold.
func (l *Writer) SetLevel(level nbt.Level) { l.level.Store(uint32(level)) }

// Level returns the current threshold.
func (l *Writer) Level() nbt.Level { return nbt.Level(l.level.Load()) }

var _ nbt.Logger = (*Writer)(nil)
