// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

package logger

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jsteinbaeck/optiga-nbt-rpi-port"
	"github.com/jsteinbaeck/optiga-nbt-rpi-port/internal/hexfmt"
)

// Async decouples log production from a slow sink. Records are formatted at
// the call site, pushed onto a bounded queue, and drained by a consumer
// goroutine that hands them to the wrapped logger.
//
// Log never blocks: when the queue is full the record is dropped and the
// call fails with an ErrOutOfMemory classification, which callers going
// through nbt.Logf ignore by design. Levels are checked twice, against the
// Async threshold at the call site and against the wrapped logger's own
// threshold in the consumer. The Async threshold defaults to LevelDebug so
// the wrapped logger stays in charge unless configured otherwise.
//
// The lifecycle is explicit: Start launches the consumer, Close stops
// intake, drains everything still queued, and waits for the consumer to
// finish. A closed Async cannot be restarted.
type Async struct {
	next     nbt.Logger
	records  chan asyncRecord
	done     chan struct{}
	mu       sync.RWMutex
	state    asyncState
	capacity int
	level    atomic.Uint32
}

type asyncRecord struct {
	source string
	msg    string
	level  nbt.Level
}

type asyncState uint8

const (
	asyncIdle asyncState = iota
	asyncRunning
	asyncClosed
)

// NewAsync wraps next with a queue holding up to capacity records.
func NewAsync(next nbt.Logger, capacity int) (*Async, error) {
	if next == nil || capacity < 1 {
		return nil, nbt.NewError(nbt.ModuleLogger, nbt.OpInitialize, nbt.ErrIllegalArgument)
	}
	l := &Async{next: next, capacity: capacity}
	l.level.Store(uint32(nbt.LevelDebug))
	return l, nil
}

// Start launches the consumer goroutine. Starting twice or starting after
// Close fails.
func (l *Async) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.state {
	case asyncRunning:
		return nbt.NewError(nbt.ModuleLogger, nbt.OpInitialize, nbt.ErrIllegalArgument)
	case asyncClosed:
		return nbt.NewError(nbt.ModuleLogger, nbt.OpInitialize, nbt.ErrStackInvalid)
	case asyncIdle:
	}

	l.records = make(chan asyncRecord, l.capacity)
	l.done = make(chan struct{})
	go l.consume(l.records, l.done)
	l.state = asyncRunning
	return nil
}

func (l *Async) consume(records <-chan asyncRecord, done chan<- struct{}) {
	defer close(done)
	for rec := range records {
		_ = l.next.Log(rec.source, rec.level, "%s", rec.msg)
	}
}

// Log formats and enqueues one record.
func (l *Async) Log(source string, level nbt.Level, format string, args ...any) error {
	if level < l.Level() {
		return nil
	}
	return l.enqueue(nbt.OpLog, asyncRecord{
		source: source,
		msg:    fmt.Sprintf(format, args...),
		level:  level,
	})
}

// LogBytes formats and enqueues a frame dump.
func (l *Async) LogBytes(source string, level nbt.Level, prefix string, data []byte, sep string) error {
	if level < l.Level() {
		return nil
	}
	return l.enqueue(nbt.OpLogBytes, asyncRecord{
		source: source,
		msg:    hexfmt.Dump(prefix, data, sep),
		level:  level,
	})
}

// enqueue holds the read lock across the send so Close cannot close the
// queue under an in-flight record.
func (l *Async) enqueue(op nbt.OpID, rec asyncRecord) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.state != asyncRunning {
		return nbt.NewError(nbt.ModuleLogger, op, nbt.ErrStackInvalid)
	}
	select {
	case l.records <- rec:
		return nil
	default:
		return nbt.NewError(nbt.ModuleLogger, op, nbt.ErrOutOfMemory)
	}
}

// Close stops intake, drains the queue, and waits for the consumer.
// Idempotent.
func (l *Async) Close() error {
	l.mu.Lock()
	if l.state != asyncRunning {
		l.state = asyncClosed
		l.mu.Unlock()
		return nil
	}
	l.state = asyncClosed
	close(l.records)
	done := l.done
	l.mu.Unlock()

	<-done
	return nil
}

// SetLevel changes the call-site threshold.
func (l *Async) SetLevel(level nbt.Level) { l.level.Store(uint32(level)) }

// Level returns the call-site threshold.
func (l *Async) Level() nbt.Level { return nbt.Level(l.level.Load()) }

var _ nbt.Logger = (*Async)(nil)
