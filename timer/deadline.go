// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

package timer

import (
	"sync"
	"time"

	"github.com/jsteinbaeck/optiga-nbt-rpi-port"
)

// Deadline is the default timer backend. Arming records a deadline against
// the monotonic clock; elapsed checks compare against it and Join sleeps out
// the whole milliseconds, then spins for the sub-millisecond tail. Native
// tick: one microsecond, uint32 range.
//
// A Deadline Join cannot be interrupted; it always returns at its own
// deadline, so a concurrent Destroy merely disarms the timer.
type Deadline struct {
	deadline time.Time
	mu       sync.Mutex
	armed    bool
}

// NewDeadline returns an unset Deadline timer.
func NewDeadline() *Deadline { return &Deadline{} }

// Set arms the timer d into the future, replacing any previous arming.
func (t *Deadline) Set(d time.Duration) error {
	rounded, err := ceilMicros(d)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deadline = time.Now().Add(rounded)
	t.armed = true
	return nil
}

// HasElapsed reports whether the deadline has passed. Unset timers report
// true.
func (t *Deadline) HasElapsed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.armed {
		return true
	}
	return !time.Now().Before(t.deadline)
}

// Join waits out the remainder of the armed duration and releases the
// arming.
func (t *Deadline) Join() error {
	t.mu.Lock()
	if !t.armed {
		t.mu.Unlock()
		return nbt.NewError(nbt.ModuleTimer, nbt.OpJoin, nbt.ErrTimerNotSet)
	}
	deadline := t.deadline
	t.mu.Unlock()

	if remaining := time.Until(deadline); remaining > time.Millisecond {
		time.Sleep(remaining - remaining%time.Millisecond)
	}
	for time.Now().Before(deadline) {
		// Sub-millisecond tail, bounded by one tick.
	}

	t.mu.Lock()
	t.armed = false
	t.mu.Unlock()
	return nil
}

// Destroy disarms the timer. Idempotent.
func (t *Deadline) Destroy() {
	t.mu.Lock()
	t.armed = false
	t.mu.Unlock()
}

var _ nbt.Timer = (*Deadline)(nil)
