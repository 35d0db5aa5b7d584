// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

package timer

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jsteinbaeck/optiga-nbt-rpi-port"
)

// Flag is the flag-polling timer backend. Arming starts a runtime timer
// whose callback sets an atomic flag; Join polls the flag and yields the
// processor between polls, keeping the waiting goroutine runnable without
// blocking it in the scheduler. Native tick: one microsecond, uint32 range.
type Flag struct {
	mu  sync.Mutex
	arm *flagArm
}

// flagArm carries the state of a single arming; see channelArm.
type flagArm struct {
	timer     *time.Timer
	elapsed   atomic.Bool
	destroyed atomic.Bool
}

// NewFlag returns an unset Flag timer.
func NewFlag() *Flag { return &Flag{} }

// Set arms the timer d into the future, tearing down any previous arming.
func (t *Flag) Set(d time.Duration) error {
	rounded, err := ceilMicros(d)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.teardownLocked()

	arm := &flagArm{}
	arm.timer = time.AfterFunc(rounded, func() {
		arm.elapsed.Store(true)
	})
	t.arm = arm
	return nil
}

// HasElapsed reports whether the armed duration has passed. Unset timers
// report true.
func (t *Flag) HasElapsed() bool {
	t.mu.Lock()
	arm := t.arm
	t.mu.Unlock()
	if arm == nil {
		return true
	}
	return arm.elapsed.Load()
}

// Join polls the elapsed flag until it is set, then releases the arming.
// A concurrent Destroy releases the wait with an error.
func (t *Flag) Join() error {
	t.mu.Lock()
	arm := t.arm
	t.mu.Unlock()
	if arm == nil {
		return nbt.NewError(nbt.ModuleTimer, nbt.OpJoin, nbt.ErrTimerNotSet)
	}

	for !arm.elapsed.Load() {
		if arm.destroyed.Load() {
			return nbt.WrapError(nbt.ModuleTimer, nbt.OpJoin, nbt.ErrUnspecified, errDestroyed)
		}
		runtime.Gosched()
	}

	t.release(arm)
	return nil
}

// Destroy cancels any pending arming and releases a blocked Join.
// Idempotent.
func (t *Flag) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.teardownLocked()
}

func (t *Flag) release(arm *flagArm) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.arm == arm {
		t.arm = nil
	}
}

func (t *Flag) teardownLocked() {
	if t.arm == nil {
		return
	}
	t.arm.timer.Stop()
	t.arm.destroyed.Store(true)
	t.arm = nil
}

var _ nbt.Timer = (*Flag)(nil)
