// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

package timer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jsteinbaeck/optiga-nbt-rpi-port"
)

// Channel is the blocking-wait timer backend. Arming starts a runtime timer
// whose callback hands exactly one completion token to a one-slot channel;
// Join blocks receiving the token and therefore costs no CPU while waiting.
// Native tick: one millisecond, uint32 range.
type Channel struct {
	mu  sync.Mutex
	arm *channelArm
}

// channelArm carries the state of a single arming, so a late callback from a
// replaced arming can never signal the current one.
type channelArm struct {
	timer *time.Timer
	sem   chan struct{}
	done  chan struct{}
	fired atomic.Bool
}

// NewChannel returns an unset Channel timer.
func NewChannel() *Channel { return &Channel{} }

// Set arms the timer d into the future, tearing down any previous arming.
func (t *Channel) Set(d time.Duration) error {
	rounded, err := ceilMillis(d)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.teardownLocked()

	arm := &channelArm{
		sem:  make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	arm.timer = time.AfterFunc(rounded, func() {
		arm.fired.Store(true)
		select {
		case arm.sem <- struct{}{}:
		default:
		}
	})
	t.arm = arm
	return nil
}

// HasElapsed reports whether the armed duration has passed. Unset timers
// report true.
func (t *Channel) HasElapsed() bool {
	t.mu.Lock()
	arm := t.arm
	t.mu.Unlock()
	if arm == nil {
		return true
	}
	return arm.fired.Load()
}

// Join blocks until the completion token arrives, then releases the arming.
// A concurrent Destroy releases the wait with an error.
func (t *Channel) Join() error {
	t.mu.Lock()
	arm := t.arm
	t.mu.Unlock()
	if arm == nil {
		return nbt.NewError(nbt.ModuleTimer, nbt.OpJoin, nbt.ErrTimerNotSet)
	}

	// An arming that fired before being destroyed still counts as elapsed.
	select {
	case <-arm.sem:
		t.release(arm)
		return nil
	default:
	}

	select {
	case <-arm.sem:
		t.release(arm)
		return nil
	case <-arm.done:
		return nbt.WrapError(nbt.ModuleTimer, nbt.OpJoin, nbt.ErrUnspecified, errDestroyed)
	}
}

// Destroy cancels any pending arming and releases a blocked Join.
// Idempotent.
func (t *Channel) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.teardownLocked()
}

func (t *Channel) release(arm *channelArm) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.arm == arm {
		t.arm = nil
	}
}

func (t *Channel) teardownLocked() {
	if t.arm == nil {
		return
	}
	t.arm.timer.Stop()
	close(t.arm.done)
	t.arm = nil
}

var _ nbt.Timer = (*Channel)(nil)
