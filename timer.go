// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

package nbt

import "time"

// Timer is a single-shot countdown, used by the I2C layer to space bus
// transactions by the configured guard time.
//
// A timer is either unset or armed. Set arms it; a successful Join waits out
// the remainder and returns the timer to unset. HasElapsed on an unset timer
// reports true, so callers treat "no wait pending" as already satisfied. An
// elapsed timer never fires its completion signal twice.
type Timer interface {
	// Set arms the timer d into the future, tearing down any previous
	// arming first. Durations are rounded up to the backend's native tick.
	// Negative durations and durations beyond the backend's native range
	// fail with ErrIllegalArgument.
	Set(d time.Duration) error

	// HasElapsed reports whether the armed duration has passed. Unset
	// timers report true.
	HasElapsed() bool

	// Join blocks until the armed duration has fully passed, then releases
	// the arming. Joining an unset timer fails with ErrTimerNotSet; a
	// second Join after a successful one therefore fails the same way.
	Join() error

	// Destroy cancels any pending arming and releases backend resources.
	// It is idempotent, safe on an unset timer, and releases a concurrent
	// Join with an error instead of leaving it blocked.
	Destroy()
}
