// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

// Package timer provides the single-shot countdown backends used to enforce
// the inter-transaction guard time on the bus.
//
// Three backends implement nbt.Timer, differing in how the wait is
// scheduled:
//
//   - Deadline counts against the monotonic clock and joins with a coarse
//     millisecond sleep plus a sub-millisecond spin. It needs no goroutine
//     and gives the tightest microsecond spacing, so it is the default.
//   - Channel arms a runtime timer whose callback hands a completion token
//     to a one-slot channel; Join blocks receiving it and costs no CPU.
//   - Flag arms a runtime timer whose callback sets an atomic flag; Join
//     polls the flag while yielding the processor.
//
// All backends share the same contract: durations round up to the backend's
// native tick, an unset timer reports elapsed, Join releases the arming, and
// Destroy is idempotent and releases a concurrently blocked Join.
package timer

import (
	"errors"
	"math"
	"time"

	"github.com/jsteinbaeck/optiga-nbt-rpi-port"
)

// New returns the default backend, equivalent to NewDeadline.
func New() nbt.Timer { return NewDeadline() }

// errDestroyed releases a Join that lost its timer to a concurrent Destroy.
var errDestroyed = errors.New("destroyed while waiting")

// ceilMicros rounds d up to whole microseconds and validates it against the
// uint32 range of the microsecond-native backends.
func ceilMicros(d time.Duration) (time.Duration, error) {
	if d < 0 {
		return 0, nbt.NewError(nbt.ModuleTimer, nbt.OpSet, nbt.ErrIllegalArgument)
	}
	us := d / time.Microsecond
	if d%time.Microsecond != 0 {
		us++
	}
	if uint64(us) > math.MaxUint32 {
		return 0, nbt.NewError(nbt.ModuleTimer, nbt.OpSet, nbt.ErrIllegalArgument)
	}
	return us * time.Microsecond, nil
}

// ceilMillis rounds d up to whole milliseconds and validates it against the
// uint32 range of the millisecond-native backend.
func ceilMillis(d time.Duration) (time.Duration, error) {
	if d < 0 {
		return 0, nbt.NewError(nbt.ModuleTimer, nbt.OpSet, nbt.ErrIllegalArgument)
	}
	ms := d / time.Millisecond
	if d%time.Millisecond != 0 {
		ms++
	}
	if uint64(ms) > math.MaxUint32 {
		return 0, nbt.NewError(nbt.ModuleTimer, nbt.OpSet, nbt.ErrIllegalArgument)
	}
	return ms * time.Millisecond, nil
}
