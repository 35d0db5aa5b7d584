// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

package i2c

import (
	"time"

	"github.com/jsteinbaeck/optiga-nbt-rpi-port"
)

// ReadMode selects how a bus read that returns fewer bytes than requested
// is reported.
type ReadMode uint8

const (
	// ReadPartial hands back however many bytes the bus produced, down to
	// none. This matches peripherals that clock out only what they have.
	ReadPartial ReadMode = iota

	// ReadStrict fails the receive when the bus produces fewer bytes than
	// requested.
	ReadStrict
)

// Option configures a Transport during construction.
type Option func(*Transport) error

// WithLogger attaches a logger to the transport.
func WithLogger(l nbt.Logger) Option {
	return func(t *Transport) error {
		t.logger = l
		return nil
	}
}

// WithGuardTime sets the pause enforced between two consecutive bus
// transactions. Zero disables the guard.
func WithGuardTime(d time.Duration) Option {
	return func(t *Transport) error {
		return t.SetGuardTime(d)
	}
}

// WithClockFrequency caches the bus clock in hertz. See
// Transport.SetClockFrequency for what the cache means.
func WithClockFrequency(hz uint32) Option {
	return func(t *Transport) error {
		return t.SetClockFrequency(hz)
	}
}

// WithTimer replaces the guard timer backend. The transport takes ownership
// and destroys the timer on Close.
func WithTimer(tm nbt.Timer) Option {
	return func(t *Transport) error {
		if tm == nil {
			return nbt.NewError(nbt.ModuleI2C, nbt.OpInitialize, nbt.ErrIllegalArgument)
		}
		t.props.guard = tm
		return nil
	}
}

// WithReadMode selects the short-read policy. The default is ReadPartial.
func WithReadMode(m ReadMode) Option {
	return func(t *Transport) error {
		if m > ReadStrict {
			return nbt.NewError(nbt.ModuleI2C, nbt.OpInitialize, nbt.ErrIllegalArgument)
		}
		t.props.readMode = m
		return nil
	}
}
