// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

package serial

import (
	"time"

	"go.bug.st/serial"

	"github.com/jsteinbaeck/optiga-nbt-rpi-port"
)

// settings collects everything that must be known before the port is
// opened.
type settings struct {
	logger      nbt.Logger
	mode        serial.Mode
	readTimeout time.Duration
	readMode    ReadMode
}

// Option configures a Transport during construction.
type Option func(*settings) error

func newSettings(opts []Option) (*settings, error) {
	cfg := &settings{
		mode: serial.Mode{
			BaudRate: DefaultBaudRate,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
		readTimeout: DefaultReadTimeout,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// WithBaudRate overrides the baud rate the port is opened with.
func WithBaudRate(baud int) Option {
	return func(cfg *settings) error {
		if baud <= 0 {
			return nbt.NewError(nbt.ModuleSerial, nbt.OpInitialize, nbt.ErrIllegalArgument)
		}
		cfg.mode.BaudRate = baud
		return nil
	}
}

// WithMode replaces the whole frame format, for peers that need something
// other than 8N1.
func WithMode(mode serial.Mode) Option {
	return func(cfg *settings) error {
		if mode.BaudRate <= 0 {
			return nbt.NewError(nbt.ModuleSerial, nbt.OpInitialize, nbt.ErrIllegalArgument)
		}
		cfg.mode = mode
		return nil
	}
}

// WithReadTimeout bounds how long a receive waits for bytes that never
// arrive.
func WithReadTimeout(d time.Duration) Option {
	return func(cfg *settings) error {
		if d <= 0 {
			return nbt.NewError(nbt.ModuleSerial, nbt.OpInitialize, nbt.ErrIllegalArgument)
		}
		cfg.readTimeout = d
		return nil
	}
}

// WithReadMode selects the short-read policy. The default is ReadPartial.
func WithReadMode(m ReadMode) Option {
	return func(cfg *settings) error {
		if m > ReadStrict {
			return nbt.NewError(nbt.ModuleSerial, nbt.OpInitialize, nbt.ErrIllegalArgument)
		}
		cfg.readMode = m
		return nil
	}
}

// WithLogger attaches a logger to the transport.
func WithLogger(l nbt.Logger) Option {
	return func(cfg *settings) error {
		cfg.logger = l
		return nil
	}
}
