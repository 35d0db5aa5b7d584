// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

//go:build !linux

package i2c

import "errors"

// errUnsupported reports that i2c-dev character devices only exist on Linux.
var errUnsupported = errors.New("i2c-dev devices are only supported on linux")

// Device is a Bus backed by a Linux i2c-dev character device. On other
// platforms this stub keeps cross compilation working; use a PeriphBus or
// MockBus instead.
type Device struct {
	name string
}

// OpenDevice opens an i2c-dev character device for read-write access.
func OpenDevice(path string) (*Device, error) {
	return nil, errUnsupported
}

// NewDevice wraps an already opened i2c-dev descriptor.
func NewDevice(fd int, name string) (*Device, error) {
	return nil, errUnsupported
}

// SelectSlave binds addr to the descriptor for subsequent transfers.
func (d *Device) SelectSlave(addr uint8) error { return errUnsupported }

// Write sends p to the selected slave.
func (d *Device) Write(p []byte) (int, error) { return 0, errUnsupported }

// Read clocks up to len(p) bytes from the selected slave into p.
func (d *Device) Read(p []byte) (int, error) { return 0, errUnsupported }

// Close releases the descriptor. Idempotent.
func (d *Device) Close() error { return nil }

// Name returns the device path.
func (d *Device) Name() string { return d.name }

var _ Bus = (*Device)(nil)
