// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

//go:build linux

package i2c

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/jsteinbaeck/optiga-nbt-rpi-port"
)

// i2cSlave is the i2c-dev ioctl that binds a peer address to a descriptor.
const i2cSlave = 0x0703

// Device is a Bus backed by a Linux i2c-dev character device such as
// /dev/i2c-1.
type Device struct {
	name string
	fd   int
}

// OpenDevice opens an i2c-dev character device for read-write access.
func OpenDevice(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Device{name: path, fd: fd}, nil
}

// NewDevice wraps an already opened i2c-dev descriptor. The descriptor must
// be open for read-write access; the returned Device takes ownership and
// closes it.
func NewDevice(fd int, name string) (*Device, error) {
	if fd < 0 {
		return nil, nbt.NewError(nbt.ModuleI2C, nbt.OpInitialize, nbt.ErrIllegalArgument)
	}
	return &Device{name: name, fd: fd}, nil
}

// SelectSlave binds addr to the descriptor for subsequent transfers.
func (d *Device) SelectSlave(addr uint8) error {
	if err := unix.IoctlSetInt(d.fd, i2cSlave, int(addr)); err != nil {
		return fmt.Errorf("select slave 0x%02X on %s: %w", addr, d.name, err)
	}
	return nil
}

// Write sends p to the selected slave.
func (d *Device) Write(p []byte) (int, error) {
	n, err := unix.Write(d.fd, p)
	if err != nil {
		if n < 0 {
			n = 0
		}
		return n, fmt.Errorf("write %s: %w", d.name, err)
	}
	return n, nil
}

// Read clocks up to len(p) bytes from the selected slave into p.
func (d *Device) Read(p []byte) (int, error) {
	n, err := unix.Read(d.fd, p)
	if err != nil {
		if n < 0 {
			n = 0
		}
		return n, fmt.Errorf("read %s: %w", d.name, err)
	}
	return n, nil
}

// Close releases the descriptor. Idempotent.
func (d *Device) Close() error {
	if d.fd < 0 {
		return nil
	}
	fd := d.fd
	d.fd = -1
	if err := unix.Close(fd); err != nil {
		return fmt.Errorf("close %s: %w", d.name, err)
	}
	return nil
}

// Name returns the device path.
func (d *Device) Name() string { return d.name }

var _ Bus = (*Device)(nil)
