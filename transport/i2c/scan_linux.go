// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

//go:build linux

package i2c

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const (
	// i2cFuncs is the i2c-dev ioctl that reports adapter functionality.
	i2cFuncs = 0x0705

	// i2cFuncI2C flags plain I2C support in the functionality word.
	i2cFuncI2C = 0x00000001
)

// Address range probed by ScanBus. Addresses below 0x08 and above 0x77 are
// reserved by the I2C specification.
const (
	scanFirstAddr uint8 = 0x08
	scanLastAddr  uint8 = 0x77
)

// ListBuses returns the paths of the i2c-dev buses on this system that
// support plain I2C transfers, in glob order. A machine without any i2c-dev
// device yields an empty list, not an error.
func ListBuses() ([]string, error) {
	matches, err := filepath.Glob("/dev/i2c-*")
	if err != nil {
		return nil, fmt.Errorf("scan for I2C buses: %w", err)
	}

	buses := make([]string, 0, len(matches))
	for _, path := range matches {
		fd, err := unix.Open(path, unix.O_RDWR, 0)
		if err != nil {
			continue
		}

		funcs, err := unix.IoctlGetInt(fd, i2cFuncs)
		_ = unix.Close(fd)
		if err != nil || funcs&i2cFuncI2C == 0 {
			continue
		}
		buses = append(buses, path)
	}
	return buses, nil
}

// ScanBus probes every non-reserved address on the bus at path and returns
// the ones where a peer acknowledged a one-byte read. The probe disturbs
// devices no more than the i2cdetect tool does, but a mid-transaction
// peripheral may still be confused by it; do not scan a bus that is in
// active use.
func ScanBus(path string) ([]uint8, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = unix.Close(fd) }()

	var found []uint8
	buf := make([]byte, 1)
	for addr := scanFirstAddr; addr <= scanLastAddr; addr++ {
		if err := unix.IoctlSetInt(fd, i2cSlave, int(addr)); err != nil {
			continue
		}
		if _, err := unix.Read(fd, buf); err == nil {
			found = append(found, addr)
		}
	}
	return found, nil
}
