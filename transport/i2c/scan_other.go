// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

//go:build !linux

package i2c

// ListBuses returns the paths of the i2c-dev buses on this system. Only
// Linux exposes i2c-dev devices, so this stub reports none.
func ListBuses() ([]string, error) {
	return nil, errUnsupported
}

// ScanBus probes every non-reserved address on the bus at path.
func ScanBus(path string) ([]uint8, error) {
	return nil, errUnsupported
}
