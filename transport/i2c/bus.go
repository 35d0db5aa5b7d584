// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

package i2c

// Bus is the byte-level contract between the transport and a platform I2C
// device. SelectSlave programs the peer address used by the transfers that
// follow it. Write and Read move raw bytes and report partial transfers
// through the returned count, not through an error.
//
// Implementations are not required to be safe for concurrent use; the
// transport serializes all access to its bus.
type Bus interface {
	// SelectSlave binds the peer address for subsequent transfers.
	SelectSlave(addr uint8) error

	// Write sends p to the selected slave and returns the number of bytes
	// that made it onto the bus.
	Write(p []byte) (int, error)

	// Read clocks up to len(p) bytes from the selected slave into p and
	// returns the number of bytes received.
	Read(p []byte) (int, error)

	// Close releases the underlying bus handle.
	Close() error

	// Name identifies the bus in log output, e.g. "/dev/i2c-1".
	Name() string
}
