// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

package i2c

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// PeriphBus adapts a periph.io I2C bus to the Bus contract. Transfers run
// as half-duplex Tx calls against the most recently selected address.
type PeriphBus struct {
	bus  i2c.BusCloser
	name string
	addr uint8
}

// OpenPeriph initializes the periph host and opens the named bus from its
// registry. An empty name selects the first available bus. A non-zero hz is
// programmed once at open; adapters that cannot change speed keep their
// default and transfers proceed anyway.
func OpenPeriph(busName string, hz uint32) (*PeriphBus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %q: %w", busName, err)
	}

	if hz > 0 {
		_ = bus.SetSpeed(physic.Frequency(hz) * physic.Hertz) // Ignore error, continue with default speed
	}

	return &PeriphBus{bus: bus, name: busName}, nil
}

// SelectSlave records addr for subsequent transfers. periph addresses the
// peer per transfer, so there is no bus traffic here.
func (p *PeriphBus) SelectSlave(addr uint8) error {
	p.addr = addr
	return nil
}

// Write sends b to the selected slave in a single write transfer.
func (p *PeriphBus) Write(b []byte) (int, error) {
	if err := p.bus.Tx(uint16(p.addr), b, nil); err != nil {
		return 0, fmt.Errorf("write %s: %w", p.name, err)
	}
	return len(b), nil
}

// Read clocks len(b) bytes from the selected slave in a single read
// transfer. periph transfers are all-or-nothing, so a successful Read
// always fills b.
func (p *PeriphBus) Read(b []byte) (int, error) {
	if err := p.bus.Tx(uint16(p.addr), nil, b); err != nil {
		return 0, fmt.Errorf("read %s: %w", p.name, err)
	}
	return len(b), nil
}

// Close releases the bus handle. Idempotent.
func (p *PeriphBus) Close() error {
	if p.bus == nil {
		return nil
	}
	bus := p.bus
	p.bus = nil
	if err := bus.Close(); err != nil {
		return fmt.Errorf("close %s: %w", p.name, err)
	}
	return nil
}

// Name returns the registry name the bus was opened with.
func (p *PeriphBus) Name() string { return p.name }

var _ Bus = (*PeriphBus)(nil)
