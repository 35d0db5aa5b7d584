// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

/*
Package nbt provides the host-side communication stack for the OPTIGA NBT
secure element on Linux single-board computers such as the Raspberry Pi.

The NBT sits on an I2C bus and answers command APDUs built by higher-level
protocol code. This package supplies the plumbing underneath that code: a
layered protocol stack with pluggable bus transports, guard-time enforcement
between bus transactions, single-shot timers, and a logging contract that the
whole stack shares.

Features:
  - Layered protocol stack with a uniform activate/transmit/receive contract
  - I2C transport with Linux i2c-dev and periph.io bus backends
  - Serial transport for elements behind a UART bridge
  - Configurable inter-transaction guard time with three timer backends
  - Packed status codes alongside ordinary Go error wrapping
  - Pluggable loggers, including an asynchronous queue-backed one

Basic Usage:

	import (
	    "github.com/jsteinbaeck/optiga-nbt-rpi-port"
	    "github.com/jsteinbaeck/optiga-nbt-rpi-port/transport/i2c"
	)

	// Open the I2C transport on bus 1, secure element at 0x18.
	transport, err := i2c.Open("/dev/i2c-1", 0x18,
	    i2c.WithGuardTime(100*time.Microsecond),
	)
	if err != nil {
	    log.Fatal(err)
	}

	// Assemble the stack. Higher protocol layers go in front of the
	// transport; a bare transport works on its own.
	stack, err := nbt.NewStack(transport)
	if err != nil {
	    log.Fatal(err)
	}
	defer stack.Close()

	if _, err := stack.Activate(); err != nil {
	    log.Fatal(err)
	}

	// Exchange one frame with the secure element.
	if err := stack.Transmit([]byte{0xA0, 0x04, 0x00, 0x04}); err != nil {
	    log.Fatal(err)
	}
	resp, err := stack.Receive(32)
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Printf("% X\n", resp)

Stack Model:

Layers form a singly linked chain from the application-facing layer down to
the bus. Each node holds a reference to the one beneath it and knows nothing
about what sits above; the Stack owner links the chain and closes every node
exactly once. Find walks the chain downward so that configuration living in
the bottom layer, the I2C slave address or guard time for example, can be
reached from the top of any stack.

Error Handling:

Every failure is an *Error carrying the subsystem, the operation, and a
reason sentinel, and packs into a numeric Status for interoperability with
firmware-style status words:

	if errors.Is(err, nbt.ErrStackInvalid) {
	    // stack was closed or never assembled correctly
	}
	code := nbt.StatusOf(err) // 0 means success

Thread Safety:

A stack and its layers belong to one goroutine at a time; operations take no
locks and there is no cancellation primitive, so an armed guard wait runs to
completion. Loggers are the exception: they may be shared and must accept
records from any goroutine.
*/
package nbt
