// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

// nbtctl is a probe tool for OPTIGA NBT secure elements. It exchanges raw
// frames over I2C or a serial link, which makes it useful for checking
// wiring, bus addresses and guard time settings before running a full
// application.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
