// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Connection flags
	configPath    string
	flagTransport string
	flagBus       string
	flagAddr      string
	flagBaud      int

	// Timing flags
	flagGuardUS int64
	flagTimer   string

	// Output flags
	flagLogLevel string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "nbtctl",
	Short: "Probe tool for OPTIGA NBT secure elements",
	Long: `nbtctl talks to an OPTIGA NBT secure element over I2C or a serial link.

It builds a minimal protocol stack on the configured transport and exchanges
raw frames with the element, which makes it useful for checking wiring, bus
addresses and guard time settings before running a full application.

Configuration merges three sources: built-in defaults, a TOML config file
(--config), and command line flags, with later sources winning. Frame dumps
appear in the log at info level.`,
	Version:      "0.3.0",
	SilenceUsage: true,
}

func init() {
	def := defaultConfig()
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&configPath, "config", "", "Path to a TOML config file")
	pf.StringVarP(&flagTransport, "transport", "t", def.Transport, "Transport to use (i2c or serial)")
	pf.StringVar(&flagBus, "bus", def.Bus, "Bus device path (I2C device or serial port)")
	pf.StringVar(&flagAddr, "addr", fmt.Sprintf("0x%02X", def.Addr), "I2C slave address")
	pf.IntVarP(&flagBaud, "baud", "b", def.Baud, "Baud rate (serial only)")
	pf.Int64Var(&flagGuardUS, "guard-us", 0, "Guard time between bus transactions in microseconds")
	pf.StringVar(&flagTimer, "timer", def.Timer, "Guard timer backend (deadline, channel or flag)")
	pf.StringVar(&flagLogLevel, "log-level", def.LogLevel, "Log level (debug, info, warn, error or fatal)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Shorthand for --log-level debug")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
