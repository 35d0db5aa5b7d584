// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsteinbaeck/optiga-nbt-rpi-port/transport/i2c"
)

var scanAll bool

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan I2C buses for responding devices",
	Long: `Probe the configured I2C bus (or, with --all, every i2c-dev bus on
the system) for responding peers and print their addresses, like the
i2cdetect tool. Useful for finding the secure element after wiring it up.

Do not scan a bus that another process is actively using; a probe in the
middle of someone else's transaction can confuse the peripheral.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanAll, "all", false, "Scan every i2c-dev bus instead of the configured one")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, _ []string) error {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Transport != "i2c" {
		return fmt.Errorf("scan only works on I2C (transport is %q)", cfg.Transport)
	}

	buses := []string{cfg.Bus}
	if scanAll {
		buses, err = i2c.ListBuses()
		if err != nil {
			return err
		}
		if len(buses) == 0 {
			return fmt.Errorf("no i2c-dev buses found")
		}
	}

	w := cmd.OutOrStdout()
	for _, bus := range buses {
		addrs, err := i2c.ScanBus(bus)
		if err != nil {
			return fmt.Errorf("scan %s: %w", bus, err)
		}
		if len(addrs) == 0 {
			fmt.Fprintf(w, "%s: no devices responded\n", bus)
			continue
		}
		for _, addr := range addrs {
			fmt.Fprintf(w, "%s: device at 0x%02X\n", bus, addr)
		}
	}
	return nil
}
