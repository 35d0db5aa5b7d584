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

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the effective configuration",
	Long: `Print the configuration that would be used to talk to the secure
element, after merging defaults, the config file and flags. No hardware is
touched.`,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, _ []string) error {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "transport:  %s\n", cfg.Transport)
	fmt.Fprintf(w, "bus:        %s\n", cfg.Bus)
	switch cfg.Transport {
	case "serial":
		fmt.Fprintf(w, "baud rate:  %d\n", cfg.Baud)
	default:
		fmt.Fprintf(w, "address:    0x%02X\n", cfg.Addr)
		fmt.Fprintf(w, "clock:      %d Hz\n", cfg.ClockHz)
		fmt.Fprintf(w, "guard time: %v\n", cfg.GuardTime)
		fmt.Fprintf(w, "timer:      %s\n", cfg.Timer)
	}
	fmt.Fprintf(w, "read mode:  %s\n", cfg.ReadMode)
	fmt.Fprintf(w, "log level:  %s\n", cfg.LogLevel)
	return nil
}
