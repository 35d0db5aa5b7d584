// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsteinbaeck/optiga-nbt-rpi-port/internal/hexfmt"
)

var (
	sendData   string
	sendExpect int
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Transmit a frame to the secure element",
	Long: `Build a protocol stack on the configured transport, activate it, and
transmit the given frame. With --expect, read that many response bytes
afterwards and print them as hex.

The frame is given as hex bytes; spaces, colons and commas between bytes
are accepted:

  nbtctl send --data "A0 04 00 04" --expect 2`,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVar(&sendData, "data", "", "Frame to transmit as hex bytes")
	sendCmd.Flags().IntVar(&sendExpect, "expect", 0, "Number of response bytes to read after transmitting")
	_ = sendCmd.MarkFlagRequired("data")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, _ []string) error {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}
	frame, err := hexfmt.Parse(sendData)
	if err != nil {
		return err
	}
	if sendExpect < 0 {
		return fmt.Errorf("expect must not be negative (%d given)", sendExpect)
	}

	log := newLogger(cfg)
	stack, err := buildStack(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = stack.Close() }()

	if _, err := stack.Activate(); err != nil {
		return fmt.Errorf("activate: %w", err)
	}
	if err := stack.Transmit(frame); err != nil {
		return fmt.Errorf("transmit: %w", err)
	}

	if sendExpect > 0 {
		resp, err := stack.Receive(sendExpect)
		if err != nil {
			return fmt.Errorf("receive: %w", err)
		}
		if len(resp) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "(no response)")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), hexfmt.Dump("", resp, " "))
		}
	}
	return nil
}
