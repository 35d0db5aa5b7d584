// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/jsteinbaeck/optiga-nbt-rpi-port"
	"github.com/jsteinbaeck/optiga-nbt-rpi-port/logger"
	"github.com/jsteinbaeck/optiga-nbt-rpi-port/timer"
	"github.com/jsteinbaeck/optiga-nbt-rpi-port/transport/i2c"
	"github.com/jsteinbaeck/optiga-nbt-rpi-port/transport/serial"
)

// config is the effective tool configuration after merging defaults, the
// TOML config file and command line flags.
type config struct {
	Transport string
	Bus       string
	Timer     string
	ReadMode  string
	LogLevel  string
	GuardTime time.Duration
	ClockHz   uint32
	Baud      int
	Addr      uint16
}

func defaultConfig() config {
	return config{
		Transport: "i2c",
		Bus:       "/dev/i2c-1",
		Addr:      i2c.DefaultSlaveAddress,
		Baud:      serial.DefaultBaudRate,
		ClockHz:   i2c.DefaultClockFrequency,
		GuardTime: 0,
		Timer:     "deadline",
		ReadMode:  "partial",
		LogLevel:  "info",
	}
}

// nbtctl config.toml key mapping to tool settings.
type fileConfig struct {
	Transport string `toml:"transport"`
	Bus       string `toml:"bus"`
	Timer     string `toml:"timer"`
	ReadMode  string `toml:"read_mode"`
	LogLevel  string `toml:"log_level"`
	Addr      int64  `toml:"addr"`
	Baud      int    `toml:"baud"`
	ClockHz   int64  `toml:"clock_hz"`
	GuardUS   int64  `toml:"guard_us"`
}

// loadConfig overlays the keys present in the TOML file at path onto cfg.
// Keys the file does not define keep their incoming values.
func loadConfig(path string, cfg config) (config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load nbtctl config: %w", err)
	}

	if meta.IsDefined("transport") {
		cfg.Transport = raw.Transport
	}
	if meta.IsDefined("bus") {
		cfg.Bus = raw.Bus
	}
	if meta.IsDefined("addr") {
		if raw.Addr < 0x01 || raw.Addr > 0xFF {
			return config{}, fmt.Errorf("load nbtctl config: slave address 0x%X out of range [0x01, 0xFF]", raw.Addr)
		}
		cfg.Addr = uint16(raw.Addr)
	}
	if meta.IsDefined("baud") {
		cfg.Baud = raw.Baud
	}
	if meta.IsDefined("clock_hz") {
		if raw.ClockHz < 1 || raw.ClockHz > int64(^uint32(0)) {
			return config{}, fmt.Errorf("load nbtctl config: clock frequency %d Hz out of range", raw.ClockHz)
		}
		cfg.ClockHz = uint32(raw.ClockHz)
	}
	if meta.IsDefined("guard_us") {
		cfg.GuardTime = time.Duration(raw.GuardUS) * time.Microsecond
	}
	if meta.IsDefined("timer") {
		cfg.Timer = raw.Timer
	}
	if meta.IsDefined("read_mode") {
		cfg.ReadMode = raw.ReadMode
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = raw.LogLevel
	}

	return cfg, nil
}

// validate rejects settings no transport or backend would accept.
func (c config) validate() error {
	switch c.Transport {
	case "i2c", "serial":
	default:
		return fmt.Errorf("unsupported transport %q (expected i2c or serial)", c.Transport)
	}
	if c.Addr < 0x01 || c.Addr > 0xFF {
		return fmt.Errorf("slave address 0x%X out of range [0x01, 0xFF]", c.Addr)
	}
	if c.Baud <= 0 {
		return fmt.Errorf("baud rate must be positive (%d given)", c.Baud)
	}
	if c.ClockHz == 0 {
		return fmt.Errorf("clock frequency must be positive")
	}
	if c.GuardTime < 0 {
		return fmt.Errorf("guard time must not be negative (%v given)", c.GuardTime)
	}
	switch c.Timer {
	case "deadline", "channel", "flag":
	default:
		return fmt.Errorf("unknown timer backend %q (expected deadline, channel or flag)", c.Timer)
	}
	switch c.ReadMode {
	case "partial", "strict":
	default:
		return fmt.Errorf("unknown read mode %q (expected partial or strict)", c.ReadMode)
	}
	if _, err := nbt.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// effectiveConfig merges defaults, the config file and the flags set on the
// command line, then validates the result.
func effectiveConfig(cmd *cobra.Command) (config, error) {
	cfg := defaultConfig()

	if configPath != "" {
		var err error
		cfg, err = loadConfig(configPath, cfg)
		if err != nil {
			return config{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("transport") {
		cfg.Transport = flagTransport
	}
	if flags.Changed("bus") {
		cfg.Bus = flagBus
	}
	if flags.Changed("addr") {
		v, err := strconv.ParseUint(flagAddr, 0, 16)
		if err != nil {
			return config{}, fmt.Errorf("invalid slave address %q: %w", flagAddr, err)
		}
		cfg.Addr = uint16(v)
	}
	if flags.Changed("baud") {
		cfg.Baud = flagBaud
	}
	if flags.Changed("guard-us") {
		cfg.GuardTime = time.Duration(flagGuardUS) * time.Microsecond
	}
	if flags.Changed("timer") {
		cfg.Timer = flagTimer
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

// guardTimer maps the configured backend name onto a timer. validate has
// already rejected unknown names.
func (c config) guardTimer() nbt.Timer {
	switch c.Timer {
	case "channel":
		return timer.NewChannel()
	case "flag":
		return timer.NewFlag()
	default:
		return timer.NewDeadline()
	}
}

// newLogger builds the console logger at the configured level.
func newLogger(c config) nbt.Logger {
	level, err := nbt.ParseLevel(c.LogLevel)
	if err != nil {
		level = nbt.LevelInfo
	}
	log := logger.NewConsole(os.Stderr)
	log.SetLevel(level)
	return log
}

// buildStack opens the configured transport and assembles a single-layer
// protocol stack on it. The caller owns the stack and closes it.
func buildStack(c config, log nbt.Logger) (*nbt.Stack, error) {
	var (
		bottom nbt.Layer
		err    error
	)
	switch c.Transport {
	case "serial":
		bottom, err = serial.New(c.Bus,
			serial.WithBaudRate(c.Baud),
			serial.WithReadMode(c.serialReadMode()),
			serial.WithLogger(log),
		)
	default:
		bottom, err = i2c.Open(c.Bus, c.Addr,
			i2c.WithGuardTime(c.GuardTime),
			i2c.WithTimer(c.guardTimer()),
			i2c.WithClockFrequency(c.ClockHz),
			i2c.WithReadMode(c.i2cReadMode()),
			i2c.WithLogger(log),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s transport on %s: %w", c.Transport, c.Bus, err)
	}

	stack, err := nbt.NewStack(bottom)
	if err != nil {
		_ = bottom.Close()
		return nil, err
	}
	stack.SetLogger(log)
	return stack, nil
}

func (c config) i2cReadMode() i2c.ReadMode {
	if c.ReadMode == "strict" {
		return i2c.ReadStrict
	}
	return i2c.ReadPartial
}

func (c config) serialReadMode() serial.ReadMode {
	if c.ReadMode == "strict" {
		return serial.ReadStrict
	}
	return serial.ReadPartial
}
