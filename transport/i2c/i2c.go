// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

// Package i2c provides the I2C transport layer for the OPTIGA NBT secure
// element, with backends for Linux i2c-dev devices, periph.io buses and a
// scriptable mock.
package i2c

import (
	"errors"
	"time"

	"github.com/jsteinbaeck/optiga-nbt-rpi-port"
	"github.com/jsteinbaeck/optiga-nbt-rpi-port/timer"
)

const (
	// DefaultSlaveAddress is the I2C address the secure element ships with.
	DefaultSlaveAddress uint16 = 0x18

	// DefaultClockFrequency is the cached bus clock before configuration,
	// I2C Fast mode.
	DefaultClockFrequency uint32 = 400_000

	// DefaultGuardTime is the pause between consecutive bus transactions
	// before configuration. No guard.
	DefaultGuardTime time.Duration = 0

	// logSource tags log records produced by this layer.
	logSource = "i2c"
)

// properties is the configuration block owned by a live transport. Close
// releases it, which is how use after destroy is detected.
type properties struct {
	guard     nbt.Timer
	guardTime time.Duration
	clockHz   uint32
	slaveAddr uint8
	readMode  ReadMode
}

// Transport is the bottom layer of a protocol stack. It moves raw frames
// over an I2C bus and spaces consecutive transactions by the configured
// guard time, giving the secure element room to finish its previous
// operation.
type Transport struct {
	bus    Bus
	props  *properties
	base   nbt.Layer
	logger nbt.Logger
}

// New builds a transport over an already opened bus. addr must be in
// [0x01, 0xFF]. The transport takes ownership of the bus and closes it on
// Close.
func New(bus Bus, addr uint16, opts ...Option) (*Transport, error) {
	if bus == nil {
		return nil, nbt.NewError(nbt.ModuleI2C, nbt.OpInitialize, nbt.ErrIllegalArgument)
	}

	t := &Transport{
		bus: bus,
		props: &properties{
			guard:     timer.New(),
			guardTime: DefaultGuardTime,
			clockHz:   DefaultClockFrequency,
		},
	}
	if err := t.SetSlaveAddress(addr); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Open opens path as a Linux i2c-dev character device and builds a
// transport on it.
func Open(path string, addr uint16, opts ...Option) (*Transport, error) {
	if path == "" {
		return nil, nbt.NewError(nbt.ModuleI2C, nbt.OpInitialize, nbt.ErrIllegalArgument)
	}
	bus, err := OpenDevice(path)
	if err != nil {
		return nil, nbt.WrapError(nbt.ModuleI2C, nbt.OpInitialize, nbt.ErrUnspecified, err)
	}
	t, err := New(bus, addr, opts...)
	if err != nil {
		_ = bus.Close()
		return nil, err
	}
	return t, nil
}

// FromStack walks the protocol stack downward from l and returns the I2C
// transport at its bottom.
func FromStack(l nbt.Layer) (*Transport, error) {
	return nbt.Find[*Transport](l)
}

// Activate validates the transport. The secure element needs no activation
// handshake on I2C, so there is no bus traffic and no response data.
func (t *Transport) Activate() ([]byte, error) {
	if _, err := t.config(nbt.OpActivate); err != nil {
		return nil, err
	}
	return nil, nil
}

// Transmit writes one frame to the secure element, waiting out a pending
// guard interval first and arming the next one afterwards.
func (t *Transport) Transmit(data []byte) error {
	p, err := t.config(nbt.OpTransmit)
	if err != nil {
		return err
	}
	if !nbt.ValidTransferLength(len(data)) {
		nbt.Logf(t.logger, logSource, nbt.LevelError,
			"can only send between %d and %d bytes (%d requested)",
			nbt.MinTransferLength, nbt.MaxTransferLength, len(data))
		return nbt.NewError(nbt.ModuleI2C, nbt.OpTransmit, nbt.ErrIllegalArgument)
	}

	if err := t.awaitGuard(p); err != nil {
		return err
	}

	nbt.LogBytesf(t.logger, logSource, nbt.LevelInfo, ">> ", data, " ")

	if err := t.bus.SelectSlave(p.slaveAddr); err != nil {
		nbt.Logf(t.logger, logSource, nbt.LevelError, "failed to select slave 0x%02X: %v", p.slaveAddr, err)
		return nbt.WrapError(nbt.ModuleI2C, nbt.OpTransmit, nbt.ErrUnspecified, err)
	}

	n, err := t.bus.Write(data)
	if err != nil {
		nbt.Logf(t.logger, logSource, nbt.LevelError, "failed to transmit data: %v", err)
		return nbt.WrapError(nbt.ModuleI2C, nbt.OpTransmit, nbt.ErrUnspecified, err)
	}
	if n != len(data) {
		nbt.Logf(t.logger, logSource, nbt.LevelError, "short write: %d of %d bytes", n, len(data))
		return nbt.NewError(nbt.ModuleI2C, nbt.OpTransmit, nbt.ErrShortWrite)
	}

	return t.rearmGuard(p)
}

// Receive reads expectedLen bytes from the secure element, waiting out a
// pending guard interval first and arming the next one afterwards. Under
// ReadPartial a short bus read yields a short response; under ReadStrict it
// fails. Any failure yields a nil response.
func (t *Transport) Receive(expectedLen int) ([]byte, error) {
	p, err := t.config(nbt.OpReceive)
	if err != nil {
		return nil, err
	}
	if !nbt.ValidTransferLength(expectedLen) {
		nbt.Logf(t.logger, logSource, nbt.LevelError,
			"can only read between %d and %d bytes (%d requested)",
			nbt.MinTransferLength, nbt.MaxTransferLength, expectedLen)
		return nil, nbt.NewError(nbt.ModuleI2C, nbt.OpReceive, nbt.ErrIllegalArgument)
	}

	if err := t.awaitGuard(p); err != nil {
		return nil, err
	}

	if err := t.bus.SelectSlave(p.slaveAddr); err != nil {
		nbt.Logf(t.logger, logSource, nbt.LevelError, "failed to select slave 0x%02X: %v", p.slaveAddr, err)
		return nil, nbt.WrapError(nbt.ModuleI2C, nbt.OpReceive, nbt.ErrUnspecified, err)
	}

	buf := make([]byte, expectedLen)
	n, err := t.bus.Read(buf)
	if err != nil {
		nbt.Logf(t.logger, logSource, nbt.LevelError, "failed to read data: %v", err)
		return nil, nbt.WrapError(nbt.ModuleI2C, nbt.OpReceive, nbt.ErrUnspecified, err)
	}
	if n < expectedLen && p.readMode == ReadStrict {
		nbt.Logf(t.logger, logSource, nbt.LevelError, "short read: %d of %d bytes", n, expectedLen)
		return nil, nbt.NewError(nbt.ModuleI2C, nbt.OpReceive, nbt.ErrShortRead)
	}
	resp := buf[:n]

	nbt.LogBytesf(t.logger, logSource, nbt.LevelInfo, "<< ", resp, " ")

	if err := t.rearmGuard(p); err != nil {
		return nil, err
	}
	return resp, nil
}

// Close stops the guard timer, closes the bus and releases the
// configuration block. Idempotent.
func (t *Transport) Close() error {
	if t.props == nil {
		return nil
	}
	t.props.guard.Destroy()
	t.props = nil
	if err := t.bus.Close(); err != nil {
		return nbt.WrapError(nbt.ModuleI2C, nbt.OpDestroy, nbt.ErrUnspecified, err)
	}
	return nil
}

// Type identifies this layer in a stack.
func (*Transport) Type() nbt.LayerType { return nbt.LayerTypeI2C }

// Base returns the layer below, always nil for a bottom layer.
func (t *Transport) Base() nbt.Layer { return t.base }

// SetBase attaches the layer below. A transport sits at the bottom of its
// stack, so this is only useful in tests.
func (t *Transport) SetBase(base nbt.Layer) { t.base = base }

// SetLogger attaches a logger to the transport.
func (t *Transport) SetLogger(l nbt.Logger) { t.logger = l }

// SlaveAddress returns the configured peer address.
func (t *Transport) SlaveAddress() (uint16, error) {
	p, err := t.config(nbt.OpGetSlaveAddress)
	if err != nil {
		return 0, err
	}
	return uint16(p.slaveAddr), nil
}

// SetSlaveAddress reconfigures the peer address. Valid addresses are 0x01
// through 0xFF; the new address takes effect with the next transaction.
func (t *Transport) SetSlaveAddress(addr uint16) error {
	p, err := t.config(nbt.OpSetSlaveAddress)
	if err != nil {
		return err
	}
	if addr < 0x01 || addr > 0xFF {
		nbt.Logf(t.logger, logSource, nbt.LevelError,
			"slave address must be in range from 0x01 to 0xff (0x%X given)", addr)
		return nbt.NewError(nbt.ModuleI2C, nbt.OpSetSlaveAddress, nbt.ErrIllegalArgument)
	}
	p.slaveAddr = uint8(addr)
	nbt.Logf(t.logger, logSource, nbt.LevelDebug, "successfully set slave address to 0x%02X", p.slaveAddr)
	return nil
}

// ClockFrequency returns the cached bus clock in hertz.
func (t *Transport) ClockFrequency() (uint32, error) {
	p, err := t.config(nbt.OpGetClockFrequency)
	if err != nil {
		return 0, err
	}
	return p.clockHz, nil
}

// SetClockFrequency validates and caches the bus clock in hertz. The cache
// is informational: the kernel fixes the actual bus speed when the device
// is opened, and a PeriphBus programs it once at open. Zero is rejected.
func (t *Transport) SetClockFrequency(hz uint32) error {
	p, err := t.config(nbt.OpSetClockFrequency)
	if err != nil {
		return err
	}
	if hz == 0 {
		nbt.Logf(t.logger, logSource, nbt.LevelError, "cannot set clock frequency to 0 Hz")
		return nbt.NewError(nbt.ModuleI2C, nbt.OpSetClockFrequency, nbt.ErrIllegalArgument)
	}
	p.clockHz = hz
	nbt.Logf(t.logger, logSource, nbt.LevelInfo, "successfully set clock frequency to %d Hz", hz)
	return nil
}

// GuardTime returns the configured pause between consecutive bus
// transactions.
func (t *Transport) GuardTime() (time.Duration, error) {
	p, err := t.config(nbt.OpGetGuardTime)
	if err != nil {
		return 0, err
	}
	return p.guardTime, nil
}

// SetGuardTime reconfigures the pause between consecutive bus
// transactions. The new value applies from the next arming; an interval
// already pending keeps its original duration. Negative values are
// rejected, zero disables the guard.
func (t *Transport) SetGuardTime(d time.Duration) error {
	p, err := t.config(nbt.OpSetGuardTime)
	if err != nil {
		return err
	}
	if d < 0 {
		nbt.Logf(t.logger, logSource, nbt.LevelError, "guard time must not be negative (%v given)", d)
		return nbt.NewError(nbt.ModuleI2C, nbt.OpSetGuardTime, nbt.ErrIllegalArgument)
	}
	p.guardTime = d
	nbt.Logf(t.logger, logSource, nbt.LevelDebug, "successfully set guard time to %v", d)
	return nil
}

// config returns the configuration block, or a stack error if the
// transport was already destroyed.
func (t *Transport) config(op nbt.OpID) (*properties, error) {
	if t.props == nil {
		nbt.Logf(t.logger, logSource, nbt.LevelFatal, "transport used while uninitialized or destroyed")
		return nil, nbt.NewError(nbt.ModuleI2C, op, nbt.ErrStackInvalid)
	}
	return t.props, nil
}

// awaitGuard blocks until a previously armed guard interval has passed. A
// timer that was never armed means no interval is pending.
func (t *Transport) awaitGuard(p *properties) error {
	err := p.guard.Join()
	if err != nil && !errors.Is(err, nbt.ErrTimerNotSet) {
		nbt.Logf(t.logger, logSource, nbt.LevelError, "error awaiting guard time: %v", err)
		return err
	}
	return nil
}

// rearmGuard arms the guard interval following a transaction. Destroying
// first clears a stale arming; a zero guard time arms nothing.
func (t *Transport) rearmGuard(p *properties) error {
	p.guard.Destroy()
	if p.guardTime <= 0 {
		return nil
	}
	if err := p.guard.Set(p.guardTime); err != nil {
		nbt.Logf(t.logger, logSource, nbt.LevelError, "could not start guard time timer: %v", err)
		return err
	}
	return nil
}

var (
	_ nbt.Layer        = (*Transport)(nil)
	_ nbt.LoggerSetter = (*Transport)(nil)
)
