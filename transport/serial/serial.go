// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

// Package serial provides a serial port transport layer for secure elements
// reachable over UART, for example through an interface bridge. It proves
// the stack contract is transport agnostic: any layer built for the I2C
// transport runs unchanged on top of this one.
package serial

import (
	"time"

	"go.bug.st/serial"

	"github.com/jsteinbaeck/optiga-nbt-rpi-port"
)

const (
	// DefaultBaudRate is used when no baud rate is configured.
	DefaultBaudRate = 115200

	// DefaultReadTimeout bounds how long a receive waits for bytes that
	// never arrive.
	DefaultReadTimeout = 100 * time.Millisecond

	// logSource tags log records produced by this layer.
	logSource = "serial"
)

// Port is the subset of go.bug.st/serial.Port the transport drives. Tests
// substitute a fake.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	SetReadTimeout(d time.Duration) error
}

// ReadMode selects how a receive that collects fewer bytes than requested
// is reported.
type ReadMode uint8

const (
	// ReadPartial hands back whatever arrived before the read timeout.
	ReadPartial ReadMode = iota

	// ReadStrict fails the receive when fewer bytes than requested arrive.
	ReadStrict
)

// Transport is a bottom protocol layer moving raw frames over a serial
// port.
type Transport struct {
	port        Port
	base        nbt.Layer
	logger      nbt.Logger
	portName    string
	readTimeout time.Duration
	readMode    ReadMode
	closed      bool
}

// New opens portName and builds a transport on it. The port is opened with
// 8 data bits, no parity and one stop bit unless WithMode overrides the
// frame format.
func New(portName string, opts ...Option) (*Transport, error) {
	if portName == "" {
		return nil, nbt.NewError(nbt.ModuleSerial, nbt.OpInitialize, nbt.ErrIllegalArgument)
	}
	cfg, err := newSettings(opts)
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(portName, &cfg.mode)
	if err != nil {
		return nil, nbt.WrapError(nbt.ModuleSerial, nbt.OpInitialize, nbt.ErrUnspecified, err)
	}
	t, err := build(port, portName, cfg)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	return t, nil
}

// NewFromPort builds a transport over an already opened port. The transport
// takes ownership and closes the port on Close. portName only serves log
// output.
func NewFromPort(port Port, portName string, opts ...Option) (*Transport, error) {
	if port == nil {
		return nil, nbt.NewError(nbt.ModuleSerial, nbt.OpInitialize, nbt.ErrIllegalArgument)
	}
	cfg, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	return build(port, portName, cfg)
}

// build finishes construction over an open port. The read timeout is
// programmed once here; each Read blocks at most that long.
func build(port Port, portName string, cfg *settings) (*Transport, error) {
	if err := port.SetReadTimeout(cfg.readTimeout); err != nil {
		return nil, nbt.WrapError(nbt.ModuleSerial, nbt.OpInitialize, nbt.ErrUnspecified, err)
	}
	return &Transport{
		port:        port,
		portName:    portName,
		readTimeout: cfg.readTimeout,
		readMode:    cfg.readMode,
		logger:      cfg.logger,
	}, nil
}

// FromStack walks the protocol stack downward from l and returns the serial
// transport at its bottom.
func FromStack(l nbt.Layer) (*Transport, error) {
	return nbt.Find[*Transport](l)
}

// Activate validates the transport. A serial link needs no activation
// handshake, so there is no port traffic and no response data.
func (t *Transport) Activate() ([]byte, error) {
	if t.closed {
		return nil, nbt.NewError(nbt.ModuleSerial, nbt.OpActivate, nbt.ErrStackInvalid)
	}
	return nil, nil
}

// Transmit writes one frame to the port. Anything short of a full write
// fails.
func (t *Transport) Transmit(data []byte) error {
	if t.closed {
		return nbt.NewError(nbt.ModuleSerial, nbt.OpTransmit, nbt.ErrStackInvalid)
	}
	if !nbt.ValidTransferLength(len(data)) {
		nbt.Logf(t.logger, logSource, nbt.LevelError,
			"can only send between %d and %d bytes (%d requested)",
			nbt.MinTransferLength, nbt.MaxTransferLength, len(data))
		return nbt.NewError(nbt.ModuleSerial, nbt.OpTransmit, nbt.ErrIllegalArgument)
	}

	nbt.LogBytesf(t.logger, logSource, nbt.LevelInfo, ">> ", data, " ")

	n, err := t.port.Write(data)
	if err != nil {
		nbt.Logf(t.logger, logSource, nbt.LevelError, "failed to transmit data on %s: %v", t.portName, err)
		return nbt.WrapError(nbt.ModuleSerial, nbt.OpTransmit, nbt.ErrUnspecified, err)
	}
	if n != len(data) {
		nbt.Logf(t.logger, logSource, nbt.LevelError, "short write on %s: %d of %d bytes", t.portName, n, len(data))
		return nbt.NewError(nbt.ModuleSerial, nbt.OpTransmit, nbt.ErrShortWrite)
	}
	return nil
}

// Receive collects up to expectedLen bytes from the port. Serial data
// trickles in, so reads accumulate until the frame is complete, the port
// goes quiet for a full read timeout, or the overall deadline passes. Under
// ReadPartial whatever arrived is the response; under ReadStrict an
// incomplete frame fails. Any failure yields a nil response.
func (t *Transport) Receive(expectedLen int) ([]byte, error) {
	if t.closed {
		return nil, nbt.NewError(nbt.ModuleSerial, nbt.OpReceive, nbt.ErrStackInvalid)
	}
	if !nbt.ValidTransferLength(expectedLen) {
		nbt.Logf(t.logger, logSource, nbt.LevelError,
			"can only read between %d and %d bytes (%d requested)",
			nbt.MinTransferLength, nbt.MaxTransferLength, expectedLen)
		return nil, nbt.NewError(nbt.ModuleSerial, nbt.OpReceive, nbt.ErrIllegalArgument)
	}

	buf := make([]byte, expectedLen)
	got := 0
	deadline := time.Now().Add(t.readTimeout)
	for got < expectedLen {
		n, err := t.port.Read(buf[got:])
		if err != nil {
			nbt.Logf(t.logger, logSource, nbt.LevelError, "failed to read data on %s: %v", t.portName, err)
			return nil, nbt.WrapError(nbt.ModuleSerial, nbt.OpReceive, nbt.ErrUnspecified, err)
		}
		got += n
		// A zero-byte read means the port timed out with nothing pending.
		if n == 0 || !time.Now().Before(deadline) {
			break
		}
	}

	if got < expectedLen && t.readMode == ReadStrict {
		nbt.Logf(t.logger, logSource, nbt.LevelError, "short read on %s: %d of %d bytes", t.portName, got, expectedLen)
		return nil, nbt.NewError(nbt.ModuleSerial, nbt.OpReceive, nbt.ErrShortRead)
	}
	resp := buf[:got]

	nbt.LogBytesf(t.logger, logSource, nbt.LevelInfo, "<< ", resp, " ")
	return resp, nil
}

// Close releases the port. Idempotent.
func (t *Transport) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if err := t.port.Close(); err != nil {
		return nbt.WrapError(nbt.ModuleSerial, nbt.OpDestroy, nbt.ErrUnspecified, err)
	}
	return nil
}

// Type identifies this layer in a stack.
func (*Transport) Type() nbt.LayerType { return nbt.LayerTypeSerial }

// Base returns the layer below, always nil for a bottom layer.
func (t *Transport) Base() nbt.Layer { return t.base }

// SetBase attaches the layer below. A transport sits at the bottom of its
// stack, so this is only useful in tests.
func (t *Transport) SetBase(base nbt.Layer) { t.base = base }

// SetLogger attaches a logger to the transport.
func (t *Transport) SetLogger(l nbt.Logger) { t.logger = l }

// PortName returns the name the port was opened with.
func (t *Transport) PortName() string { return t.portName }

var (
	_ nbt.Layer        = (*Transport)(nil)
	_ nbt.LoggerSetter = (*Transport)(nil)
)
