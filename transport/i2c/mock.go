// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

package i2c

import "time"

// BusCall records one access to a MockBus.
type BusCall struct {
	// Time is when the call happened, for asserting on transaction spacing.
	Time time.Time

	// Op is one of "select", "write", "read" or "close".
	Op string

	// Addr is the address passed to SelectSlave, or the selected address
	// at the time of a transfer.
	Addr uint8

	// Data is a copy of the bytes written or read.
	Data []byte
}

// MockBus is a scriptable Bus for tests and for exercising a protocol stack
// without hardware. Reads consume ReadQueue entries in order; an exhausted
// queue yields zero bytes. Every access is recorded in Calls.
type MockBus struct {
	// ReadQueue holds the responses handed out by successive Read calls.
	ReadQueue [][]byte

	// SelectErr, WriteErr, ReadErr and CloseErr fail the matching call.
	SelectErr error
	WriteErr  error
	ReadErr   error
	CloseErr  error

	// ShortWrite, when positive, caps the byte count Write reports.
	ShortWrite int

	// Calls records every access in order.
	Calls []BusCall

	selected uint8
	closed   bool
}

// NewMockBus returns an empty MockBus.
func NewMockBus() *MockBus {
	return &MockBus{}
}

// NewMockBusWithResponse returns a MockBus that answers the first Read with
// response.
func NewMockBusWithResponse(response []byte) *MockBus {
	return &MockBus{ReadQueue: [][]byte{response}}
}

// QueueRead appends a response for a future Read call.
func (m *MockBus) QueueRead(response []byte) {
	m.ReadQueue = append(m.ReadQueue, response)
}

// SelectSlave records the call and the selected address.
func (m *MockBus) SelectSlave(addr uint8) error {
	m.record("select", addr, nil)
	if m.SelectErr != nil {
		return m.SelectErr
	}
	m.selected = addr
	return nil
}

// Write records a copy of p and reports len(p) bytes moved, capped by
// ShortWrite.
func (m *MockBus) Write(p []byte) (int, error) {
	m.record("write", m.selected, p)
	if m.WriteErr != nil {
		return 0, m.WriteErr
	}
	n := len(p)
	if m.ShortWrite > 0 && m.ShortWrite < n {
		n = m.ShortWrite
	}
	return n, nil
}

// Read copies the next queued response into p and records the bytes handed
// out. An exhausted queue yields zero bytes.
func (m *MockBus) Read(p []byte) (int, error) {
	if m.ReadErr != nil {
		m.record("read", m.selected, nil)
		return 0, m.ReadErr
	}
	var resp []byte
	if len(m.ReadQueue) > 0 {
		resp = m.ReadQueue[0]
		m.ReadQueue = m.ReadQueue[1:]
	}
	n := copy(p, resp)
	m.record("read", m.selected, p[:n])
	return n, nil
}

// Close records the call and marks the bus closed.
func (m *MockBus) Close() error {
	m.record("close", m.selected, nil)
	m.closed = true
	return m.CloseErr
}

// Name identifies the mock in log output.
func (*MockBus) Name() string { return "mock" }

// Closed reports whether Close has been called.
func (m *MockBus) Closed() bool { return m.closed }

// Selected returns the most recently selected address.
func (m *MockBus) Selected() uint8 { return m.selected }

// CallsOf returns the recorded calls matching op, in order.
func (m *MockBus) CallsOf(op string) []BusCall {
	var out []BusCall
	for _, c := range m.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (m *MockBus) record(op string, addr uint8, data []byte) {
	var copied []byte
	if data != nil {
		copied = append([]byte(nil), data...)
	}
	m.Calls = append(m.Calls, BusCall{
		Time: time.Now(),
		Op:   op,
		Addr: addr,
		Data: copied,
	})
}

var _ Bus = (*MockBus)(nil)
