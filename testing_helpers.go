// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

package nbt

// MockLayer is a scriptable Layer for tests of stack wiring and of layers
// that delegate downward. Responses and errors are configured through the
// exported fields; every call is recorded. Like the rest of the stack it is
// meant for single-goroutine use.
type MockLayer struct {
	// ReceiveFunc, when set, computes the response for each Receive call
	// and takes precedence over ReceiveData.
	ReceiveFunc func(expectedLen int) ([]byte, error)

	// ActivateData is returned from Activate.
	ActivateData []byte
	// ReceiveData is returned from every Receive when ReceiveFunc is nil.
	ReceiveData []byte

	// Per-operation error injection.
	ActivateErr error
	TransmitErr error
	ReceiveErr  error
	CloseErr    error

	// Transmitted records a copy of every frame passed to Transmit.
	Transmitted [][]byte

	// Call counters.
	ActivateCalls int
	TransmitCalls int
	ReceiveCalls  int
	CloseCalls    int

	// Logger records the most recent SetLogger call so tests can verify
	// stack-wide propagation.
	Logger Logger

	base   Layer
	closed bool
}

// NewMockLayer returns an empty mock that answers every operation with
// success and no data.
func NewMockLayer() *MockLayer {
	return &MockLayer{}
}

// NewMockLayerWithResponse returns a mock whose Receive always yields
// response.
func NewMockLayerWithResponse(response []byte) *MockLayer {
	return &MockLayer{ReceiveData: response}
}

// Activate returns the scripted activation data.
func (m *MockLayer) Activate() ([]byte, error) {
	m.ActivateCalls++
	if m.ActivateErr != nil {
		return nil, m.ActivateErr
	}
	return m.ActivateData, nil
}

// Transmit records the frame.
func (m *MockLayer) Transmit(data []byte) error {
	m.TransmitCalls++
	if m.TransmitErr != nil {
		return m.TransmitErr
	}
	m.Transmitted = append(m.Transmitted, append([]byte(nil), data...))
	return nil
}

// Receive returns the scripted response. With neither ReceiveFunc nor
// ReceiveData configured it returns expectedLen zero bytes.
func (m *MockLayer) Receive(expectedLen int) ([]byte, error) {
	m.ReceiveCalls++
	if m.ReceiveErr != nil {
		return nil, m.ReceiveErr
	}
	if m.ReceiveFunc != nil {
		return m.ReceiveFunc(expectedLen)
	}
	if m.ReceiveData != nil {
		return append([]byte(nil), m.ReceiveData...), nil
	}
	return make([]byte, expectedLen), nil
}

// Close marks the mock closed. It stays usable for call-count assertions.
func (m *MockLayer) Close() error {
	m.CloseCalls++
	m.closed = true
	return m.CloseErr
}

// Closed reports whether Close has been called at least once.
func (m *MockLayer) Closed() bool { return m.closed }

// Type returns LayerTypeMock.
func (*MockLayer) Type() LayerType { return LayerTypeMock }

// Base returns the linked base layer.
func (m *MockLayer) Base() Layer { return m.base }

// SetBase links the base layer.
func (m *MockLayer) SetBase(base Layer) { m.base = base }

// SetLogger records the shared logger.
func (m *MockLayer) SetLogger(l Logger) { m.Logger = l }

var (
	_ Layer        = (*MockLayer)(nil)
	_ LoggerSetter = (*MockLayer)(nil)
)
