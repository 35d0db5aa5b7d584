// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

package nbt

import "errors"

// LayerType identifies a protocol layer implementation.
type LayerType string

// Layer type identifiers for the implementations shipped with this module.
const (
	// LayerTypeI2C is the I2C bus transport layer.
	LayerTypeI2C LayerType = "i2c"
	// LayerTypeSerial is the serial port transport layer.
	LayerTypeSerial LayerType = "serial"
	// LayerTypeMock is the scriptable test layer.
	LayerTypeMock LayerType = "mock"
)

// Transfer size bounds enforced by every layer before touching the bus.
// MaxTransferLength is typed uint64 so the bound is expressible on 32-bit
// hosts.
const (
	MinTransferLength        = 1
	MaxTransferLength uint64 = 1<<32 - 1
)

// ValidTransferLength reports whether n is a legal transmit or receive size.
func ValidTransferLength(n int) bool {
	return n >= MinTransferLength && uint64(n) <= MaxTransferLength
}

// Layer is one node of a protocol stack. Nodes form a singly linked chain
// from the application-facing layer down to the bus-facing layer; each node
// holds a non-owning reference to the one directly beneath it and knows
// nothing about what sits above.
//
// Higher layers wrap the payload in their own framing and delegate the rest
// of the work downward; the bottom layer talks to the bus. Every operation
// on a closed layer fails with ErrStackInvalid.
type Layer interface {
	// Activate performs the layer's activation handshake and returns any
	// immediate response from the peer. Pure bus layers have no handshake
	// and return nil.
	Activate() ([]byte, error)

	// Transmit sends one frame toward the secure element.
	Transmit(data []byte) error

	// Receive reads a response of up to expectedLen bytes from the secure
	// element. expectedLen must satisfy ValidTransferLength.
	Receive(expectedLen int) ([]byte, error)

	// Close releases the layer's own resources. It never closes the layer
	// beneath; the stack owner walks the chain and closes each node exactly
	// once. Close is idempotent.
	Close() error

	// Type identifies the concrete implementation.
	Type() LayerType

	// Base returns the layer directly beneath, or nil at the bottom.
	Base() Layer

	// SetBase links the layer directly beneath this one.
	SetBase(base Layer)
}

// LoggerSetter is implemented by layers that accept a shared logger.
type LoggerSetter interface {
	SetLogger(l Logger)
}

// Find walks the base chain downward from start and returns the first layer
// of concrete type T. Layers use it to reach the properties of the bus-facing
// layer beneath them without knowing the stack's shape. The walk has no side
// effects; a chain that ends without a match, including a nil start, fails
// with ErrStackInvalid.
func Find[T Layer](start Layer) (T, error) {
	for l := start; l != nil; l = l.Base() {
		if t, ok := l.(T); ok {
			return t, nil
		}
	}
	var zero T
	return zero, NewError(ModuleProtocol, OpGetProperties, ErrStackInvalid)
}

// Stack owns an ordered chain of protocol layers, application-facing layer
// first. It links the chain at construction, delegates operations to the top
// layer, and is the single owner that closes every node exactly once.
//
// A stack and its layers belong to one goroutine at a time; see the package
// documentation for the concurrency model.
type Stack struct {
	layers []Layer
	closed bool
}

// NewStack links layers top to bottom and returns the assembled stack.
// At least one layer is required and none may be nil.
func NewStack(layers ...Layer) (*Stack, error) {
	if len(layers) == 0 {
		return nil, NewError(ModuleProtocol, OpInitialize, ErrIllegalArgument)
	}
	for _, l := range layers {
		if l == nil {
			return nil, NewError(ModuleProtocol, OpInitialize, ErrIllegalArgument)
		}
	}
	for i := 0; i < len(layers)-1; i++ {
		layers[i].SetBase(layers[i+1])
	}
	return &Stack{layers: layers}, nil
}

// Top returns the application-facing layer, the entry point for downward
// property lookups. It returns nil once the stack is closed.
func (s *Stack) Top() Layer {
	if s == nil || s.closed || len(s.layers) == 0 {
		return nil
	}
	return s.layers[0]
}

// SetLogger shares l with every layer that accepts one.
func (s *Stack) SetLogger(l Logger) {
	if s == nil || s.closed {
		return
	}
	for _, layer := range s.layers {
		if ls, ok := layer.(LoggerSetter); ok {
			ls.SetLogger(l)
		}
	}
}

// Activate runs the activation handshake from the top of the stack.
func (s *Stack) Activate() ([]byte, error) {
	if err := s.valid(OpActivate); err != nil {
		return nil, err
	}
	return s.layers[0].Activate()
}

// Transmit sends one frame through the stack.
func (s *Stack) Transmit(data []byte) error {
	if err := s.valid(OpTransmit); err != nil {
		return err
	}
	return s.layers[0].Transmit(data)
}

// Receive reads a response of up to expectedLen bytes through the stack.
func (s *Stack) Receive(expectedLen int) ([]byte, error) {
	if err := s.valid(OpReceive); err != nil {
		return nil, err
	}
	return s.layers[0].Receive(expectedLen)
}

// Close closes every layer exactly once, top to bottom, and invalidates the
// stack. Closing continues past individual failures; the collected errors
// are joined. Close is idempotent.
func (s *Stack) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	for _, l := range s.layers {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.layers = nil
	return errors.Join(errs...)
}

func (s *Stack) valid(op OpID) error {
	if s == nil || s.closed || len(s.layers) == 0 {
		return NewError(ModuleProtocol, op, ErrStackInvalid)
	}
	return nil
}
