// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

package nbt

import (
	"errors"
	"fmt"
)

// Sentinel errors describing why an operation failed. They form the reason
// part of a Status code and are matchable with errors.Is through any level
// of wrapping.
var (
	// ErrIllegalArgument indicates a parameter outside its documented range.
	ErrIllegalArgument = errors.New("illegal argument")

	// ErrOutOfMemory indicates an exhausted buffer or queue capacity.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrUnspecified indicates a bus or OS failure with no finer
	// classification. Human-readable detail belongs in the log at the
	// failure site; the error itself carries only the wrapped cause.
	ErrUnspecified = errors.New("unspecified error")

	// ErrStackInvalid indicates a malformed protocol stack or an operation
	// on a layer that has already been closed.
	ErrStackInvalid = errors.New("protocol stack invalid")

	// ErrTimerNotSet indicates a join on a timer that was never armed.
	ErrTimerNotSet = errors.New("timer not set")

	// ErrShortWrite indicates a transmit that moved fewer bytes than
	// requested.
	ErrShortWrite = errors.New("short write")

	// ErrShortRead indicates a strict-mode receive that returned fewer
	// bytes than requested.
	ErrShortRead = errors.New("short read")
)

// ModuleID identifies the subsystem reporting a failure.
type ModuleID uint8

// Module identifiers used in Status codes.
const (
	ModuleProtocol ModuleID = 0x01
	ModuleTimer    ModuleID = 0x02
	ModuleLogger   ModuleID = 0x03
	ModuleSerial   ModuleID = 0x04
	ModuleI2C      ModuleID = 0x35
)

// String returns the module name used in error messages.
func (m ModuleID) String() string {
	switch m {
	case ModuleProtocol:
		return "protocol"
	case ModuleTimer:
		return "timer"
	case ModuleLogger:
		return "logger"
	case ModuleSerial:
		return "serial"
	case ModuleI2C:
		return "i2c"
	default:
		return fmt.Sprintf("module(0x%02X)", uint8(m))
	}
}

// OpID identifies the operation that failed within a module.
type OpID uint8

// Operation identifiers used in Status codes. The accessor identifiers are
// shared by every module that exposes validated get/set pairs.
const (
	OpInitialize OpID = 0x01 + iota
	OpActivate
	OpTransmit
	OpReceive
	OpDestroy
	OpGetProperties
	OpGetSlaveAddress
	OpSetSlaveAddress
	OpGetClockFrequency
	OpSetClockFrequency
	OpGetGuardTime
	OpSetGuardTime
	OpSet
	OpJoin
	OpLog
	OpLogBytes
)

// String returns the operation name used in error messages.
func (o OpID) String() string {
	switch o {
	case OpInitialize:
		return "initialize"
	case OpActivate:
		return "activate"
	case OpTransmit:
		return "transmit"
	case OpReceive:
		return "receive"
	case OpDestroy:
		return "destroy"
	case OpGetProperties:
		return "get properties"
	case OpGetSlaveAddress:
		return "get slave address"
	case OpSetSlaveAddress:
		return "set slave address"
	case OpGetClockFrequency:
		return "get clock frequency"
	case OpSetClockFrequency:
		return "set clock frequency"
	case OpGetGuardTime:
		return "get guard time"
	case OpSetGuardTime:
		return "set guard time"
	case OpSet:
		return "set"
	case OpJoin:
		return "join"
	case OpLog:
		return "log"
	case OpLogBytes:
		return "log bytes"
	default:
		return fmt.Sprintf("op(0x%02X)", uint8(o))
	}
}

// Reason is the numeric form of a sentinel error inside a Status code.
type Reason uint16

// Reason codes. ReasonSuccess never appears inside an error.
const (
	ReasonSuccess         Reason = 0x00
	ReasonIllegalArgument Reason = 0x01
	ReasonOutOfMemory     Reason = 0x02
	ReasonUnspecified     Reason = 0x03
	ReasonStackInvalid    Reason = 0x04
	ReasonTimerNotSet     Reason = 0x05
	ReasonShortWrite      Reason = 0x06
	ReasonShortRead       Reason = 0x07
)

// Status is the packed numeric form of an operation result: module id in the
// top byte, operation id below it, reason code in the low 16 bits. The zero
// value is the single reserved success status.
type Status uint32

// StatusSuccess is the one status value that does not describe a failure.
const StatusSuccess Status = 0

// Module extracts the subsystem that produced the status.
func (s Status) Module() ModuleID { return ModuleID(s >> 24) }

// Op extracts the failing operation.
func (s Status) Op() OpID { return OpID(s >> 16) }

// Reason extracts the reason code.
func (s Status) Reason() Reason { return Reason(s) }

// OK reports whether the status describes a success.
func (s Status) OK() bool { return s == StatusSuccess }

// Error is the structured failure carried by every error the stack produces.
// Err holds the reason sentinel, optionally wrapped around a lower-level
// cause; Module and Op locate the failure site.
type Error struct {
	Err    error
	Module ModuleID
	Op     OpID
}

// NewError builds a stack error from a failure site and a reason sentinel.
func NewError(module ModuleID, op OpID, reason error) *Error {
	return &Error{Err: reason, Module: module, Op: op}
}

// WrapError builds a stack error whose reason sentinel wraps a lower-level
// cause. Both the sentinel and the cause stay matchable with errors.Is.
func WrapError(module ModuleID, op OpID, reason, cause error) *Error {
	return &Error{Err: fmt.Errorf("%w: %w", reason, cause), Module: module, Op: op}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Module, e.Op, e.Err)
}

// Unwrap returns the wrapped reason for errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.Err }

// Status packs the error into its numeric form.
func (e *Error) Status() Status {
	return Status(uint32(e.Module)<<24 | uint32(e.Op)<<16 | uint32(reasonOf(e.Err)))
}

// StatusOf converts any error into a packed status. A nil error maps to
// StatusSuccess; errors from outside the stack keep their reason
// classification where one of the sentinels is wrapped and otherwise map to
// an unspecified reason with no module information.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Status()
	}
	return Status(uint32(reasonOf(err)))
}

func reasonOf(err error) Reason {
	switch {
	case err == nil:
		return ReasonSuccess
	case errors.Is(err, ErrIllegalArgument):
		return ReasonIllegalArgument
	case errors.Is(err, ErrOutOfMemory):
		return ReasonOutOfMemory
	case errors.Is(err, ErrStackInvalid):
		return ReasonStackInvalid
	case errors.Is(err, ErrTimerNotSet):
		return ReasonTimerNotSet
	case errors.Is(err, ErrShortWrite):
		return ReasonShortWrite
	case errors.Is(err, ErrShortRead):
		return ReasonShortRead
	default:
		return ReasonUnspecified
	}
}
