// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

package serial

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"

	"github.com/jsteinbaeck/optiga-nbt-rpi-port"
)

// fakePort is a scriptable Port. Reads consume queued chunks; an empty
// queue reads zero bytes, like a real port timing out.
type fakePort struct {
	readErr       error
	writeErr      error
	closeErr      error
	setTimeoutErr error
	readQueue     [][]byte
	writes        [][]byte
	timeout       time.Duration
	writeCap      int
	closeCalls    int
}

func (f *fakePort) Read(p []byte) (int, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	if len(f.readQueue) == 0 {
		return 0, nil
	}
	chunk := f.readQueue[0]
	f.readQueue = f.readQueue[1:]
	return copy(p, chunk), nil
}

func (f *fakePort) Write(p []byte) (int, error) {
	f.writes = append(f.writes, append([]byte(nil), p...))
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	if f.writeCap > 0 && f.writeCap < len(p) {
		return f.writeCap, nil
	}
	return len(p), nil
}

func (f *fakePort) Close() error {
	f.closeCalls++
	return f.closeErr
}

func (f *fakePort) SetReadTimeout(d time.Duration) error {
	f.timeout = d
	return f.setTimeoutErr
}

func TestNewRejectsEmptyPortName(t *testing.T) {
	t.Parallel()

	_, err := New("")
	require.Error(t, err)
	assert.ErrorIs(t, err, nbt.ErrIllegalArgument)
}

func TestNewFromPortValidation(t *testing.T) {
	t.Parallel()

	_, err := NewFromPort(nil, "fake")
	assert.ErrorIs(t, err, nbt.ErrIllegalArgument)

	_, err = NewFromPort(&fakePort{}, "fake", WithBaudRate(0))
	assert.ErrorIs(t, err, nbt.ErrIllegalArgument)

	_, err = NewFromPort(&fakePort{}, "fake", WithReadTimeout(0))
	assert.ErrorIs(t, err, nbt.ErrIllegalArgument)

	_, err = NewFromPort(&fakePort{}, "fake", WithReadMode(ReadMode(9)))
	assert.ErrorIs(t, err, nbt.ErrIllegalArgument)

	_, err = NewFromPort(&fakePort{}, "fake", WithMode(serial.Mode{BaudRate: 0}))
	assert.ErrorIs(t, err, nbt.ErrIllegalArgument)
}

func TestReadTimeoutProgrammedAtBuild(t *testing.T) {
	t.Parallel()

	port := &fakePort{}
	_, err := NewFromPort(port, "fake")
	require.NoError(t, err)
	assert.Equal(t, DefaultReadTimeout, port.timeout)

	port = &fakePort{}
	_, err = NewFromPort(port, "fake", WithReadTimeout(250*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, port.timeout)

	port = &fakePort{setTimeoutErr: errors.New("EINVAL")}
	_, err = NewFromPort(port, "fake")
	require.Error(t, err)
	assert.ErrorIs(t, err, nbt.ErrUnspecified)
}

func TestTransmitWritesFrame(t *testing.T) {
	t.Parallel()

	port := &fakePort{}
	tr, err := NewFromPort(port, "fake")
	require.NoError(t, err)

	frame := []byte{0xA0, 0x04, 0x00, 0x04}
	require.NoError(t, tr.Transmit(frame))
	require.Len(t, port.writes, 1)
	assert.Equal(t, frame, port.writes[0])
}

func TestTransmitValidatesLength(t *testing.T) {
	t.Parallel()

	port := &fakePort{}
	tr, err := NewFromPort(port, "fake")
	require.NoError(t, err)

	for _, data := range [][]byte{nil, {}} {
		err := tr.Transmit(data)
		require.Error(t, err)
		assert.ErrorIs(t, err, nbt.ErrIllegalArgument)
	}
	assert.Empty(t, port.writes, "invalid frames must not touch the port")
}

func TestTransmitShortWrite(t *testing.T) {
	t.Parallel()

	port := &fakePort{writeCap: 1}
	tr, err := NewFromPort(port, "fake")
	require.NoError(t, err)

	err = tr.Transmit([]byte{0x01, 0x02, 0x03})
	require.Error(t, err)
	assert.ErrorIs(t, err, nbt.ErrShortWrite)
}

func TestTransmitWriteFailure(t *testing.T) {
	t.Parallel()

	portErr := errors.New("EIO")
	port := &fakePort{writeErr: portErr}
	tr, err := NewFromPort(port, "fake")
	require.NoError(t, err)

	err = tr.Transmit([]byte{0x01})
	require.Error(t, err)
	assert.ErrorIs(t, err, nbt.ErrUnspecified)
	assert.ErrorIs(t, err, portErr)
	status := nbt.StatusOf(err)
	assert.Equal(t, nbt.ModuleSerial, status.Module())
	assert.Equal(t, nbt.OpTransmit, status.Op())
}

func TestReceiveAccumulatesChunks(t *testing.T) {
	t.Parallel()

	port := &fakePort{readQueue: [][]byte{{0x01, 0x02}, {0x03}}}
	tr, err := NewFromPort(port, "fake")
	require.NoError(t, err)

	got, err := tr.Receive(3)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, got)
}

func TestReceivePartialOnSilence(t *testing.T) {
	t.Parallel()

	port := &fakePort{readQueue: [][]byte{{0x01}}}
	tr, err := NewFromPort(port, "fake")
	require.NoError(t, err)

	got, err := tr.Receive(4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, got)

	// A port that stays silent yields an empty response, still a success.
	got, err = tr.Receive(2)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReceiveStrictRejectsShortRead(t *testing.T) {
	t.Parallel()

	port := &fakePort{readQueue: [][]byte{{0x01}}}
	tr, err := NewFromPort(port, "fake", WithReadMode(ReadStrict))
	require.NoError(t, err)

	got, err := tr.Receive(4)
	require.Error(t, err)
	assert.ErrorIs(t, err, nbt.ErrShortRead)
	assert.Nil(t, got)
}

func TestReceiveValidatesLength(t *testing.T) {
	t.Parallel()

	port := &fakePort{}
	tr, err := NewFromPort(port, "fake")
	require.NoError(t, err)

	for _, n := range []int{0, -1} {
		got, err := tr.Receive(n)
		require.Error(t, err)
		assert.ErrorIs(t, err, nbt.ErrIllegalArgument)
		assert.Nil(t, got)
	}
}

func TestReceiveReadFailure(t *testing.T) {
	t.Parallel()

	portErr := errors.New("ENODEV")
	port := &fakePort{readErr: portErr}
	tr, err := NewFromPort(port, "fake")
	require.NoError(t, err)

	got, err := tr.Receive(2)
	require.Error(t, err)
	assert.ErrorIs(t, err, nbt.ErrUnspecified)
	assert.ErrorIs(t, err, portErr)
	assert.Nil(t, got)
}

func TestCloseReleasesPortOnce(t *testing.T) {
	t.Parallel()

	port := &fakePort{}
	tr, err := NewFromPort(port, "fake")
	require.NoError(t, err)

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
	assert.Equal(t, 1, port.closeCalls)

	err = tr.Transmit([]byte{0x01})
	assert.ErrorIs(t, err, nbt.ErrStackInvalid)
	_, err = tr.Receive(1)
	assert.ErrorIs(t, err, nbt.ErrStackInvalid)
	_, err = tr.Activate()
	assert.ErrorIs(t, err, nbt.ErrStackInvalid)
}

func TestFromStack(t *testing.T) {
	t.Parallel()

	tr, err := NewFromPort(&fakePort{}, "fake")
	require.NoError(t, err)
	assert.Equal(t, nbt.LayerTypeSerial, tr.Type())
	assert.Equal(t, "fake", tr.PortName())

	top := nbt.NewMockLayer()
	stack, err := nbt.NewStack(top, tr)
	require.NoError(t, err)
	defer func() { _ = stack.Close() }()

	found, err := FromStack(stack.Top())
	require.NoError(t, err)
	assert.Same(t, tr, found)
}
