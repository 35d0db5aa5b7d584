// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

package timer

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsteinbaeck/optiga-nbt-rpi-port"
)

// backends runs every contract test against all three implementations.
var backends = []struct {
	make func() nbt.Timer
	name string
}{
	{name: "deadline", make: func() nbt.Timer { return NewDeadline() }},
	{name: "channel", make: func() nbt.Timer { return NewChannel() }},
	{name: "flag", make: func() nbt.Timer { return NewFlag() }},
}

func TestNewDefaultsToDeadline(t *testing.T) {
	t.Parallel()
	assert.IsType(t, &Deadline{}, New())
}

func TestUnsetTimer(t *testing.T) {
	t.Parallel()
	for _, backend := range backends {
		backend := backend
		t.Run(backend.name, func(t *testing.T) {
			t.Parallel()
			tm := backend.make()

			assert.True(t, tm.HasElapsed(), "unset timer must report elapsed")
			assert.ErrorIs(t, tm.Join(), nbt.ErrTimerNotSet)
			tm.Destroy() // safe on an unset timer
			assert.ErrorIs(t, tm.Join(), nbt.ErrTimerNotSet)
		})
	}
}

func TestJoinWaitsOutTheDuration(t *testing.T) {
	t.Parallel()
	const guard = 50 * time.Millisecond

	for _, backend := range backends {
		backend := backend
		t.Run(backend.name, func(t *testing.T) {
			t.Parallel()
			tm := backend.make()

			start := time.Now()
			require.NoError(t, tm.Set(guard))
			assert.False(t, tm.HasElapsed(), "timer elapsed immediately after arming")

			require.NoError(t, tm.Join())
			assert.GreaterOrEqual(t, time.Since(start), guard,
				"join returned before the armed duration passed")

			// Join releases the arming.
			assert.True(t, tm.HasElapsed())
			assert.ErrorIs(t, tm.Join(), nbt.ErrTimerNotSet)
		})
	}
}

func TestElapsedWithoutJoin(t *testing.T) {
	t.Parallel()
	for _, backend := range backends {
		backend := backend
		t.Run(backend.name, func(t *testing.T) {
			t.Parallel()
			tm := backend.make()

			require.NoError(t, tm.Set(10*time.Millisecond))
			assert.Eventually(t, tm.HasElapsed, time.Second, time.Millisecond,
				"armed timer never reported elapsed")
		})
	}
}

func TestSetReplacesPreviousArming(t *testing.T) {
	t.Parallel()
	const replacement = 30 * time.Millisecond

	for _, backend := range backends {
		backend := backend
		t.Run(backend.name, func(t *testing.T) {
			t.Parallel()
			tm := backend.make()

			require.NoError(t, tm.Set(5*time.Millisecond))
			start := time.Now()
			require.NoError(t, tm.Set(replacement))

			require.NoError(t, tm.Join())
			assert.GreaterOrEqual(t, time.Since(start), replacement,
				"join honored the replaced arming instead of the current one")
		})
	}
}

func TestSetRejectsNegativeDurations(t *testing.T) {
	t.Parallel()
	for _, backend := range backends {
		backend := backend
		t.Run(backend.name, func(t *testing.T) {
			t.Parallel()
			tm := backend.make()
			assert.ErrorIs(t, tm.Set(-time.Millisecond), nbt.ErrIllegalArgument)
			assert.True(t, tm.HasElapsed(), "failed set must leave the timer unset")
		})
	}
}

func TestDestroyDisarms(t *testing.T) {
	t.Parallel()
	for _, backend := range backends {
		backend := backend
		t.Run(backend.name, func(t *testing.T) {
			t.Parallel()
			tm := backend.make()

			require.NoError(t, tm.Set(time.Hour))
			tm.Destroy()
			tm.Destroy() // idempotent

			assert.True(t, tm.HasElapsed())
			assert.ErrorIs(t, tm.Join(), nbt.ErrTimerNotSet)

			// A destroyed timer is reusable.
			start := time.Now()
			require.NoError(t, tm.Set(10*time.Millisecond))
			require.NoError(t, tm.Join())
			assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
		})
	}
}

// Deadline is excluded here: its Join always runs to the natural deadline
// rather than being released early, which is why the armed duration is kept
// short for it elsewhere.
func TestDestroyReleasesBlockedJoin(t *testing.T) {
	t.Parallel()
	blocking := []struct {
		make func() nbt.Timer
		name string
	}{
		{name: "channel", make: func() nbt.Timer { return NewChannel() }},
		{name: "flag", make: func() nbt.Timer { return NewFlag() }},
	}

	for _, backend := range blocking {
		backend := backend
		t.Run(backend.name, func(t *testing.T) {
			t.Parallel()
			tm := backend.make()
			require.NoError(t, tm.Set(time.Hour))

			joined := make(chan error, 1)
			go func() { joined <- tm.Join() }()

			time.Sleep(20 * time.Millisecond)
			tm.Destroy()

			select {
			case err := <-joined:
				assert.ErrorIs(t, err, nbt.ErrUnspecified)
			case <-time.After(5 * time.Second):
				t.Fatal("destroy left the join blocked")
			}
		})
	}
}

func TestCeilMicros(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		in      time.Duration
		want    time.Duration
		wantErr bool
	}{
		{name: "zero", in: 0, want: 0},
		{name: "exact", in: 250 * time.Microsecond, want: 250 * time.Microsecond},
		{name: "fraction rounds up", in: 1500 * time.Nanosecond, want: 2 * time.Microsecond},
		{name: "single nanosecond rounds up", in: time.Nanosecond, want: time.Microsecond},
		{name: "max representable", in: time.Duration(math.MaxUint32) * time.Microsecond, want: time.Duration(math.MaxUint32) * time.Microsecond},
		{name: "beyond native range", in: time.Duration(math.MaxUint32+1) * time.Microsecond, wantErr: true},
		{name: "negative", in: -time.Microsecond, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ceilMicros(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, nbt.ErrIllegalArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCeilMillis(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		in      time.Duration
		want    time.Duration
		wantErr bool
	}{
		{name: "zero", in: 0, want: 0},
		{name: "exact", in: 20 * time.Millisecond, want: 20 * time.Millisecond},
		{name: "fraction rounds up", in: 1200 * time.Microsecond, want: 2 * time.Millisecond},
		{name: "beyond microsecond range still legal", in: time.Duration(math.MaxUint32+1) * time.Microsecond, want: 4294968 * time.Millisecond},
		{name: "beyond native range", in: time.Duration(math.MaxUint32+1) * time.Millisecond, wantErr: true},
		{name: "negative", in: -time.Millisecond, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ceilMillis(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, nbt.ErrIllegalArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// The millisecond tick is coarse enough to observe the ceiling rounding on
// the wall clock.
func TestChannelRoundsUpToMilliseconds(t *testing.T) {
	t.Parallel()
	tm := NewChannel()

	start := time.Now()
	require.NoError(t, tm.Set(1200*time.Microsecond))
	require.NoError(t, tm.Join())
	assert.GreaterOrEqual(t, time.Since(start), 2*time.Millisecond)
}
