// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

package hexfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDump(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		prefix string
		sep    string
		want   string
		data   []byte
	}{
		{
			name:   "transmit frame",
			prefix: ">> ",
			data:   []byte{0xA0, 0x04, 0x00, 0x04},
			sep:    " ",
			want:   ">> A0 04 00 04",
		},
		{
			name:   "no separator",
			prefix: "",
			data:   []byte{0xDE, 0xAD, 0xBE, 0xEF},
			sep:    "",
			want:   "DEADBEEF",
		},
		{
			name:   "single byte",
			prefix: "<< ",
			data:   []byte{0x7F},
			sep:    ", ",
			want:   "<< 7F",
		},
		{
			name:   "empty data keeps the prefix",
			prefix: ">> ",
			data:   nil,
			sep:    " ",
			want:   ">> ",
		},
		{
			name:   "low nibbles pad with zero",
			prefix: "",
			data:   []byte{0x00, 0x01, 0x0F},
			sep:    ":",
			want:   "00:01:0F",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Dump(tt.prefix, tt.data, tt.sep))
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		in      string
		want    []byte
		wantErr bool
	}{
		{
			name: "space separated",
			in:   "A0 04 00 04",
			want: []byte{0xA0, 0x04, 0x00, 0x04},
		},
		{
			name: "packed lowercase",
			in:   "deadbeef",
			want: []byte{0xDE, 0xAD, 0xBE, 0xEF},
		},
		{
			name: "colon separated",
			in:   "a0:04",
			want: []byte{0xA0, 0x04},
		},
		{
			name: "commas and tabs",
			in:   "01,\t02",
			want: []byte{0x01, 0x02},
		},
		{
			name:    "empty input",
			in:      "  ",
			wantErr: true,
		},
		{
			name:    "odd nibble count",
			in:      "A0 4",
			wantErr: true,
		},
		{
			name:    "non-hex characters",
			in:      "zz",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
