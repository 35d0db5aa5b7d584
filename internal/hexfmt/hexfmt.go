// optiga-nbt-rpi-port
// Copyright (c) 2025 Jakob Steinbaeck
// SPDX-License-Identifier: MIT
//
// This file is part of optiga-nbt-rpi-port.

// Package hexfmt renders and parses byte buffers for frame dumps and
// operator input.
package hexfmt

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const digits = "0123456789ABCDEF"

// Dump renders data as uppercase two-digit hex bytes joined by sep, with
// prefix prepended. Empty data yields just the prefix.
func Dump(prefix string, data []byte, sep string) string {
	var b strings.Builder
	b.Grow(len(prefix) + len(data)*(2+len(sep)))
	b.WriteString(prefix)
	for i, d := range data {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteByte(digits[d>>4])
		b.WriteByte(digits[d&0x0F])
	}
	return b.String()
}

// Parse decodes operator-typed hex bytes. Spaces, tabs, colons and commas
// between bytes are accepted, so "A0 04", "a0:04" and "A004" all decode to
// the same two bytes.
func Parse(s string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', ':', ',':
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return nil, fmt.Errorf("empty hex string")
	}
	data, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string %q: %w", s, err)
	}
	return data, nil
}
