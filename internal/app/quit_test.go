// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadQuitKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		quit  bool
	}{
		{name: "lower q", input: "abcq", quit: true},
		{name: "upper q", input: "Q", quit: true},
		{name: "ctrl-c in raw mode", input: "\x03", quit: true},
		{name: "other keys", input: "hello world\n", quit: false},
		{name: "empty", input: "", quit: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			readQuitKey(strings.NewReader(tt.input), func() { called = true })
			assert.Equal(t, tt.quit, called)
		})
	}
}

func TestCRLFWriter(t *testing.T) {
	var buf bytes.Buffer
	w := crlfWriter{w: &buf}

	n, err := w.Write([]byte("one\ntwo\n"))
	assert.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, "one\r\ntwo\r\n", buf.String())
}
