// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"io"
	"log"
	"os"

	"golang.org/x/term"
)

const ctrlC = 0x03

// watchQuitKey calls onQuit when 'q' is typed on in. When in is a terminal
// it is switched to raw mode so a single keypress is enough; the returned
// func restores it.
func watchQuitKey(in *os.File, onQuit func()) (restore func()) {
	restore = func() {}

	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			log.Printf("monitor: raw terminal unavailable, use 'q' + Enter: %v", err)
		} else {
			// Raw mode turns off output post-processing, so log lines need
			// an explicit carriage return.
			prev := log.Writer()
			log.SetOutput(crlfWriter{w: prev})
			restore = func() {
				log.SetOutput(prev)
				if err := term.Restore(fd, state); err != nil {
					log.Printf("monitor: restore terminal: %v", err)
				}
			}
		}
	}

	go readQuitKey(in, onQuit)
	return restore
}

// readQuitKey reads r until a quit key or an error.
func readQuitKey(r io.Reader, onQuit func()) {
	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			if isQuitKey(b) {
				onQuit()
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func isQuitKey(b byte) bool {
	return b == 'q' || b == 'Q' || b == ctrlC
}

type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	out := bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))
	if _, err := c.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}
