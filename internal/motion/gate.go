// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"context"
	"log"
	"time"

	"github.com/relabs-tech/ultrasonic_capture/internal/distance"
)

// Gate holds the detector back until the sensor has produced a number of
// valid readings after power-up.
type Gate struct {
	required int
	seen     int
}

// NewGate returns a gate that opens after samples valid readings.
func NewGate(samples int) *Gate {
	return &Gate{required: samples}
}

// Accept counts r if it is valid and reports whether the gate is open.
func (g *Gate) Accept(r distance.Reading) bool {
	if g.Done() {
		return true
	}
	if r.Valid {
		g.seen++
	}
	return g.Done()
}

// Done reports whether enough valid readings have been seen.
func (g *Gate) Done() bool {
	return g.seen >= g.required
}

// Seen returns the number of valid readings counted so far.
func (g *Gate) Seen() int {
	return g.seen
}

// Run polls src every interval until the gate opens. Absent readings are
// retried indefinitely; only ctx cancellation ends Run early.
func (g *Gate) Run(ctx context.Context, src distance.Source, interval time.Duration) error {
	if g.Done() {
		return nil
	}

	log.Printf("motion: stabilizing sensor (%d valid readings required)", g.required)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if g.Accept(src.Measure()) {
			log.Printf("motion: sensor stable after %d valid readings", g.seen)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
