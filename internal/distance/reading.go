// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package distance

import "math"

// Valid sensor range in centimeters, exclusive on both ends.
const (
	MinCentimeters = 2.0
	MaxCentimeters = 400.0
)

// Reading represents a single distance measurement.
// A zero Reading (Valid == false) means the sensor produced nothing usable
// this cycle.
type Reading struct {
	Centimeters float64 `json:"cm"`
	Valid       bool    `json:"valid"`
}

// Of returns a valid reading rounded to one decimal.
func Of(cm float64) Reading {
	return Reading{Centimeters: math.Round(cm*10) / 10, Valid: true}
}

// Absent returns the missing reading.
func Absent() Reading {
	return Reading{}
}

// InRange reports whether cm lies strictly inside (MinCentimeters, MaxCentimeters).
func InRange(cm float64) bool {
	return cm > MinCentimeters && cm < MaxCentimeters
}

// Source is anything that can produce one distance reading per call.
type Source interface {
	Measure() Reading
}
