// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"math"
	"time"

	"github.com/relabs-tech/ultrasonic_capture/internal/config"
	"github.com/relabs-tech/ultrasonic_capture/internal/distance"
)

// Settings configures a Detector.
type Settings struct {
	WindowSize  int
	ThresholdCM float64
	Cooldown    time.Duration
}

// SettingsFrom extracts detector settings from the application config.
func SettingsFrom(cfg *config.Config) Settings {
	return Settings{
		WindowSize:  cfg.WindowSize,
		ThresholdCM: cfg.DistanceThresholdCM,
		Cooldown:    cfg.Cooldown(),
	}
}

// Decision is the outcome of observing one reading.
type Decision struct {
	Fire bool

	// Change is |newest - oldest| when the window was full and the cooldown
	// had elapsed, otherwise 0.
	Change float64
	Newest float64
	Oldest float64
}

// Detector decides when a sudden distance change counts as motion.
//
// A trigger fires only when the window is full, the cooldown since the last
// trigger has elapsed and the newest and oldest readings differ by strictly
// more than the threshold. Firing empties the window and restarts the
// cooldown, so the window has to refill before the next trigger.
type Detector struct {
	settings    Settings
	window      *Window
	lastTrigger time.Time // zero: never triggered
}

// NewDetector returns a detector with an empty window.
func NewDetector(s Settings) *Detector {
	return &Detector{
		settings: s,
		window:   NewWindow(s.WindowSize),
	}
}

// Observe records r taken at now and reports whether motion fired.
// Absent readings are ignored.
func (d *Detector) Observe(r distance.Reading, now time.Time) Decision {
	if !r.Valid {
		return Decision{}
	}
	d.window.Push(r.Centimeters)

	if !d.window.Full() || !d.cooledDown(now) {
		return Decision{}
	}

	newest, _ := d.window.Newest()
	oldest, _ := d.window.Oldest()
	dec := Decision{
		Change: math.Abs(newest - oldest),
		Newest: newest,
		Oldest: oldest,
	}
	if dec.Change > d.settings.ThresholdCM {
		dec.Fire = true
		d.window.Clear()
		d.lastTrigger = now
	}
	return dec
}

func (d *Detector) cooledDown(now time.Time) bool {
	if d.lastTrigger.IsZero() {
		return true
	}
	return now.Sub(d.lastTrigger) > d.settings.Cooldown
}

// LastTrigger returns the time of the last trigger; ok is false if none.
func (d *Detector) LastTrigger() (t time.Time, ok bool) {
	return d.lastTrigger, !d.lastTrigger.IsZero()
}

// Window returns the readings currently held, oldest first.
func (d *Detector) Window() []float64 {
	return d.window.Values()
}
