// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"log"
	"time"

	"github.com/relabs-tech/ultrasonic_capture/internal/capture"
	"github.com/relabs-tech/ultrasonic_capture/internal/config"
	"github.com/relabs-tech/ultrasonic_capture/internal/display"
	"github.com/relabs-tech/ultrasonic_capture/internal/distance"
	"github.com/relabs-tech/ultrasonic_capture/internal/motion"
)

const (
	panelRefresh = time.Second
	alertHold    = 3 * time.Second
)

// Capturer saves one frame for a trigger at now and returns its path.
type Capturer interface {
	CaptureAndSave(now time.Time) (string, error)
}

// StatusPanel shows the monitor state somewhere other than the saved frames.
type StatusPanel interface {
	Show(display.Status) error
}

// Outcome describes what one polling cycle did.
type Outcome int

const (
	// OutcomeNoReading: the sensor returned nothing usable.
	OutcomeNoReading Outcome = iota
	// OutcomeObserved: the reading entered the window, no trigger.
	OutcomeObserved
	// OutcomeSaved: a trigger fired and the frame was written.
	OutcomeSaved
	// OutcomeFrameFault: a trigger fired but no frame could be taken.
	OutcomeFrameFault
	// OutcomeStoreFault: a trigger fired but the frame could not be written.
	OutcomeStoreFault
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoReading:
		return "no-reading"
	case OutcomeObserved:
		return "observed"
	case OutcomeSaved:
		return "saved"
	case OutcomeFrameFault:
		return "frame-fault"
	case OutcomeStoreFault:
		return "store-fault"
	default:
		return "unknown"
	}
}

// Monitor is the polling loop: measure, observe, and on a trigger capture
// and commit. All of its state is owned by the goroutine calling Run.
type Monitor struct {
	source   distance.Source
	gate     *motion.Gate
	detector *motion.Detector
	capturer Capturer
	panel    StatusPanel // nil when no display is attached

	interval   time.Duration
	retryDelay time.Duration
	now        func() time.Time

	status      display.Status
	lastRefresh time.Time
}

// NewMonitor builds the loop from its collaborators. panel may be nil.
func NewMonitor(cfg *config.Config, src distance.Source, c Capturer, panel StatusPanel) *Monitor {
	return &Monitor{
		source:     src,
		gate:       motion.NewGate(cfg.StabilizationSamples),
		detector:   motion.NewDetector(motion.SettingsFrom(cfg)),
		capturer:   c,
		panel:      panel,
		interval:   cfg.PollInterval(),
		retryDelay: cfg.CaptureRetryDelay(),
		now:        time.Now,
	}
}

// Run waits for the sensor to stabilize, then polls until ctx is done.
// Cancellation is a clean exit and returns nil.
func (m *Monitor) Run(ctx context.Context) error {
	m.status.Stabilizing = true
	m.refreshPanel(true)

	if err := m.gate.Run(ctx, m.source, m.interval); err != nil {
		log.Printf("monitor: stopped during stabilization: %v", err)
		return nil
	}
	m.status.Stabilizing = false
	log.Println("monitor: detector armed")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		outcome := m.Step(ctx)
		m.refreshPanel(outcome >= OutcomeSaved)

		select {
		case <-ctx.Done():
			log.Println("monitor: shutting down")
			return nil
		case <-ticker.C:
		}
	}
}

// Step runs one polling cycle.
func (m *Monitor) Step(ctx context.Context) Outcome {
	r := m.source.Measure()
	now := m.now()

	m.status.Now = now
	m.status.HaveReading = r.Valid
	m.status.Distance = r.Centimeters
	m.status.Alert = !m.status.LastCapture.IsZero() && now.Sub(m.status.LastCapture) < alertHold

	dec := m.detector.Observe(r, now)
	if !r.Valid {
		return OutcomeNoReading
	}
	if !dec.Fire {
		return OutcomeObserved
	}

	log.Printf("monitor: alert! detected %.1fcm change (%.1f -> %.1f)", dec.Change, dec.Oldest, dec.Newest)

	// The trigger is consumed at this point whatever happens to the frame.
	path, err := m.capturer.CaptureAndSave(now)
	if err != nil {
		log.Printf("monitor: capture error: %v", err)
		if capture.IsFrameFault(err) {
			sleepCtx(ctx, m.retryDelay)
			return OutcomeFrameFault
		}
		return OutcomeStoreFault
	}

	log.Printf("monitor: image saved at %s", path)
	m.status.LastCapture = now
	m.status.Captures++
	m.status.Alert = true
	return OutcomeSaved
}

// Detector exposes the detector state.
func (m *Monitor) Detector() *motion.Detector {
	return m.detector
}

func (m *Monitor) refreshPanel(force bool) {
	if m.panel == nil {
		return
	}
	now := m.now()
	if !force && now.Sub(m.lastRefresh) < panelRefresh {
		return
	}
	m.lastRefresh = now
	if m.status.Now.IsZero() {
		m.status.Now = now
	}
	if err := m.panel.Show(m.status); err != nil {
		log.Printf("display: update error: %v", err)
	}
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
