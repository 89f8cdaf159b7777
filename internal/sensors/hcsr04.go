// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/ultrasonic_capture/internal/config"
	"github.com/relabs-tech/ultrasonic_capture/internal/distance"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// SpeedOfSoundHalfCM is the speed of sound in cm/s divided by two, so that
// echo duration × SpeedOfSoundHalfCM gives the one-way distance.
const SpeedOfSoundHalfCM = 17150.0

var (
	// ErrEchoTimeout means the echo pin did not complete a high pulse before
	// the deadline.
	ErrEchoTimeout = errors.New("echo timeout")

	// ErrOutOfRange means the computed distance is outside (2, 400) cm.
	ErrOutOfRange = errors.New("distance out of range")
)

// Stats counts measurement outcomes since the driver was created.
type Stats struct {
	Valid      uint64
	Timeouts   uint64
	OutOfRange uint64
	Faults     uint64
}

// HCSR04 drives an HC-SR04 class ultrasonic ranging module through two GPIO
// pins: a trigger output and an echo input.
type HCSR04 struct {
	trig    gpio.PinOut
	echo    gpio.PinIn
	pulse   time.Duration
	timeout time.Duration

	// now must return monotonic readings; tests replace it.
	now func() time.Time

	stats Stats
}

// Options configures the pulse timing of an HCSR04.
type Options struct {
	TriggerPulse time.Duration
	EchoTimeout  time.Duration
}

// DefaultOpts matches the module datasheet: 10 µs trigger, 40 ms deadline.
var DefaultOpts = Options{
	TriggerPulse: 10 * time.Microsecond,
	EchoTimeout:  40 * time.Millisecond,
}

// Open initializes the periph host, looks up the configured pins by name and
// returns a ready driver. It waits the configured settle delay before
// returning so that the first trigger is not sent into a floating line.
func Open(cfg *config.Config) (*HCSR04, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("sensor: periph host init: %w", err)
	}

	trig := gpioreg.ByName(cfg.TrigPin)
	if trig == nil {
		return nil, fmt.Errorf("sensor: trigger pin %q not found", cfg.TrigPin)
	}
	echo := gpioreg.ByName(cfg.EchoPin)
	if echo == nil {
		return nil, fmt.Errorf("sensor: echo pin %q not found", cfg.EchoPin)
	}

	s, err := New(trig, echo, Options{
		TriggerPulse: cfg.TriggerPulse(),
		EchoTimeout:  cfg.EchoTimeout(),
	})
	if err != nil {
		return nil, err
	}

	log.Printf("sensor: HC-SR04 on trig=%s echo=%s (pulse=%s, timeout=%s)",
		trig.Name(), echo.Name(), s.pulse, s.timeout)

	time.Sleep(cfg.SensorSettle())
	return s, nil
}

// New configures trig as an output driven low and echo as a pulled-down input
// without edge detection.
func New(trig gpio.PinOut, echo gpio.PinIn, opts Options) (*HCSR04, error) {
	if opts.TriggerPulse <= 0 {
		opts.TriggerPulse = DefaultOpts.TriggerPulse
	}
	if opts.EchoTimeout <= 0 {
		opts.EchoTimeout = DefaultOpts.EchoTimeout
	}

	if err := trig.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("sensor: trigger pin %s as output: %w", trig.Name(), err)
	}
	if err := echo.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("sensor: echo pin %s as input: %w", echo.Name(), err)
	}

	return &HCSR04{
		trig:    trig,
		echo:    echo,
		pulse:   opts.TriggerPulse,
		timeout: opts.EchoTimeout,
		now:     time.Now,
	}, nil
}

// Measure returns one distance reading, or distance.Absent() when the echo
// timed out, the result was implausible or a pin failed. It never blocks
// longer than the echo timeout plus the trigger pulse.
func (s *HCSR04) Measure() distance.Reading {
	cm, err := s.MeasureErr()
	switch {
	case err == nil:
		s.stats.Valid++
		return distance.Of(cm)
	case errors.Is(err, ErrEchoTimeout):
		s.stats.Timeouts++
	case errors.Is(err, ErrOutOfRange):
		s.stats.OutOfRange++
	default:
		s.stats.Faults++
		log.Printf("sensor: measurement error: %v", err)
	}
	return distance.Absent()
}

// MeasureErr performs one trigger/echo cycle and reports why a measurement
// failed. The returned distance is unrounded.
func (s *HCSR04) MeasureErr() (float64, error) {
	if err := s.trig.Out(gpio.High); err != nil {
		return 0, fmt.Errorf("trigger high: %w", err)
	}
	time.Sleep(s.pulse)
	if err := s.trig.Out(gpio.Low); err != nil {
		return 0, fmt.Errorf("trigger low: %w", err)
	}

	// Both spins share one deadline measured from the end of the pulse.
	start := s.now()
	deadline := start.Add(s.timeout)

	for s.echo.Read() == gpio.Low {
		start = s.now()
		if start.After(deadline) {
			return 0, fmt.Errorf("%w: no rising edge within %s", ErrEchoTimeout, s.timeout)
		}
	}

	end := s.now()
	for s.echo.Read() == gpio.High {
		end = s.now()
		if end.After(deadline) {
			return 0, fmt.Errorf("%w: no falling edge within %s", ErrEchoTimeout, s.timeout)
		}
	}

	cm := end.Sub(start).Seconds() * SpeedOfSoundHalfCM
	if !distance.InRange(cm) {
		return cm, fmt.Errorf("%w: %.1f cm", ErrOutOfRange, cm)
	}
	return cm, nil
}

// Stats returns the outcome counters.
func (s *HCSR04) Stats() Stats {
	return s.stats
}

// Close drives the trigger low and releases both pins.
func (s *HCSR04) Close() error {
	var errs []error
	if err := s.trig.Out(gpio.Low); err != nil {
		errs = append(errs, fmt.Errorf("trigger low: %w", err))
	}
	if err := s.trig.Halt(); err != nil {
		errs = append(errs, fmt.Errorf("halt trigger: %w", err))
	}
	if err := s.echo.Halt(); err != nil {
		errs = append(errs, fmt.Errorf("halt echo: %w", err))
	}
	return errors.Join(errs...)
}
