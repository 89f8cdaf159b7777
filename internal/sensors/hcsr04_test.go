// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

const tick = 10 * time.Microsecond

// stepClock advances by a fixed step on every call to Now.
type stepClock struct {
	origin  time.Time
	elapsed time.Duration
	step    time.Duration
}

func (c *stepClock) Now() time.Time {
	c.elapsed += c.step
	return c.origin.Add(c.elapsed)
}

// scriptedEcho is high while the clock is in [rise, fall). A negative fall
// keeps the line high forever; a negative rise keeps it low forever.
type scriptedEcho struct {
	*gpiotest.Pin
	clock *stepClock
	rise  time.Duration
	fall  time.Duration
}

func (e *scriptedEcho) Read() gpio.Level {
	t := e.clock.elapsed
	if e.rise < 0 || t < e.rise {
		return gpio.Low
	}
	if e.fall >= 0 && t >= e.fall {
		return gpio.Low
	}
	return gpio.High
}

type failingPin struct {
	*gpiotest.Pin
}

func (p *failingPin) Out(gpio.Level) error {
	return errors.New("gpio write failed")
}

func newTestSensor(t *testing.T, rise, fall time.Duration) (*HCSR04, *gpiotest.Pin) {
	t.Helper()
	clock := &stepClock{origin: time.Now(), step: tick}
	trig := &gpiotest.Pin{N: "GPIO23", Num: 23}
	echo := &scriptedEcho{
		Pin:   &gpiotest.Pin{N: "GPIO24", Num: 24},
		clock: clock,
		rise:  rise,
		fall:  fall,
	}
	s, err := New(trig, echo, DefaultOpts)
	require.NoError(t, err)
	s.now = clock.Now
	return s, trig
}

// echoFor returns the echo pulse width for a distance in cm.
func echoFor(cm float64) time.Duration {
	return time.Duration(cm / SpeedOfSoundHalfCM * float64(time.Second))
}

func TestMeasureComputesDistance(t *testing.T) {
	for _, cm := range []float64{20, 50, 150, 350} {
		rise := time.Millisecond
		s, trig := newTestSensor(t, rise, rise+echoFor(cm))

		r := s.Measure()
		require.True(t, r.Valid, "distance %v", cm)
		assert.InDelta(t, cm, r.Centimeters, 0.4)
		assert.Equal(t, gpio.Low, trig.Read(), "trigger must be left low")
		assert.Equal(t, uint64(1), s.Stats().Valid)
	}
}

func TestMeasureRoundsToOneDecimal(t *testing.T) {
	s, _ := newTestSensor(t, time.Millisecond, time.Millisecond+echoFor(42.37))

	r := s.Measure()
	require.True(t, r.Valid)
	assert.InDelta(t, r.Centimeters, float64(int(r.Centimeters*10+0.5))/10, 1e-9)
}

func TestMeasureTimesOutWithoutRisingEdge(t *testing.T) {
	s, _ := newTestSensor(t, -1, -1)

	_, err := s.MeasureErr()
	assert.ErrorIs(t, err, ErrEchoTimeout)

	r := s.Measure()
	assert.False(t, r.Valid)
	assert.Equal(t, uint64(1), s.Stats().Timeouts)
}

func TestMeasureTimesOutWhenEchoStuckHigh(t *testing.T) {
	s, _ := newTestSensor(t, 0, -1)

	_, err := s.MeasureErr()
	assert.ErrorIs(t, err, ErrEchoTimeout)
}

func TestMeasureDeadlineIsBounded(t *testing.T) {
	clock := &stepClock{origin: time.Now(), step: tick}
	echo := &scriptedEcho{Pin: &gpiotest.Pin{N: "GPIO24"}, clock: clock, rise: -1, fall: -1}
	s, err := New(&gpiotest.Pin{N: "GPIO23"}, echo, DefaultOpts)
	require.NoError(t, err)
	s.now = clock.Now

	s.Measure()
	// The spin gives up on the first clock reading past 40 ms.
	assert.LessOrEqual(t, clock.elapsed, DefaultOpts.EchoTimeout+2*tick)
	assert.Greater(t, clock.elapsed, DefaultOpts.EchoTimeout)
}

func TestMeasureRejectsImplausibleDistances(t *testing.T) {
	tests := []struct {
		name  string
		width time.Duration
	}{
		{name: "too close", width: 50 * time.Microsecond},
		{name: "too far", width: 30 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSensor(t, time.Millisecond, time.Millisecond+tt.width)

			_, err := s.MeasureErr()
			assert.ErrorIs(t, err, ErrOutOfRange)

			s2, _ := newTestSensor(t, time.Millisecond, time.Millisecond+tt.width)
			assert.False(t, s2.Measure().Valid)
			assert.Equal(t, uint64(1), s2.Stats().OutOfRange)
		})
	}
}

func TestMeasureConvertsPinFaultToAbsent(t *testing.T) {
	clock := &stepClock{origin: time.Now(), step: tick}
	echo := &scriptedEcho{Pin: &gpiotest.Pin{N: "GPIO24"}, clock: clock, rise: 0, fall: time.Millisecond}
	s := &HCSR04{
		trig:    &failingPin{Pin: &gpiotest.Pin{N: "GPIO23"}},
		echo:    echo,
		pulse:   DefaultOpts.TriggerPulse,
		timeout: DefaultOpts.EchoTimeout,
		now:     clock.Now,
	}

	r := s.Measure()
	assert.False(t, r.Valid)
	assert.Equal(t, uint64(1), s.Stats().Faults)
}

func TestNewFailsWhenTriggerCannotBeDriven(t *testing.T) {
	_, err := New(&failingPin{Pin: &gpiotest.Pin{N: "GPIO23"}}, &gpiotest.Pin{N: "GPIO24"}, DefaultOpts)
	assert.Error(t, err)
}

func TestCloseLeavesTriggerLow(t *testing.T) {
	s, trig := newTestSensor(t, time.Millisecond, 2*time.Millisecond)
	require.NoError(t, trig.Out(gpio.High))

	require.NoError(t, s.Close())
	assert.Equal(t, gpio.Low, trig.Read())
}
