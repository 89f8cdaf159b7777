// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/ultrasonic_capture/internal/capture"
	"github.com/relabs-tech/ultrasonic_capture/internal/config"
	"github.com/relabs-tech/ultrasonic_capture/internal/display"
	"github.com/relabs-tech/ultrasonic_capture/internal/sensors"
)

// RunMonitor sets up the sensor, starts cam, prepares the archive and the
// optional display, then runs the monitor loop until 'q' is pressed or the
// process is signalled. Only startup failures are returned; per-cycle faults
// are logged and a quit during startup is a clean exit.
func RunMonitor(cfg *config.Config, cam capture.Camera) error {
	log.Println("starting ultrasonic motion capture")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	restore := watchQuitKey(os.Stdin, cancel)
	defer restore()

	// --- Distance sensor ---
	sensor, err := sensors.Open(cfg)
	if err != nil {
		return fmt.Errorf("sensor setup: %w", err)
	}
	defer func() {
		if err := sensor.Close(); err != nil {
			log.Printf("sensor: release error: %v", err)
		}
		st := sensor.Stats()
		log.Printf("sensor: %d valid, %d timeouts, %d out of range, %d faults",
			st.Valid, st.Timeouts, st.OutOfRange, st.Faults)
	}()

	// --- Camera ---
	started, err := startCameraUnlessQuit(ctx, cam, cfg.CameraInitAttempts, cfg.CameraInitBackoff())
	if !started {
		return err
	}
	defer func() {
		if err := cam.Stop(); err != nil {
			log.Printf("camera: stop error: %v", err)
		}
	}()

	// --- Archive ---
	if err := capture.EnsureArchiveRoot(cfg.ArchiveRoot); err != nil {
		return fmt.Errorf("archive setup: %w", err)
	}
	pipeline, err := capture.NewPipeline(cam, cfg)
	if err != nil {
		return err
	}
	log.Printf("capture: saving to %s", cfg.ArchiveRoot)

	// --- Optional status panel ---
	var panel StatusPanel
	if cfg.DisplayI2CAddr != 0 {
		p, err := display.Open(cfg.DisplayI2CBus, cfg.DisplayI2CAddr)
		if err != nil {
			log.Printf("display: disabled: %v", err)
		} else {
			panel = p
			defer func() {
				if err := p.Close(); err != nil {
					log.Printf("display: close error: %v", err)
				}
			}()
		}
	}

	log.Println("press 'q' to quit")
	return NewMonitor(cfg, sensor, pipeline, panel).Run(ctx)
}

// startCameraUnlessQuit starts cam and reports whether it is running. A quit
// while retrying yields (false, nil) so the caller exits without an error.
func startCameraUnlessQuit(ctx context.Context, cam capture.Camera, attempts int, backoff time.Duration) (bool, error) {
	err := startCamera(ctx, cam, attempts, backoff)
	switch {
	case err == nil:
		return true, nil
	case ctx.Err() != nil:
		log.Printf("camera: quit during startup: %v", err)
		return false, nil
	default:
		return false, err
	}
}

// startCamera tries cam.Start up to attempts times with backoff between
// attempts.
func startCamera(ctx context.Context, cam capture.Camera, attempts int, backoff time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = cam.Start(); err == nil {
			log.Printf("camera: started (attempt %d/%d)", attempt, attempts)
			return nil
		}
		log.Printf("camera: initialization error (attempt %d/%d): %v", attempt, attempts, err)

		if attempt < attempts {
			if ctxErr := sleepCtx(ctx, backoff); ctxErr != nil {
				return fmt.Errorf("camera start interrupted: %w", ctxErr)
			}
		}
	}
	return fmt.Errorf("failed to initialize camera after %d attempts: %w", attempts, err)
}
