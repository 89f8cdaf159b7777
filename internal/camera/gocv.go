// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package camera implements capture.Camera on top of OpenCV's V4L2 video
// capture. On a Raspberry Pi the CSI camera is reachable this way through
// the libcamera V4L2 compatibility layer.
package camera

import (
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/relabs-tech/ultrasonic_capture/internal/config"
)

// ErrNotStarted is returned by CaptureFrame before Start or after Stop.
var ErrNotStarted = errors.New("camera not started")

// Settings describes the capture device.
type Settings struct {
	Device int
	Width  int
	Height int
	Warmup time.Duration
}

// SettingsFrom extracts camera settings from the application config.
func SettingsFrom(cfg *config.Config) Settings {
	return Settings{
		Device: cfg.CameraDevice,
		Width:  cfg.CameraWidth,
		Height: cfg.CameraHeight,
		Warmup: cfg.CameraWarmup(),
	}
}

// Device is a V4L2 camera read through gocv.
type Device struct {
	settings Settings

	mu  sync.Mutex
	vc  *gocv.VideoCapture
	mat gocv.Mat
}

// New returns an unopened device.
func New(s Settings) *Device {
	return &Device{settings: s}
}

// Start opens the device, requests the configured frame size and waits for
// the sensor's auto exposure to settle.
func (d *Device) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.vc != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(d.settings.Device)
	if err != nil {
		return fmt.Errorf("open video device %d: %w", d.settings.Device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("video device %d did not open", d.settings.Device)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(d.settings.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(d.settings.Height))

	d.vc = vc
	d.mat = gocv.NewMat()

	log.Printf("camera: device %d opened at %.0fx%.0f", d.settings.Device,
		vc.Get(gocv.VideoCaptureFrameWidth), vc.Get(gocv.VideoCaptureFrameHeight))

	time.Sleep(d.settings.Warmup)
	return nil
}

// CaptureFrame reads the next frame. It returns (nil, nil) when the device
// delivered an empty buffer.
func (d *Device) CaptureFrame() (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.vc == nil {
		return nil, ErrNotStarted
	}
	if ok := d.vc.Read(&d.mat); !ok {
		return nil, fmt.Errorf("read from video device %d failed", d.settings.Device)
	}
	if d.mat.Empty() {
		return nil, nil
	}

	img, err := d.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	return img, nil
}

// Stop releases the device. It is safe to call more than once.
func (d *Device) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.vc == nil {
		return nil
	}
	err := d.vc.Close()
	d.mat.Close()
	d.vc = nil
	return err
}
