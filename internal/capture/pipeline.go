// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package capture

import (
	"fmt"
	"image"
	"log"
	"time"

	"github.com/relabs-tech/ultrasonic_capture/internal/config"
	"github.com/relabs-tech/ultrasonic_capture/internal/orientation"
)

// Artifact is one saved capture. It only lives for the duration of a
// CaptureAndSave call.
type Artifact struct {
	Time  time.Time
	Path  string
	Frame image.Image
}

// Pipeline turns a motion trigger into a JPEG in the archive.
type Pipeline struct {
	cam       Camera
	corrector *orientation.Corrector
	archive   Archive
	quality   int
}

// NewPipeline wires a camera to the archive described by cfg.
func NewPipeline(cam Camera, cfg *config.Config) (*Pipeline, error) {
	rot, err := orientation.Parse(cfg.CameraRotation)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	return &Pipeline{
		cam:       cam,
		corrector: orientation.NewCorrector(rot),
		archive:   Archive{Root: cfg.ArchiveRoot, Prefix: cfg.FilePrefix},
		quality:   cfg.JPEGQuality,
	}, nil
}

// Archive returns the layout used for saved captures.
func (p *Pipeline) Archive() Archive {
	return p.archive
}

// CaptureAndSave grabs one frame, corrects its orientation and writes it to
// the archive path derived from now. It returns the written path.
//
// Errors wrap ErrAcquisition, ErrEmptyFrame or ErrFilesystem. Nothing is
// retried here; the caller decides whether to pause.
func (p *Pipeline) CaptureAndSave(now time.Time) (string, error) {
	frame, err := p.cam.CaptureFrame()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAcquisition, err)
	}
	if frame == nil || frame.Bounds().Empty() {
		return "", fmt.Errorf("%w: camera returned no pixels", ErrEmptyFrame)
	}

	rotated := p.corrector.Apply(frame)
	if rotated == nil {
		return "", fmt.Errorf("%w: rotation %d produced no pixels", ErrEmptyFrame, p.corrector.Rotation())
	}

	art := Artifact{Time: now, Path: p.archive.PathFor(now), Frame: rotated}
	if err := p.commit(art); err != nil {
		return "", err
	}
	return art.Path, nil
}

func (p *Pipeline) commit(art Artifact) error {
	if _, err := p.archive.EnsureDateDir(art.Time); err != nil {
		return err
	}
	if err := writeJPEG(art.Path, art.Frame, p.quality); err != nil {
		return err
	}
	b := art.Frame.Bounds()
	log.Printf("capture: saved %dx%d frame to %s", b.Dx(), b.Dy(), art.Path)
	return nil
}
