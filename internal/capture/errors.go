// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package capture

import "errors"

var (
	// ErrAcquisition means the camera failed to deliver a frame.
	ErrAcquisition = errors.New("frame acquisition failed")

	// ErrEmptyFrame means the camera, or the orientation step, produced
	// no pixels.
	ErrEmptyFrame = errors.New("empty frame")

	// ErrFilesystem means the date folder or the image file could not be
	// written.
	ErrFilesystem = errors.New("filesystem error")
)

// IsFrameFault reports whether err came from acquiring or correcting the
// frame, as opposed to storing it.
func IsFrameFault(err error) bool {
	return errors.Is(err, ErrAcquisition) || errors.Is(err, ErrEmptyFrame)
}
