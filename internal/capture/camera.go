// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package capture

import "image"

// Camera is the frame source used by the pipeline.
// CaptureFrame may return a nil image without an error when the driver had
// nothing to deliver.
type Camera interface {
	Start() error
	Stop() error
	CaptureFrame() (image.Image, error)
}
