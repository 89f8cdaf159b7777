// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"
	"image"

	"github.com/disintegration/gift"
)

// Rotation is a clockwise rotation in degrees that compensates for how the
// camera is mounted.
type Rotation int

const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// Parse validates a configured rotation.
func Parse(deg int) (Rotation, error) {
	switch r := Rotation(deg); r {
	case Rotate0, Rotate90, Rotate180, Rotate270:
		return r, nil
	default:
		return 0, fmt.Errorf("unsupported rotation %d (want 0, 90, 180 or 270)", deg)
	}
}

// Corrector applies a fixed rotation to camera frames.
type Corrector struct {
	rotation Rotation
	g        *gift.GIFT
}

// NewCorrector builds the filter chain for r.
func NewCorrector(r Rotation) *Corrector {
	g := gift.New()
	switch r {
	case Rotate90:
		// gift rotates counter-clockwise.
		g.Add(gift.Rotate270())
	case Rotate180:
		g.Add(gift.Rotate180())
	case Rotate270:
		g.Add(gift.Rotate90())
	}
	return &Corrector{rotation: r, g: g}
}

// Rotation returns the configured rotation.
func (c *Corrector) Rotation() Rotation {
	return c.rotation
}

// Apply returns a new RGBA image holding src rotated. The source is not
// modified. A nil or empty source yields nil.
func (c *Corrector) Apply(src image.Image) *image.RGBA {
	if src == nil || src.Bounds().Empty() {
		return nil
	}
	dst := image.NewRGBA(c.g.Bounds(src.Bounds()))
	c.g.Draw(dst, src)
	return dst
}
