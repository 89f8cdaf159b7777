// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"fmt"
	"image"
	"log"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

const (
	width  = 128
	height = 64
)

// Status is what the panel shows.
type Status struct {
	Now         time.Time
	Distance    float64
	HaveReading bool
	Stabilizing bool
	LastCapture time.Time // zero: none yet
	Captures    int
	Alert       bool
}

// Panel is an SSD1306 OLED showing the monitor status. It never draws on
// saved frames.
type Panel struct {
	bus i2c.BusCloser
	dev *ssd1306.Dev
}

// Open initializes the periph host, opens the I2C bus and the display at
// addr.
func Open(busName string, addr uint16) (*Panel, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %q: %w", busName, err)
	}

	dev, err := ssd1306.NewI2C(addressedBus{Bus: bus, addr: addr}, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("failed to initialize display at 0x%02X: %w", addr, err)
	}
	log.Printf("display: initialized at 0x%02X", addr)

	p := &Panel{bus: bus, dev: dev}
	if err := p.draw(RenderSplash()); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}
	return p, nil
}

// addressedBus pins every transaction to addr. The ssd1306 driver always
// talks to 0x3C; boards strapped to 0x3D need the redirect.
type addressedBus struct {
	i2c.Bus
	addr uint16
}

func (b addressedBus) Tx(_ uint16, w, r []byte) error {
	return b.Bus.Tx(b.addr, w, r)
}

// Show renders s and pushes it to the display.
func (p *Panel) Show(s Status) error {
	return p.draw(Render(s))
}

func (p *Panel) draw(img *image1bit.VerticalLSB) error {
	return p.dev.Draw(p.dev.Bounds(), img, image.Point{})
}

// Close blanks the display and releases the bus.
func (p *Panel) Close() error {
	if err := p.draw(image1bit.NewVerticalLSB(image.Rect(0, 0, width, height))); err != nil {
		log.Printf("display: error blanking: %v", err)
	}
	if err := p.dev.Halt(); err != nil {
		log.Printf("display: halt error: %v", err)
	}
	return p.bus.Close()
}

func newCanvas() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, width, height))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func line(d *font.Drawer, y int, text string) {
	d.Dot = fixed.P(0, y)
	d.DrawString(text)
}

// RenderSplash returns the startup screen.
func RenderSplash() *image1bit.VerticalLSB {
	img, drawer := newCanvas()

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawString("Ultrasonic")
	drawer.Dot = fixed.P(10, 43)
	drawer.DrawString("Security")
	drawer.Dot = fixed.P(10, 56)
	drawer.DrawString("Starting...")

	return img
}

// Render lays out s on a 128x64 one-bit canvas.
func Render(s Status) *image1bit.VerticalLSB {
	img, drawer := newCanvas()

	line(drawer, 11, s.Now.Format("2006-01-02 15:04"))

	switch {
	case s.Stabilizing:
		line(drawer, 26, "Initializing...")
	case s.HaveReading:
		line(drawer, 26, fmt.Sprintf("Dist: %5.1f cm", s.Distance))
	default:
		line(drawer, 26, "Dist:  --- cm")
	}

	last := "None"
	if !s.LastCapture.IsZero() {
		last = s.LastCapture.Format("15:04:05")
	}
	line(drawer, 41, "Last: "+last)
	line(drawer, 56, fmt.Sprintf("Saved: %d", s.Captures))

	if s.Alert {
		// Inverted banner on the right edge while a capture is fresh.
		for y := 0; y < 14; y++ {
			for x := width - 14; x < width; x++ {
				img.SetBit(x, y, !img.BitAt(x, y))
			}
		}
	}
	return img
}
