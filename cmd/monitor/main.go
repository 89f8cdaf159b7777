// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/ultrasonic_capture/internal/app"
	"github.com/relabs-tech/ultrasonic_capture/internal/camera"
	"github.com/relabs-tech/ultrasonic_capture/internal/config"
)

func main() {
	configPath := flag.String("config", "./monitor_config.txt", "path to configuration file")
	flag.Parse()

	// Missing file means defaults; a malformed one is fatal.
	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// The OpenCV backend is chosen here so internal/app builds without cgo.
	cam := camera.New(camera.SettingsFrom(cfg))
	if err := app.RunMonitor(cfg, cam); err != nil {
		log.Fatalf("fatal: %v", err)
	}
	log.Println("stopped")
}
