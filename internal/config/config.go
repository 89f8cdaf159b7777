// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration values.
// It is loaded once at startup and passed by value or pointer to the
// components; nothing mutates it afterwards.
type Config struct {
	// Sensor hardware
	TrigPin        string
	EchoPin        string
	SensorSettleMS int
	TriggerPulseUS int
	EchoTimeoutMS  int

	// Detection
	DistanceThresholdCM  float64
	CooldownMS           int
	WindowSize           int
	StabilizationSamples int
	PollIntervalMS       int

	// Camera
	CameraDevice        int
	CameraWidth         int
	CameraHeight        int
	CameraWarmupMS      int
	CameraRotation      int // degrees clockwise: 0, 90, 180, 270
	CameraInitAttempts  int
	CameraInitBackoffMS int
	CaptureRetryDelayMS int

	// Archive
	ArchiveRoot string
	FilePrefix  string
	JPEGQuality int

	// Display (optional SSD1306 status panel, disabled when addr is 0)
	DisplayI2CBus  string
	DisplayI2CAddr uint16
}

// Default returns the configuration used when a key is absent from the file.
func Default() *Config {
	return &Config{
		TrigPin:        "GPIO23",
		EchoPin:        "GPIO24",
		SensorSettleMS: 1000,
		TriggerPulseUS: 10,
		EchoTimeoutMS:  40,

		DistanceThresholdCM:  25,
		CooldownMS:           7000,
		WindowSize:           5,
		StabilizationSamples: 10,
		PollIntervalMS:       100,

		CameraDevice:        0,
		CameraWidth:         640,
		CameraHeight:        480,
		CameraWarmupMS:      2000,
		CameraRotation:      180,
		CameraInitAttempts:  3,
		CameraInitBackoffMS: 1000,
		CaptureRetryDelayMS: 1000,

		ArchiveRoot: "~/Ultrasonic_Motions",
		FilePrefix:  "ultrasonic",
		JPEGQuality: 95,
	}
}

// Load reads the configuration file and returns a Config struct.
// Keys missing from the file keep their Default() value.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads configPath when it exists and falls back to Default()
// when it does not. Any other error (bad syntax, bad value) is returned.
func LoadOrDefault(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.finish(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Load(configPath)
}

// finish expands paths and validates the result.
func (c *Config) finish() error {
	root, err := expandHome(c.ArchiveRoot)
	if err != nil {
		return err
	}
	c.ArchiveRoot = root
	return c.validate()
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand ARCHIVE_ROOT %q: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Sensor hardware
	case "TRIG_PIN":
		c.TrigPin = value
	case "ECHO_PIN":
		c.EchoPin = value
	case "SENSOR_SETTLE_MS":
		return parseNonNegative(key, value, &c.SensorSettleMS)
	case "TRIGGER_PULSE_US":
		return parsePositive(key, value, &c.TriggerPulseUS)
	case "ECHO_TIMEOUT_MS":
		return parsePositive(key, value, &c.EchoTimeoutMS)

	// Detection
	case "DISTANCE_THRESHOLD_CM":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		if v <= 0 {
			return fmt.Errorf("%s must be > 0, got %v", key, v)
		}
		c.DistanceThresholdCM = v
	case "COOLDOWN_MS":
		return parseNonNegative(key, value, &c.CooldownMS)
	case "WINDOW_SIZE":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		if val < 2 {
			return fmt.Errorf("%s must be at least 2 (newest vs oldest), got %d", key, val)
		}
		c.WindowSize = val
	case "STABILIZATION_SAMPLES":
		return parseNonNegative(key, value, &c.StabilizationSamples)
	case "POLL_INTERVAL_MS":
		return parsePositive(key, value, &c.PollIntervalMS)

	// Camera
	case "CAMERA_DEVICE":
		return parseNonNegative(key, value, &c.CameraDevice)
	case "CAMERA_WIDTH":
		return parsePositive(key, value, &c.CameraWidth)
	case "CAMERA_HEIGHT":
		return parsePositive(key, value, &c.CameraHeight)
	case "CAMERA_WARMUP_MS":
		return parseNonNegative(key, value, &c.CameraWarmupMS)
	case "CAMERA_ROTATION":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		switch val {
		case 0, 90, 180, 270:
		default:
			return fmt.Errorf("%s must be one of 0, 90, 180, 270, got %d", key, val)
		}
		c.CameraRotation = val
	case "CAMERA_INIT_ATTEMPTS":
		return parsePositive(key, value, &c.CameraInitAttempts)
	case "CAMERA_INIT_BACKOFF_MS":
		return parseNonNegative(key, value, &c.CameraInitBackoffMS)
	case "CAPTURE_RETRY_DELAY_MS":
		return parseNonNegative(key, value, &c.CaptureRetryDelayMS)

	// Archive
	case "ARCHIVE_ROOT":
		c.ArchiveRoot = value
	case "FILE_PREFIX":
		c.FilePrefix = value
	case "JPEG_QUALITY":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		if val < 1 || val > 100 {
			return fmt.Errorf("%s must be 1-100, got %d", key, val)
		}
		c.JPEGQuality = val

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_I2C_ADDR %q: %w", value, err)
		}
		c.DisplayI2CAddr = uint16(addr)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

func parsePositive(key, value string, dst *int) error {
	val, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if val <= 0 {
		return fmt.Errorf("%s must be > 0, got %d", key, val)
	}
	*dst = val
	return nil
}

func parseNonNegative(key, value string, dst *int) error {
	val, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if val < 0 {
		return fmt.Errorf("%s must be >= 0, got %d", key, val)
	}
	*dst = val
	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.TrigPin == "" {
		return fmt.Errorf("TRIG_PIN is required")
	}
	if c.EchoPin == "" {
		return fmt.Errorf("ECHO_PIN is required")
	}
	if c.TrigPin == c.EchoPin {
		return fmt.Errorf("TRIG_PIN and ECHO_PIN must differ, both are %q", c.TrigPin)
	}
	if c.ArchiveRoot == "" {
		return fmt.Errorf("ARCHIVE_ROOT is required")
	}
	if c.FilePrefix == "" {
		return fmt.Errorf("FILE_PREFIX is required")
	}
	if strings.ContainsRune(c.FilePrefix, filepath.Separator) {
		return fmt.Errorf("FILE_PREFIX must not contain a path separator, got %q", c.FilePrefix)
	}
	return nil
}

// Cooldown returns the minimum time between two triggers.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownMS) * time.Millisecond
}

// PollInterval returns the delay between two sensor polls.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// EchoTimeout returns the deadline for one echo measurement.
func (c *Config) EchoTimeout() time.Duration {
	return time.Duration(c.EchoTimeoutMS) * time.Millisecond
}

// TriggerPulse returns the width of the trigger pulse.
func (c *Config) TriggerPulse() time.Duration {
	return time.Duration(c.TriggerPulseUS) * time.Microsecond
}

// SensorSettle returns the delay after the sensor pins are configured.
func (c *Config) SensorSettle() time.Duration {
	return time.Duration(c.SensorSettleMS) * time.Millisecond
}

// CameraWarmup returns the wait after the camera starts streaming.
func (c *Config) CameraWarmup() time.Duration {
	return time.Duration(c.CameraWarmupMS) * time.Millisecond
}

// CameraInitBackoff returns the pause between camera start attempts.
func (c *Config) CameraInitBackoff() time.Duration {
	return time.Duration(c.CameraInitBackoffMS) * time.Millisecond
}

// CaptureRetryDelay returns the pause after a frame acquisition fault.
func (c *Config) CaptureRetryDelay() time.Duration {
	return time.Duration(c.CaptureRetryDelayMS) * time.Millisecond
}
