// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

// Package config loads and validates the EcoEye configuration.
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, optional YAML config file,
// built-in defaults. All settings are read once at process start; the
// resulting Config is treated as immutable.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the EcoEye server.
type Config struct {
	Server Server `koanf:"server"`
	Log    Log    `koanf:"log"`
	Model  Model  `koanf:"model"`
	Alert  Alert  `koanf:"alert"`
	SMTP   SMTP   `koanf:"smtp"`
	Geo    Geo    `koanf:"geo"`
	Store  Store  `koanf:"store"`
}

// Server configures the HTTP listener and media directories.
type Server struct {
	Addr            string        `koanf:"addr" validate:"required"`
	UploadDir       string        `koanf:"upload_dir" validate:"required"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// MaxUploadBytes bounds the accepted multipart body size.
	MaxUploadBytes int64 `koanf:"max_upload_bytes" validate:"gt=0"`
}

// Log configures the zerolog global logger.
type Log struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// Model configures the object-detection engine.
type Model struct {
	// Path is the ONNX model file loaded by the DNN backend.
	Path string `koanf:"path"`

	// InputSize is the square network input resolution.
	InputSize int `koanf:"input_size" validate:"gt=0"`

	// ImageConfidence and VideoConfidence are the floor confidences
	// passed to the engine per media kind. The classifier applies the
	// per-class thresholds on top.
	ImageConfidence float64 `koanf:"image_confidence" validate:"gte=0,lte=1"`
	VideoConfidence float64 `koanf:"video_confidence" validate:"gte=0,lte=1"`
}

// Alert configures alert admission and per-class thresholds.
type Alert struct {
	// Cooldown is the minimum interval between two dispatched alerts.
	Cooldown time.Duration `koanf:"cooldown" validate:"gt=0"`

	// Thresholds overrides the per-label minimum confidence. Keys are
	// semantic labels (poacher, ranger, weapon, suspicious).
	Thresholds map[string]float64 `koanf:"thresholds" validate:"dive,gte=0,lte=1"`
}

// SMTP configures the alert email transport.
type SMTP struct {
	Host             string        `koanf:"host"`
	Port             int           `koanf:"port" validate:"gte=0,lte=65535"`
	Username         string        `koanf:"username"`
	Password         string        `koanf:"password"`
	From             string        `koanf:"from"`
	DefaultRecipient string        `koanf:"default_recipient"`
	StartTLS         bool          `koanf:"starttls"`
	Timeout          time.Duration `koanf:"timeout" validate:"gt=0"`
}

// Enabled reports whether the transport has credentials to send with.
func (s SMTP) Enabled() bool {
	return s.Host != "" && s.From != ""
}

// Geo configures the advisory geolocation lookup.
type Geo struct {
	// URL is the lookup endpoint. Empty disables remote lookup and
	// always yields the fallback coordinate.
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// FallbackLat/FallbackLon are returned on any lookup failure.
	FallbackLat float64 `koanf:"fallback_lat" validate:"gte=-90,lte=90"`
	FallbackLon float64 `koanf:"fallback_lon" validate:"gte=-180,lte=180"`
}

// Store configures the BadgerDB result store.
type Store struct {
	Path       string        `koanf:"path" validate:"required"`
	GCInterval time.Duration `koanf:"gc_interval" validate:"gt=0"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: Server{
			Addr:            ":8000",
			UploadDir:       "uploads",
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  512 << 20, // uploads may be full video clips
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
		Model: Model{
			Path:            "models/ecoeye.onnx",
			InputSize:       640,
			ImageConfidence: 0.05,
			VideoConfidence: 0.15,
		},
		Alert: Alert{
			Cooldown:   60 * time.Second,
			Thresholds: map[string]float64{},
		},
		SMTP: SMTP{
			Port:     587,
			StartTLS: true,
			Timeout:  30 * time.Second,
		},
		Geo: Geo{
			Timeout: 2 * time.Second,
			// Headquarters coordinate used when lookup fails.
			FallbackLat: -1.2921,
			FallbackLon: 36.8219,
		},
		Store: Store{
			Path:       "data/results",
			GCInterval: 5 * time.Minute,
		},
	}
}

// Validate checks structural constraints plus the cross-field rules
// the validator tags cannot express.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.SMTP.Enabled() && c.SMTP.Username != "" && c.SMTP.Password == "" {
		return fmt.Errorf("smtp.password is required when smtp.username is set")
	}

	return nil
}
