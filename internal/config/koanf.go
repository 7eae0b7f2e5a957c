// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/ecoeye/config.yaml",
	"/etc/ecoeye/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in values from defaultConfig()
//  2. Config file: optional YAML file (if present)
//  3. Environment variables: override any setting
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// SERVER_ADDR -> server.addr, SMTP_DEFAULT_RECIPIENT -> smtp.default_recipient
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// envTransformFunc maps environment variable names to koanf paths.
// Only known keys are mapped; anything else is skipped so random
// environment variables cannot pollute the config.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		"server_addr":            "server.addr",
		"upload_dir":             "server.upload_dir",
		"shutdown_timeout":       "server.shutdown_timeout",
		"max_upload_bytes":       "server.max_upload_bytes",
		"log_level":              "log.level",
		"log_format":             "log.format",
		"model_path":             "model.path",
		"model_input_size":       "model.input_size",
		"model_image_confidence": "model.image_confidence",
		"model_video_confidence": "model.video_confidence",
		"alert_cooldown":         "alert.cooldown",
		"smtp_host":              "smtp.host",
		"smtp_port":              "smtp.port",
		"smtp_username":          "smtp.username",
		"smtp_password":          "smtp.password",
		"smtp_from":              "smtp.from",
		"smtp_default_recipient": "smtp.default_recipient",
		"smtp_starttls":          "smtp.starttls",
		"smtp_timeout":           "smtp.timeout",
		"geo_url":                "geo.url",
		"geo_timeout":            "geo.timeout",
		"geo_fallback_lat":       "geo.fallback_lat",
		"geo_fallback_lon":       "geo.fallback_lon",
		"store_path":             "store.path",
		"store_gc_interval":      "store.gc_interval",

		// Names the deployed system used before the config rework.
		"email_sender":   "smtp.username",
		"email_password": "smtp.password",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}

// findConfigFile locates the config file, env override first.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
