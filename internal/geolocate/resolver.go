// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

// Package geolocate resolves the camera site coordinate attached to
// alerts. The lookup is advisory: it is bounded by a short timeout and
// every failure mode degrades to a configured fallback coordinate, so a
// slow or broken endpoint can never stall alert dispatch.
package geolocate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/ecoeye/internal/logging"
)

// DefaultTimeout bounds one lookup round trip.
const DefaultTimeout = 2 * time.Second

// maxResponseBytes caps the lookup response body.
const maxResponseBytes = 64 * 1024

// Location is a WGS84 coordinate.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// MapsLink returns a Google Maps link for the location.
func (l Location) MapsLink() string {
	return fmt.Sprintf("https://www.google.com/maps?q=%f,%f", l.Lat, l.Lon)
}

// Config configures a Resolver.
type Config struct {
	// URL is the lookup endpoint returning {"lat": .., "lon": ..}.
	// Empty disables remote lookup; Resolve always returns Fallback.
	URL string

	// Timeout bounds one lookup. Zero means DefaultTimeout.
	Timeout time.Duration

	// Fallback is returned on any lookup failure.
	Fallback Location
}

// Resolver performs best-effort location lookups. Calls go through a
// circuit breaker so a flapping endpoint stops consuming the timeout
// budget on every alert once it has failed repeatedly.
type Resolver struct {
	cfg     Config
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[Location]
}

// New creates a Resolver.
func New(cfg Config) *Resolver {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	breaker := gobreaker.NewCircuitBreaker[Location](gobreaker.Settings{
		Name:    "geolocate",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("geolocation breaker state change")
		},
	})

	return &Resolver{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
	}
}

// Resolve returns the site coordinate. It never returns an error: on
// timeout, transport failure, malformed response, or an open breaker it
// returns the fallback coordinate.
func (r *Resolver) Resolve(ctx context.Context) Location {
	if r.cfg.URL == "" {
		return r.cfg.Fallback
	}

	loc, err := r.breaker.Execute(func() (Location, error) {
		return r.lookup(ctx)
	})
	if err != nil {
		logging.Debug().Err(err).Msg("geolocation lookup failed, using fallback")
		return r.cfg.Fallback
	}
	return loc
}

// lookup performs one bounded HTTP lookup.
func (r *Resolver) lookup(ctx context.Context) (Location, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.URL, nil)
	if err != nil {
		return Location{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("lookup: %w", err)
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("lookup: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Location{}, fmt.Errorf("read response: %w", err)
	}

	var loc Location
	if err := json.Unmarshal(body, &loc); err != nil {
		return Location{}, fmt.Errorf("decode response: %w", err)
	}
	if loc.Lat < -90 || loc.Lat > 90 || loc.Lon < -180 || loc.Lon > 180 {
		return Location{}, fmt.Errorf("coordinate out of range: %f,%f", loc.Lat, loc.Lon)
	}

	return loc, nil
}
