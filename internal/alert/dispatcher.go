// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

package alert

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/tomtom215/ecoeye/internal/geolocate"
	"github.com/tomtom215/ecoeye/internal/logging"
	"github.com/tomtom215/ecoeye/internal/metrics"
)

// LocationResolver yields the advisory site coordinate for an alert.
type LocationResolver interface {
	Resolve(ctx context.Context) geolocate.Location
}

// Request describes one alert to dispatch. The dispatcher is invoked
// only after the rate limiter has admitted the alert.
type Request struct {
	// Submitter is the identity that submitted the media, used as the
	// preferred recipient when it is syntactically an address.
	Submitter string

	// MediaPath points at the annotated output to attach. Missing
	// files downgrade to a text-only alert.
	MediaPath string

	// FrameJPEG, when set, is attached directly instead of reading
	// MediaPath. Live frames use this to avoid a temp file round trip.
	FrameJPEG []byte

	// Source names where the detection came from ("upload", "live").
	Source string

	PoacherDetected   bool
	WeaponDetected    bool
	PoacherConfidence float64
	WeaponConfidence  float64
}

// Dispatcher composes and delivers alert notifications. All delivery
// failures collapse to a false return: a lost alert is tolerable, a
// crashed pipeline is not.
type Dispatcher struct {
	transport        Transport
	resolver         LocationResolver
	defaultRecipient string
}

// NewDispatcher creates a Dispatcher. transport may be nil when no
// notification channel is configured; Dispatch then always returns false.
func NewDispatcher(transport Transport, resolver LocationResolver, defaultRecipient string) *Dispatcher {
	return &Dispatcher{
		transport:        transport,
		resolver:         resolver,
		defaultRecipient: defaultRecipient,
	}
}

// Dispatch resolves the recipient, composes the message, and hands it
// to the transport. Returns true only when the transport accepted the
// message.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) bool {
	if d.transport == nil {
		logging.Warn().Msg("alert transport not configured, skipping dispatch")
		return false
	}

	recipient := d.resolveRecipient(req.Submitter)
	if recipient == "" {
		logging.Warn().Str("source", req.Source).Msg("no recipient for alert")
		return false
	}

	msg := d.compose(ctx, req)

	if err := d.transport.Send(ctx, recipient, msg); err != nil {
		logging.Error().Err(err).Str("recipient", recipient).Msg("alert dispatch failed")
		metrics.AlertsFailed.Inc()
		return false
	}

	logging.Info().
		Str("recipient", recipient).
		Str("source", req.Source).
		Bool("poacher", req.PoacherDetected).
		Bool("weapon", req.WeaponDetected).
		Msg("alert dispatched")
	metrics.AlertsDispatched.Inc()
	return true
}

// resolveRecipient prefers the submitter when it looks like an address,
// falling back to the configured default. The validation rule is the
// literal substring check the product runs on.
func (d *Dispatcher) resolveRecipient(submitter string) string {
	if strings.Contains(submitter, "@") {
		return submitter
	}
	return d.defaultRecipient
}

// compose builds the subject, body, and attachment for the alert.
func (d *Dispatcher) compose(ctx context.Context, req Request) *Message {
	var categories []string
	if req.PoacherDetected {
		categories = append(categories, fmt.Sprintf("poacher (%.0f%% confidence)", req.PoacherConfidence*100))
	}
	if req.WeaponDetected {
		categories = append(categories, fmt.Sprintf("weapon (%.0f%% confidence)", req.WeaponConfidence*100))
	}

	var b strings.Builder
	b.WriteString("A potential threat has been detected by the EcoEye system.\n\n")
	b.WriteString("Detected: " + strings.Join(categories, ", ") + "\n")
	b.WriteString("Source: " + req.Source + "\n")

	if d.resolver != nil {
		loc := d.resolver.Resolve(ctx)
		b.WriteString("\nIncident location: " + loc.MapsLink() + "\n")
		b.WriteString("(Click to view on Google Maps)\n")
	}

	msg := &Message{
		Subject: "EcoEye Alert: Poacher/Weapon Detected",
		Body:    b.String(),
	}

	if len(req.FrameJPEG) > 0 {
		msg.Attachment = &Attachment{
			Filename: "live_frame.jpg",
			MIMEType: "image/jpeg",
			Data:     req.FrameJPEG,
		}
		return msg
	}

	// Attach the annotated frame when it is still on disk; a missing
	// file must not block the textual alert.
	if req.MediaPath != "" {
		if data, err := os.ReadFile(req.MediaPath); err == nil {
			name := filepath.Base(req.MediaPath)
			msg.Attachment = &Attachment{
				Filename: name,
				MIMEType: mime.TypeByExtension(filepath.Ext(name)),
				Data:     data,
			}
		} else {
			logging.Warn().Str("path", req.MediaPath).Msg("annotated media missing, sending text-only alert")
		}
	}

	return msg
}
