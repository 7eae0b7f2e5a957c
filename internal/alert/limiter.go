// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

// Package alert decides when a detection qualifies for a notification
// and delivers it. Delivery is best-effort: failures are reported to
// the caller as a boolean outcome, never as a pipeline error.
package alert

import (
	"sync"
	"time"
)

// DefaultCooldown is the minimum interval between two dispatched alerts.
const DefaultCooldown = 60 * time.Second

// Limiter is the process-wide alert cooldown. Every batch job and every
// live frame shares one Limiter, so admission must be atomic: the check
// against the window and the update of the last-alert time happen under
// one lock, guaranteeing at most one admission per cooldown window no
// matter how many frames evaluate concurrently.
//
// The Suppressed -> Cooled transition is a time-derived predicate, not
// a timer: a Limiter is eligible again as soon as the window has
// elapsed at the next Admit call.
type Limiter struct {
	mu     sync.Mutex
	window time.Duration
	last   time.Time
}

// NewLimiter creates a Limiter with the given cooldown window.
// A non-positive window falls back to DefaultCooldown.
func NewLimiter(window time.Duration) *Limiter {
	if window <= 0 {
		window = DefaultCooldown
	}
	return &Limiter{window: window}
}

// Admit reports whether an alert may fire at now, and if so records now
// as the last alert time in the same critical section. The first call
// always admits.
func (l *Limiter) Admit(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.last.IsZero() && now.Sub(l.last) <= l.window {
		return false
	}
	l.last = now
	return true
}

// Window returns the configured cooldown window.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// LastAlert returns the time of the last admitted alert, zero if none.
func (l *Limiter) LastAlert() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}
