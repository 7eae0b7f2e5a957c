// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

package inference

import (
	"context"
	"sync"

	"gocv.io/x/gocv"

	"github.com/tomtom215/ecoeye/internal/models"
)

// Fake is an Engine returning scripted detections, for tests and for
// running the server without a model file.
type Fake struct {
	mu sync.Mutex

	// Detections is returned by every Detect call after filtering by
	// the requested confidence floor.
	Detections []models.RawDetection

	// Err, when set, is returned by Detect.
	Err error

	// Calls counts Detect invocations.
	Calls int
}

// Detect returns the scripted detections at or above minConfidence.
func (f *Fake) Detect(_ context.Context, _ gocv.Mat, minConfidence float64) ([]models.RawDetection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}

	out := make([]models.RawDetection, 0, len(f.Detections))
	for _, d := range f.Detections {
		if d.Confidence >= minConfidence {
			out = append(out, d)
		}
	}
	return out, nil
}

// Close implements Engine.
func (f *Fake) Close() error { return nil }
