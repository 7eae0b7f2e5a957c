// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

package classify

import "github.com/tomtom215/ecoeye/internal/models"

// Classifier applies a threshold table to raw detections.
type Classifier struct {
	table Table
}

// New creates a Classifier over the given table.
func New(table Table) *Classifier {
	return &Classifier{table: table}
}

// Classify maps one raw detection to a classified detection. The second
// return value is false when the detection is dropped: unknown class ids
// and detections below the class confidence floor produce no result and
// no error.
func (c *Classifier) Classify(raw models.RawDetection) (models.Detection, bool) {
	entry, ok := c.table[raw.ClassID]
	if !ok {
		return models.Detection{}, false
	}
	if raw.Confidence < entry.MinConfidence {
		return models.Detection{}, false
	}

	return models.Detection{
		Box:        raw.Box,
		ClassID:    raw.ClassID,
		Label:      entry.Label,
		Confidence: raw.Confidence,
	}, true
}

// ClassifyAll classifies a batch, preserving the engine's output order
// and silently dropping detections that fail Classify.
func (c *Classifier) ClassifyAll(raws []models.RawDetection) []models.Detection {
	out := make([]models.Detection, 0, len(raws))
	for _, raw := range raws {
		if det, ok := c.Classify(raw); ok {
			out = append(out, det)
		}
	}
	return out
}

// Aggregate accumulates the per-job alert signal across classified
// detections: category flags and the running maximum confidence per
// category.
type Aggregate struct {
	PoacherDetected   bool
	WeaponDetected    bool
	PoacherConfidence float64
	WeaponConfidence  float64
}

// Add folds one classified detection into the aggregate.
func (a *Aggregate) Add(det models.Detection) {
	switch {
	case det.Label == models.LabelPoacher:
		a.PoacherDetected = true
		if det.Confidence > a.PoacherConfidence {
			a.PoacherConfidence = det.Confidence
		}
	case det.Label.Threatening():
		a.WeaponDetected = true
		if det.Confidence > a.WeaponConfidence {
			a.WeaponConfidence = det.Confidence
		}
	}
}

// AddAll folds a batch of detections into the aggregate.
func (a *Aggregate) AddAll(dets []models.Detection) {
	for _, det := range dets {
		a.Add(det)
	}
}

// Alerting reports whether the aggregate qualifies for an alert.
func (a *Aggregate) Alerting() bool {
	return a.PoacherDetected || a.WeaponDetected
}
