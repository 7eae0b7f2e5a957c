// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

// Package classify maps raw model detections to semantic threat
// categories. Classification is pure and deterministic: the same raw
// detection against the same table yields the same result on every call.
package classify

import "github.com/tomtom215/ecoeye/internal/models"

// Entry is one row of the threshold table: the semantic label for a
// model class and the minimum confidence a detection must reach.
type Entry struct {
	Label         models.Label
	MinConfidence float64
}

// Table maps model class ids to semantic labels with per-class
// confidence floors. Tables are immutable after construction; Classify
// never mutates them.
type Table map[int]Entry

// COCO class ids the deployed model maps to each category. The
// suspicious set (laptop, book, clock) exists because the model
// routinely mistakes those objects for weapons; they count toward the
// weapon alert signal at a separate label.
var (
	personClass       = 0
	rangerClasses     = []int{14, 15, 16, 17, 18, 19, 20, 21, 22, 23}
	weaponClasses     = []int{25, 34, 39, 40, 41, 42, 43, 66, 67, 76}
	suspiciousClasses = []int{63, 73, 74}
)

// defaultMinConfidence applies to classes with no override.
const defaultMinConfidence = 0.15

// DefaultTable builds the production threshold table. The overrides map
// is keyed by semantic label and replaces the default floor for every
// class carrying that label.
func DefaultTable(overrides map[string]float64) Table {
	floor := func(label models.Label) float64 {
		if v, ok := overrides[string(label)]; ok {
			return v
		}
		return defaultMinConfidence
	}

	t := make(Table)
	t[personClass] = Entry{Label: models.LabelPoacher, MinConfidence: floor(models.LabelPoacher)}
	for _, id := range rangerClasses {
		t[id] = Entry{Label: models.LabelRanger, MinConfidence: floor(models.LabelRanger)}
	}
	for _, id := range weaponClasses {
		t[id] = Entry{Label: models.LabelWeapon, MinConfidence: floor(models.LabelWeapon)}
	}
	for _, id := range suspiciousClasses {
		t[id] = Entry{Label: models.LabelSuspicious, MinConfidence: floor(models.LabelSuspicious)}
	}
	return t
}
