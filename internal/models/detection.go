// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

// Package models defines the wire and result schemas shared across the
// detection pipeline, the HTTP API, and the result store.
package models

// Label is the semantic threat category assigned to a detection.
type Label string

const (
	// LabelPoacher marks a person detected in the monitored area.
	LabelPoacher Label = "poacher"

	// LabelRanger marks a benign detection (wildlife, patrol staff).
	LabelRanger Label = "ranger"

	// LabelWeapon marks an object classified as a weapon.
	LabelWeapon Label = "weapon"

	// LabelSuspicious marks objects the model commonly mistakes for
	// weapons. They still contribute to the weapon alert signal.
	LabelSuspicious Label = "suspicious"

	// LabelOther marks detections with no threat semantics.
	LabelOther Label = "other"
)

// Threatening reports whether the label contributes to the weapon
// alert signal.
func (l Label) Threatening() bool {
	return l == LabelWeapon || l == LabelSuspicious
}

// Box is an axis-aligned bounding box in pixel coordinates,
// ordered x1, y1, x2, y2.
type Box [4]int

// RawDetection is the untyped output of the inference engine before
// semantic interpretation. It is never persisted.
type RawDetection struct {
	ClassID    int
	Confidence float64
	Box        Box
}

// Detection is a classified detection carrying its semantic label.
// Order within a job follows the inference engine's output order.
type Detection struct {
	Box        Box     `json:"box"`
	ClassID    int     `json:"class_id"`
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
}
