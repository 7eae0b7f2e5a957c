// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

package models

import "time"

// JobStatus is the lifecycle state of a submitted media job.
// Completed and Error are terminal; a record never leaves a terminal
// state once written.
type JobStatus string

const (
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusError      JobStatus = "error"
)

// Terminal reports whether the status is final.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// MailStatus describes the alert dispatch outcome for a job.
type MailStatus string

const (
	MailSent          MailStatus = "Yes"
	MailNotSent       MailStatus = "No"
	MailNotApplicable MailStatus = "N/A"
)

// YesNo renders a boolean in the "Yes"/"No" form the result schema uses
// for the weapon flag.
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// JobResult is the persisted per-job record polled by clients.
//
// The schema keeps two quirks of the deployed system on purpose:
// poacher_detected is a bool while weapon_detected is "Yes"/"No", and
// full detection detail is only carried for still images (video jobs
// persist aggregates with an empty detections list).
type JobResult struct {
	Status            JobStatus   `json:"status"`
	Message           string      `json:"message,omitempty"`
	PoacherDetected   bool        `json:"poacher_detected"`
	WeaponDetected    string      `json:"weapon_detected"`
	PoacherConfidence float64     `json:"poacher_confidence"`
	WeaponConfidence  float64     `json:"weapon_confidence"`
	MailSent          MailStatus  `json:"mail_sent"`
	Timestamp         time.Time   `json:"timestamp"`
	VideoURL          string      `json:"video_url,omitempty"`
	Detections        []Detection `json:"detections"`
}

// Percent converts a [0,1] confidence to the 0-100 one-decimal form
// used by the result schema.
func Percent(conf float64) float64 {
	return float64(int(conf*1000+0.5)) / 10
}

// CategorySummary is one per-category entry of a live frame summary.
type CategorySummary struct {
	Detected   bool    `json:"detected"`
	Confidence float64 `json:"confidence"`
}

// LiveSummary is the summary block returned with every live frame
// response. Mail.Detected reports whether an alert was dispatched for
// this specific frame.
type LiveSummary struct {
	Poacher CategorySummary `json:"poacher"`
	Weapon  CategorySummary `json:"weapon"`
	Mail    CategorySummary `json:"mail"`
}

// LiveResult is the synchronous response for one live frame. Image is
// a base64 data URL of the annotated JPEG.
type LiveResult struct {
	Status     JobStatus   `json:"status"`
	Image      string      `json:"image"`
	Detections []Detection `json:"detections"`
	Summary    LiveSummary `json:"summary"`
}
