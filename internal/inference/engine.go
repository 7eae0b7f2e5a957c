// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

// Package inference wraps the object-detection model behind a small
// interface. The pipeline never sees model internals; it receives raw
// detections (class id, confidence, pixel box) and interprets them
// elsewhere.
package inference

import (
	"context"

	"gocv.io/x/gocv"

	"github.com/tomtom215/ecoeye/internal/models"
)

// Engine runs object detection on one decoded frame.
//
// Implementations are safe for concurrent use; the DNN-backed engine
// serializes calls internally because a single cv::dnn::Net instance
// is not documented as thread-safe.
type Engine interface {
	// Detect returns raw detections with confidence >= minConfidence.
	// Output order is the model's output order; callers must not
	// assume spatial or confidence ordering.
	Detect(ctx context.Context, frame gocv.Mat, minConfidence float64) ([]models.RawDetection, error)

	// Close releases model resources.
	Close() error
}
