// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

// Package media turns one media file into detection results. The
// image/video split is a tagged dispatch: ForPath selects the processor
// variant by file extension, and both variants share the same contract.
package media

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/tomtom215/ecoeye/internal/classify"
	"github.com/tomtom215/ecoeye/internal/inference"
	"github.com/tomtom215/ecoeye/internal/models"
)

// imageExtensions are the extensions handled by the still-image path.
// Anything else goes through the video path.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".webp": true,
}

// IsImage reports whether path names a still image by extension.
func IsImage(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// Kind names the processing variant for a path.
func Kind(path string) string {
	if IsImage(path) {
		return "image"
	}
	return "video"
}

// Outcome is the result of processing one media file.
type Outcome struct {
	classify.Aggregate

	// Detections carries full per-detection detail for images. Video
	// outcomes keep it nil: only aggregates are retained per frame, a
	// deliberate asymmetry of the result schema.
	Detections []models.Detection

	// OutputPath is the annotated output written by the processor.
	OutputPath string
}

// Deps are the collaborators a processor needs.
type Deps struct {
	Engine     inference.Engine
	Classifier *classify.Classifier

	// ImageConfidence and VideoConfidence are the engine confidence
	// floors per media kind.
	ImageConfidence float64
	VideoConfidence float64
}

// Processor processes one media file and writes the annotated output.
type Processor interface {
	Process(ctx context.Context, inputPath, outputPath string) (*Outcome, error)
}

// ForPath returns the processor variant for the given file.
func ForPath(path string, deps Deps) Processor {
	if IsImage(path) {
		return &imageProcessor{deps: deps}
	}
	return &videoProcessor{deps: deps}
}
