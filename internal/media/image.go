// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

package media

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"

	"github.com/tomtom215/ecoeye/internal/annotate"
	"github.com/tomtom215/ecoeye/internal/metrics"
)

// imageProcessor handles the still-image path: one inference pass,
// full detection detail in the outcome.
type imageProcessor struct {
	deps Deps
}

func (p *imageProcessor) Process(ctx context.Context, inputPath, outputPath string) (*Outcome, error) {
	frame := gocv.IMRead(inputPath, gocv.IMReadColor)
	if frame.Empty() {
		return nil, fmt.Errorf("could not open image file %s", inputPath)
	}
	defer frame.Close()

	raws, err := p.deps.Engine.Detect(ctx, frame, p.deps.ImageConfidence)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	metrics.FramesProcessed.Inc()

	detections := p.deps.Classifier.ClassifyAll(raws)
	annotate.Draw(&frame, detections)

	if ok := gocv.IMWrite(outputPath, frame); !ok {
		return nil, fmt.Errorf("could not write annotated image %s", outputPath)
	}

	outcome := &Outcome{
		Detections: detections,
		OutputPath: outputPath,
	}
	outcome.AddAll(detections)

	for _, det := range detections {
		metrics.Detections.WithLabelValues(string(det.Label)).Inc()
	}

	return outcome, nil
}
