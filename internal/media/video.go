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

// videoProcessor handles the video path: per-frame inference and
// annotation into an output container that preserves the source
// resolution and frame rate. Per-frame detection detail is not
// retained; only the aggregate flags and maxima survive.
type videoProcessor struct {
	deps Deps
}

func (p *videoProcessor) Process(ctx context.Context, inputPath, outputPath string) (*Outcome, error) {
	capture, err := gocv.VideoCaptureFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("could not open video file %s: %w", inputPath, err)
	}
	defer func() { _ = capture.Close() }() //nolint:errcheck // Best effort cleanup

	width := int(capture.Get(gocv.VideoCaptureFrameWidth))
	height := int(capture.Get(gocv.VideoCaptureFrameHeight))
	fps := capture.Get(gocv.VideoCaptureFPS)
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("could not read dimensions of %s", inputPath)
	}
	if fps <= 0 {
		fps = 25
	}

	writer, err := gocv.VideoWriterFile(outputPath, "mp4v", fps, width, height, true)
	if err != nil {
		return nil, fmt.Errorf("could not open output video %s: %w", outputPath, err)
	}
	defer func() { _ = writer.Close() }() //nolint:errcheck // Best effort cleanup

	outcome := &Outcome{OutputPath: outputPath}

	frame := gocv.NewMat()
	defer frame.Close()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if ok := capture.Read(&frame); !ok {
			break
		}
		if frame.Empty() {
			continue
		}

		raws, err := p.deps.Engine.Detect(ctx, frame, p.deps.VideoConfidence)
		if err != nil {
			return nil, fmt.Errorf("inference failed: %w", err)
		}
		metrics.FramesProcessed.Inc()

		detections := p.deps.Classifier.ClassifyAll(raws)
		annotate.Draw(&frame, detections)
		outcome.AddAll(detections)

		for _, det := range detections {
			metrics.Detections.WithLabelValues(string(det.Label)).Inc()
		}

		if err := writer.Write(frame); err != nil {
			return nil, fmt.Errorf("could not write output frame: %w", err)
		}
	}

	return outcome, nil
}
