// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/tomtom215/ecoeye/internal/alert"
	"github.com/tomtom215/ecoeye/internal/annotate"
	"github.com/tomtom215/ecoeye/internal/classify"
	"github.com/tomtom215/ecoeye/internal/inference"
	"github.com/tomtom215/ecoeye/internal/metrics"
	"github.com/tomtom215/ecoeye/internal/models"
)

// Live processes single frames from a live feed synchronously. Each
// frame is independent: no detection history is carried between calls.
// The only state shared with the rest of the system is the alert
// cooldown, so a live alert suppresses batch alerts and vice versa.
type Live struct {
	engine        inference.Engine
	classifier    *classify.Classifier
	limiter       *alert.Limiter
	dispatcher    *alert.Dispatcher
	minConfidence float64
	clock         Clock
}

// NewLive wires the live frame handler.
func NewLive(engine inference.Engine, classifier *classify.Classifier, limiter *alert.Limiter, dispatcher *alert.Dispatcher, minConfidence float64, clock Clock) *Live {
	if clock == nil {
		clock = time.Now
	}
	return &Live{
		engine:        engine,
		classifier:    classifier,
		limiter:       limiter,
		dispatcher:    dispatcher,
		minConfidence: minConfidence,
		clock:         clock,
	}
}

// ProcessFrame decodes one frame, classifies and annotates it,
// evaluates alert eligibility, and returns the full response. The
// caller owns the result; nothing is persisted.
func (l *Live) ProcessFrame(ctx context.Context, data []byte) (*models.LiveResult, error) {
	start := l.clock()

	frame, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil || frame.Empty() {
		return nil, fmt.Errorf("could not decode image")
	}
	defer frame.Close()

	raws, err := l.engine.Detect(ctx, frame, l.minConfidence)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	metrics.FramesProcessed.Inc()

	detections := l.classifier.ClassifyAll(raws)
	annotate.Draw(&frame, detections)

	var agg classify.Aggregate
	agg.AddAll(detections)

	for _, det := range detections {
		metrics.Detections.WithLabelValues(string(det.Label)).Inc()
	}

	encoded, err := gocv.IMEncode(".jpg", frame)
	if err != nil {
		return nil, fmt.Errorf("could not encode annotated frame: %w", err)
	}
	defer encoded.Close()
	jpeg := make([]byte, len(encoded.GetBytes()))
	copy(jpeg, encoded.GetBytes())

	mailSent := false
	if agg.Alerting() {
		mailSent = l.tryAlert(ctx, &agg, jpeg)
	}

	mailConfidence := 0.0
	if mailSent {
		mailConfidence = 1.0
	}

	result := &models.LiveResult{
		Status:     models.StatusCompleted,
		Image:      "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg),
		Detections: detections,
		Summary: models.LiveSummary{
			Poacher: models.CategorySummary{Detected: agg.PoacherDetected, Confidence: agg.PoacherConfidence},
			Weapon:  models.CategorySummary{Detected: agg.WeaponDetected, Confidence: agg.WeaponConfidence},
			Mail:    models.CategorySummary{Detected: mailSent, Confidence: mailConfidence},
		},
	}

	metrics.LiveFrameDuration.Observe(l.clock().Sub(start).Seconds())
	return result, nil
}

// tryAlert evaluates the shared cooldown and dispatches when admitted,
// attaching the annotated frame.
func (l *Live) tryAlert(ctx context.Context, agg *classify.Aggregate, jpeg []byte) bool {
	if !l.limiter.Admit(l.clock()) {
		metrics.AlertsSuppressed.Inc()
		return false
	}

	return l.dispatcher.Dispatch(ctx, alert.Request{
		Source:            "live",
		FrameJPEG:         jpeg,
		PoacherDetected:   agg.PoacherDetected,
		WeaponDetected:    agg.WeaponDetected,
		PoacherConfidence: agg.PoacherConfidence,
		WeaponConfidence:  agg.WeaponConfidence,
	})
}
