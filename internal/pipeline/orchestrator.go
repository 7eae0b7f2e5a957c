// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

// Package pipeline owns the detection-result lifecycle: it turns one
// media input into a classified, annotated, persisted result and
// decides when a rate-limited alert fires. The Orchestrator handles
// submitted jobs asynchronously; the Live handler processes single
// frames synchronously. Both share one classifier and one alert
// cooldown.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/tomtom215/ecoeye/internal/alert"
	"github.com/tomtom215/ecoeye/internal/logging"
	"github.com/tomtom215/ecoeye/internal/media"
	"github.com/tomtom215/ecoeye/internal/metrics"
	"github.com/tomtom215/ecoeye/internal/models"
	"github.com/tomtom215/ecoeye/internal/store"
)

// Clock abstracts time.Now for deterministic cooldown tests.
type Clock func() time.Time

// Job is one submitted media item.
type Job struct {
	// ID is a correlation id for logs, not the store key.
	ID string

	// Path is the stored upload on disk.
	Path string

	// Filename is the client's original file name; the job key and
	// the output name derive from it.
	Filename string

	// Submitter is the identity that uploaded the media.
	Submitter string
}

// JobKey derives the store key from the original filename: the base
// name without its extension, matching what the results endpoint can
// reconstruct from a poll request.
func JobKey(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Orchestrator runs submitted media jobs to a terminal result.
type Orchestrator struct {
	store      store.ResultStore
	deps       media.Deps
	limiter    *alert.Limiter
	dispatcher *alert.Dispatcher
	clock      Clock
}

// NewOrchestrator wires the job pipeline.
func NewOrchestrator(st store.ResultStore, deps media.Deps, limiter *alert.Limiter, dispatcher *alert.Dispatcher, clock Clock) *Orchestrator {
	if clock == nil {
		clock = time.Now
	}
	return &Orchestrator{
		store:      st,
		deps:       deps,
		limiter:    limiter,
		dispatcher: dispatcher,
		clock:      clock,
	}
}

// Submit starts processing the job in the background and returns
// immediately. Jobs are independent: one job never blocks another.
func (o *Orchestrator) Submit(job Job) {
	go o.Process(context.Background(), job)
}

// Process runs the job to a terminal state. It always persists a
// result record, even on failure: input errors, inference errors, and
// panics all end as a terminal error record rather than escaping.
func (o *Orchestrator) Process(ctx context.Context, job Job) {
	key := JobKey(job.Filename)
	kind := media.Kind(job.Path)
	start := o.clock()

	log := logging.With().
		Str("job_id", job.ID).
		Str("job_key", key).
		Str("kind", kind).
		Logger()
	log.Info().Str("file", job.Filename).Msg("processing started")

	o.put(ctx, key, &models.JobResult{
		Status:         models.StatusProcessing,
		WeaponDetected: "No",
		MailSent:       models.MailNotApplicable,
		Timestamp:      start,
		Detections:     []models.Detection{},
	})

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("processing panicked")
			o.fail(ctx, key, fmt.Sprintf("internal error: %v", r))
		}
	}()

	outputPath := filepath.Join(filepath.Dir(job.Path), "processed_"+filepath.Base(job.Path))

	outcome, err := media.ForPath(job.Path, o.deps).Process(ctx, job.Path, outputPath)
	if err != nil {
		log.Error().Err(err).Msg("processing failed")
		o.fail(ctx, key, err.Error())
		return
	}

	mailStatus := models.MailNotApplicable
	if outcome.Alerting() {
		mailStatus = o.tryAlert(ctx, job, outcome)
	}

	detections := outcome.Detections
	if detections == nil {
		detections = []models.Detection{}
	}

	result := &models.JobResult{
		Status:            models.StatusCompleted,
		PoacherDetected:   outcome.PoacherDetected,
		WeaponDetected:    models.YesNo(outcome.WeaponDetected),
		PoacherConfidence: models.Percent(outcome.PoacherConfidence),
		WeaponConfidence:  models.Percent(outcome.WeaponConfidence),
		MailSent:          mailStatus,
		Timestamp:         o.clock(),
		VideoURL:          "/uploads/" + filepath.Base(outputPath),
		Detections:        detections,
	}
	o.put(ctx, key, result)

	metrics.JobsProcessed.WithLabelValues(string(models.StatusCompleted)).Inc()
	metrics.JobDuration.WithLabelValues(kind).Observe(o.clock().Sub(start).Seconds())
	log.Info().
		Bool("poacher", outcome.PoacherDetected).
		Bool("weapon", outcome.WeaponDetected).
		Str("mail_sent", string(mailStatus)).
		Msg("processing completed")
}

// tryAlert evaluates the cooldown and dispatches when admitted.
func (o *Orchestrator) tryAlert(ctx context.Context, job Job, outcome *media.Outcome) models.MailStatus {
	if !o.limiter.Admit(o.clock()) {
		metrics.AlertsSuppressed.Inc()
		logging.Info().Str("job_id", job.ID).Msg("alert suppressed by cooldown")
		return models.MailNotSent
	}

	sent := o.dispatcher.Dispatch(ctx, alert.Request{
		Submitter:         job.Submitter,
		MediaPath:         outcome.OutputPath,
		Source:            "upload",
		PoacherDetected:   outcome.PoacherDetected,
		WeaponDetected:    outcome.WeaponDetected,
		PoacherConfidence: outcome.PoacherConfidence,
		WeaponConfidence:  outcome.WeaponConfidence,
	})
	if !sent {
		return models.MailNotSent
	}
	return models.MailSent
}

// fail persists a terminal error record.
func (o *Orchestrator) fail(ctx context.Context, key, message string) {
	o.put(ctx, key, &models.JobResult{
		Status:         models.StatusError,
		Message:        message,
		WeaponDetected: "No",
		MailSent:       models.MailNotApplicable,
		Timestamp:      o.clock(),
		Detections:     []models.Detection{},
	})
	metrics.JobsProcessed.WithLabelValues(string(models.StatusError)).Inc()
}

// put persists a record; a failing store is logged, not fatal, since
// the pipeline itself must never crash on persistence.
func (o *Orchestrator) put(ctx context.Context, key string, result *models.JobResult) {
	if err := o.store.Put(ctx, key, result); err != nil {
		logging.Error().Err(err).Str("job_key", key).Msg("failed to persist result")
	}
}
