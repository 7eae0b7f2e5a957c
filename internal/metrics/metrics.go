// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

// Package metrics provides Prometheus instrumentation for the
// detection pipeline, alerting, and the HTTP surface.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline metrics
	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoeye_jobs_processed_total",
			Help: "Total media jobs processed, by terminal status",
		},
		[]string{"status"}, // "completed", "error"
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecoeye_job_duration_seconds",
			Help:    "End-to-end processing duration per media job",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"kind"}, // "image", "video"
	)

	FramesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecoeye_frames_processed_total",
			Help: "Total frames run through inference (video frames and live frames)",
		},
	)

	Detections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoeye_detections_total",
			Help: "Total classified detections, by semantic label",
		},
		[]string{"label"},
	)

	// Alerting metrics
	AlertsDispatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecoeye_alerts_dispatched_total",
			Help: "Alerts accepted by the notification transport",
		},
	)

	AlertsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecoeye_alerts_failed_total",
			Help: "Alerts the notification transport rejected",
		},
	)

	AlertsSuppressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecoeye_alerts_suppressed_total",
			Help: "Qualifying alerts suppressed by the cooldown window",
		},
	)

	// Live stream metrics
	LiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ecoeye_live_connections",
			Help: "Currently open live detection websocket connections",
		},
	)

	LiveFrameDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ecoeye_live_frame_duration_seconds",
			Help:    "Processing duration per live frame",
			Buckets: prometheus.DefBuckets,
		},
	)

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoeye_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecoeye_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// ObserveHTTP records one served HTTP request.
func ObserveHTTP(route string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(route).Observe(duration.Seconds())
}
