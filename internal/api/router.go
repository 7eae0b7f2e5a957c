// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the chi router with the full middleware stack and
// route table.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied in order.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS())
	r.Use(RequestLogger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Metrics)

		r.Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			r.Use(RateLimit(60, time.Minute))
			r.Post("/upload", h.Upload)
			r.Get("/results/{filename}", h.Result)
			r.Post("/detect/frame", h.DetectFrame)
		})

		// The websocket is rate limited only at the handshake.
		r.With(RateLimit(10, time.Minute)).Get("/detect/ws", h.DetectWS)
	})

	r.Handle("/metrics", promhttp.Handler())

	// Annotated outputs are served from the upload directory.
	uploads := http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.config.Server.UploadDir)))
	r.Get("/uploads/*", uploads.ServeHTTP)

	return r
}
