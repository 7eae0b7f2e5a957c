// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

// Package main is the entry point for the EcoEye server.
//
// EcoEye watches protected areas for poaching activity. Field cameras
// upload media or stream live frames; an object-detection model finds
// people and weapons, frames are annotated and persisted, and
// qualifying detections fire rate-limited email alerts with a map link
// for the responding ranger team.
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered sources (env, config file, defaults)
//  2. Result store: BadgerDB with a supervised value-log GC loop
//  3. Detection engine: ONNX model via the OpenCV DNN backend
//  4. Alerting: SMTP transport, cooldown limiter, geolocation resolver
//  5. HTTP server: upload, result polling, live detection, metrics
//
// Shutdown is graceful on SIGINT and SIGTERM: the listener drains
// in-flight requests within the configured timeout, then the store
// closes.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/ecoeye/internal/alert"
	"github.com/tomtom215/ecoeye/internal/api"
	"github.com/tomtom215/ecoeye/internal/classify"
	"github.com/tomtom215/ecoeye/internal/config"
	"github.com/tomtom215/ecoeye/internal/geolocate"
	"github.com/tomtom215/ecoeye/internal/inference"
	"github.com/tomtom215/ecoeye/internal/logging"
	"github.com/tomtom215/ecoeye/internal/media"
	"github.com/tomtom215/ecoeye/internal/pipeline"
	"github.com/tomtom215/ecoeye/internal/store"
	"github.com/tomtom215/ecoeye/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config is not available yet, use the default logger.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr).
		Str("model", cfg.Model.Path).
		Str("store", cfg.Store.Path).
		Bool("smtp_enabled", cfg.SMTP.Enabled()).
		Msg("Starting EcoEye")

	if err := os.MkdirAll(cfg.Server.UploadDir, 0o755); err != nil {
		logging.Fatal().Err(err).Str("dir", cfg.Server.UploadDir).Msg("Failed to create upload directory")
	}

	badger, err := store.OpenBadger(cfg.Store.Path)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("Failed to open result store")
	}
	defer func() {
		if err := badger.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing result store")
		}
	}()

	engine, err := inference.NewYOLOEngine(cfg.Model.Path, cfg.Model.InputSize)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Model.Path).Msg("Failed to load detection model")
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing detection engine")
		}
	}()

	// Alerting collaborators. With SMTP unconfigured the dispatcher
	// runs with a nil transport and every dispatch is a logged no-op.
	var transport alert.Transport
	if cfg.SMTP.Enabled() {
		transport = alert.NewSMTPTransport(cfg.SMTP)
	} else {
		logging.Warn().Msg("SMTP not configured, alerts will not be delivered")
	}
	resolver := geolocate.New(geolocate.Config{
		URL:     cfg.Geo.URL,
		Timeout: cfg.Geo.Timeout,
		Fallback: geolocate.Location{
			Lat: cfg.Geo.FallbackLat,
			Lon: cfg.Geo.FallbackLon,
		},
	})
	limiter := alert.NewLimiter(cfg.Alert.Cooldown)
	dispatcher := alert.NewDispatcher(transport, resolver, cfg.SMTP.DefaultRecipient)

	classifier := classify.New(classify.DefaultTable(cfg.Alert.Thresholds))
	deps := media.Deps{
		Engine:          engine,
		Classifier:      classifier,
		ImageConfidence: cfg.Model.ImageConfidence,
		VideoConfidence: cfg.Model.VideoConfidence,
	}

	orchestrator := pipeline.NewOrchestrator(badger, deps, limiter, dispatcher, nil)
	live := pipeline.NewLive(engine, classifier, limiter, dispatcher, cfg.Model.ImageConfidence, nil)

	handler := api.NewHandler(cfg, badger, orchestrator, live)
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	treeConfig := supervisor.DefaultTreeConfig()
	treeConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(slog.New(logging.NewSlogHandler()), treeConfig)

	tree.AddDataService(store.NewGCService(badger, cfg.Store.GCInterval))
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", cfg.Server.Addr).Msg("Serving")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	logging.Info().Msg("Shutdown complete")
}
