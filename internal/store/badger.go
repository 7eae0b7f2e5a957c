// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/ecoeye/internal/logging"
	"github.com/tomtom215/ecoeye/internal/models"
)

// resultKeyPrefix namespaces result records in BadgerDB.
const resultKeyPrefix = "result:"

// Badger implements ResultStore on BadgerDB for persistence across
// restarts.
type Badger struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a BadgerDB store at path.
func OpenBadger(path string) (*Badger, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &Badger{db: db}, nil
}

// NewBadger wraps an already-open BadgerDB handle.
func NewBadger(db *badger.DB) *Badger {
	return &Badger{db: db}
}

// Put stores the record for jobKey, replacing any previous value.
func (s *Badger) Put(_ context.Context, jobKey string, result *models.JobResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(resultKeyPrefix+jobKey), data)
	})
}

// Get retrieves the record for jobKey.
func (s *Badger) Get(_ context.Context, jobKey string) (*models.JobResult, error) {
	var result models.JobResult

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(resultKeyPrefix + jobKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get result: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &result)
		})
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Close closes the underlying database.
func (s *Badger) Close() error {
	return s.db.Close()
}

// GCService runs Badger's value log garbage collection on an interval.
// It implements suture.Service.
type GCService struct {
	store    *Badger
	interval time.Duration
}

// NewGCService creates a GC service for the store.
func NewGCService(store *Badger, interval time.Duration) *GCService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &GCService{store: store, interval: interval}
}

// Serve runs GC until the context is canceled.
func (g *GCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// ErrNoRewrite means there was nothing to collect.
			if err := g.store.db.RunValueLogGC(0.5); err != nil &&
				!errors.Is(err, badger.ErrNoRewrite) {
				logging.Warn().Err(err).Msg("badger value log GC failed")
			}
		}
	}
}

// String names the service in supervisor logs.
func (g *GCService) String() string {
	return "store.GCService"
}
