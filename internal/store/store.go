// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

// Package store persists per-job result records. Each job has a single
// writer (its orchestrator), so the only consistency requirement is
// read-after-write per key.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/tomtom215/ecoeye/internal/models"
)

// ErrNotFound is returned by Get for unknown job keys.
var ErrNotFound = errors.New("result not found")

// ResultStore is the durable per-job record store, keyed by the job's
// derived identity (the upload's base name).
type ResultStore interface {
	Put(ctx context.Context, jobKey string, result *models.JobResult) error
	Get(ctx context.Context, jobKey string) (*models.JobResult, error)
}

// Memory is an in-memory ResultStore for tests and ephemeral runs.
type Memory struct {
	mu      sync.RWMutex
	results map[string]models.JobResult
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{results: make(map[string]models.JobResult)}
}

// Put stores a copy of the record.
func (m *Memory) Put(_ context.Context, jobKey string, result *models.JobResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[jobKey] = *result
	return nil
}

// Get returns a copy of the stored record or ErrNotFound.
func (m *Memory) Get(_ context.Context, jobKey string) (*models.JobResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result, ok := m.results[jobKey]
	if !ok {
		return nil, ErrNotFound
	}
	return &result, nil
}
