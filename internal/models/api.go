// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

package models

import "time"

// APIResponse is the standard envelope for API endpoints that do not
// return a raw result record.
//
// Example success response:
//
//	{
//	  "status": "ok",
//	  "data": {"info": "file 'cam01.jpg' accepted", "status": "processing_started"},
//	  "metadata": {"timestamp": "2026-08-31T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response metadata for observability.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError is a structured error payload.
//
// Common codes: VALIDATION_ERROR, NOT_FOUND, UPLOAD_ERROR,
// DECODE_ERROR, RATE_LIMIT_EXCEEDED.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// UploadAck is the immediate acknowledgment returned by the upload
// endpoint; processing continues out-of-band.
type UploadAck struct {
	Info   string `json:"info"`
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}
