// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

// Package api provides the HTTP surface: upload, result polling, live
// detection, and health. All endpoints share one response envelope
// except the result and live payloads, which are returned raw so the
// record schema stays stable for existing clients.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/tomtom215/ecoeye/internal/logging"
	"github.com/tomtom215/ecoeye/internal/models"
)

// Error codes for API responses.
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"
	ErrCodePayloadTooBig   = "PAYLOAD_TOO_LARGE"
	ErrCodeUploadFailed    = "UPLOAD_ERROR"
	ErrCodeDecodeFailed    = "DECODE_ERROR"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// ResponseWriter writes envelope and raw JSON responses for one
// request.
type ResponseWriter struct {
	w http.ResponseWriter
	r *http.Request
}

// NewResponseWriter creates a response writer for the request.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{w: w, r: r}
}

// Success writes a 200 envelope response.
func (rw *ResponseWriter) Success(data interface{}) {
	rw.envelope(http.StatusOK, data, nil)
}

// Accepted writes a 202 envelope response for work that continues in
// the background.
func (rw *ResponseWriter) Accepted(data interface{}) {
	rw.envelope(http.StatusAccepted, data, nil)
}

// Raw writes a payload without the envelope. Used for result records
// and live frame responses, whose schemas predate the envelope.
func (rw *ResponseWriter) Raw(statusCode int, payload interface{}) {
	rw.writeJSON(statusCode, payload)
}

// Error writes an error envelope with the given status code.
func (rw *ResponseWriter) Error(statusCode int, code, message string) {
	rw.envelope(statusCode, nil, &models.APIError{
		Code:    code,
		Message: message,
	})
}

// BadRequest writes a 400 Bad Request error.
func (rw *ResponseWriter) BadRequest(message string) {
	rw.Error(http.StatusBadRequest, ErrCodeBadRequest, message)
}

// NotFound writes a 404 Not Found error.
func (rw *ResponseWriter) NotFound(message string) {
	rw.Error(http.StatusNotFound, ErrCodeNotFound, message)
}

// PayloadTooLarge writes a 413 error for oversized uploads.
func (rw *ResponseWriter) PayloadTooLarge(message string) {
	rw.Error(http.StatusRequestEntityTooLarge, ErrCodePayloadTooBig, message)
}

// InternalError writes a 500 Internal Server Error.
func (rw *ResponseWriter) InternalError(message string) {
	rw.Error(http.StatusInternalServerError, ErrCodeInternalError, message)
}

func (rw *ResponseWriter) envelope(statusCode int, data interface{}, apiErr *models.APIError) {
	status := "ok"
	if apiErr != nil {
		status = "error"
	}

	rw.writeJSON(statusCode, models.APIResponse{
		Status: status,
		Data:   data,
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: middleware.GetReqID(rw.r.Context()),
		},
		Error: apiErr,
	})
}

func (rw *ResponseWriter) writeJSON(statusCode int, payload interface{}) {
	rw.w.Header().Set("Content-Type", "application/json")
	rw.w.WriteHeader(statusCode)

	if err := json.NewEncoder(rw.w).Encode(payload); err != nil {
		// Headers are already written; log and move on.
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}
