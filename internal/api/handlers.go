// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/ecoeye/internal/config"
	"github.com/tomtom215/ecoeye/internal/logging"
	"github.com/tomtom215/ecoeye/internal/media"
	"github.com/tomtom215/ecoeye/internal/metrics"
	"github.com/tomtom215/ecoeye/internal/models"
	"github.com/tomtom215/ecoeye/internal/pipeline"
	"github.com/tomtom215/ecoeye/internal/store"
)

// videoExtensions are the accepted upload extensions beyond the still
// image set.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
}

// Handler holds the HTTP handler dependencies.
type Handler struct {
	config       *config.Config
	store        store.ResultStore
	orchestrator *pipeline.Orchestrator
	live         *pipeline.Live
}

// NewHandler creates the HTTP handler set.
func NewHandler(cfg *config.Config, st store.ResultStore, orch *pipeline.Orchestrator, live *pipeline.Live) *Handler {
	return &Handler{
		config:       cfg,
		store:        st,
		orchestrator: orch,
		live:         live,
	}
}

// Health reports process liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{
		"status": "ok",
	})
}

// Upload accepts one media file, stores it in the upload directory,
// and starts processing in the background. The response is an
// immediate acknowledgment; clients poll the results endpoint.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, h.config.Server.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			rw.PayloadTooLarge(fmt.Sprintf("Upload exceeds %d bytes", maxErr.Limit))
			return
		}
		rw.BadRequest("Multipart form field 'file' is required")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		rw.BadRequest("Upload has no usable filename")
		return
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !media.IsImage(filename) && !videoExtensions[ext] {
		rw.BadRequest(fmt.Sprintf("Unsupported media extension %q", ext))
		return
	}

	destination := filepath.Join(h.config.Server.UploadDir, filename)
	if err := saveUpload(destination, file); err != nil {
		logging.Error().Err(err).Str("path", destination).Msg("Failed to store upload")
		rw.Error(http.StatusInternalServerError, ErrCodeUploadFailed, "Could not store the uploaded file")
		return
	}

	job := pipeline.Job{
		ID:        uuid.New().String(),
		Path:      destination,
		Filename:  filename,
		Submitter: r.FormValue("submitter"),
	}
	h.orchestrator.Submit(job)

	logging.Info().
		Str("job_id", job.ID).
		Str("filename", filename).
		Msg("Upload accepted")

	rw.Accepted(models.UploadAck{
		Info:   fmt.Sprintf("file '%s' accepted", filename),
		JobID:  job.ID,
		Status: "processing_started",
	})
}

// Result returns the persisted record for an uploaded file. While the
// upload exists but has no record yet the response is a processing
// placeholder, matching what pollers saw before the record store
// existed.
func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	filename := filepath.Base(chi.URLParam(r, "filename"))
	if filename == "" || filename == "." {
		rw.BadRequest("A filename is required")
		return
	}

	result, err := h.store.Get(r.Context(), pipeline.JobKey(filename))
	switch {
	case err == nil:
		rw.Raw(http.StatusOK, result)
	case errors.Is(err, store.ErrNotFound):
		if _, statErr := os.Stat(filepath.Join(h.config.Server.UploadDir, filename)); statErr == nil {
			rw.Raw(http.StatusOK, map[string]string{"status": "processing"})
			return
		}
		rw.NotFound(fmt.Sprintf("No result for %q", filename))
	default:
		logging.Error().Err(err).Str("filename", filename).Msg("Result lookup failed")
		rw.InternalError("Result lookup failed")
	}
}

// DetectFrame is the single-shot form of live detection: one frame in,
// one annotated response out. Accepts the frame as a multipart 'file'
// field or as the raw request body.
func (h *Handler) DetectFrame(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, h.config.Server.MaxUploadBytes)

	data, err := readFrame(r)
	if err != nil {
		rw.BadRequest("A frame is required, as multipart 'file' or raw body")
		return
	}

	result, err := h.live.ProcessFrame(r.Context(), data)
	if err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeDecodeFailed, err.Error())
		return
	}
	rw.Raw(http.StatusOK, result)
}

// upgrader for the live detection stream. Origin is not restricted:
// field camera clients connect without browser origin headers.
var upgrader = websocket.Upgrader{
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
	HandshakeTimeout: 10 * time.Second,
	CheckOrigin:      func(*http.Request) bool { return true },
}

// DetectWS runs the live detection stream: a strictly sequential loop
// of receive binary frame, process, send JSON response. Messages are
// never processed concurrently on one connection, so responses always
// arrive in frame order.
func (h *Handler) DetectWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	metrics.LiveConnections.Inc()
	defer metrics.LiveConnections.Dec()
	logging.Info().Str("remote", conn.RemoteAddr().String()).Msg("Live detection connected")

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warn().Err(err).Msg("Live detection connection dropped")
			}
			return
		}
		if messageType != websocket.BinaryMessage {
			continue
		}

		result, err := h.live.ProcessFrame(r.Context(), data)
		if err != nil {
			// A bad frame does not end the stream.
			if writeErr := conn.WriteJSON(map[string]string{"error": err.Error()}); writeErr != nil {
				return
			}
			continue
		}
		if err := conn.WriteJSON(result); err != nil {
			return
		}
	}
}

func saveUpload(destination string, file io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	out, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		return fmt.Errorf("write upload file: %w", err)
	}
	return out.Close()
}

func readFrame(r *http.Request) ([]byte, error) {
	if file, _, err := r.FormFile("file"); err == nil {
		defer file.Close()
		return io.ReadAll(file)
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("empty frame")
	}
	return data, nil
}
