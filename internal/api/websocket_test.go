// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/ecoeye/internal/models"
)

func dialDetect(t *testing.T, h *Handler) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(NewRouter(h))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/detect/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestDetectWSRoundTrip(t *testing.T) {
	h, _ := newTestHandler(t, []models.RawDetection{
		{ClassID: 0, Confidence: 0.9, Box: models.Box{10, 10, 60, 90}},
	})
	conn := dialDetect(t, h)

	if err := conn.WriteMessage(websocket.BinaryMessage, encodeTestJPEG(t)); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var result models.LiveResult
	if err := conn.ReadJSON(&result); err != nil {
		t.Fatalf("read result: %v", err)
	}

	if result.Status != models.StatusCompleted {
		t.Errorf("status = %q, want completed", result.Status)
	}
	if !result.Summary.Poacher.Detected {
		t.Error("expected a poacher summary flag")
	}
	if !strings.HasPrefix(result.Image, "data:image/jpeg;base64,") {
		t.Error("expected a jpeg data URL image")
	}
}

func TestDetectWSBadFrameKeepsConnection(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	conn := dialDetect(t, h)

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte("not a jpeg")); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var errResp map[string]string
	if err := conn.ReadJSON(&errResp); err != nil {
		t.Fatalf("read error response: %v", err)
	}
	if errResp["error"] == "" {
		t.Fatalf("expected an error payload, got %v", errResp)
	}

	// The next valid frame still round-trips.
	if err := conn.WriteMessage(websocket.BinaryMessage, encodeTestJPEG(t)); err != nil {
		t.Fatalf("write second frame: %v", err)
	}
	var result models.LiveResult
	if err := conn.ReadJSON(&result); err != nil {
		t.Fatalf("read second result: %v", err)
	}
	if result.Status != models.StatusCompleted {
		t.Errorf("status = %q, want completed", result.Status)
	}
}

func TestDetectWSIgnoresTextMessages(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	conn := dialDetect(t, h)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		t.Fatalf("write text: %v", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, encodeTestJPEG(t)); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var result models.LiveResult
	if err := conn.ReadJSON(&result); err != nil {
		t.Fatalf("read result: %v", err)
	}
	if result.Status != models.StatusCompleted {
		t.Errorf("status = %q, want completed", result.Status)
	}
}
