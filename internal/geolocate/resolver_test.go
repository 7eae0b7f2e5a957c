// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

package geolocate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var fallback = Location{Lat: -1.2921, Lon: 36.8219}

func TestResolveSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"lat": -2.15, "lon": 34.68}`))
	}))
	defer srv.Close()

	r := New(Config{URL: srv.URL, Fallback: fallback})
	loc := r.Resolve(context.Background())
	if loc.Lat != -2.15 || loc.Lon != 34.68 {
		t.Errorf("Resolve = %+v, want {-2.15 34.68}", loc)
	}
}

func TestResolveMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	r := New(Config{URL: srv.URL, Fallback: fallback})
	if loc := r.Resolve(context.Background()); loc != fallback {
		t.Errorf("Resolve = %+v, want fallback %+v", loc, fallback)
	}
}

func TestResolveOutOfRangeCoordinate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"lat": 400, "lon": 12}`))
	}))
	defer srv.Close()

	r := New(Config{URL: srv.URL, Fallback: fallback})
	if loc := r.Resolve(context.Background()); loc != fallback {
		t.Errorf("Resolve = %+v, want fallback %+v", loc, fallback)
	}
}

func TestResolveTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	r := New(Config{URL: srv.URL, Timeout: 50 * time.Millisecond, Fallback: fallback})

	start := time.Now()
	loc := r.Resolve(context.Background())
	elapsed := time.Since(start)

	if loc != fallback {
		t.Errorf("Resolve = %+v, want fallback %+v", loc, fallback)
	}
	if elapsed > time.Second {
		t.Errorf("Resolve took %v, lookup is not bounded", elapsed)
	}
}

func TestResolveNoURL(t *testing.T) {
	r := New(Config{Fallback: fallback})
	if loc := r.Resolve(context.Background()); loc != fallback {
		t.Errorf("Resolve = %+v, want fallback %+v", loc, fallback)
	}
}

func TestResolveBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := New(Config{URL: srv.URL, Fallback: fallback})
	for i := 0; i < 10; i++ {
		if loc := r.Resolve(context.Background()); loc != fallback {
			t.Fatalf("call %d: Resolve = %+v, want fallback", i, loc)
		}
	}

	// The breaker trips after three consecutive failures; calls past
	// that must not reach the endpoint.
	if hits >= 10 {
		t.Errorf("endpoint hit %d times, breaker never opened", hits)
	}
}

func TestMapsLink(t *testing.T) {
	link := Location{Lat: -1.5, Lon: 36.25}.MapsLink()
	if !strings.HasPrefix(link, "https://www.google.com/maps?q=") {
		t.Errorf("unexpected maps link %q", link)
	}
	if !strings.Contains(link, "-1.5") || !strings.Contains(link, "36.25") {
		t.Errorf("maps link %q missing coordinates", link)
	}
}
