// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

package alert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tomtom215/ecoeye/internal/geolocate"
)

type fakeTransport struct {
	err  error
	to   string
	msg  *Message
	sent int
}

func (f *fakeTransport) Send(_ context.Context, to string, msg *Message) error {
	f.sent++
	f.to = to
	f.msg = msg
	return f.err
}

type fixedResolver struct{ loc geolocate.Location }

func (f fixedResolver) Resolve(context.Context) geolocate.Location { return f.loc }

func TestDispatchRecipientPolicy(t *testing.T) {
	cases := []struct {
		name      string
		submitter string
		fallback  string
		want      string
		dispatch  bool
	}{
		{"submitter is an address", "ranger@reserve.example", "ops@reserve.example", "ranger@reserve.example", true},
		{"submitter is not an address", "cam-07", "ops@reserve.example", "ops@reserve.example", true},
		{"empty submitter", "", "ops@reserve.example", "ops@reserve.example", true},
		{"no recipient at all", "cam-07", "", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := &fakeTransport{}
			d := NewDispatcher(tr, fixedResolver{}, tc.fallback)

			ok := d.Dispatch(context.Background(), Request{Submitter: tc.submitter, PoacherDetected: true})
			if ok != tc.dispatch {
				t.Fatalf("Dispatch = %v, want %v", ok, tc.dispatch)
			}
			if tc.dispatch && tr.to != tc.want {
				t.Errorf("recipient = %q, want %q", tr.to, tc.want)
			}
			if !tc.dispatch && tr.sent != 0 {
				t.Errorf("transport invoked %d times with no recipient", tr.sent)
			}
		})
	}
}

func TestDispatchTransportFailureIsFalseNotFatal(t *testing.T) {
	tr := &fakeTransport{err: errors.New("connection refused")}
	d := NewDispatcher(tr, fixedResolver{}, "ops@reserve.example")

	if d.Dispatch(context.Background(), Request{PoacherDetected: true}) {
		t.Error("Dispatch must report false on transport failure")
	}
}

func TestDispatchNilTransport(t *testing.T) {
	d := NewDispatcher(nil, fixedResolver{}, "ops@reserve.example")
	if d.Dispatch(context.Background(), Request{PoacherDetected: true}) {
		t.Error("Dispatch without a transport must report false")
	}
}

func TestDispatchComposesSummaryAndLocation(t *testing.T) {
	tr := &fakeTransport{}
	loc := geolocate.Location{Lat: -1.5, Lon: 36.25}
	d := NewDispatcher(tr, fixedResolver{loc: loc}, "ops@reserve.example")

	d.Dispatch(context.Background(), Request{
		Source:            "upload",
		PoacherDetected:   true,
		WeaponDetected:    true,
		PoacherConfidence: 0.9,
		WeaponConfidence:  0.5,
	})

	if tr.msg == nil {
		t.Fatal("no message composed")
	}
	body := tr.msg.Body
	for _, want := range []string{"poacher (90% confidence)", "weapon (50% confidence)", loc.MapsLink()} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestDispatchAttachesMediaWhenPresent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_cam01.jpg")
	if err := os.WriteFile(path, []byte("jpeg-bytes"), 0o600); err != nil {
		t.Fatal(err)
	}

	tr := &fakeTransport{}
	d := NewDispatcher(tr, fixedResolver{}, "ops@reserve.example")
	d.Dispatch(context.Background(), Request{MediaPath: path, PoacherDetected: true})

	if tr.msg.Attachment == nil {
		t.Fatal("expected attachment for existing media")
	}
	if tr.msg.Attachment.Filename != "processed_cam01.jpg" {
		t.Errorf("attachment name = %q", tr.msg.Attachment.Filename)
	}
}

func TestDispatchMissingMediaStillSends(t *testing.T) {
	tr := &fakeTransport{}
	d := NewDispatcher(tr, fixedResolver{}, "ops@reserve.example")

	ok := d.Dispatch(context.Background(), Request{
		MediaPath:       filepath.Join(t.TempDir(), "gone.jpg"),
		PoacherDetected: true,
	})
	if !ok {
		t.Fatal("missing attachment must not block the textual alert")
	}
	if tr.msg.Attachment != nil {
		t.Error("no attachment expected for missing media")
	}
}

func TestBuildMIMEWithAttachment(t *testing.T) {
	msg := &Message{
		Subject: "EcoEye Alert",
		Body:    "body text",
		Attachment: &Attachment{
			Filename: "frame.jpg",
			MIMEType: "image/jpeg",
			Data:     []byte{0xff, 0xd8, 0xff},
		},
	}

	raw := buildMIME("sender@example.com", "dest@example.com", msg)
	for _, want := range []string{
		"Subject: EcoEye Alert",
		"multipart/mixed",
		"Content-Transfer-Encoding: base64",
		`filename="frame.jpg"`,
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("MIME missing %q", want)
		}
	}
}
