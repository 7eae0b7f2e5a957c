// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"

	"github.com/tomtom215/ecoeye/internal/classify"
	"github.com/tomtom215/ecoeye/internal/inference"
	"github.com/tomtom215/ecoeye/internal/models"
)

func writeTestImage(t *testing.T, dir, name string) string {
	t.Helper()
	frame := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer frame.Close()

	path := filepath.Join(dir, name)
	if ok := gocv.IMWrite(path, frame); !ok {
		t.Fatalf("could not write test image %s", path)
	}
	return path
}

func testDeps(engine inference.Engine) Deps {
	return Deps{
		Engine:          engine,
		Classifier:      classify.New(classify.DefaultTable(nil)),
		ImageConfidence: 0.05,
		VideoConfidence: 0.15,
	}
}

func TestForPathDispatch(t *testing.T) {
	deps := testDeps(&inference.Fake{})

	if _, ok := ForPath("cam01.JPG", deps).(*imageProcessor); !ok {
		t.Error("jpg must dispatch to the image processor")
	}
	if _, ok := ForPath("clip.mp4", deps).(*videoProcessor); !ok {
		t.Error("mp4 must dispatch to the video processor")
	}
	if _, ok := ForPath("noext", deps).(*videoProcessor); !ok {
		t.Error("unknown extensions fall through to the video processor")
	}
}

func TestKind(t *testing.T) {
	if Kind("a.webp") != "image" {
		t.Error(`Kind("a.webp") != "image"`)
	}
	if Kind("a.avi") != "video" {
		t.Error(`Kind("a.avi") != "video"`)
	}
}

func TestImageProcessFullDetail(t *testing.T) {
	dir := t.TempDir()
	input := writeTestImage(t, dir, "cam01.png")
	output := filepath.Join(dir, "processed_cam01.png")

	engine := &inference.Fake{Detections: []models.RawDetection{
		{ClassID: 0, Confidence: 0.9, Box: models.Box{10, 10, 100, 200}},
		{ClassID: 43, Confidence: 0.5, Box: models.Box{50, 60, 90, 120}},
		{ClassID: 1, Confidence: 0.99, Box: models.Box{0, 0, 5, 5}}, // unknown class
	}}

	outcome, err := ForPath(input, testDeps(engine)).Process(context.Background(), input, output)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(outcome.Detections) != 2 {
		t.Fatalf("detections = %d, want 2 (unknown class dropped)", len(outcome.Detections))
	}
	if !outcome.PoacherDetected || outcome.PoacherConfidence != 0.9 {
		t.Errorf("poacher aggregate = (%v, %v), want (true, 0.9)",
			outcome.PoacherDetected, outcome.PoacherConfidence)
	}
	if !outcome.WeaponDetected || outcome.WeaponConfidence != 0.5 {
		t.Errorf("weapon aggregate = (%v, %v), want (true, 0.5)",
			outcome.WeaponDetected, outcome.WeaponConfidence)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("annotated output not written: %v", err)
	}
}

func TestImageProcessNoDetections(t *testing.T) {
	dir := t.TempDir()
	input := writeTestImage(t, dir, "empty.png")
	output := filepath.Join(dir, "processed_empty.png")

	outcome, err := ForPath(input, testDeps(&inference.Fake{})).Process(context.Background(), input, output)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if outcome.Alerting() {
		t.Error("no detections must not alert")
	}
	if len(outcome.Detections) != 0 {
		t.Errorf("detections = %d, want 0", len(outcome.Detections))
	}
}

func TestImageProcessUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "corrupt.png")
	if err := os.WriteFile(input, []byte("not an image"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := ForPath(input, testDeps(&inference.Fake{})).Process(
		context.Background(), input, filepath.Join(dir, "out.png"))
	if err == nil {
		t.Fatal("corrupt input must return an error")
	}
}

func TestVideoProcessUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "corrupt.mp4")
	if err := os.WriteFile(input, []byte("not a video"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := ForPath(input, testDeps(&inference.Fake{})).Process(
		context.Background(), input, filepath.Join(dir, "out.mp4"))
	if err == nil {
		t.Fatal("corrupt input must return an error")
	}
}
