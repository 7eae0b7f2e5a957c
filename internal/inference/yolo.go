// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

package inference

import (
	"context"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/tomtom215/ecoeye/internal/models"
)

// nmsThreshold is the IoU threshold for non-maximum suppression.
const nmsThreshold = 0.45

// YOLOEngine runs a YOLO ONNX model through the OpenCV DNN backend.
//
// A single cv::dnn::Net is not safe for unsynchronized concurrent
// Forward calls, so all inference is serialized behind a mutex. Jobs
// and live frames queue on the same model instance; per-worker model
// instances were rejected to keep one copy of the weights in memory.
type YOLOEngine struct {
	mu        sync.Mutex
	net       gocv.Net
	inputSize int
	closed    bool
}

// NewYOLOEngine loads the ONNX model at path.
func NewYOLOEngine(path string, inputSize int) (*YOLOEngine, error) {
	net := gocv.ReadNetFromONNX(path)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load model from %s", path)
	}
	if inputSize <= 0 {
		inputSize = 640
	}
	return &YOLOEngine{net: net, inputSize: inputSize}, nil
}

// Detect runs one forward pass and decodes the output into raw
// detections in the frame's pixel space.
func (e *YOLOEngine) Detect(ctx context.Context, frame gocv.Mat, minConfidence float64) ([]models.RawDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if frame.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, fmt.Errorf("engine closed")
	}

	blob := gocv.BlobFromImage(frame, 1.0/255.0,
		image.Pt(e.inputSize, e.inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	e.net.SetInput(blob, "")
	output := e.net.Forward("")
	defer output.Close()

	return e.decode(output, frame.Cols(), frame.Rows(), float32(minConfidence))
}

// decode converts the raw network output (1 x attrs x candidates, with
// attrs = 4 box values + one score per class) into detections scaled to
// the original frame, applying the confidence floor and NMS.
func (e *YOLOEngine) decode(output gocv.Mat, frameW, frameH int, minConfidence float32) ([]models.RawDetection, error) {
	dims := output.Size()
	if len(dims) != 3 {
		return nil, fmt.Errorf("unexpected output shape %v", dims)
	}
	attrs, candidates := dims[1], dims[2]
	numClasses := attrs - 4
	if numClasses <= 0 {
		return nil, fmt.Errorf("unexpected attribute count %d", attrs)
	}

	flat := output.Reshape(1, attrs)
	defer flat.Close()
	cands := gocv.NewMat()
	defer cands.Close()
	gocv.Transpose(flat, &cands)

	scaleX := float32(frameW) / float32(e.inputSize)
	scaleY := float32(frameH) / float32(e.inputSize)

	var (
		boxes    []image.Rectangle
		scores   []float32
		classIDs []int
	)

	for i := 0; i < candidates; i++ {
		classID, score := 0, float32(0)
		for c := 0; c < numClasses; c++ {
			if s := cands.GetFloatAt(i, 4+c); s > score {
				score = s
				classID = c
			}
		}
		if score < minConfidence {
			continue
		}

		cx := cands.GetFloatAt(i, 0) * scaleX
		cy := cands.GetFloatAt(i, 1) * scaleY
		w := cands.GetFloatAt(i, 2) * scaleX
		h := cands.GetFloatAt(i, 3) * scaleY

		boxes = append(boxes, image.Rect(
			int(cx-w/2), int(cy-h/2), int(cx+w/2), int(cy+h/2),
		))
		scores = append(scores, score)
		classIDs = append(classIDs, classID)
	}

	if len(boxes) == 0 {
		return nil, nil
	}

	keep := gocv.NMSBoxes(boxes, scores, minConfidence, nmsThreshold)
	out := make([]models.RawDetection, 0, len(keep))
	for _, idx := range keep {
		box := boxes[idx].Intersect(image.Rect(0, 0, frameW, frameH))
		out = append(out, models.RawDetection{
			ClassID:    classIDs[idx],
			Confidence: float64(scores[idx]),
			Box:        models.Box{box.Min.X, box.Min.Y, box.Max.X, box.Max.Y},
		})
	}
	return out, nil
}

// Close releases the model.
func (e *YOLOEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.net.Close()
}
