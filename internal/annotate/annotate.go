// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

// Package annotate draws classified detections onto frames. The
// annotator mutates the passed Mat in place, following the OpenCV
// drawing convention; callers that need the original frame clone it
// first.
package annotate

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/tomtom215/ecoeye/internal/models"
)

// Palette maps semantic labels to box colors. Threats draw red,
// benign detections green, suspicious objects amber.
var palette = map[models.Label]color.RGBA{
	models.LabelPoacher:    {R: 255, A: 255},
	models.LabelWeapon:     {R: 255, A: 255},
	models.LabelSuspicious: {R: 255, G: 191, A: 255},
	models.LabelRanger:     {G: 255, A: 255},
	models.LabelOther:      {G: 255, A: 255},
}

const (
	boxThickness  = 2
	fontScale     = 0.6
	fontThickness = 2
	labelOffsetY  = 10
)

// Color returns the palette color for a label.
func Color(label models.Label) color.RGBA {
	if c, ok := palette[label]; ok {
		return c
	}
	return palette[models.LabelOther]
}

// Draw renders one box and one text label per detection onto frame.
// An empty detection slice leaves the frame untouched. The label text
// carries the semantic label and the confidence as a percentage.
func Draw(frame *gocv.Mat, detections []models.Detection) {
	for _, det := range detections {
		c := Color(det.Label)
		rect := image.Rect(det.Box[0], det.Box[1], det.Box[2], det.Box[3])
		gocv.Rectangle(frame, rect, c, boxThickness)

		text := fmt.Sprintf("%s %d%%", det.Label, int(det.Confidence*100))
		origin := image.Pt(det.Box[0], det.Box[1]-labelOffsetY)
		if origin.Y < 0 {
			origin.Y = det.Box[3] + labelOffsetY
		}
		gocv.PutText(frame, text, origin, gocv.FontHersheySimplex, fontScale, c, fontThickness)
	}
}
