// Package detect wraps external object-detection backends behind a single
// interface and normalizes their output. Detectors are black boxes: given
// a frame they return labeled, scored bounding boxes. Everything smarter
// (tracking, narration) happens downstream.
package detect

import (
	"context"
	"errors"

	"github.com/sightlinehq/sightline/pkg/frame"
)

// Sentinel errors for common conditions.
var (
	// ErrNotInitialized is returned when the backing model failed to load.
	// Detection is skipped every tick until the detector is rebuilt.
	ErrNotInitialized = errors.New("detect: detector not initialized")

	// ErrEmptyFrame is returned when the input frame has no pixel data.
	ErrEmptyFrame = errors.New("detect: empty frame")
)

// Rect is a bounding box in normalized [0,1] coordinates. All detectors
// must convert to this convention before returning results.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Center returns the center point of the rect.
func (r Rect) Center() (x, y float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Area returns the normalized area of the rect.
func (r Rect) Area() float64 {
	return r.W * r.H
}

// Detection is one labeled, scored bounding box.
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        Rect    `json:"box"`
}

// Detector is the interface object-detection backends implement.
type Detector interface {
	// Detect finds objects in the frame. Returned boxes use normalized
	// [0,1] coordinates.
	Detect(ctx context.Context, f *frame.Frame) ([]Detection, error)

	// Close releases model resources.
	Close() error
}

// FilterConfig guards against detector noise.
type FilterConfig struct {
	MinConfidence float64 // Drop detections scored below this
	MinArea       float64 // Drop boxes smaller than this normalized area
}

// DefaultFilterConfig returns the recommended noise filter.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MinConfidence: 0.45,
		MinArea:       0.0015, // Tiny boxes are usually model noise
	}
}

// Filter drops detections below the confidence and box-area floors.
func Filter(dets []Detection, cfg FilterConfig) []Detection {
	out := make([]Detection, 0, len(dets))
	for _, d := range dets {
		if d.Confidence < cfg.MinConfidence {
			continue
		}
		if d.Box.Area() < cfg.MinArea {
			continue
		}
		out = append(out, d)
	}
	return out
}

// NormalizeBox converts a pixel-coordinate box to the normalized
// convention, for detectors that report pixel coordinates.
func NormalizeBox(x, y, w, h float64, frameW, frameH int) Rect {
	if frameW <= 0 || frameH <= 0 {
		return Rect{}
	}
	return Rect{
		X: x / float64(frameW),
		Y: y / float64(frameH),
		W: w / float64(frameW),
		H: h / float64(frameH),
	}
}
