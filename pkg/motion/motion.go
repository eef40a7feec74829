// Package motion estimates frame-to-frame motion from brightness deltas
// on a pixel subsample. The estimator is stateful: it compares each frame
// against the immediately preceding one only, with no longer history.
package motion

import (
	"sync"

	"github.com/sightlinehq/sightline/pkg/frame"
)

// Direction is the coarse directional bias of detected motion.
type Direction string

const (
	DirectionNone    Direction = "none"
	DirectionLeft    Direction = "left"
	DirectionRight   Direction = "right"
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
	DirectionGeneral Direction = "general"
)

// Result is the outcome of one estimation tick.
type Result struct {
	Detected  bool      `json:"detected"`
	Level     float64   `json:"level"` // Relative intensity, unit-less
	Direction Direction `json:"direction"`
}

// Config holds tunable estimation parameters.
type Config struct {
	SampleStride  int     // Sample every Nth pixel in both axes
	PixelDelta    float64 // Brightness delta that counts a motion pixel
	LevelScale    float64 // Multiplier from mean delta to Level
	LevelThresh   float64 // Level above which motion is detected
	VerticalBias  float64 // Minimum |vertical bias| before up/down wins
}

// DefaultConfig returns the recommended estimation parameters.
func DefaultConfig() Config {
	return Config{
		SampleStride: 8,
		PixelDelta:   24,
		LevelScale:   10,
		LevelThresh:  8,
		VerticalBias: 3,
	}
}

// Estimator computes motion between consecutive frames. It holds the
// previous frame and overwrites it on every call, detected or not.
type Estimator struct {
	config Config

	mu   sync.Mutex
	prev *frame.Frame
}

// New creates a motion estimator.
func New(config Config) *Estimator {
	return &Estimator{config: config}
}

// Estimate compares the frame against the previous one. The first call
// (or the first after Reset) returns a no-motion result and stores the
// frame as the new baseline.
func (e *Estimator) Estimate(f *frame.Frame) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.prev
	e.prev = f

	if prev == nil || prev.Width != f.Width || prev.Height != f.Height {
		return Result{Direction: DirectionNone}
	}

	stride := e.config.SampleStride
	if stride < 1 {
		stride = 1
	}

	leftEdge := f.Width / 3
	rightEdge := f.Width - f.Width/3
	topEdge := f.Height / 3
	bottomEdge := f.Height - f.Height/3

	var (
		sumDiff, hBias, vBias float64
		samples               int
	)

	for y := 0; y < f.Height; y += stride {
		for x := 0; x < f.Width; x += stride {
			diff := f.Brightness(x, y) - prev.Brightness(x, y)
			if diff < 0 {
				diff = -diff
			}
			sumDiff += diff
			samples++

			if diff > e.config.PixelDelta {
				switch {
				case x < leftEdge:
					hBias -= diff
				case x >= rightEdge:
					hBias += diff
				}
				switch {
				case y < topEdge:
					vBias -= diff
				case y >= bottomEdge:
					vBias += diff
				}
			}
		}
	}

	if samples == 0 {
		return Result{Direction: DirectionNone}
	}

	level := sumDiff / float64(samples) * e.config.LevelScale
	if level <= e.config.LevelThresh {
		return Result{Level: level, Direction: DirectionNone}
	}

	dir := DirectionGeneral
	absH, absV := abs(hBias), abs(vBias)
	switch {
	case absH > absV && absH > 0:
		if hBias < 0 {
			dir = DirectionLeft
		} else {
			dir = DirectionRight
		}
	case absV > e.config.VerticalBias:
		if vBias < 0 {
			dir = DirectionUp
		} else {
			dir = DirectionDown
		}
	}

	return Result{Detected: true, Level: level, Direction: dir}
}

// Reset drops the stored previous frame. The next Estimate call becomes
// a baseline call. Required when camera capture restarts so no stale
// frame leaks across sessions.
func (e *Estimator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prev = nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
