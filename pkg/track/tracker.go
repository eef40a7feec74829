// Package track maintains object identity across detection ticks.
// Matching is greedy: each detection claims the nearest unclaimed prior
// object of the same class within a maximum distance. No global optimal
// assignment is attempted; first-come wins is an accepted approximation.
package track

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sightlinehq/sightline/pkg/detect"
	"github.com/sightlinehq/sightline/pkg/frame"
)

// Velocity is per-tick center displacement in normalized coordinates.
type Velocity struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Object is a detection with a stable identity. Identity holds only
// while the object is continuously matched; a gap mints a new one.
type Object struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	Confidence  float64     `json:"confidence"`
	Box         detect.Rect `json:"box"`
	Velocity    Velocity    `json:"velocity"`
	Persistence int         `json:"persistence"` // Consecutive ticks matched
	FirstSeen   time.Time   `json:"first_seen"`
	LastSeen    time.Time   `json:"last_seen"`
}

// Moving reports whether the object's center displaced more than the
// given normalized distance on the last tick.
func (o Object) Moving(threshold float64) bool {
	return math.Hypot(o.Velocity.DX, o.Velocity.DY) > threshold
}

// Config holds tracker tuning.
type Config struct {
	// MaxDistance is the maximum normalized center distance for a
	// detection to inherit a prior object's identity.
	MaxDistance float64

	// Filter guards against detector noise before tracking.
	Filter detect.FilterConfig
}

// DefaultConfig returns the recommended tracker tuning.
func DefaultConfig() Config {
	return Config{
		MaxDistance: 0.18,
		Filter:      detect.DefaultFilterConfig(),
	}
}

// Tracker matches each tick's detections against the previous tick's
// tracked list (depth-1 history; unmatched prior objects are dropped
// immediately with no explicit lost event).
type Tracker struct {
	config   Config
	detector detect.Detector

	mu   sync.Mutex
	prev []Object
}

// New creates a tracker around a detection backend.
// The detector may be nil if only Track is used.
func New(config Config, detector detect.Detector) *Tracker {
	return &Tracker{config: config, detector: detector}
}

// Observe runs the detector on the frame, filters the raw detections and
// folds them into the tracked list.
func (t *Tracker) Observe(ctx context.Context, f *frame.Frame) ([]Object, error) {
	if t.detector == nil {
		return nil, detect.ErrNotInitialized
	}
	dets, err := t.detector.Detect(ctx, f)
	if err != nil {
		return nil, err
	}
	return t.Track(detect.Filter(dets, t.config.Filter)), nil
}

// Track folds already-filtered detections into the tracked list and
// returns the new list. Matched objects keep their identity with
// persistence incremented and velocity recomputed from center
// displacement; unmatched detections start fresh.
func (t *Tracker) Track(dets []detect.Detection) []Object {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	claimed := make([]bool, len(t.prev))
	next := make([]Object, 0, len(dets))

	for _, d := range dets {
		cx, cy := d.Box.Center()

		bestIdx := -1
		bestDist := t.config.MaxDistance
		for i, p := range t.prev {
			if claimed[i] || p.Label != d.Label {
				continue
			}
			px, py := p.Box.Center()
			dist := math.Hypot(cx-px, cy-py)
			if dist < bestDist {
				bestDist = dist
				bestIdx = i
			}
		}

		if bestIdx >= 0 {
			p := t.prev[bestIdx]
			claimed[bestIdx] = true
			px, py := p.Box.Center()
			next = append(next, Object{
				ID:          p.ID,
				Label:       d.Label,
				Confidence:  d.Confidence,
				Box:         d.Box,
				Velocity:    Velocity{DX: cx - px, DY: cy - py},
				Persistence: p.Persistence + 1,
				FirstSeen:   p.FirstSeen,
				LastSeen:    now,
			})
			continue
		}

		next = append(next, Object{
			ID:          uuid.NewString(),
			Label:       d.Label,
			Confidence:  d.Confidence,
			Box:         d.Box,
			Persistence: 1,
			FirstSeen:   now,
			LastSeen:    now,
		})
	}

	t.prev = next

	out := make([]Object, len(next))
	copy(out, next)
	return out
}

// Objects returns a copy of the current tracked list.
func (t *Tracker) Objects() []Object {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Object, len(t.prev))
	copy(out, t.prev)
	return out
}

// Labels returns the set of distinct labels currently tracked.
func (t *Tracker) Labels() map[string]bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	set := make(map[string]bool, len(t.prev))
	for _, o := range t.prev {
		set[o.Label] = true
	}
	return set
}

// Reset drops all tracked objects. Identities do not survive a camera
// stop/start cycle; every object is rediscovered fresh.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prev = nil
}
