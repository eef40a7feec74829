// Package scene classifies the kind of space visible in a frame from
// aggregate pixel statistics. Classification is heuristic: a frame is
// reduced to brightness, per-channel means and edge proxies, then matched
// against an ordered list of named profiles.
package scene

import (
	"math/rand"
	"sync"
	"time"

	"github.com/sightlinehq/sightline/pkg/frame"
)

// Classification is the result of one classification tick.
type Classification struct {
	SceneID    string    `json:"scene_id"`
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// Stats holds the aggregate pixel statistics a frame reduces to.
type Stats struct {
	Brightness float64 // mean (r+g+b)/3 over the sample, 0-255
	MeanR      float64
	MeanG      float64
	MeanB      float64
	Spread     float64 // mean max-min channel spread, a texture proxy
	EdgeRatio  float64 // fraction of sampled neighbor pairs with a sharp brightness step
	DarkRatio  float64 // fraction of samples darker than the dark cutoff
}

// Config holds tunable classification parameters.
type Config struct {
	SampleStride  int     // Sample every Nth pixel in both axes
	EdgeDelta     float64 // Brightness step that counts as an edge pair
	DarkCutoff    float64 // Samples below this brightness count as dark
	Jitter        float64 // Confidence jitter half-width
	MaxConfidence float64 // Hard confidence ceiling
}

// DefaultConfig returns the recommended classification parameters.
func DefaultConfig() Config {
	return Config{
		SampleStride:  4,
		EdgeDelta:     28,
		DarkCutoff:    50,
		Jitter:        0.05,
		MaxConfidence: 0.98,
	}
}

// Profile is one named scene with a predicate over frame statistics.
// Profiles are evaluated in declaration order and the first match wins;
// the order is a deliberate priority list, not a best-score search.
type Profile struct {
	ID    string
	Label string
	Base  float64 // Base confidence when the profile matches
	Match func(Stats) bool
}

// Classifier matches frames against an ordered profile table.
type Classifier struct {
	config   Config
	profiles []Profile

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a classifier with the given profile table.
// An empty table always yields the default classification.
func New(config Config, profiles []Profile) *Classifier {
	return &Classifier{
		config:   config,
		profiles: profiles,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewDefault creates a classifier with the built-in profile table.
func NewDefault() *Classifier {
	return New(DefaultConfig(), DefaultProfiles())
}

// Classify reduces the frame to statistics and returns the first matching
// profile, or the default "general" classification when none match.
// The returned confidence carries a small random jitter so repeated
// identical frames do not report a perfectly static value.
func (c *Classifier) Classify(f *frame.Frame) Classification {
	stats := c.Analyze(f)

	for _, p := range c.profiles {
		if p.Match(stats) {
			return c.result(p.ID, p.Label, p.Base)
		}
	}
	return c.result("general", "a general indoor space", 0.5)
}

// Analyze computes aggregate pixel statistics over a strided subsample.
func (c *Classifier) Analyze(f *frame.Frame) Stats {
	stride := c.config.SampleStride
	if stride < 1 {
		stride = 1
	}

	var (
		sumBright, sumR, sumG, sumB, sumSpread float64
		samples, darkCount                     int
		edgePairs, pairCount                   int
	)

	for y := 0; y < f.Height; y += stride {
		for x := 0; x < f.Width; x += stride {
			r, g, b := f.RGB(x, y)
			rf, gf, bf := float64(r), float64(g), float64(b)
			bright := (rf + gf + bf) / 3.0

			sumR += rf
			sumG += gf
			sumB += bf
			sumBright += bright
			sumSpread += maxChan(rf, gf, bf) - minChan(rf, gf, bf)
			if bright < c.config.DarkCutoff {
				darkCount++
			}
			samples++

			// Horizontal neighbor pair for the edge proxy.
			if x+stride < f.Width {
				next := f.Brightness(x+stride, y)
				if abs(bright-next) > c.config.EdgeDelta {
					edgePairs++
				}
				pairCount++
			}
		}
	}

	if samples == 0 {
		return Stats{}
	}

	stats := Stats{
		Brightness: sumBright / float64(samples),
		MeanR:      sumR / float64(samples),
		MeanG:      sumG / float64(samples),
		MeanB:      sumB / float64(samples),
		Spread:     sumSpread / float64(samples),
		DarkRatio:  float64(darkCount) / float64(samples),
	}
	if pairCount > 0 {
		stats.EdgeRatio = float64(edgePairs) / float64(pairCount)
	}
	return stats
}

func (c *Classifier) result(id, label string, base float64) Classification {
	c.mu.Lock()
	jitter := (c.rng.Float64()*2 - 1) * c.config.Jitter
	c.mu.Unlock()

	conf := base + jitter
	if conf < 0 {
		conf = 0
	}
	if conf > c.config.MaxConfidence {
		conf = c.config.MaxConfidence
	}

	return Classification{
		SceneID:    id,
		Label:      label,
		Confidence: conf,
		Timestamp:  time.Now(),
	}
}

func maxChan(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func minChan(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
