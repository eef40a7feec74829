// Package pipeline runs the perception components on independent timers
// and fuses their latest outputs into narration. Each component keeps its
// own cadence; the store tolerates any mix of fresh and stale outputs.
package pipeline

import "time"

// Config holds the per-component cadences.
type Config struct {
	// DetectPeriod is the object detection + tracking cadence (fastest).
	DetectPeriod time.Duration `json:"detect_period"`

	// MotionPeriod is the frame-differencing cadence.
	MotionPeriod time.Duration `json:"motion_period"`

	// TextPeriod is the text-region scan cadence.
	TextPeriod time.Duration `json:"text_period"`

	// ScenePeriod is the scene classification cadence (slowest; scenes
	// change on the order of seconds).
	ScenePeriod time.Duration `json:"scene_period"`

	// NarratePeriod is how often the narration policy is consulted.
	NarratePeriod time.Duration `json:"narrate_period"`
}

// DefaultConfig returns cadences tuned for a 15fps camera.
func DefaultConfig() Config {
	return Config{
		DetectPeriod:  350 * time.Millisecond,
		MotionPeriod:  300 * time.Millisecond,
		TextPeriod:    600 * time.Millisecond,
		ScenePeriod:   4 * time.Second,
		NarratePeriod: 1500 * time.Millisecond,
	}
}

// Validate checks that every cadence is positive.
func (c Config) Validate() error {
	for _, d := range []time.Duration{
		c.DetectPeriod, c.MotionPeriod, c.TextPeriod, c.ScenePeriod, c.NarratePeriod,
	} {
		if d <= 0 {
			return errInvalidPeriod
		}
	}
	return nil
}
