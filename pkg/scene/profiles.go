package scene

// DefaultProfiles returns the built-in scene table. Order matters: the
// first matching profile wins, so more specific profiles come first.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			ID:    "dark_room",
			Label: "a dark room",
			Base:  0.8,
			Match: func(s Stats) bool {
				return s.Brightness < 55 && s.DarkRatio > 0.6
			},
		},
		{
			ID:    "outdoors",
			Label: "an outdoor area",
			Base:  0.7,
			Match: func(s Stats) bool {
				// Daylight: bright overall with a blue or green cast.
				return s.Brightness > 165 && (s.MeanB > s.MeanR+12 || s.MeanG > s.MeanR+12)
			},
		},
		{
			ID:    "office",
			Label: "an office or workspace",
			Base:  0.75,
			Match: func(s Stats) bool {
				// Even artificial light with visible structure (desks,
				// monitors, shelving) but few deep shadows.
				return s.Brightness >= 110 && s.Brightness <= 170 &&
					s.EdgeRatio > 0.04 && s.DarkRatio < 0.25
			},
		},
		{
			ID:    "kitchen",
			Label: "a kitchen",
			Base:  0.65,
			Match: func(s Stats) bool {
				// Bright, low color saturation: counters and appliances.
				return s.Brightness > 150 && s.Spread < 28 && s.EdgeRatio > 0.05
			},
		},
		{
			ID:    "living_space",
			Label: "a living space",
			Base:  0.65,
			Match: func(s Stats) bool {
				// Warm-toned medium light.
				return s.Brightness >= 90 && s.Brightness <= 160 &&
					s.MeanR > s.MeanB+10 && s.DarkRatio < 0.4
			},
		},
		{
			ID:    "bright_space",
			Label: "a brightly lit space",
			Base:  0.6,
			Match: func(s Stats) bool {
				return s.Brightness > 190
			},
		},
		{
			ID:    "dim_space",
			Label: "a dimly lit space",
			Base:  0.6,
			Match: func(s Stats) bool {
				return s.Brightness < 80
			},
		},
	}
}
