package scene

import (
	"testing"

	"github.com/sightlinehq/sightline/pkg/frame"
)

func TestClassifyIdempotentForSameFrame(t *testing.T) {
	c := NewDefault()
	f := frame.Fill(64, 48, 20, 20, 20)

	first := c.Classify(f)
	for i := 0; i < 5; i++ {
		got := c.Classify(f)
		if got.SceneID != first.SceneID {
			t.Fatalf("classification changed between identical frames: %q then %q",
				first.SceneID, got.SceneID)
		}
	}
}

func TestClassifyDarkRoom(t *testing.T) {
	c := NewDefault()
	got := c.Classify(frame.Fill(64, 48, 15, 15, 15))
	if got.SceneID != "dark_room" {
		t.Errorf("SceneID = %q, want dark_room", got.SceneID)
	}
	if got.Label != "a dark room" {
		t.Errorf("Label = %q", got.Label)
	}
}

func TestClassifyOutdoors(t *testing.T) {
	c := NewDefault()
	// Bright with a blue cast.
	got := c.Classify(frame.Fill(64, 48, 160, 180, 220))
	if got.SceneID != "outdoors" {
		t.Errorf("SceneID = %q, want outdoors", got.SceneID)
	}
}

func TestClassifyDefaultWhenNoProfileMatches(t *testing.T) {
	c := New(DefaultConfig(), nil)
	got := c.Classify(frame.Fill(32, 32, 100, 100, 100))
	if got.SceneID != "general" {
		t.Errorf("SceneID = %q, want general", got.SceneID)
	}
	if got.Label != "a general indoor space" {
		t.Errorf("Label = %q", got.Label)
	}
}

func TestFirstMatchingProfileWins(t *testing.T) {
	always := func(Stats) bool { return true }
	profiles := []Profile{
		{ID: "first", Label: "first", Base: 0.6, Match: always},
		{ID: "second", Label: "second", Base: 0.9, Match: always},
	}
	c := New(DefaultConfig(), profiles)
	got := c.Classify(frame.Fill(16, 16, 128, 128, 128))
	if got.SceneID != "first" {
		t.Errorf("SceneID = %q, want first (declaration order is priority)", got.SceneID)
	}
}

func TestConfidenceStaysWithinBounds(t *testing.T) {
	profiles := []Profile{
		{ID: "maxed", Label: "maxed", Base: 1.0, Match: func(Stats) bool { return true }},
	}
	c := New(DefaultConfig(), profiles)
	f := frame.Fill(16, 16, 128, 128, 128)

	for i := 0; i < 50; i++ {
		got := c.Classify(f)
		if got.Confidence < 0 || got.Confidence > 0.98 {
			t.Fatalf("Confidence = %v, want within [0, 0.98]", got.Confidence)
		}
	}
}

func TestAnalyzeStats(t *testing.T) {
	c := NewDefault()

	flat := c.Analyze(frame.Fill(64, 64, 100, 100, 100))
	if flat.Brightness != 100 {
		t.Errorf("Brightness = %v, want 100", flat.Brightness)
	}
	if flat.Spread != 0 {
		t.Errorf("Spread = %v, want 0 for gray frame", flat.Spread)
	}
	if flat.EdgeRatio != 0 {
		t.Errorf("EdgeRatio = %v, want 0 for flat frame", flat.EdgeRatio)
	}
	if flat.DarkRatio != 0 {
		t.Errorf("DarkRatio = %v, want 0", flat.DarkRatio)
	}

	dark := c.Analyze(frame.Fill(64, 64, 10, 10, 10))
	if dark.DarkRatio != 1 {
		t.Errorf("DarkRatio = %v, want 1 for dark frame", dark.DarkRatio)
	}

	// Vertical half split produces edge pairs at the boundary.
	split := frame.FillRegion(frame.Fill(64, 64, 0, 0, 0),
		frame.Box{X: 32, Y: 0, W: 32, H: 64}, 255, 255, 255)
	if got := c.Analyze(split); got.EdgeRatio <= 0 {
		t.Errorf("EdgeRatio = %v, want > 0 across a hard boundary", got.EdgeRatio)
	}
}
