package textscan

import (
	"testing"

	"github.com/sightlinehq/sightline/pkg/frame"
)

// stripedFrame paints vertical black/white stripes into a region of an
// otherwise flat gray frame. Stripes produce the dense horizontal edge
// pairs and light/dark alternations the scanner looks for.
func stripedFrame(w, h int, region frame.Box, stripe int) *frame.Frame {
	f := frame.Fill(w, h, 128, 128, 128)
	for x := region.X; x < region.X+region.W; x += stripe * 2 {
		f = frame.FillRegion(f, frame.Box{X: x, Y: region.Y, W: stripe, H: region.H}, 255, 255, 255)
		f = frame.FillRegion(f, frame.Box{X: x + stripe, Y: region.Y, W: stripe, H: region.H}, 0, 0, 0)
	}
	return f
}

func TestScanBlankFrameFindsNothing(t *testing.T) {
	s := New(DefaultConfig())
	got := s.Scan(frame.Fill(320, 240, 128, 128, 128))
	if got.HasText {
		t.Errorf("flat frame reported text: %+v", got.Regions)
	}
	if got.BestGuess != "" {
		t.Errorf("BestGuess = %q, want empty", got.BestGuess)
	}
}

func TestScanInvalidFrame(t *testing.T) {
	s := New(DefaultConfig())
	if got := s.Scan(&frame.Frame{}); got.HasText {
		t.Error("invalid frame reported text")
	}
}

func TestScanFindsStripedRegion(t *testing.T) {
	s := New(DefaultConfig())
	region := frame.Box{X: 48, Y: 48, W: 144, H: 48}
	got := s.Scan(stripedFrame(320, 240, region, 3))

	if !got.HasText {
		t.Fatal("striped region not detected")
	}
	if len(got.Regions) == 0 {
		t.Fatal("no regions returned")
	}

	// The merged region must cover the striped area.
	best := got.Regions[0]
	for _, r := range got.Regions[1:] {
		if r.Confidence > best.Confidence {
			best = r
		}
	}
	if !best.Box.Overlaps(region) {
		t.Errorf("best region %+v does not overlap striped area %+v", best.Box, region)
	}
	if best.MergedFrom < 2 {
		t.Errorf("MergedFrom = %d, want overlapping blocks merged", best.MergedFrom)
	}
}

func TestScanDropsUndersizedRegions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinWidth = 500
	cfg.MinHeight = 500
	s := New(cfg)

	got := s.Scan(stripedFrame(320, 240, frame.Box{X: 48, Y: 48, W: 144, H: 48}, 3))
	if got.HasText {
		t.Error("region below minimum size still reported as text")
	}
}

func TestMergeRegions(t *testing.T) {
	in := []Region{
		{Box: frame.Box{X: 0, Y: 0, W: 48, H: 48}, Confidence: 0.4, MergedFrom: 1},
		{Box: frame.Box{X: 24, Y: 0, W: 48, H: 48}, Confidence: 0.6, MergedFrom: 1},
		{Box: frame.Box{X: 200, Y: 200, W: 48, H: 48}, Confidence: 0.5, MergedFrom: 1},
	}

	out := mergeRegions(in)
	if len(out) != 2 {
		t.Fatalf("merged into %d regions, want 2", len(out))
	}
	merged := out[0]
	if merged.Box.W != 72 {
		t.Errorf("merged width = %d, want 72", merged.Box.W)
	}
	if merged.Confidence != 0.6 {
		t.Errorf("merged confidence = %v, want max 0.6", merged.Confidence)
	}
	if merged.MergedFrom != 2 {
		t.Errorf("MergedFrom = %d, want 2", merged.MergedFrom)
	}
}

func TestGuessContentContract(t *testing.T) {
	tests := []struct {
		name string
		box  frame.Box
		pool []string
	}{
		{"banner aspect", frame.Box{X: 10, Y: 10, W: 300, H: 40}, bannerWords},
		{"sign aspect", frame.Box{X: 10, Y: 10, W: 120, H: 60}, signWords},
		{"label aspect", frame.Box{X: 10, Y: 10, W: 50, H: 50}, labelWords},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := guessContent(tt.box)
			found := false
			for _, w := range tt.pool {
				if got == w {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("guessContent(%+v) = %q, not in expected pool", tt.box, got)
			}

			// Same geometry, same guess.
			if again := guessContent(tt.box); again != got {
				t.Errorf("guess changed for identical box: %q then %q", got, again)
			}
		})
	}

	if got := guessContent(frame.Box{W: 10, H: 0}); got != "" {
		t.Errorf("guessContent with zero height = %q, want empty", got)
	}
}
