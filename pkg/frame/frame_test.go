package frame

import (
	"errors"
	"testing"
)

func TestNewRejectsMismatchedBuffer(t *testing.T) {
	if _, err := New(make([]byte, 10), 4, 4); err == nil {
		t.Fatal("expected error for short buffer")
	}
	f, err := New(make([]byte, 4*4*4), 4, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.Valid() {
		t.Error("frame should be valid")
	}
}

func TestFillAndBrightness(t *testing.T) {
	f := Fill(8, 8, 30, 60, 90)
	r, g, b := f.RGB(3, 5)
	if r != 30 || g != 60 || b != 90 {
		t.Errorf("RGB = (%d, %d, %d), want (30, 60, 90)", r, g, b)
	}
	if got := f.Brightness(0, 0); got != 60 {
		t.Errorf("Brightness = %v, want 60", got)
	}
	if f.Pixels() != 64 {
		t.Errorf("Pixels = %d, want 64", f.Pixels())
	}
}

func TestFillRegionClipsAndPreserves(t *testing.T) {
	f := Fill(10, 10, 0, 0, 0)
	out := FillRegion(f, Box{X: 8, Y: 8, W: 5, H: 5}, 255, 255, 255)

	if got := out.Brightness(9, 9); got != 255 {
		t.Errorf("inside region brightness = %v, want 255", got)
	}
	if got := out.Brightness(0, 0); got != 0 {
		t.Errorf("outside region brightness = %v, want 0", got)
	}
	// Original frame untouched.
	if got := f.Brightness(9, 9); got != 0 {
		t.Errorf("original frame modified, brightness = %v", got)
	}
}

func TestBoxOverlapsAndUnion(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Box
		overlap bool
	}{
		{"identical", Box{0, 0, 10, 10}, Box{0, 0, 10, 10}, true},
		{"partial", Box{0, 0, 10, 10}, Box{5, 5, 10, 10}, true},
		{"touching edges", Box{0, 0, 10, 10}, Box{10, 0, 10, 10}, false},
		{"disjoint", Box{0, 0, 10, 10}, Box{20, 20, 5, 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.overlap {
				t.Errorf("Overlaps = %v, want %v", got, tt.overlap)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.overlap {
				t.Errorf("Overlaps not symmetric")
			}
		})
	}

	u := Box{0, 0, 10, 10}.Union(Box{5, 5, 10, 10})
	want := Box{0, 0, 15, 15}
	if u != want {
		t.Errorf("Union = %+v, want %+v", u, want)
	}
}

func TestStaticSourceLifecycle(t *testing.T) {
	src := NewStaticSource()

	if _, err := src.Capture(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Capture before Set: err = %v, want ErrNotReady", err)
	}

	src.Set(Fill(4, 4, 1, 2, 3))
	f, err := src.Capture()
	if err != nil {
		t.Fatalf("Capture after Set: %v", err)
	}
	if f.Width != 4 || f.Height != 4 {
		t.Errorf("frame size = %dx%d, want 4x4", f.Width, f.Height)
	}

	if err := src.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := src.Capture(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Capture after Close: err = %v, want ErrNotReady", err)
	}
}
