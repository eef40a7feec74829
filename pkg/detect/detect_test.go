package detect

import (
	"context"
	"errors"
	"testing"

	"github.com/sightlinehq/sightline/pkg/frame"
)

func TestFilter(t *testing.T) {
	cfg := FilterConfig{MinConfidence: 0.5, MinArea: 0.01}
	dets := []Detection{
		{Label: "person", Confidence: 0.9, Box: Rect{X: 0.1, Y: 0.1, W: 0.2, H: 0.3}},
		{Label: "cup", Confidence: 0.3, Box: Rect{X: 0.5, Y: 0.5, W: 0.2, H: 0.2}},
		{Label: "noise", Confidence: 0.8, Box: Rect{X: 0.5, Y: 0.5, W: 0.01, H: 0.01}},
	}

	out := Filter(dets, cfg)
	if len(out) != 1 {
		t.Fatalf("Filter kept %d detections, want 1", len(out))
	}
	if out[0].Label != "person" {
		t.Errorf("kept %q, want person", out[0].Label)
	}
}

func TestFilterEmptyInput(t *testing.T) {
	if out := Filter(nil, DefaultFilterConfig()); len(out) != 0 {
		t.Errorf("Filter(nil) = %v, want empty", out)
	}
}

func TestNormalizeBox(t *testing.T) {
	r := NormalizeBox(160, 120, 320, 240, 640, 480)
	want := Rect{X: 0.25, Y: 0.25, W: 0.5, H: 0.5}
	if r != want {
		t.Errorf("NormalizeBox = %+v, want %+v", r, want)
	}

	if r := NormalizeBox(10, 10, 10, 10, 0, 0); r != (Rect{}) {
		t.Errorf("NormalizeBox with zero frame = %+v, want zero rect", r)
	}
}

func TestRectCenterAndArea(t *testing.T) {
	r := Rect{X: 0.2, Y: 0.4, W: 0.4, H: 0.2}
	cx, cy := r.Center()
	if cx != 0.4 || cy != 0.5 {
		t.Errorf("Center = (%v, %v), want (0.4, 0.5)", cx, cy)
	}
	if got := r.Area(); got < 0.0799 || got > 0.0801 {
		t.Errorf("Area = %v, want 0.08", got)
	}
}

func TestMockRecordsCallsAndPropagatesErrors(t *testing.T) {
	m := NewMock(Detection{Label: "chair", Confidence: 0.7})
	f := frame.Fill(8, 8, 0, 0, 0)

	dets, err := m.Detect(context.Background(), f)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(dets) != 1 || dets[0].Label != "chair" {
		t.Errorf("dets = %+v", dets)
	}
	if m.Calls() != 1 {
		t.Errorf("Calls = %d, want 1", m.Calls())
	}

	wantErr := errors.New("backend down")
	m.DetectFunc = func(context.Context, *frame.Frame) ([]Detection, error) {
		return nil, wantErr
	}
	if _, err := m.Detect(context.Background(), f); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}
