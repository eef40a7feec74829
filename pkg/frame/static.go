package frame

import "sync"

// StaticSource is a Source backed by a settable frame. Used in tests and
// as a stand-in when no camera is attached.
type StaticSource struct {
	mu     sync.RWMutex
	frame  *Frame
	closed bool
}

// NewStaticSource creates a source with no frame loaded.
// Capture returns ErrNotReady until Set is called.
func NewStaticSource() *StaticSource {
	return &StaticSource{}
}

// Set replaces the frame returned by Capture.
func (s *StaticSource) Set(f *Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = f
}

// Capture returns the current frame, or ErrNotReady if none is set.
func (s *StaticSource) Capture() (*Frame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed || s.frame == nil {
		return nil, ErrNotReady
	}
	return s.frame, nil
}

// Close marks the source closed; subsequent captures return ErrNotReady.
func (s *StaticSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.frame = nil
	return nil
}

// Verify StaticSource implements Source at compile time.
var _ Source = (*StaticSource)(nil)

// Fill creates a frame filled with a single RGB color. Alpha is 255.
func Fill(width, height int, r, g, b byte) *Frame {
	pix := make([]byte, width*height*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i] = r
		pix[i+1] = g
		pix[i+2] = b
		pix[i+3] = 255
	}
	return &Frame{Pix: pix, Width: width, Height: height}
}

// FillRegion overwrites a rectangular region of the frame with a color,
// returning a new frame. Out-of-bounds parts of the region are clipped.
func FillRegion(f *Frame, box Box, r, g, b byte) *Frame {
	pix := make([]byte, len(f.Pix))
	copy(pix, f.Pix)
	out := &Frame{Pix: pix, Width: f.Width, Height: f.Height}
	for y := max(box.Y, 0); y < min(box.Y+box.H, f.Height); y++ {
		for x := max(box.X, 0); x < min(box.X+box.W, f.Width); x++ {
			i := (y*f.Width + x) * 4
			pix[i] = r
			pix[i+1] = g
			pix[i+2] = b
			pix[i+3] = 255
		}
	}
	return out
}
