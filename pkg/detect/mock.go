package detect

import (
	"context"
	"sync"

	"github.com/sightlinehq/sightline/pkg/frame"
)

// Mock implements Detector for testing.
// All methods can be customized via function fields.
type Mock struct {
	// DetectFunc is called when Detect is invoked.
	// If nil, returns the Detections field.
	DetectFunc func(ctx context.Context, f *frame.Frame) ([]Detection, error)

	// CloseFunc is called when Close is invoked. If nil, returns nil.
	CloseFunc func() error

	// Detections is returned by Detect when DetectFunc is nil.
	Detections []Detection

	mu    sync.Mutex
	calls int
}

// NewMock creates a mock detector that returns the given detections.
func NewMock(dets ...Detection) *Mock {
	return &Mock{Detections: dets}
}

// Detect returns canned detections or delegates to DetectFunc.
func (m *Mock) Detect(ctx context.Context, f *frame.Frame) ([]Detection, error) {
	m.mu.Lock()
	m.calls++
	fn := m.DetectFunc
	out := make([]Detection, len(m.Detections))
	copy(out, m.Detections)
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, f)
	}
	return out, nil
}

// Close delegates to CloseFunc if set.
func (m *Mock) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Calls returns how many times Detect was invoked.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Set replaces the canned detections for subsequent Detect calls.
func (m *Mock) Set(dets ...Detection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Detections = dets
}

// Verify Mock implements Detector at compile time.
var _ Detector = (*Mock)(nil)
