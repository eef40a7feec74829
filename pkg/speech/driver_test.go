package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sightlinehq/sightline/pkg/tts"
)

// statusRecorder collects every driver transition.
type statusRecorder struct {
	mu       sync.Mutex
	statuses []Status
}

func (r *statusRecorder) record(s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
}

func (r *statusRecorder) all() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Status, len(r.statuses))
	copy(out, r.statuses)
	return out
}

func (r *statusRecorder) waitIdle(t *testing.T, d *Driver) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if d.State() == StateIdle {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("driver did not return to idle")
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.CancelSettle = 50 * time.Millisecond
	cfg.SafetyTimeout = 200 * time.Millisecond
	return cfg
}

func TestSayRejectsEmptyText(t *testing.T) {
	d := NewDriver(testConfig(), tts.NewMock(), NullSink{})
	if err := d.Say(context.Background(), ""); !errors.Is(err, ErrNoText) {
		t.Errorf("err = %v, want ErrNoText", err)
	}
}

func TestSaySpeaksAndReturnsToIdle(t *testing.T) {
	rec := &statusRecorder{}
	d := NewDriver(testConfig(), tts.NewMock(), NullSink{})
	d.OnStatus = rec.record

	if err := d.Say(context.Background(), "hi"); err != nil {
		t.Fatalf("Say: %v", err)
	}
	if d.State() != StateSpeaking {
		t.Errorf("State = %q immediately after Say, want speaking", d.State())
	}

	rec.waitIdle(t, d)

	statuses := rec.all()
	if len(statuses) < 2 {
		t.Fatalf("recorded %d statuses, want speaking then idle", len(statuses))
	}
	if statuses[0].State != StateSpeaking || statuses[0].Utterance != "hi" {
		t.Errorf("first status = %+v", statuses[0])
	}
	last := statuses[len(statuses)-1]
	if last.State != StateIdle || last.Err != nil {
		t.Errorf("last status = %+v, want clean idle", last)
	}
}

func TestSayCancelsInFlightUtterance(t *testing.T) {
	started := make(chan struct{}, 1)
	provider := tts.NewMock()
	base := provider.SynthesizeFunc
	provider.SynthesizeFunc = func(ctx context.Context, text string) (*tts.AudioResult, error) {
		// Long utterance: 100 chars * 20ms = 2s of audio.
		res, err := base(ctx, text)
		select {
		case started <- struct{}{}:
		default:
		}
		return res, err
	}

	d := NewDriver(testConfig(), provider, NullSink{})

	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}
	if err := d.Say(context.Background(), string(long)); err != nil {
		t.Fatalf("Say: %v", err)
	}
	<-started

	start := time.Now()
	if err := d.Say(context.Background(), "next"); err != nil {
		t.Fatalf("second Say: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("second Say blocked %v, the first utterance was not cancelled", elapsed)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && d.State() != StateIdle {
		time.Sleep(5 * time.Millisecond)
	}
	if d.State() != StateIdle {
		t.Error("driver stuck after replacement utterance")
	}
}

func TestStopIsSafeWhenIdle(t *testing.T) {
	d := NewDriver(testConfig(), tts.NewMock(), NullSink{})
	d.Stop()
	d.Stop()
}

func TestSynthesisFailureSurfacesThroughStatus(t *testing.T) {
	rec := &statusRecorder{}
	boom := errors.New("synthesis exploded")
	d := NewDriver(testConfig(), tts.WithError(boom), NullSink{})
	d.OnStatus = rec.record

	if err := d.Say(context.Background(), "hi"); err != nil {
		t.Fatalf("Say must not fail synchronously: %v", err)
	}
	rec.waitIdle(t, d)

	var sawErr bool
	for _, s := range rec.all() {
		if s.Err != nil && errors.Is(s.Err, boom) {
			sawErr = true
		}
	}
	if !sawErr {
		t.Error("synthesis failure never surfaced through OnStatus")
	}
}

func TestSafetyTimeoutForcesIdle(t *testing.T) {
	// A sink that never finishes and ignores cancellation.
	stuck := stuckSink{}
	d := NewDriver(testConfig(), tts.NewMock(), stuck)

	if err := d.Say(context.Background(), "hi"); err != nil {
		t.Fatalf("Say: %v", err)
	}

	// Expected duration 40ms + safety timeout 200ms.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && d.State() != StateIdle {
		time.Sleep(10 * time.Millisecond)
	}
	if d.State() != StateIdle {
		t.Error("watchdog did not force the driver back to idle")
	}
}

// stuckSink blocks forever regardless of context. Simulates a wedged
// audio backend.
type stuckSink struct{}

func (stuckSink) Play(ctx context.Context, pcm []byte, sampleRate int) error {
	select {}
}
func (stuckSink) Close() error { return nil }

func TestSelectVoicePrefersHints(t *testing.T) {
	cfg := testConfig()
	cfg.VoiceHints = []string{"en-GB"}

	d := NewDriver(cfg, tts.NewMock(), NullSink{})
	got := d.SelectVoice(context.Background())
	if got != "en-GB-Standard-B" {
		t.Errorf("SelectVoice = %q, want the en-GB hint match", got)
	}

	// Cached on subsequent calls.
	if again := d.SelectVoice(context.Background()); again != got {
		t.Errorf("cached voice changed: %q then %q", again, got)
	}
}

func TestSelectVoiceFallsBackToFirst(t *testing.T) {
	cfg := testConfig()
	cfg.VoiceHints = []string{"ja-JP"}

	d := NewDriver(cfg, tts.NewMock(), NullSink{})
	if got := d.SelectVoice(context.Background()); got != "en-US-Standard-C" {
		t.Errorf("SelectVoice = %q, want first available voice", got)
	}
}

func TestSelectVoiceRetriesWhileListEmpty(t *testing.T) {
	provider := tts.NewMock()
	provider.VoiceList = nil

	d := NewDriver(testConfig(), provider, NullSink{})
	if got := d.SelectVoice(context.Background()); got != "" {
		t.Errorf("SelectVoice with empty list = %q, want empty", got)
	}

	// List populates later; the next call must pick it up.
	provider.VoiceList = []tts.Voice{{Name: "en-US-Neural2-F", Locale: "en-US"}}
	if got := d.SelectVoice(context.Background()); got != "en-US-Neural2-F" {
		t.Errorf("SelectVoice after population = %q", got)
	}
}
