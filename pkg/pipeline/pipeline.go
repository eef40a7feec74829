package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sightlinehq/sightline/internal/log"
	"github.com/sightlinehq/sightline/pkg/frame"
	"github.com/sightlinehq/sightline/pkg/motion"
	"github.com/sightlinehq/sightline/pkg/narrate"
	"github.com/sightlinehq/sightline/pkg/scene"
	"github.com/sightlinehq/sightline/pkg/speech"
	"github.com/sightlinehq/sightline/pkg/textscan"
	"github.com/sightlinehq/sightline/pkg/track"
)

var errInvalidPeriod = errors.New("pipeline: component period must be positive")

// Supervisor owns the perception components and the narration loop.
// All mutation of narration state happens on the Run goroutine; the
// store serializes reads for observers.
type Supervisor struct {
	config Config

	source   frame.Source
	scenes   *scene.Classifier
	motioner *motion.Estimator
	tracker  *track.Tracker
	scanner  *textscan.Scanner
	narrator *narrate.Engine
	speaker  *speech.Driver

	// OnSnapshot, if set, receives the fused state after every change.
	// Called from the Run goroutine; implementations must be fast.
	OnSnapshot func(Snapshot)

	mu      sync.Mutex
	store   *store
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New assembles a supervisor from already-constructed components.
// The speaker may be nil for silent observation.
func New(
	config Config,
	source frame.Source,
	scenes *scene.Classifier,
	motioner *motion.Estimator,
	tracker *track.Tracker,
	scanner *textscan.Scanner,
	narrator *narrate.Engine,
	speaker *speech.Driver,
) (*Supervisor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Supervisor{
		config:   config,
		source:   source,
		scenes:   scenes,
		motioner: motioner,
		tracker:  tracker,
		scanner:  scanner,
		narrator: narrator,
		speaker:  speaker,
		store:    newStore(),
	}, nil
}

// Running reports whether the perception loop is active.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Snapshot returns the current fused state.
func (s *Supervisor) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.snapshot(s.running)
}

// Run drives the perception timers until the context ends or Stop is
// called. Each component runs at its own cadence; a slow tick never
// delays the others beyond the shared loop iteration.
func (s *Supervisor) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("pipeline: already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.running = true
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	defer close(done)
	defer cancel()

	if s.speaker != nil {
		if v := s.speaker.SelectVoice(runCtx); v != "" {
			log.Info("pipeline voice selected", "voice", v)
		}
	}

	detectT := time.NewTicker(s.config.DetectPeriod)
	motionT := time.NewTicker(s.config.MotionPeriod)
	textT := time.NewTicker(s.config.TextPeriod)
	sceneT := time.NewTicker(s.config.ScenePeriod)
	narrateT := time.NewTicker(s.config.NarratePeriod)
	defer func() {
		detectT.Stop()
		motionT.Stop()
		textT.Stop()
		sceneT.Stop()
		narrateT.Stop()
	}()

	log.Info("pipeline started",
		"detect", s.config.DetectPeriod,
		"scene", s.config.ScenePeriod,
		"narrate", s.config.NarratePeriod,
	)

	// last guards against burst ticks after a stall; a component that
	// fires early is skipped rather than run back to back.
	last := map[string]time.Time{}
	due := func(name string, period time.Duration) bool {
		if time.Since(last[name]) < period/2 {
			return false
		}
		last[name] = time.Now()
		return true
	}

	for {
		select {
		case <-runCtx.Done():
			s.shutdown()
			return runCtx.Err()

		case <-detectT.C:
			if due("detect", s.config.DetectPeriod) {
				s.tickDetect(runCtx)
			}
		case <-motionT.C:
			if due("motion", s.config.MotionPeriod) {
				s.tickMotion()
			}
		case <-textT.C:
			if due("text", s.config.TextPeriod) {
				s.tickText()
			}
		case <-sceneT.C:
			if due("scene", s.config.ScenePeriod) {
				s.tickScene()
			}
		case <-narrateT.C:
			if due("narrate", s.config.NarratePeriod) {
				s.tickNarrate(runCtx)
			}
		}
	}
}

// Stop halts the perception loop and waits for it to unwind.
// Safe to call when not running.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if done != nil {
		<-done
	}
}

// shutdown releases the source and clears all cross-frame state, so a
// later Run starts from a clean baseline. Runs on the Run goroutine.
func (s *Supervisor) shutdown() {
	if s.speaker != nil {
		s.speaker.Stop()
	}
	if s.source != nil {
		if err := s.source.Close(); err != nil {
			log.Warn("pipeline source close", "error", err)
		}
	}
	s.narrator.Reset()
	s.motioner.Reset()
	// Restart assigns fresh identities; stale tracks would otherwise
	// pair with whatever appears first after a gap.
	s.tracker.Reset()

	s.mu.Lock()
	s.running = false
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()
	s.publish()
	log.Info("pipeline stopped")
}

// capture pulls a frame, treating ErrNotReady as a quiet skip.
func (s *Supervisor) capture(component string) *frame.Frame {
	f, err := s.source.Capture()
	if err != nil {
		if !errors.Is(err, frame.ErrNotReady) {
			s.fail(component, err)
		}
		return nil
	}
	return f
}

func (s *Supervisor) tickDetect(ctx context.Context) {
	f := s.capture("detect")
	if f == nil {
		return
	}
	objs, err := s.tracker.Observe(ctx, f)
	if err != nil {
		s.fail("detect", err)
		return
	}
	s.mu.Lock()
	s.store.objects = objs
	s.store.setError("detect", nil)
	s.mu.Unlock()
	s.publish()
}

func (s *Supervisor) tickMotion() {
	f := s.capture("motion")
	if f == nil {
		return
	}
	r := s.motioner.Estimate(f)
	s.mu.Lock()
	s.store.motion = &r
	s.store.setError("motion", nil)
	s.mu.Unlock()
	s.publish()
}

func (s *Supervisor) tickText() {
	f := s.capture("text")
	if f == nil {
		return
	}
	r := s.scanner.Scan(f)
	s.mu.Lock()
	s.store.text = &r
	s.store.setError("text", nil)
	s.mu.Unlock()
	s.publish()
}

func (s *Supervisor) tickScene() {
	f := s.capture("scene")
	if f == nil {
		return
	}
	c := s.scenes.Classify(f)
	s.mu.Lock()
	s.store.scene = &c
	s.store.setError("scene", nil)
	s.mu.Unlock()
	s.publish()
}

// tickNarrate fuses the latest outputs through the narration policy and
// speaks the chosen utterance. A synthesis or playback failure is a
// status, never a loop failure.
func (s *Supervisor) tickNarrate(ctx context.Context) {
	s.mu.Lock()
	in := narrate.Inputs{
		Scene:   s.store.scene,
		Objects: s.store.objects,
		Motion:  s.store.motion,
		Text:    s.store.text,
	}
	s.mu.Unlock()

	utterance, ok := s.narrator.Decide(in)
	if !ok {
		return
	}

	s.mu.Lock()
	s.store.narration = utterance
	s.store.speaking = s.speaker != nil
	s.store.setError("speech", nil)
	s.mu.Unlock()

	if s.speaker != nil {
		if err := s.speaker.Say(ctx, utterance); err != nil {
			s.fail("speech", err)
		}
	}
	s.publish()
}

// SpeechStatus routes driver transitions back into the store. Wire it
// as the driver's OnStatus callback.
func (s *Supervisor) SpeechStatus(st speech.Status) {
	s.mu.Lock()
	s.store.speaking = st.State == speech.StateSpeaking
	if st.Err != nil {
		s.store.setError("speech", st.Err)
	}
	s.mu.Unlock()
	s.publish()
}

func (s *Supervisor) fail(component string, err error) {
	log.Warn("pipeline component failed", "component", component, "error", err)
	s.mu.Lock()
	s.store.setError(component, err)
	s.mu.Unlock()
	s.publish()
}

func (s *Supervisor) publish() {
	if s.OnSnapshot == nil {
		return
	}
	s.mu.Lock()
	snap := s.store.snapshot(s.running)
	s.mu.Unlock()
	s.OnSnapshot(snap)
}
