package speech

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sightlinehq/sightline/pkg/tts"
)

// Driver speaks utterances through a TTS provider and a playback sink.
type Driver struct {
	config   Config
	provider tts.Provider
	sink     Sink
	logger   *slog.Logger

	// OnStatus, if set, receives every state transition. Called from
	// the playback goroutine; implementations must be fast or fan out.
	OnStatus func(Status)

	mu          sync.Mutex
	state       State
	cancel      context.CancelFunc
	done        chan struct{}
	voice       string
	voicePicked bool
}

// NewDriver creates a speech driver. The sink may be nil, in which case
// synthesized audio is timed out but not played (useful headless).
func NewDriver(config Config, provider tts.Provider, sink Sink) *Driver {
	return &Driver{
		config:   config,
		provider: provider,
		sink:     sink,
		logger:   slog.Default().With("component", "speech.driver"),
		state:    StateIdle,
	}
}

// State returns the current speaking state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Say speaks the utterance. Any in-flight utterance is cancelled first
// and allowed a brief settle period, so two utterances never overlap.
// Synthesis and playback happen asynchronously; errors surface through
// OnStatus and the driver always returns to idle.
func (d *Driver) Say(ctx context.Context, text string) error {
	if text == "" {
		return ErrNoText
	}

	d.Stop()

	playCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	d.mu.Lock()
	d.cancel = cancel
	d.done = done
	d.state = StateSpeaking
	d.mu.Unlock()
	d.emit(Status{State: StateSpeaking, Utterance: text})

	go d.speak(playCtx, text, done)
	return nil
}

// Stop cancels any in-flight utterance and waits briefly for the
// cancellation to settle. Safe to call when idle.
func (d *Driver) Stop() {
	d.mu.Lock()
	cancel := d.cancel
	done := d.done
	d.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if done != nil {
		select {
		case <-done:
		case <-time.After(d.config.CancelSettle):
		}
	}
}

// Close stops playback and releases the sink.
func (d *Driver) Close() error {
	d.Stop()
	if d.sink != nil {
		return d.sink.Close()
	}
	return nil
}

// speak runs synthesis and playback for one utterance, then transitions
// back to idle no matter what happened.
func (d *Driver) speak(ctx context.Context, text string, done chan struct{}) {
	defer close(done)

	var failure error

	result, err := d.provider.Synthesize(ctx, text)
	if err != nil {
		failure = err
		d.logger.Warn("synthesis failed", "error", err, "chars", len(text))
	} else {
		failure = d.play(ctx, result)
	}

	d.mu.Lock()
	d.state = StateIdle
	d.cancel = nil
	d.done = nil
	d.mu.Unlock()

	if failure != nil && !isCancel(failure) {
		d.emit(Status{State: StateIdle, Utterance: text, Err: failure})
		return
	}
	d.emit(Status{State: StateIdle, Utterance: text})
}

// play sends audio to the sink under a watchdog: if the sink neither
// finishes nor errors within the expected duration plus the safety
// timeout, the driver forces itself back to idle rather than staying
// poisoned forever.
func (d *Driver) play(ctx context.Context, result *tts.AudioResult) error {
	deadline := result.Duration + d.config.SafetyTimeout
	playCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	if d.sink == nil {
		select {
		case <-time.After(result.Duration):
			return nil
		case <-playCtx.Done():
			return playCtx.Err()
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.sink.Play(playCtx, result.Audio, result.Format.SampleRate)
	}()

	select {
	case err := <-errCh:
		return err
	case <-playCtx.Done():
		if playCtx.Err() == context.DeadlineExceeded {
			d.logger.Error("playback watchdog fired, forcing idle",
				"expected", result.Duration,
			)
		}
		return playCtx.Err()
	}
}

// SelectVoice picks a voice from the provider's list using the
// configured hints, falling back to the first available. The choice is
// cached; an empty engine list leaves the engine default in place and
// is retried on the next call.
func (d *Driver) SelectVoice(ctx context.Context) string {
	d.mu.Lock()
	if d.voicePicked {
		v := d.voice
		d.mu.Unlock()
		return v
	}
	d.mu.Unlock()

	voices, err := d.provider.Voices(ctx)
	if err != nil || len(voices) == 0 {
		// Voice lists can populate asynchronously; try again later.
		return ""
	}

	chosen := voices[0].Name
	for _, hint := range d.config.VoiceHints {
		if name := matchVoice(voices, hint); name != "" {
			chosen = name
			break
		}
	}

	d.mu.Lock()
	d.voice = chosen
	d.voicePicked = true
	d.mu.Unlock()
	return chosen
}

func matchVoice(voices []tts.Voice, hint string) string {
	hint = strings.ToLower(hint)
	for _, v := range voices {
		if strings.Contains(strings.ToLower(v.Name), hint) ||
			strings.Contains(strings.ToLower(v.Locale), hint) {
			return v.Name
		}
	}
	return ""
}

func (d *Driver) emit(s Status) {
	if d.OnStatus != nil {
		d.OnStatus(s)
	}
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
