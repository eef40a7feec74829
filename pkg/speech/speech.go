// Package speech turns chosen utterances into audible output. The Driver
// wraps a tts.Provider and a playback Sink behind a small state machine:
// idle -> speaking -> idle, with at most one utterance in flight. Starting
// a new utterance cancels any in-progress one first; a safety timeout
// guarantees the driver can never stay stuck in the speaking state.
package speech

import (
	"context"
	"errors"
	"time"
)

// ErrNoText is returned when Say is called with an empty utterance.
var ErrNoText = errors.New("speech: empty utterance")

// State is the driver's speaking state.
type State string

const (
	StateIdle     State = "idle"
	StateSpeaking State = "speaking"
)

// Status is emitted on every state transition.
type Status struct {
	State     State
	Utterance string
	Err       error // Non-nil when the transition was caused by a failure
}

// Sink plays synthesized audio. Play blocks until playback completes or
// the context is cancelled.
type Sink interface {
	Play(ctx context.Context, pcm []byte, sampleRate int) error
	Close() error
}

// Config holds driver tuning.
type Config struct {
	// VoiceHints is a priority list of substrings matched against voice
	// names and locales. The first hit wins; otherwise the first
	// available voice is used.
	VoiceHints []string

	// CancelSettle is how long to wait for a cancelled utterance to
	// wind down before starting the next one.
	CancelSettle time.Duration

	// SafetyTimeout bounds how long past the expected audio duration
	// the driver waits before forcing itself back to idle.
	SafetyTimeout time.Duration
}

// DefaultConfig returns the recommended driver tuning.
func DefaultConfig() Config {
	return Config{
		VoiceHints:    []string{"en-US-Neural2-F", "en-US", "en-GB", "en"},
		CancelSettle:  150 * time.Millisecond,
		SafetyTimeout: 10 * time.Second,
	}
}
