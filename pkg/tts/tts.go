// Package tts provides a unified interface for text-to-speech providers.
//
// Providers turn utterance text into PCM audio and expose whatever voice
// list the underlying engine offers. The Google Cloud backend is the
// default; Mock serves tests and Chain provides fallback across
// providers. All implementations satisfy the Provider interface so the
// speech driver never cares which engine is behind it.
package tts

import (
	"context"
	"time"
)

// Provider defines the TTS provider interface.
type Provider interface {
	// Synthesize converts text to audio, returning the complete buffer.
	Synthesize(ctx context.Context, text string) (*AudioResult, error)

	// Voices lists the voices the engine exposes. The list may be empty
	// until the engine has populated it; callers must tolerate that.
	Voices(ctx context.Context) ([]Voice, error)

	// Health checks provider connectivity and credential validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// Voice describes one synthesizer voice.
type Voice struct {
	Name   string `json:"name"`
	Locale string `json:"locale"`
	Gender string `json:"gender,omitempty"`
}

// AudioResult represents a complete audio synthesis result.
type AudioResult struct {
	// Audio contains raw audio data in the specified format.
	Audio []byte

	// Format describes the audio encoding and sample rate.
	Format AudioFormat

	// Duration is the estimated playback duration.
	Duration time.Duration

	// CharCount is the number of characters synthesized.
	CharCount int
}

// AudioFormat describes the audio encoding parameters.
type AudioFormat struct {
	// Encoding specifies the audio codec.
	Encoding Encoding

	// SampleRate in Hz.
	SampleRate int

	// Channels is 1 for mono, 2 for stereo.
	Channels int

	// BitDepth for PCM formats.
	BitDepth int
}

// Encoding represents audio encoding types.
type Encoding string

const (
	EncodingPCM16 Encoding = "pcm_16000" // 16kHz mono PCM16
	EncodingPCM24 Encoding = "pcm_24000" // 24kHz mono PCM16
	EncodingPCM48 Encoding = "pcm_48000" // 48kHz mono PCM16
	EncodingMP3   Encoding = "mp3"
	EncodingOpus  Encoding = "opus"
)

// SampleRateFromEncoding extracts the sample rate from an encoding type.
func SampleRateFromEncoding(enc Encoding) int {
	switch enc {
	case EncodingPCM16:
		return 16000
	case EncodingPCM48:
		return 48000
	default:
		return 24000
	}
}

// PCMDuration estimates playback duration of 16-bit mono PCM.
func PCMDuration(pcm []byte, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	samples := len(pcm) / 2
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}
