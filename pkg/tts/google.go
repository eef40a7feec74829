package tts

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/texttospeech/v1"
)

// cloudPlatformScope is the OAuth scope the TTS API accepts.
const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// Google synthesizes speech through the Google Cloud Text-to-Speech API.
type Google struct {
	config  *Config
	service *texttospeech.Service

	// Voice list cache. Populated lazily on the first Voices call; the
	// engine exposes an empty list until then.
	mu     sync.RWMutex
	voices []Voice
}

// NewGoogle creates a Google Cloud TTS provider. Credentials come from
// the configured service-account key file, or application default
// credentials when none is set.
func NewGoogle(ctx context.Context, opts ...Option) (*Google, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	} else {
		ts, err := google.DefaultTokenSource(ctx, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoCredentials, err)
		}
		clientOpts = append(clientOpts, option.WithTokenSource(ts))
	}

	service, err := texttospeech.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, WrapError("google", err)
	}

	return &Google{config: cfg, service: service}, nil
}

// Synthesize converts text to 16-bit mono PCM.
func (g *Google) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	sampleRate := SampleRateFromEncoding(g.config.OutputFormat)
	req := &texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: g.config.LanguageCode,
			Name:         g.config.VoiceName,
		},
		AudioConfig: &texttospeech.AudioConfig{
			AudioEncoding:   "LINEAR16",
			SampleRateHertz: int64(sampleRate),
			SpeakingRate:    g.config.SpeakingRate,
		},
	}

	resp, err := g.service.Text.Synthesize(req).Context(ctx).Do()
	if err != nil {
		return nil, WrapError("google", err)
	}

	raw, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, WrapError("google", fmt.Errorf("decode audio: %w", err))
	}

	// LINEAR16 responses arrive as WAV; drop the header for raw PCM.
	pcm := stripWAVHeader(raw)

	return &AudioResult{
		Audio: pcm,
		Format: AudioFormat{
			Encoding:   g.config.OutputFormat,
			SampleRate: sampleRate,
			Channels:   1,
			BitDepth:   16,
		},
		Duration:  PCMDuration(pcm, sampleRate),
		CharCount: len(text),
	}, nil
}

// Voices lists the engine's voices for the configured language. The
// result is cached after the first successful fetch.
func (g *Google) Voices(ctx context.Context) ([]Voice, error) {
	g.mu.RLock()
	if g.voices != nil {
		cached := make([]Voice, len(g.voices))
		copy(cached, g.voices)
		g.mu.RUnlock()
		return cached, nil
	}
	g.mu.RUnlock()

	resp, err := g.service.Voices.List().LanguageCode(g.config.LanguageCode).Context(ctx).Do()
	if err != nil {
		return nil, WrapError("google", err)
	}

	voices := make([]Voice, 0, len(resp.Voices))
	for _, v := range resp.Voices {
		locale := g.config.LanguageCode
		if len(v.LanguageCodes) > 0 {
			locale = v.LanguageCodes[0]
		}
		voices = append(voices, Voice{
			Name:   v.Name,
			Locale: locale,
			Gender: v.SsmlGender,
		})
	}

	g.mu.Lock()
	g.voices = voices
	g.mu.Unlock()

	out := make([]Voice, len(voices))
	copy(out, voices)
	return out, nil
}

// Health verifies the API is reachable with the current credentials.
func (g *Google) Health(ctx context.Context) error {
	_, err := g.service.Voices.List().LanguageCode(g.config.LanguageCode).Context(ctx).Do()
	if err != nil {
		return WrapError("google", err)
	}
	return nil
}

// Close releases the provider. The REST client holds no resources.
func (g *Google) Close() error {
	return nil
}

// stripWAVHeader removes a RIFF/WAVE header if present, returning the
// raw sample data.
func stripWAVHeader(data []byte) []byte {
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return data
	}
	// Walk chunks until the data chunk.
	i := 12
	for i+8 <= len(data) {
		id := string(data[i : i+4])
		size := int(uint32(data[i+4]) | uint32(data[i+5])<<8 | uint32(data[i+6])<<16 | uint32(data[i+7])<<24)
		if id == "data" {
			start := i + 8
			end := start + size
			if end > len(data) {
				end = len(data)
			}
			return data[start:end]
		}
		i += 8 + size
	}
	return data
}

// Verify Google implements Provider at compile time.
var _ Provider = (*Google)(nil)
