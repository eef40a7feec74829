package speech

import (
	"context"
	"time"

	"gopkg.in/hraban/opus.v2"
)

// NullSink discards audio but blocks for its real playback duration, so
// driver timing behaves as if a speaker were attached.
type NullSink struct{}

// Play waits out the audio duration or the context.
func (NullSink) Play(ctx context.Context, pcm []byte, sampleRate int) error {
	if sampleRate <= 0 {
		return nil
	}
	dur := time.Duration(len(pcm)/2) * time.Second / time.Duration(sampleRate)
	select {
	case <-time.After(dur):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements Sink.
func (NullSink) Close() error { return nil }

// Verify NullSink implements Sink at compile time.
var _ Sink = NullSink{}

// opusFrameMs is the opus frame size in milliseconds.
const opusFrameMs = 20

// OpusSink encodes PCM into 20ms opus frames and hands them to a
// broadcast function, pacing delivery at real time. Used to stream
// narration audio to dashboard clients.
type OpusSink struct {
	broadcast func(frame []byte)
}

// NewOpusSink creates a sink that sends encoded frames to broadcast.
func NewOpusSink(broadcast func(frame []byte)) *OpusSink {
	return &OpusSink{broadcast: broadcast}
}

// Play encodes and streams the PCM buffer. Returns early on context
// cancellation, dropping the rest of the utterance.
func (s *OpusSink) Play(ctx context.Context, pcm []byte, sampleRate int) error {
	enc, err := opus.NewEncoder(sampleRate, 1, opus.AppVoIP)
	if err != nil {
		return err
	}

	samplesPerFrame := sampleRate * opusFrameMs / 1000
	frame := make([]int16, samplesPerFrame)
	out := make([]byte, 4000)

	ticker := time.NewTicker(opusFrameMs * time.Millisecond)
	defer ticker.Stop()

	for off := 0; off < len(pcm); off += samplesPerFrame * 2 {
		for i := 0; i < samplesPerFrame; i++ {
			p := off + i*2
			if p+1 < len(pcm) {
				frame[i] = int16(pcm[p]) | int16(pcm[p+1])<<8
			} else {
				frame[i] = 0
			}
		}

		n, err := enc.Encode(frame, out)
		if err != nil {
			return err
		}
		encoded := make([]byte, n)
		copy(encoded, out[:n])
		s.broadcast(encoded)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Close implements Sink.
func (s *OpusSink) Close() error { return nil }

// Verify OpusSink implements Sink at compile time.
var _ Sink = (*OpusSink)(nil)
