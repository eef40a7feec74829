// Package camera provides frame sources backed by real cameras: a local
// webcam through OpenCV and a remote camera streamed over WebRTC.
package camera

import "fmt"

// Config holds camera acquisition parameters.
type Config struct {
	// DeviceID is the local capture device index.
	DeviceID int `json:"device_id"`

	// Width and Height are the requested capture resolution.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Framerate is the target FPS.
	Framerate int `json:"framerate"`

	// SignallingURL is the websocket endpoint of a remote camera
	// (used by the WebRTC source only).
	SignallingURL string `json:"signalling_url"`
}

// DefaultConfig returns the recommended capture configuration.
// 640x480 keeps per-pixel analysis cheap; perception components
// subsample further on top of this.
func DefaultConfig() Config {
	return Config{
		DeviceID:  0,
		Width:     640,
		Height:    480,
		Framerate: 15,
	}
}

// HighResConfig returns a 720p configuration for sharper text detection.
func HighResConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 1280
	cfg.Height = 720
	return cfg
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("camera: invalid resolution %dx%d", c.Width, c.Height)
	}
	if c.Framerate <= 0 || c.Framerate > 60 {
		return fmt.Errorf("camera: invalid framerate %d", c.Framerate)
	}
	return nil
}
