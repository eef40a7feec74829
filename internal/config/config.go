// Package config loads the sightline application configuration from a
// YAML file, with environment variable overrides for deploy-time knobs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sightlinehq/sightline/pkg/camera"
	"github.com/sightlinehq/sightline/pkg/narrate"
	"github.com/sightlinehq/sightline/pkg/pipeline"
	"github.com/sightlinehq/sightline/pkg/speech"
)

// Config is the complete application configuration.
type Config struct {
	Camera    CameraSection    `yaml:"camera"`
	Detector  DetectorSection  `yaml:"detector"`
	Pipeline  PipelineSection  `yaml:"pipeline"`
	Narration NarrationSection `yaml:"narration"`
	Speech    SpeechSection    `yaml:"speech"`
	Dashboard DashboardSection `yaml:"dashboard"`
}

// CameraSection selects and configures the frame source.
type CameraSection struct {
	Source        string `yaml:"source"` // webcam, remote
	DeviceID      int    `yaml:"device_id"`
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	Framerate     int    `yaml:"framerate"`
	SignallingURL string `yaml:"signalling_url"`
}

// DetectorSection configures the object detector.
type DetectorSection struct {
	ModelPath     string  `yaml:"model_path"`
	Confidence    float64 `yaml:"confidence"`
	MinObjectArea float64 `yaml:"min_object_area"`
}

// PipelineSection holds component cadences in milliseconds.
type PipelineSection struct {
	DetectPeriodMs  int `yaml:"detect_period_ms"`
	MotionPeriodMs  int `yaml:"motion_period_ms"`
	TextPeriodMs    int `yaml:"text_period_ms"`
	ScenePeriodMs   int `yaml:"scene_period_ms"`
	NarratePeriodMs int `yaml:"narrate_period_ms"`
}

// NarrationSection holds narration policy timings in seconds.
type NarrationSection struct {
	TextCooldownS  int `yaml:"text_cooldown_s"`
	SilenceWindowS int `yaml:"silence_window_s"`
	QuietFallbackS int `yaml:"quiet_fallback_s"`
}

// SpeechSection configures synthesis and playback.
type SpeechSection struct {
	CredentialsFile string   `yaml:"credentials_file"`
	LanguageCode    string   `yaml:"language_code"`
	SpeakingRate    float64  `yaml:"speaking_rate"`
	VoiceHints      []string `yaml:"voice_hints"`
}

// DashboardSection configures the observer web server.
type DashboardSection struct {
	Enabled bool   `yaml:"enabled"`
	Port    string `yaml:"port"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cam := camera.DefaultConfig()
	pipe := pipeline.DefaultConfig()
	narr := narrate.DefaultConfig()
	spk := speech.DefaultConfig()

	return &Config{
		Camera: CameraSection{
			Source:    "webcam",
			DeviceID:  cam.DeviceID,
			Width:     cam.Width,
			Height:    cam.Height,
			Framerate: cam.Framerate,
		},
		Detector: DetectorSection{
			ModelPath:     "models/yolov8n.onnx",
			Confidence:    0.45,
			MinObjectArea: 0.0015,
		},
		Pipeline: PipelineSection{
			DetectPeriodMs:  int(pipe.DetectPeriod / time.Millisecond),
			MotionPeriodMs:  int(pipe.MotionPeriod / time.Millisecond),
			TextPeriodMs:    int(pipe.TextPeriod / time.Millisecond),
			ScenePeriodMs:   int(pipe.ScenePeriod / time.Millisecond),
			NarratePeriodMs: int(pipe.NarratePeriod / time.Millisecond),
		},
		Narration: NarrationSection{
			TextCooldownS:  int(narr.TextCooldown / time.Second),
			SilenceWindowS: int(narr.SilenceWindow / time.Second),
			QuietFallbackS: int(narr.QuietFallback / time.Second),
		},
		Speech: SpeechSection{
			LanguageCode: "en-US",
			SpeakingRate: 1.0,
			VoiceHints:   spk.VoiceHints,
		},
		Dashboard: DashboardSection{
			Enabled: true,
			Port:    "8090",
		},
	}
}

// Load reads a YAML file over the defaults and applies env overrides.
// An empty path loads defaults plus env only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies SIGHTLINE_* overrides on top of the file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("SIGHTLINE_CAMERA_SOURCE"); v != "" {
		c.Camera.Source = v
	}
	if v := os.Getenv("SIGHTLINE_CAMERA_DEVICE"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			c.Camera.DeviceID = id
		}
	}
	if v := os.Getenv("SIGHTLINE_SIGNALLING_URL"); v != "" {
		c.Camera.SignallingURL = v
	}
	if v := os.Getenv("SIGHTLINE_DASHBOARD_PORT"); v != "" {
		c.Dashboard.Port = v
	}
	if v := os.Getenv("SIGHTLINE_CREDENTIALS_FILE"); v != "" {
		c.Speech.CredentialsFile = v
	}
	if v := os.Getenv("SIGHTLINE_MODEL_PATH"); v != "" {
		c.Detector.ModelPath = v
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Camera.Source != "webcam" && c.Camera.Source != "remote" {
		return fmt.Errorf("config: unknown camera source %q", c.Camera.Source)
	}
	if c.Camera.Source == "remote" && c.Camera.SignallingURL == "" {
		return fmt.Errorf("config: remote camera requires signalling_url")
	}
	if err := c.CameraConfig().Validate(); err != nil {
		return err
	}
	return c.PipelineConfig().Validate()
}

// CameraConfig converts the camera section to the package config.
func (c *Config) CameraConfig() camera.Config {
	return camera.Config{
		DeviceID:      c.Camera.DeviceID,
		Width:         c.Camera.Width,
		Height:        c.Camera.Height,
		Framerate:     c.Camera.Framerate,
		SignallingURL: c.Camera.SignallingURL,
	}
}

// PipelineConfig converts the pipeline section to the package config.
func (c *Config) PipelineConfig() pipeline.Config {
	return pipeline.Config{
		DetectPeriod:  time.Duration(c.Pipeline.DetectPeriodMs) * time.Millisecond,
		MotionPeriod:  time.Duration(c.Pipeline.MotionPeriodMs) * time.Millisecond,
		TextPeriod:    time.Duration(c.Pipeline.TextPeriodMs) * time.Millisecond,
		ScenePeriod:   time.Duration(c.Pipeline.ScenePeriodMs) * time.Millisecond,
		NarratePeriod: time.Duration(c.Pipeline.NarratePeriodMs) * time.Millisecond,
	}
}

// NarrateConfig converts the narration section to the package config.
func (c *Config) NarrateConfig() narrate.Config {
	cfg := narrate.DefaultConfig()
	if c.Narration.TextCooldownS > 0 {
		cfg.TextCooldown = time.Duration(c.Narration.TextCooldownS) * time.Second
	}
	if c.Narration.SilenceWindowS > 0 {
		cfg.SilenceWindow = time.Duration(c.Narration.SilenceWindowS) * time.Second
	}
	if c.Narration.QuietFallbackS > 0 {
		cfg.QuietFallback = time.Duration(c.Narration.QuietFallbackS) * time.Second
	}
	return cfg
}

// SpeechConfig converts the speech section to the package config.
func (c *Config) SpeechConfig() speech.Config {
	cfg := speech.DefaultConfig()
	if len(c.Speech.VoiceHints) > 0 {
		cfg.VoiceHints = c.Speech.VoiceHints
	}
	return cfg
}
