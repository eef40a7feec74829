// Sightline narrates the ambient surroundings seen by a camera for
// people who cannot see the scene themselves. Perception components run
// on independent timers; a narration policy decides what, if anything,
// is worth saying; the result is spoken and streamed to a dashboard.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sightlinehq/sightline/internal/config"
	"github.com/sightlinehq/sightline/internal/log"
	"github.com/sightlinehq/sightline/pkg/camera"
	"github.com/sightlinehq/sightline/pkg/detect"
	"github.com/sightlinehq/sightline/pkg/frame"
	"github.com/sightlinehq/sightline/pkg/motion"
	"github.com/sightlinehq/sightline/pkg/narrate"
	"github.com/sightlinehq/sightline/pkg/pipeline"
	"github.com/sightlinehq/sightline/pkg/scene"
	"github.com/sightlinehq/sightline/pkg/speech"
	"github.com/sightlinehq/sightline/pkg/textscan"
	"github.com/sightlinehq/sightline/pkg/track"
	"github.com/sightlinehq/sightline/pkg/tts"
	"github.com/sightlinehq/sightline/pkg/web"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	silent := flag.Bool("silent", false, "Run perception without speech output")
	flag.Parse()

	log.Init(*logLevel)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	source, err := openSource(cfg)
	if err != nil {
		log.Error("camera", "error", err)
		os.Exit(1)
	}

	detector, err := openDetector(cfg)
	if err != nil {
		log.Error("detector", "error", err)
		source.Close()
		os.Exit(1)
	}

	var server *web.Server
	if cfg.Dashboard.Enabled {
		server = web.NewServer(cfg.Dashboard.Port)
	}

	speaker := buildSpeaker(ctx, cfg, server, *silent)

	tracker := track.New(track.Config{
		MaxDistance: track.DefaultConfig().MaxDistance,
		Filter: detect.FilterConfig{
			MinConfidence: cfg.Detector.Confidence,
			MinArea:       cfg.Detector.MinObjectArea,
		},
	}, detector)

	supervisor, err := pipeline.New(
		cfg.PipelineConfig(),
		source,
		scene.NewDefault(),
		motion.New(motion.DefaultConfig()),
		tracker,
		textscan.New(textscan.DefaultConfig()),
		narrate.New(cfg.NarrateConfig()),
		speaker,
	)
	if err != nil {
		log.Error("pipeline", "error", err)
		os.Exit(1)
	}

	if speaker != nil {
		speaker.OnStatus = supervisor.SpeechStatus
		defer speaker.Close()
	}
	if server != nil {
		supervisor.OnSnapshot = server.UpdateSnapshot
		server.StartAsync()
		defer server.Shutdown()
	}

	if err := supervisor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("pipeline stopped", "error", err)
		os.Exit(1)
	}
}

// openSource builds the configured frame source.
func openSource(cfg *config.Config) (frame.Source, error) {
	if cfg.Camera.Source == "remote" {
		return camera.OpenRemote(cfg.CameraConfig())
	}
	return camera.OpenWebcam(cfg.CameraConfig())
}

// openDetector loads the YOLO model, falling back to an empty mock when
// the model file is missing so the rest of the pipeline still runs.
func openDetector(cfg *config.Config) (detect.Detector, error) {
	yoloCfg := detect.DefaultYOLOConfig()
	yoloCfg.ModelPath = cfg.Detector.ModelPath
	yoloCfg.ConfidenceThresh = float32(cfg.Detector.Confidence)

	d, err := detect.NewYOLO(yoloCfg)
	if err != nil {
		log.Warn("object detection disabled", "error", err)
		return detect.NewMock(), nil
	}
	return d, nil
}

// buildSpeaker assembles the TTS provider chain and speech driver.
// Returns nil when speech is disabled or no provider is reachable;
// perception and the dashboard still run without it.
func buildSpeaker(ctx context.Context, cfg *config.Config, server *web.Server, silent bool) *speech.Driver {
	if silent {
		return nil
	}

	opts := []tts.Option{
		tts.WithLanguage(cfg.Speech.LanguageCode),
		tts.WithSpeakingRate(cfg.Speech.SpeakingRate),
	}
	if cfg.Speech.CredentialsFile != "" {
		opts = append(opts, tts.WithCredentialsFile(cfg.Speech.CredentialsFile))
	}

	google, err := tts.NewGoogle(ctx, opts...)
	if err != nil {
		log.Warn("speech disabled, no TTS provider available", "error", err)
		return nil
	}

	var sink speech.Sink = speech.NullSink{}
	if server != nil {
		sink = speech.NewOpusSink(server.SendAudioFrame)
	}

	return speech.NewDriver(cfg.SpeechConfig(), google, sink)
}
