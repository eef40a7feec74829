// Package web provides a real-time dashboard for the perception
// pipeline. The dashboard is display only; nothing it does feeds back
// into perception or narration.
package web

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/sightlinehq/sightline/internal/log"
	"github.com/sightlinehq/sightline/pkg/hub"
	"github.com/sightlinehq/sightline/pkg/pipeline"
)

// NarrationEntry is one spoken utterance in the dashboard history.
type NarrationEntry struct {
	Time      string `json:"time"`
	Utterance string `json:"utterance"`
}

// Server is the web dashboard server
type Server struct {
	app  *fiber.App
	port string

	// Latest fused pipeline state
	snapshot   pipeline.Snapshot
	snapshotMu sync.RWMutex

	// Narration history buffer (last 100 utterances)
	narrations   []NarrationEntry
	narrationsMu sync.RWMutex

	// Hubs for websocket broadcast
	stateHub *hub.Hub
	audioHub *hub.Hub
}

// NewServer creates a new dashboard server
func NewServer(port string) *Server {
	s := &Server{
		port:       port,
		narrations: make([]NarrationEntry, 0, 100),
		stateHub:   hub.New("state"),
		audioHub:   hub.New("audio"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Sightline Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// Static files
	app.Static("/", "./web")

	api := app.Group("/api")
	api.Get("/state", s.handleState)
	api.Get("/narrations", s.handleNarrations)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/state", websocket.New(s.handleStateWS))
	app.Get("/ws/audio", websocket.New(s.handleAudioWS))

	s.app = app
	return s
}

// Start starts the web server and its broadcast hubs. Blocks.
func (s *Server) Start() error {
	log.Info("dashboard listening", "port", s.port)

	go s.stateHub.Run()
	go s.audioHub.Run()

	return s.app.Listen(":" + s.port)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("dashboard server", "error", err)
		}
	}()
}

// UpdateSnapshot stores the latest pipeline state and broadcasts it.
// Wire it as the pipeline's OnSnapshot callback.
func (s *Server) UpdateSnapshot(snap pipeline.Snapshot) {
	s.snapshotMu.Lock()
	previous := s.snapshot.Narration
	s.snapshot = snap
	s.snapshotMu.Unlock()

	if snap.Narration != "" && snap.Narration != previous {
		s.addNarration(snap.Narration)
	}

	s.stateHub.BroadcastJSON(snap)
}

// SendAudioFrame streams one encoded narration audio frame to clients.
// Wire it as the opus sink's broadcast function.
func (s *Server) SendAudioFrame(frame []byte) {
	s.audioHub.BroadcastBinary(frame)
}

func (s *Server) addNarration(utterance string) {
	entry := NarrationEntry{
		Time:      time.Now().Format("15:04:05"),
		Utterance: utterance,
	}

	s.narrationsMu.Lock()
	s.narrations = append(s.narrations, entry)
	if len(s.narrations) > 100 {
		s.narrations = s.narrations[1:]
	}
	s.narrationsMu.Unlock()
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
