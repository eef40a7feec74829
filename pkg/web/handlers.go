package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/sightlinehq/sightline/pkg/hub"
)

// handleState returns the latest fused pipeline state
func (s *Server) handleState(c *fiber.Ctx) error {
	s.snapshotMu.RLock()
	defer s.snapshotMu.RUnlock()
	return c.JSON(s.snapshot)
}

// handleNarrations returns the recent narration history
func (s *Server) handleNarrations(c *fiber.Ctx) error {
	s.narrationsMu.RLock()
	defer s.narrationsMu.RUnlock()
	return c.JSON(s.narrations)
}

// handleStateWS streams pipeline snapshots to a dashboard client.
// The current snapshot is sent immediately so the page renders without
// waiting for the next perception tick.
func (s *Server) handleStateWS(c *websocket.Conn) {
	s.snapshotMu.RLock()
	c.WriteJSON(s.snapshot)
	s.snapshotMu.RUnlock()

	client := hub.NewClient(s.stateHub, c)
	client.Run()
}

// handleAudioWS streams narration audio frames to a dashboard client
func (s *Server) handleAudioWS(c *websocket.Conn) {
	client := hub.NewClient(s.audioHub, c)
	client.Run()
}
