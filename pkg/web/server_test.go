package web

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sightlinehq/sightline/pkg/pipeline"
	"github.com/sightlinehq/sightline/pkg/scene"
)

func testSnapshot(narration string) pipeline.Snapshot {
	return pipeline.Snapshot{
		Timestamp: time.Now(),
		Running:   true,
		Scene:     &scene.Classification{SceneID: "kitchen", Label: "a kitchen", Confidence: 0.7},
		Narration: narration,
	}
}

func TestStateEndpoint(t *testing.T) {
	s := NewServer("0")
	s.UpdateSnapshot(testSnapshot("A cup has come into view."))

	resp, err := s.app.Test(httptest.NewRequest("GET", "/api/state", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var snap pipeline.Snapshot
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Scene == nil || snap.Scene.SceneID != "kitchen" {
		t.Errorf("Scene = %+v", snap.Scene)
	}
	if snap.Narration != "A cup has come into view." {
		t.Errorf("Narration = %q", snap.Narration)
	}
}

func TestNarrationHistoryDeduplicatesConsecutive(t *testing.T) {
	s := NewServer("0")
	s.UpdateSnapshot(testSnapshot("First utterance."))
	s.UpdateSnapshot(testSnapshot("First utterance."))
	s.UpdateSnapshot(testSnapshot("Second utterance."))
	s.UpdateSnapshot(testSnapshot("")) // Quiet tick, no entry.

	resp, err := s.app.Test(httptest.NewRequest("GET", "/api/narrations", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	var entries []NarrationEntry
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("history has %d entries, want 2: %+v", len(entries), entries)
	}
	if entries[0].Utterance != "First utterance." || entries[1].Utterance != "Second utterance." {
		t.Errorf("entries = %+v", entries)
	}
}

func TestWebsocketRouteRequiresUpgrade(t *testing.T) {
	s := NewServer("0")
	resp, err := s.app.Test(httptest.NewRequest("GET", "/ws/state", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 426 {
		t.Errorf("status = %d, want 426 Upgrade Required", resp.StatusCode)
	}
}
