package pipeline

import (
	"time"

	"github.com/sightlinehq/sightline/pkg/motion"
	"github.com/sightlinehq/sightline/pkg/scene"
	"github.com/sightlinehq/sightline/pkg/textscan"
	"github.com/sightlinehq/sightline/pkg/track"
)

// Snapshot is the fused view of all perception outputs at one instant.
// Pushed to observers on every change; observers must treat it as
// read-only.
type Snapshot struct {
	Timestamp time.Time             `json:"timestamp"`
	Running   bool                  `json:"running"`
	Scene     *scene.Classification `json:"scene,omitempty"`
	Objects   []track.Object        `json:"objects,omitempty"`
	Motion    *motion.Result        `json:"motion,omitempty"`
	Text      *textscan.Result      `json:"text,omitempty"`
	Narration string                `json:"narration,omitempty"`
	Speaking  bool                  `json:"speaking"`

	// Errors maps component name to its most recent failure message.
	// A component recovers by succeeding; its entry is then cleared.
	Errors map[string]string `json:"errors,omitempty"`
}

// store is the mutex-guarded latest-output record behind Snapshot.
type store struct {
	scene     *scene.Classification
	objects   []track.Object
	motion    *motion.Result
	text      *textscan.Result
	narration string
	speaking  bool
	errors    map[string]string
}

func newStore() *store {
	return &store{errors: make(map[string]string)}
}

func (s *store) setError(component string, err error) {
	if err == nil {
		delete(s.errors, component)
		return
	}
	s.errors[component] = err.Error()
}

func (s *store) snapshot(running bool) Snapshot {
	snap := Snapshot{
		Timestamp: time.Now(),
		Running:   running,
		Scene:     s.scene,
		Motion:    s.motion,
		Text:      s.text,
		Narration: s.narration,
		Speaking:  s.speaking,
	}
	if len(s.objects) > 0 {
		snap.Objects = make([]track.Object, len(s.objects))
		copy(snap.Objects, s.objects)
	}
	if len(s.errors) > 0 {
		snap.Errors = make(map[string]string, len(s.errors))
		for k, v := range s.errors {
			snap.Errors[k] = v
		}
	}
	return snap
}
