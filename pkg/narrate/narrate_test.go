package narrate

import (
	"strings"
	"testing"
	"time"

	"github.com/sightlinehq/sightline/pkg/motion"
	"github.com/sightlinehq/sightline/pkg/scene"
	"github.com/sightlinehq/sightline/pkg/textscan"
	"github.com/sightlinehq/sightline/pkg/track"
)

// fakeClock advances only when told to, so window math is exact.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestEngine() (*Engine, *fakeClock) {
	clock := newFakeClock()
	return NewWithClock(DefaultConfig(), clock.now), clock
}

func sceneIn(label string) *scene.Classification {
	return &scene.Classification{SceneID: label, Label: label, Confidence: 0.8}
}

func objects(labels ...string) []track.Object {
	objs := make([]track.Object, len(labels))
	for i, l := range labels {
		objs[i] = track.Object{ID: l, Label: l, Confidence: 0.8, Persistence: 2}
	}
	return objs
}

func textIn(guess string) *textscan.Result {
	return &textscan.Result{HasText: true, BestGuess: guess}
}

func TestTextHasPriorityOverEverything(t *testing.T) {
	e, _ := newTestEngine()

	got, ok := e.Decide(Inputs{
		Scene:   sceneIn("an office or workspace"),
		Objects: objects("person", "laptop"),
		Motion:  &motion.Result{Detected: true, Direction: motion.DirectionLeft},
		Text:    textIn("EXIT"),
	})
	if !ok {
		t.Fatal("expected an utterance")
	}
	if !strings.Contains(got, "EXIT") {
		t.Errorf("utterance = %q, want the text content", got)
	}
	if strings.Contains(got, "person") || strings.Contains(got, "office") {
		t.Errorf("utterance = %q, text must suppress scene and object narration", got)
	}
}

func TestSameTextWithinCooldownStaysQuiet(t *testing.T) {
	e, clock := newTestEngine()

	if _, ok := e.Decide(Inputs{Text: textIn("EXIT")}); !ok {
		t.Fatal("first reading should speak")
	}

	clock.advance(2 * time.Second)
	if got, ok := e.Decide(Inputs{Text: textIn("EXIT")}); ok {
		t.Errorf("re-read within cooldown: %q", got)
	}

	clock.advance(10 * time.Second)
	if _, ok := e.Decide(Inputs{Text: textIn("EXIT")}); !ok {
		t.Error("expected re-reading after the cooldown elapsed")
	}
}

func TestDifferentTextSpeaksImmediately(t *testing.T) {
	e, clock := newTestEngine()

	e.Decide(Inputs{Text: textIn("EXIT")})
	clock.advance(time.Second)

	got, ok := e.Decide(Inputs{Text: textIn("CHECKOUT")})
	if !ok {
		t.Fatal("different text must not be held by the cooldown")
	}
	if !strings.Contains(got, "CHECKOUT") {
		t.Errorf("utterance = %q", got)
	}
}

func TestEnvironmentChangeNarrated(t *testing.T) {
	e, _ := newTestEngine()

	got, ok := e.Decide(Inputs{Scene: sceneIn("a kitchen")})
	if !ok {
		t.Fatal("expected an utterance for a new environment")
	}
	if !strings.Contains(got, "a kitchen") {
		t.Errorf("utterance = %q", got)
	}
}

func TestNewObjectNarrated(t *testing.T) {
	e, clock := newTestEngine()

	e.Decide(Inputs{Scene: sceneIn("a kitchen")})
	clock.advance(20 * time.Second)

	got, ok := e.Decide(Inputs{Scene: sceneIn("a kitchen"), Objects: objects("dog")})
	if !ok {
		t.Fatal("expected an utterance for a new object")
	}
	if !strings.Contains(got, "A dog has come into view") {
		t.Errorf("utterance = %q", got)
	}
}

func TestSeveralNewObjectsListed(t *testing.T) {
	e, _ := newTestEngine()

	got, ok := e.Decide(Inputs{Objects: objects("chair", "cup", "dog", "laptop", "tv")})
	if !ok {
		t.Fatal("expected an utterance")
	}
	if !strings.Contains(got, "Several new things came into view") {
		t.Errorf("utterance = %q", got)
	}
	if !strings.Contains(got, ", and more") {
		t.Errorf("utterance = %q, want overflow suffix for more than three names", got)
	}
}

func TestUnchangedSceneStaysSilentWithinWindow(t *testing.T) {
	e, clock := newTestEngine()

	in := Inputs{Scene: sceneIn("a kitchen"), Objects: objects("cup")}
	if _, ok := e.Decide(in); !ok {
		t.Fatal("first tick should speak")
	}

	clock.advance(5 * time.Second)
	if got, ok := e.Decide(in); ok {
		t.Errorf("unchanged scene within silence window spoke: %q", got)
	}
}

func TestMovementOnlyAccompaniesOtherClauses(t *testing.T) {
	e, clock := newTestEngine()

	e.Decide(Inputs{Scene: sceneIn("a kitchen")})
	clock.advance(5 * time.Second)

	// Motion alone, nothing else changed, inside the silence window.
	got, ok := e.Decide(Inputs{
		Scene:  sceneIn("a kitchen"),
		Motion: &motion.Result{Detected: true, Direction: motion.DirectionLeft},
	})
	if ok {
		t.Errorf("motion alone produced an utterance: %q", got)
	}

	clock.advance(20 * time.Second)
	got, ok = e.Decide(Inputs{
		Scene:   sceneIn("an outdoor area"),
		Motion:  &motion.Result{Detected: true, Direction: motion.DirectionLeft},
		Objects: nil,
	})
	if !ok {
		t.Fatal("scene change should speak")
	}
	if !strings.Contains(got, "movement on the left") {
		t.Errorf("utterance = %q, want the movement clause appended", got)
	}
}

func TestQuietFallbackNamesPersistentObject(t *testing.T) {
	e, clock := newTestEngine()

	in := Inputs{Objects: objects("couch")}
	e.Decide(in) // "A couch has come into view."

	clock.advance(30 * time.Second) // Past QuietFallback.
	got, ok := e.Decide(in)
	if !ok {
		t.Fatal("expected the still-present fallback after a long quiet period")
	}
	if !strings.Contains(got, "The couch is still there") {
		t.Errorf("utterance = %q", got)
	}
}

func TestQuietFallbackNeedsObjects(t *testing.T) {
	e, clock := newTestEngine()
	e.Decide(Inputs{Scene: sceneIn("a kitchen")})

	clock.advance(30 * time.Second)
	if got, ok := e.Decide(Inputs{Scene: sceneIn("a kitchen")}); ok {
		t.Errorf("fallback without objects spoke: %q", got)
	}
}

func TestPhraseCacheSuppressesRepeats(t *testing.T) {
	e, clock := newTestEngine()

	first, ok := e.Decide(Inputs{Objects: objects("dog")})
	if !ok {
		t.Fatal("first tick should speak")
	}

	// Dog leaves (silently: departure alone produces no clause but
	// updates state after the silence window), then returns. The exact
	// same phrase would repeat, so the cache suppresses it.
	clock.advance(20 * time.Second)
	e.Decide(Inputs{})

	clock.advance(20 * time.Second)
	got, ok := e.Decide(Inputs{Objects: objects("dog")})
	if ok && got == first {
		t.Errorf("recently spoken phrase repeated verbatim: %q", got)
	}
}

func TestResetClearsAllSuppression(t *testing.T) {
	e, clock := newTestEngine()

	first, ok := e.Decide(Inputs{Objects: objects("dog")})
	if !ok {
		t.Fatal("first tick should speak")
	}

	clock.advance(time.Second)
	e.Reset()

	got, ok := e.Decide(Inputs{Objects: objects("dog")})
	if !ok {
		t.Fatal("after Reset the same inputs must narrate fresh")
	}
	if got != first {
		t.Errorf("utterance = %q, want %q", got, first)
	}

	if last, _ := e.LastSpoken(); last != got {
		t.Errorf("LastSpoken = %q, want %q", last, got)
	}
}

// Mirrors a quiet room where a person walks in: nothing, then one
// arrival narration, then silence again.
func TestScenarioPersonEntersQuietRoom(t *testing.T) {
	e, clock := newTestEngine()
	room := Inputs{Scene: sceneIn("a living space"), Objects: objects("couch")}

	if _, ok := e.Decide(room); !ok {
		t.Fatal("initial description expected")
	}

	clock.advance(16 * time.Second)
	withPerson := Inputs{
		Scene:   sceneIn("a living space"),
		Objects: objects("couch", "person"),
		Motion:  &motion.Result{Detected: true, Direction: motion.DirectionRight},
	}
	got, ok := e.Decide(withPerson)
	if !ok {
		t.Fatal("arrival should be narrated")
	}
	if !strings.Contains(got, "A person has come into view") {
		t.Errorf("utterance = %q", got)
	}
	if !strings.Contains(got, "movement on the right") {
		t.Errorf("utterance = %q, want the movement clause", got)
	}

	// Person stays; next ticks are quiet.
	clock.advance(3 * time.Second)
	if got, ok := e.Decide(withPerson); ok {
		t.Errorf("steady scene spoke again: %q", got)
	}
}

// Mirrors panning from a desk to a door sign: the sign is read with
// priority, then the environment resumes.
func TestScenarioPanToSign(t *testing.T) {
	e, clock := newTestEngine()

	desk := Inputs{Scene: sceneIn("an office or workspace"), Objects: objects("laptop")}
	if _, ok := e.Decide(desk); !ok {
		t.Fatal("initial description expected")
	}

	clock.advance(4 * time.Second)
	sign := Inputs{
		Scene:   sceneIn("an office or workspace"),
		Objects: objects("laptop"),
		Text:    textIn("EXIT"),
	}
	got, ok := e.Decide(sign)
	if !ok {
		t.Fatal("text must be read even inside the silence window")
	}
	if !strings.Contains(got, "EXIT") {
		t.Errorf("utterance = %q", got)
	}

	// Pan back: no text, nothing else changed, still quiet.
	clock.advance(4 * time.Second)
	if got, ok := e.Decide(desk); ok {
		t.Errorf("post-sign tick spoke: %q", got)
	}
}
