// Package narrate decides, on each narration tick, what utterance (if
// any) to speak given the latest perception outputs. It is the stateful
// core of the pipeline: decisions depend on what was said before and
// when, so the policy is explicit state transitions, never a pure
// function of its inputs.
//
// Priority order, highest first: text reading, new-object/environment
// narration, long-quiet fallback, silence. The order is a hard policy,
// not parallel scoring.
package narrate

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sightlinehq/sightline/pkg/motion"
	"github.com/sightlinehq/sightline/pkg/scene"
	"github.com/sightlinehq/sightline/pkg/textscan"
	"github.com/sightlinehq/sightline/pkg/track"
)

// Inputs carries the latest output of each perception component. Any
// field may be nil/stale: perception timers run independently and the
// policy never blocks waiting for fresher data.
type Inputs struct {
	Scene   *scene.Classification
	Objects []track.Object
	Motion  *motion.Result
	Text    *textscan.Result
}

// Config holds narration policy timing and capacity.
type Config struct {
	TextCooldown   time.Duration // Minimum gap before re-reading the same text
	SilenceWindow  time.Duration // Minimum gap before re-narrating an unchanged environment
	QuietFallback  time.Duration // Quiet period before the "still present" fallback
	PhraseCacheCap int           // Recent-phrase cache capacity; cache resets when exceeded
	MaxListedNames int           // Names listed in the multiple-new-objects clause
}

// DefaultConfig returns the recommended narration timing.
func DefaultConfig() Config {
	return Config{
		TextCooldown:   8 * time.Second,
		SilenceWindow:  15 * time.Second,
		QuietFallback:  28 * time.Second,
		PhraseCacheCap: 8,
		MaxListedNames: 3,
	}
}

// Engine owns the narration state for one session. Construct fresh on
// session start, Reset on capture restart.
type Engine struct {
	config Config
	now    func() time.Time

	mu sync.Mutex
	st state
}

// state is the accumulated narration history. Zero value = nothing
// spoken yet.
type state struct {
	lastSpokenUtterance   string
	lastSpokenAt          time.Time
	lastEnvironmentLabel  string
	lastObjectNames       map[string]bool
	lastSignificantChange time.Time
	lastTextSpokenAt      time.Time
	lastSpokenTextContent string
	recentPhrases         map[string]bool
}

// New creates a narration engine.
func New(config Config) *Engine {
	return NewWithClock(config, time.Now)
}

// NewWithClock creates an engine with an injectable clock for tests.
func NewWithClock(config Config, now func() time.Time) *Engine {
	return &Engine{
		config: config,
		now:    now,
		st: state{
			lastObjectNames: map[string]bool{},
			recentPhrases:   map[string]bool{},
		},
	}
}

// Reset clears every state field atomically. Must be called whenever
// camera capture restarts so no stale suppression leaks across sessions.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.st = state{
		lastObjectNames: map[string]bool{},
		recentPhrases:   map[string]bool{},
	}
}

// LastSpoken returns the most recent utterance and when it was produced.
func (e *Engine) LastSpoken() (string, time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.lastSpokenUtterance, e.st.lastSpokenAt
}

// Decide evaluates one narration tick. Returns the utterance to speak
// and true, or "" and false when there is nothing to say.
func (e *Engine) Decide(in Inputs) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()

	// Text has absolute priority: when readable text is in view it is
	// spoken alone, with everything else suppressed for the tick.
	if in.Text != nil && in.Text.HasText && in.Text.BestGuess != "" {
		content := in.Text.BestGuess
		if nearDuplicate(content, e.st.lastSpokenTextContent) &&
			now.Sub(e.st.lastTextSpokenAt) < e.config.TextCooldown {
			// Same sign still in view and recently read: stay quiet
			// rather than narrating around it.
			return "", false
		}
		utterance := fmt.Sprintf("I can see text nearby. It looks like it says %s.", content)
		e.st.lastTextSpokenAt = now
		e.st.lastSpokenAt = now
		e.st.lastSpokenTextContent = content
		e.st.lastSpokenUtterance = utterance
		return utterance, true
	}

	return e.decideEnvironment(in, now)
}

func (e *Engine) decideEnvironment(in Inputs, now time.Time) (string, bool) {
	currentNames := map[string]bool{}
	for _, o := range in.Objects {
		currentNames[o.Label] = true
	}

	var newNames, goneNames []string
	for name := range currentNames {
		if !e.st.lastObjectNames[name] {
			newNames = append(newNames, name)
		}
	}
	for name := range e.st.lastObjectNames {
		if !currentNames[name] {
			goneNames = append(goneNames, name)
		}
	}
	sort.Strings(newNames)
	sort.Strings(goneNames)

	labelChanged := in.Scene != nil && in.Scene.Label != e.st.lastEnvironmentLabel

	// Anti-repetition: without any change, stay silent until the
	// silence window has elapsed.
	unchanged := len(newNames) == 0 && len(goneNames) == 0 && !labelChanged
	if unchanged && now.Sub(e.st.lastSpokenAt) < e.config.SilenceWindow {
		return "", false
	}

	var clauses []string
	changeClause := false

	if labelChanged {
		clauses = append(clauses, fmt.Sprintf("You appear to be in %s now", in.Scene.Label))
		changeClause = true
	}

	switch {
	case len(newNames) == 1:
		clauses = append(clauses, fmt.Sprintf("A %s has come into view", newNames[0]))
		changeClause = true
	case len(newNames) > 1:
		listed := newNames
		suffix := ""
		if len(listed) > e.config.MaxListedNames {
			listed = listed[:e.config.MaxListedNames]
			suffix = ", and more"
		}
		clauses = append(clauses, fmt.Sprintf("Several new things came into view: %s%s",
			strings.Join(listed, ", "), suffix))
		changeClause = true
	}

	if in.Motion != nil && in.Motion.Detected && len(clauses) > 0 {
		clauses = append(clauses, movementClause(in.Motion.Direction))
	}

	if len(clauses) == 0 {
		// Long quiet period with objects still in view: low-key
		// presence reminder.
		if now.Sub(e.st.lastSpokenAt) > e.config.QuietFallback && len(in.Objects) > 0 {
			clauses = append(clauses, stillPresentClause(in.Objects))
		} else {
			return "", false
		}
	}

	utterance := strings.Join(clauses, ". ") + "."

	// Phrase-cache dedup: never repeat a recently spoken environment
	// phrase; the cache is wholesale-reset once it outgrows its cap.
	if e.st.recentPhrases[utterance] {
		return "", false
	}
	e.st.recentPhrases[utterance] = true
	if len(e.st.recentPhrases) > e.config.PhraseCacheCap {
		e.st.recentPhrases = map[string]bool{}
	}

	e.st.lastObjectNames = currentNames
	if in.Scene != nil {
		e.st.lastEnvironmentLabel = in.Scene.Label
	}
	e.st.lastSpokenAt = now
	e.st.lastSpokenUtterance = utterance
	if changeClause {
		e.st.lastSignificantChange = now
	}
	return utterance, true
}

// nearDuplicate reports whether two text contents read as the same sign.
func nearDuplicate(a, b string) bool {
	if b == "" {
		return false
	}
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

func movementClause(dir motion.Direction) string {
	switch dir {
	case motion.DirectionLeft:
		return "There is movement on the left"
	case motion.DirectionRight:
		return "There is movement on the right"
	case motion.DirectionUp:
		return "Something is moving upward"
	case motion.DirectionDown:
		return "Something is moving downward"
	default:
		return "There is some movement around you"
	}
}

// stillPresentClause names the most prominent currently-visible objects.
// Prominence is persistence-weighted confidence.
func stillPresentClause(objs []track.Object) string {
	best := objs[0]
	bestScore := prominence(best)
	for _, o := range objs[1:] {
		if s := prominence(o); s > bestScore {
			best, bestScore = o, s
		}
	}
	if len(objs) == 1 {
		return fmt.Sprintf("The %s is still there", best.Label)
	}
	return fmt.Sprintf("The %s and %d other things are still around", best.Label, len(objs)-1)
}

func prominence(o track.Object) float64 {
	return o.Confidence * float64(o.Persistence)
}
