// Package analysis schedules background text analysis for one editing
// session: it debounces content changes, fences asynchronous detector
// results by a monotonic generation counter, and filters dismissed issues
// out of every accepted result.
package analysis

import (
	"context"
	"sync"
	"time"

	"redpen/api/internal/detector"
	"redpen/api/internal/issue"
)

// State is the scheduler's position in its Idle → Pending → Analyzing loop.
type State string

const (
	StateIdle      State = "idle"
	StatePending   State = "pending"
	StateAnalyzing State = "analyzing"
)

// DefaultDebounce is the window a content change waits for further edits
// before analysis fires.
const DefaultDebounce = time.Second

// Snapshot is a consistent view of the session's current analysis result.
type Snapshot struct {
	Issues     []issue.Issue   `json:"issues"`
	Stats      *detector.Stats `json:"stats,omitempty"`
	Error      string          `json:"error,omitempty"`
	State      State           `json:"state"`
	Text       string          `json:"-"`
	Generation uint64          `json:"-"`
}

// Config configures a Session.
type Config struct {
	Detector  detector.Detector
	Tracker   *issue.Tracker
	Options   detector.Options
	Debounce  time.Duration
	MinLength int
	// OnUpdate is invoked (outside the session lock) after every accepted
	// result, error, or cleared state.
	OnUpdate func(Snapshot)
}

// Session owns the analysis state for one open document. All state is
// guarded by one mutex; in-flight detector calls are never aborted, their
// results are simply discarded when a newer generation has been issued.
type Session struct {
	mu sync.Mutex

	det       detector.Detector
	tracker   *issue.Tracker
	opts      detector.Options
	debounce  time.Duration
	minLength int
	onUpdate  func(Snapshot)

	enabled    bool
	muted      bool
	state      State
	generation uint64
	timer      *time.Timer

	lastText string
	issues   []issue.Issue
	stats    *detector.Stats
	errMsg   string
}

func NewSession(cfg Config) *Session {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Tracker == nil {
		cfg.Tracker = issue.NewTracker(nil)
	}
	return &Session{
		det:       cfg.Detector,
		tracker:   cfg.Tracker,
		opts:      cfg.Options,
		debounce:  cfg.Debounce,
		minLength: cfg.MinLength,
		onUpdate:  cfg.OnUpdate,
		enabled:   true,
		state:     StateIdle,
	}
}

// Schedule registers a content change. The debounce timer restarts on every
// call; only the last text within the window is analyzed. Calls during a
// programmatic mutation window (Mute) are ignored so applying corrections
// or painting annotations never re-triggers analysis.
func (s *Session) Schedule(text string) {
	s.mu.Lock()
	if s.muted {
		s.mu.Unlock()
		return
	}
	if !s.enabled || len(text) < s.minLength {
		s.clearLocked()
		snap, cb := s.snapshotLocked(), s.onUpdate
		s.mu.Unlock()
		if cb != nil {
			cb(snap)
		}
		return
	}
	if text == s.lastText {
		// Byte-identical to the last accepted analysis: nothing to do.
		s.mu.Unlock()
		return
	}
	s.state = StatePending
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.run(context.Background(), text)
	})
	s.mu.Unlock()
}

// Analyze bypasses the debounce timer and analyzes text immediately. Any
// pending timer is cancelled; the call still allocates a new generation, so
// it supersedes whatever was in flight.
func (s *Session) Analyze(ctx context.Context, text string) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if !s.enabled || len(text) < s.minLength {
		s.clearLocked()
		snap, cb := s.snapshotLocked(), s.onUpdate
		s.mu.Unlock()
		if cb != nil {
			cb(snap)
		}
		return
	}
	if text == s.lastText {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.run(ctx, text)
}

// run performs one analysis pass. The generation captured before awaiting
// the detector is compared against the counter afterwards; a mismatch means
// a newer request was issued meanwhile and this result is dropped silently.
func (s *Session) run(ctx context.Context, text string) {
	s.mu.Lock()
	s.tracker.Observe(ctx, text)
	s.generation++
	gen := s.generation
	s.state = StateAnalyzing
	det, opts := s.det, s.opts
	s.mu.Unlock()

	report, err := det.Detect(ctx, text, opts)

	s.mu.Lock()
	if gen != s.generation {
		// Stale result; a later request always wins.
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.issues = nil
		s.stats = nil
		s.errMsg = "analysis failed: " + err.Error()
		s.lastText = ""
		s.state = StateIdle
	} else {
		s.issues = s.tracker.Filter(ctx, report.Issues, text)
		s.stats = report.Stats
		s.errMsg = ""
		s.lastText = text
		s.state = StateIdle
	}
	snap, cb := s.snapshotLocked(), s.onUpdate
	s.mu.Unlock()

	if cb != nil {
		cb(snap)
	}
}

// Dismiss records the issue's fingerprint and removes it from the current
// list. Returns the dismissed issue, or ok=false when the id is unknown.
func (s *Session) Dismiss(ctx context.Context, issueID string) (issue.Issue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, iss := range s.issues {
		if iss.ID == issueID {
			s.tracker.Dismiss(ctx, iss, s.lastText)
			s.issues = append(s.issues[:i:i], s.issues[i+1:]...)
			return iss, true
		}
	}
	return issue.Issue{}, false
}

// DismissAll fingerprints and removes every current issue. Used after bulk
// application: every originally-targeted issue is dismissed whether or not
// its correction could be applied.
func (s *Session) DismissAll(ctx context.Context) []issue.Issue {
	s.mu.Lock()
	defer s.mu.Unlock()
	dismissed := s.issues
	for _, iss := range dismissed {
		s.tracker.Dismiss(ctx, iss, s.lastText)
	}
	s.issues = nil
	return dismissed
}

// Mute opens a programmatic mutation window: Schedule becomes a no-op until
// Unmute, so the engine's own edits are not mistaken for user edits.
func (s *Session) Mute() {
	s.mu.Lock()
	s.muted = true
	s.mu.Unlock()
}

func (s *Session) Unmute() {
	s.mu.Lock()
	s.muted = false
	s.mu.Unlock()
}

// SetEnabled toggles analysis. Disabling clears current results.
func (s *Session) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	if !enabled {
		s.clearLocked()
	}
	s.mu.Unlock()
}

// Snapshot returns the current analysis view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close cancels any pending debounce timer.
func (s *Session) Close() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
}

// ClearDismissed wipes the tracker's dismissed fingerprints. The tracker
// is only ever touched under the session lock, so teardown must come
// through here rather than reaching the tracker directly: a detector call
// issued before Close can still be in flight, and its filter pass must not
// race the reset.
func (s *Session) ClearDismissed(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Reset(ctx)
}

func (s *Session) clearLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.state = StateIdle
	s.issues = nil
	s.stats = nil
	s.errMsg = ""
}

func (s *Session) snapshotLocked() Snapshot {
	issues := make([]issue.Issue, len(s.issues))
	copy(issues, s.issues)
	return Snapshot{
		Issues:     issues,
		Stats:      s.stats,
		Error:      s.errMsg,
		State:      s.state,
		Text:       s.lastText,
		Generation: s.generation,
	}
}
