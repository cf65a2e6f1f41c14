package issue

import (
	"context"
	"log"
)

// Thresholds for HasSignificantChange: an absolute length delta above 20%
// of the longer string, or a character-wise mismatch above 30% of the
// longer length over the overlapping prefix, counts as a rewrite.
const (
	lengthDeltaRatio = 0.20
	hammingRatio     = 0.30
)

// Tracker remembers dismissed issue fingerprints for one editing session
// and filters them out of fresh analysis results. After a large edit the
// whole set is cleared: stale fingerprints are more likely to wrongly
// suppress a new issue than to correctly recognize an old one.
type Tracker struct {
	store    DismissedStore
	lastText string
}

func NewTracker(store DismissedStore) *Tracker {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Tracker{store: store}
}

// Dismiss records the issue's fingerprint so re-analysis of near-identical
// text will not resurface it.
func (t *Tracker) Dismiss(ctx context.Context, iss Issue, text string) {
	if err := t.store.Add(ctx, Fingerprint(iss, text)); err != nil {
		log.Printf("issue: dismiss fingerprint: %v", err)
	}
}

// Filter returns issues minus those whose fingerprint has been dismissed.
// Store errors are treated as "not dismissed" so a flaky backend surfaces
// issues rather than hiding them.
func (t *Tracker) Filter(ctx context.Context, issues []Issue, text string) []Issue {
	if len(issues) == 0 {
		return issues
	}
	kept := make([]Issue, 0, len(issues))
	for _, iss := range issues {
		dismissed, err := t.store.Contains(ctx, Fingerprint(iss, text))
		if err != nil {
			log.Printf("issue: lookup fingerprint: %v", err)
			dismissed = false
		}
		if !dismissed {
			kept = append(kept, iss)
		}
	}
	return kept
}

// Observe tells the tracker the text that is about to be analyzed. When the
// text has changed significantly since the last observation the dismissed
// set is cleared before the next filter pass.
func (t *Tracker) Observe(ctx context.Context, text string) {
	if t.lastText != "" && HasSignificantChange(t.lastText, text) {
		if err := t.store.Clear(ctx); err != nil {
			log.Printf("issue: clear dismissed set: %v", err)
		}
	}
	t.lastText = text
}

// Reset wipes the dismissed set unconditionally.
func (t *Tracker) Reset(ctx context.Context) {
	if err := t.store.Clear(ctx); err != nil {
		log.Printf("issue: clear dismissed set: %v", err)
	}
	t.lastText = ""
}

// HasSignificantChange reports whether newText differs enough from oldText
// that position+context fingerprints can no longer be trusted.
func HasSignificantChange(oldText, newText string) bool {
	longer := len(oldText)
	if len(newText) > longer {
		longer = len(newText)
	}
	if longer == 0 {
		return false
	}

	delta := len(oldText) - len(newText)
	if delta < 0 {
		delta = -delta
	}
	if float64(delta) > lengthDeltaRatio*float64(longer) {
		return true
	}

	overlap := len(oldText)
	if len(newText) < overlap {
		overlap = len(newText)
	}
	mismatches := 0
	for i := 0; i < overlap; i++ {
		if oldText[i] != newText[i] {
			mismatches++
		}
	}
	return float64(mismatches) > hammingRatio*float64(longer)
}
