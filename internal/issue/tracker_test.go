package issue

import (
	"context"
	"strings"
	"testing"
)

func TestDismissalSurvivesReanalysis(t *testing.T) {
	ctx := context.Background()
	text := "I think the compay is doing well overall"
	tracker := NewTracker(nil)

	detected := Issue{ID: "run1-1", Type: TypeSpelling, Position: Position{Start: 12, End: 18}}
	tracker.Dismiss(ctx, detected, text)

	// Same problem, fresh analysis, different id.
	redetected := Issue{ID: "run2-9", Type: TypeSpelling, Position: Position{Start: 12, End: 18}}
	kept := tracker.Filter(ctx, []Issue{redetected}, text)
	if len(kept) != 0 {
		t.Errorf("dismissed issue resurfaced: %+v", kept)
	}
}

func TestFilterKeepsUndismissed(t *testing.T) {
	ctx := context.Background()
	text := "Their going to the store and the compay agrees"
	tracker := NewTracker(nil)

	first := Issue{Type: TypeGrammar, Position: Position{Start: 0, End: 5}}
	second := Issue{Type: TypeSpelling, Position: Position{Start: 33, End: 39}}
	tracker.Dismiss(ctx, first, text)

	kept := tracker.Filter(ctx, []Issue{first, second}, text)
	if len(kept) != 1 {
		t.Fatalf("expected 1 kept issue, got %d", len(kept))
	}
	if kept[0].Type != TypeSpelling {
		t.Errorf("wrong issue kept: %+v", kept[0])
	}
}

func TestObserveClearsOnRewrite(t *testing.T) {
	ctx := context.Background()
	original := strings.Repeat("the quick brown fox ", 5)
	tracker := NewTracker(nil)
	tracker.Observe(ctx, original)

	iss := Issue{Type: TypeStyle, Position: Position{Start: 4, End: 9}}
	tracker.Dismiss(ctx, iss, original)

	// Replace well over half the document.
	rewritten := strings.Repeat("a completely different sentence here ", 5)
	tracker.Observe(ctx, rewritten)

	// Back on the original text the old fingerprint must be eligible again.
	kept := tracker.Filter(ctx, []Issue{iss}, original)
	if len(kept) != 1 {
		t.Error("dismissed set should have been cleared after a rewrite")
	}
}

func TestObserveKeepsSetOnSmallEdit(t *testing.T) {
	ctx := context.Background()
	original := "I think the compay is doing well overall this quarter"
	tracker := NewTracker(nil)
	tracker.Observe(ctx, original)

	iss := Issue{Type: TypeSpelling, Position: Position{Start: 12, End: 18}}
	tracker.Dismiss(ctx, iss, original)

	// Append a few words; fingerprints stay valid.
	tracker.Observe(ctx, original+" and beyond")

	kept := tracker.Filter(ctx, []Issue{iss}, original)
	if len(kept) != 0 {
		t.Error("small edit should not clear the dismissed set")
	}
}

func TestHasSignificantChange(t *testing.T) {
	cases := []struct {
		name string
		old  string
		new  string
		want bool
	}{
		{"identical", "hello world", "hello world", false},
		{"small append", strings.Repeat("x", 100), strings.Repeat("x", 110), false},
		{"large append", strings.Repeat("x", 100), strings.Repeat("x", 180), true},
		{"large truncation", strings.Repeat("x", 100), strings.Repeat("x", 50), true},
		{"full rewrite same length", strings.Repeat("a", 100), strings.Repeat("b", 100), true},
		{"both empty", "", "", false},
		{"from empty", "", "something", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HasSignificantChange(tc.old, tc.new); got != tc.want {
				t.Errorf("HasSignificantChange = %v, want %v", got, tc.want)
			}
		})
	}
}
