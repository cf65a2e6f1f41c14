package annotate

import (
	"encoding/json"
	"testing"

	"redpen/api/internal/issue"
	"redpen/api/internal/richtext"
)

func paragraphDoc(t *testing.T, text string) *richtext.Doc {
	t.Helper()
	raw, _ := json.Marshal(map[string]any{
		"type": "doc",
		"content": []any{
			map[string]any{
				"type": "paragraph",
				"content": []any{
					map[string]any{"type": "text", "text": text},
				},
			},
		},
	})
	d, err := richtext.ParseDoc(raw)
	if err != nil {
		t.Fatalf("ParseDoc failed: %v", err)
	}
	return d
}

func TestRenderPaintsIssues(t *testing.T) {
	text := "I think the compay is doing well"
	doc := paragraphDoc(t, text)
	issues := []issue.Issue{
		{ID: "e1", Type: issue.TypeSpelling, Position: issue.Position{Start: 12, End: 18}, Message: "typo"},
	}

	painted := Render(doc, issues, text)
	if painted != 1 {
		t.Errorf("painted = %d, want 1", painted)
	}
	if n := doc.MarkCount(richtext.AnnotationMark); n != 1 {
		t.Errorf("MarkCount = %d, want 1", n)
	}
	if got := doc.PlainText(); got != text {
		t.Errorf("painting changed plain text: %q", got)
	}
}

func TestRenderClearsBeforePainting(t *testing.T) {
	text := "one mistak here and anothr there today"
	doc := paragraphDoc(t, text)

	first := []issue.Issue{
		{ID: "a", Type: issue.TypeSpelling, Position: issue.Position{Start: 4, End: 10}},
		{ID: "b", Type: issue.TypeSpelling, Position: issue.Position{Start: 20, End: 26}},
	}
	second := []issue.Issue{
		{ID: "c", Type: issue.TypeSpelling, Position: issue.Position{Start: 4, End: 10}},
	}

	Render(doc, first, text)
	Render(doc, second, text)

	// Marks must equal the second list's size, never the sum of both.
	if n := doc.MarkCount(richtext.AnnotationMark); n != 1 {
		t.Errorf("MarkCount after two renders = %d, want 1", n)
	}
}

func TestRenderEmptyListClearsAll(t *testing.T) {
	text := "one mistak here"
	doc := paragraphDoc(t, text)
	Render(doc, []issue.Issue{
		{ID: "a", Type: issue.TypeSpelling, Position: issue.Position{Start: 4, End: 10}},
	}, text)

	Render(doc, nil, text)
	if n := doc.MarkCount(richtext.AnnotationMark); n != 0 {
		t.Errorf("MarkCount = %d, want 0", n)
	}
}

func TestRenderFallsBackToFragmentSearch(t *testing.T) {
	// Surface text drifted: a word was inserted before the issue.
	detectionText := "the compay is fine"
	doc := paragraphDoc(t, "well the compay is fine")
	issues := []issue.Issue{
		{ID: "e1", Type: issue.TypeSpelling, Position: issue.Position{Start: 4, End: 10}},
	}

	if painted := Render(doc, issues, detectionText); painted != 1 {
		t.Errorf("painted = %d, want 1", painted)
	}
}

func TestRenderSkipsUnresolvable(t *testing.T) {
	detectionText := "the compay is fine"
	doc := paragraphDoc(t, "entirely rewritten sentence")
	issues := []issue.Issue{
		{ID: "e1", Type: issue.TypeSpelling, Position: issue.Position{Start: 4, End: 10}},
		{ID: "e2", Type: issue.TypeGrammar, Position: issue.Position{Start: 0, End: 3}},
	}

	// Neither fragment appears in the rewritten text: both skipped,
	// nothing mis-highlighted.
	painted := Render(doc, issues, detectionText)
	if painted != 0 {
		t.Errorf("painted = %d, want 0", painted)
	}
	if n := doc.MarkCount(richtext.AnnotationMark); n != 0 {
		t.Errorf("MarkCount = %d, want 0", n)
	}
}

func TestRenderRejectsBadPositions(t *testing.T) {
	text := "short"
	doc := paragraphDoc(t, text)
	issues := []issue.Issue{
		{ID: "bad1", Position: issue.Position{Start: 3, End: 3}},
		{ID: "bad2", Position: issue.Position{Start: 2, End: 99}},
		{ID: "bad3", Position: issue.Position{Start: -1, End: 2}},
	}
	if painted := Render(doc, issues, text); painted != 0 {
		t.Errorf("painted = %d, want 0", painted)
	}
}

func TestSeverityBuckets(t *testing.T) {
	cases := []struct {
		iss  issue.Issue
		want string
	}{
		{issue.Issue{Type: issue.TypeSpelling}, "error"},
		{issue.Issue{Type: issue.TypeGrammar, Confidence: 0.9}, "error"},
		{issue.Issue{Type: issue.TypeGrammar, Confidence: 0.5}, "warning"},
		{issue.Issue{Type: issue.TypeStyle, Confidence: 0.99}, "warning"},
	}
	for _, tc := range cases {
		if got := severity(tc.iss); got != tc.want {
			t.Errorf("severity(%s, %.2f) = %s, want %s", tc.iss.Type, tc.iss.Confidence, got, tc.want)
		}
	}
}
