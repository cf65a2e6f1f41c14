// Package annotate paints visual markers for current issues onto the rich
// editing surface and guarantees no stale marks linger.
package annotate

import (
	"strings"

	"redpen/api/internal/corrections"
	"redpen/api/internal/issue"
	"redpen/api/internal/richtext"
)

// Render repaints the surface for the given issue list. Every pass runs the
// same four phases: clear all existing annotation marks, resolve each
// issue's plain-text range onto the surface, paint markers, then force a
// layout refresh. Clearing is unconditional and always precedes painting —
// partial clears followed by partial paints are how ghost highlights
// happen.
//
// detectionText is the plain text the issues were detected against; the
// surface may have drifted since. Returns how many issues were painted;
// unresolvable issues are skipped rather than mis-highlighted.
func Render(s richtext.Surface, issues []issue.Issue, detectionText string) int {
	s.ClearMarks(richtext.AnnotationMark)

	painted := 0
	current := s.PlainText()
	for _, iss := range issues {
		start, end, ok := resolve(current, detectionText, iss)
		if !ok {
			continue
		}
		if s.ApplyMark(start, end, markAttrs(iss)) {
			painted++
		}
	}

	s.Refresh()
	return painted
}

// resolve converts an issue's detection-time range into a range on the
// surface's current text. Strategies, in order: direct offsets when the
// surface text is byte-identical to the detection text, exact-fragment
// search, then the shared prefix-anchor ladder.
func resolve(current, detectionText string, iss issue.Issue) (int, int, bool) {
	start, end := iss.Position.Start, iss.Position.End
	if start < 0 || end <= start || end > len(detectionText) {
		return 0, 0, false
	}

	if current == detectionText {
		return start, end, true
	}

	fragment := detectionText[start:end]
	if idx := strings.Index(current, fragment); idx >= 0 {
		return idx, idx + len(fragment), true
	}

	return corrections.Resolve(current, fragment)
}

func markAttrs(iss issue.Issue) richtext.MarkAttrs {
	return richtext.MarkAttrs{
		ErrorID:     iss.ID,
		Type:        string(iss.Type),
		Severity:    severity(iss),
		Message:     iss.Message,
		Suggestions: iss.Suggestions,
	}
}

// severity buckets an issue for styling: spelling and high-confidence
// grammar problems render as errors, everything else as warnings.
func severity(iss issue.Issue) string {
	if iss.Type == issue.TypeSpelling {
		return "error"
	}
	if iss.Type == issue.TypeGrammar && iss.Confidence >= 0.8 {
		return "error"
	}
	return "warning"
}
