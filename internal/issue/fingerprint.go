package issue

import "fmt"

// contextRadius is how many code units of surrounding text on each side of
// an issue go into its fingerprint. Wide enough to distinguish repeated
// words, narrow enough to survive edits elsewhere in the document.
const contextRadius = 10

// Fingerprint derives a stable identity for an issue from its type, its
// position, and the text immediately around it. Detector IDs change on
// every run, but on near-identical text the same underlying problem lands
// at the same position with the same neighborhood, so this key recognizes
// it across analyses. Once the text shifts enough that position and context
// stop lining up the fingerprint is deliberately invalidated.
func Fingerprint(iss Issue, text string) string {
	start := clamp(iss.Position.Start, 0, len(text))
	end := clamp(iss.Position.End, start, len(text))
	ctxStart := clamp(start-contextRadius, 0, len(text))
	ctxEnd := clamp(end+contextRadius, 0, len(text))
	return fmt.Sprintf("%s|%d|%d|%s", iss.Type, start, end-start, text[ctxStart:ctxEnd])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
