// Package corrections applies approved corrections onto the rich document
// without corrupting formatting or drifting offsets.
package corrections

import "strings"

// prefixRunes is the anchor length for the last-resort prefix search.
const prefixRunes = 5

// Resolve locates a detection-time fragment inside the current plain text.
// Markup stripping is not invertible, so positions captured at detection
// time cannot be trusted arithmetically; instead a ranked ladder of text
// searches is tried: the exact fragment, the whitespace-trimmed fragment,
// then a short prefix as an approximate anchor. Returns the matched
// half-open range, or ok=false when every rung misses.
func Resolve(text, fragment string) (start, end int, ok bool) {
	if fragment == "" {
		return 0, 0, false
	}

	if idx := strings.Index(text, fragment); idx >= 0 {
		return idx, idx + len(fragment), true
	}

	trimmed := strings.TrimSpace(fragment)
	if trimmed != "" && trimmed != fragment {
		if idx := strings.Index(text, trimmed); idx >= 0 {
			return idx, idx + len(trimmed), true
		}
	}

	prefix := runePrefix(trimmed, prefixRunes)
	if prefix != "" && len(prefix) < len(trimmed) {
		if idx := strings.Index(text, prefix); idx >= 0 {
			end := idx + len(fragment)
			if end > len(text) {
				end = len(text)
			}
			return idx, end, true
		}
	}

	return 0, 0, false
}

func runePrefix(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
