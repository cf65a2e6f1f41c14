package corrections

import (
	"sort"
	"strings"

	"redpen/api/internal/issue"
	"redpen/api/internal/richtext"
)

// Result reports the outcome of a batch application. Partial success is the
// expected common case (concurrent edits, repeated words), so failures are
// counters, never errors.
type Result struct {
	Applied int `json:"applied"`
	Failed  int `json:"failed"`
}

// ApplyOne applies a single correction. The change's original fragment is
// revalidated against the current projection first; when the text has moved
// under the user the change is rejected with applied=false, which callers
// must treat as a normal, recoverable outcome. On success the caret moves
// to the end of the replacement.
func ApplyOne(s richtext.Surface, ch issue.Change) bool {
	current := s.PlainText()
	start, end, ok := Resolve(current, ch.Original)
	if !ok {
		return false
	}
	if !s.ReplaceRange(start, end, ch.Replacement) {
		return false
	}
	caret := start + len(ch.Replacement)
	s.SetSelection(caret, caret)
	return true
}

// ApplyMany applies a batch of corrections. Changes whose original fragment
// no longer appears in the current text are dropped up front; the rest are
// applied right-to-left (descending start offset) so each replacement's own
// offsets are still valid when it runs — only text after it has shifted. A
// single failed change does not abort the batch.
//
// Callers are expected to dismiss every originally-targeted issue
// afterwards, whatever the counters say: showing a user an issue they
// already accepted is worse than silently dropping one unresolvable
// correction.
func ApplyMany(s richtext.Surface, changes []issue.Change) Result {
	if len(changes) == 0 {
		return Result{}
	}

	current := s.PlainText()
	var result Result
	valid := make([]issue.Change, 0, len(changes))
	for _, ch := range changes {
		if ch.Original == "" || !strings.Contains(current, ch.Original) {
			result.Failed++
			continue
		}
		valid = append(valid, ch)
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Start > valid[j].Start
	})

	for _, ch := range valid {
		if ApplyOne(s, ch) {
			result.Applied++
		} else {
			result.Failed++
		}
	}
	return result
}
