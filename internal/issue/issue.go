// Package issue defines detected writing issues, their derived fingerprints,
// and the tracker that remembers which issues a user has dismissed.
package issue

// Type classifies a detected issue.
type Type string

const (
	TypeGrammar  Type = "grammar"
	TypeSpelling Type = "spelling"
	TypeStyle    Type = "style"
)

// Position is a half-open [Start, End) range in plain-text code units.
type Position struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// RuleInfo carries the detector's rule metadata for display purposes.
type RuleInfo struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Issue is a single detected grammar/spelling/style problem. IDs are
// regenerated on every analysis run and must not be used for cross-run
// identity; use Fingerprint for that.
type Issue struct {
	ID          string   `json:"id"`
	Type        Type     `json:"type"`
	Position    Position `json:"position"`
	Message     string   `json:"message"`
	Context     string   `json:"context"`
	Suggestions []string `json:"suggestions"`
	Confidence  float64  `json:"confidence"`
	Rule        RuleInfo `json:"rule"`
}

// Change is a single proposed mutation of the document text, captured at
// detection time and revalidated against the current plain text before it
// is applied.
type Change struct {
	Original    string `json:"originalText"`
	Replacement string `json:"replacementText"`
	Start       int    `json:"plainTextStart"`
	End         int    `json:"plainTextEnd"`
}
