// Package detector defines the external grammar/spelling/style analysis
// service the engine consumes. The detector is an opaque oracle: it may be
// slow, wrong, or down, and none of that is allowed to crash the engine.
package detector

import (
	"context"

	"redpen/api/internal/issue"
)

// Options selects which checks the detector runs.
type Options struct {
	Grammar  bool   `json:"enableGrammar"`
	Spelling bool   `json:"enableSpelling"`
	Style    bool   `json:"enableStyle"`
	Language string `json:"language"`
}

// Stats summarizes one analysis run.
type Stats struct {
	WordCount     int `json:"wordCount"`
	GrammarCount  int `json:"grammarCount"`
	SpellingCount int `json:"spellingCount"`
	StyleCount    int `json:"styleCount"`
}

// Report is the result of one analysis run.
type Report struct {
	Issues []issue.Issue `json:"issues"`
	Stats  *Stats        `json:"summaryStats"`
}

// Detector analyzes plain text and returns ranked issues.
type Detector interface {
	Detect(ctx context.Context, text string, opts Options) (Report, error)
}
