// Package richtext models the rich document body the editor works on: a
// ProseMirror-style node tree with text marks, addressable through the
// plain text it renders to.
package richtext

// MarkType used for correction annotations painted onto the document.
const AnnotationMark = "issue"

// MarkAttrs is the payload carried by an annotation mark.
type MarkAttrs struct {
	ErrorID     string   `json:"errorId"`
	Type        string   `json:"type"`
	Severity    string   `json:"severity"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Surface is the minimal capability set the correction engine needs from a
// rich editing surface. Offsets are code units into PlainText. Any rich
// text component exposing these operations is substitutable.
type Surface interface {
	PlainText() string
	SetSelection(start, end int)
	ApplyMark(start, end int, attrs MarkAttrs) bool
	ClearMarks(markType string)
	ReplaceRange(start, end int, replacement string) bool
	Refresh()
}
