package plaintext

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// ProjectMarkdown projects a markdown document body to plain text by
// rendering it to HTML and running the result through Project. Documents
// imported from markdown share the same canonical projection as native
// rich content.
func ProjectMarkdown(source string) string {
	if source == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		// Projection never fails; fall back to stripping the raw source.
		return Project(source)
	}
	return Project(buf.String())
}
