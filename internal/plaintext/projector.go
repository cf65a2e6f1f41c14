// Package plaintext projects rich document markup into the canonical plain
// text used for analysis and text-based re-location.
package plaintext

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

var spacePattern = regexp.MustCompile(`\s+`)

// entityTable maps the entity references the editor emits to their literal
// characters. Decoding happens after tag stripping so entities inside
// attributes never leak into the projection.
var entityTable = []struct {
	ref     string
	literal string
}{
	{"&nbsp;", " "},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#34;", `"`},
	{"&#39;", "'"},
	{"&apos;", "'"},
	// amp last so it cannot create new references out of decoded text
	{"&amp;", "&"},
}

// Project converts rich markup to plain text. Tags are replaced with a
// single space so words on either side of a tag boundary stay separate,
// entity references are decoded, and whitespace runs collapse to one space.
// Project is pure: the same markup always yields the same text, and bad
// input yields an empty string rather than an error.
func Project(markup string) string {
	if markup == "" {
		return ""
	}
	text := tagPattern.ReplaceAllString(markup, " ")
	for _, e := range entityTable {
		text = strings.ReplaceAll(text, e.ref, e.literal)
	}
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
