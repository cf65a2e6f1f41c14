package plaintext

import (
	"encoding/json"
	"testing"

	"redpen/api/internal/richtext"
)

func TestProjectStripsTags(t *testing.T) {
	got := Project("<p>Hello <strong>world</strong></p>")
	if got != "Hello world" {
		t.Errorf("expected %q, got %q", "Hello world", got)
	}
}

func TestProjectTagBoundariesKeepWordsSeparate(t *testing.T) {
	// Adjacent block elements must not concatenate words.
	got := Project("<p>first</p><p>second</p>")
	if got != "first second" {
		t.Errorf("expected %q, got %q", "first second", got)
	}
}

func TestProjectDecodesEntities(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"a&nbsp;b", "a b"},
		{"x &amp; y", "x & y"},
		{"&lt;tag&gt;", "<tag>"},
		{"say &quot;hi&quot;", `say "hi"`},
		{"say &#34;hi&#34;", `say "hi"`},
		{"it&#39;s", "it's"},
		{"it&apos;s", "it's"},
	}
	for _, tc := range cases {
		if got := Project(tc.in); got != tc.want {
			t.Errorf("Project(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestProjectAmpDecodedLast(t *testing.T) {
	// "&amp;lt;" is a literal "&lt;" in the source, not a less-than sign.
	if got := Project("&amp;lt;"); got != "&lt;" {
		t.Errorf("expected %q, got %q", "&lt;", got)
	}
}

func TestProjectCollapsesWhitespace(t *testing.T) {
	got := Project("  a \t b\n\nc  ")
	if got != "a b c" {
		t.Errorf("expected %q, got %q", "a b c", got)
	}
}

func TestProjectDeterministic(t *testing.T) {
	markup := "<h1>Title</h1><p>Some &amp; text with <em>emphasis</em>.</p>"
	first := Project(markup)
	for i := 0; i < 10; i++ {
		if got := Project(markup); got != first {
			t.Fatalf("projection not deterministic: %q vs %q", first, got)
		}
	}
}

func TestProjectInvertsDocumentEscaping(t *testing.T) {
	// Text that exercises every character the HTML renderer escapes must
	// project back to the surface's own plain text, or detection offsets
	// drift away from the document.
	text := `He said "don't use <b> & friends" twice`
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
	doc, err := richtext.ParseDoc(raw)
	if err != nil {
		t.Fatalf("ParseDoc failed: %v", err)
	}
	if got, want := Project(doc.ToHTML()), doc.PlainText(); got != want {
		t.Errorf("projection diverged from surface text:\n  projected %q\n  surface   %q", got, want)
	}
}

func TestProjectEmptyInput(t *testing.T) {
	if got := Project(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
	if got := Project("<p></p>"); got != "" {
		t.Errorf("expected empty string for empty markup, got %q", got)
	}
}

func TestProjectMarkdown(t *testing.T) {
	got := ProjectMarkdown("# Title\n\nSome **bold** text.")
	if got != "Title Some bold text." {
		t.Errorf("expected %q, got %q", "Title Some bold text.", got)
	}
}

func TestProjectMarkdownEmpty(t *testing.T) {
	if got := ProjectMarkdown(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}
