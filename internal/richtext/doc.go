package richtext

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Mark is a formatting or annotation mark on a text node.
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Node is one node in the document tree.
type Node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []*Node        `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
}

// blockTypes are the node types whose boundaries separate words in the
// plain-text rendering.
var blockTypes = map[string]bool{
	"paragraph":   true,
	"heading":     true,
	"codeBlock":   true,
	"tableCell":   true,
	"tableHeader": true,
}

// span records where one text node landed in the plain-text rendering.
type span struct {
	parent *Node
	index  int
	start  int
	end    int
}

// Doc is a parsed rich document implementing Surface. It is not safe for
// concurrent use; callers serialize access per editing session.
type Doc struct {
	root  *Node
	dirty bool
	plain string
	spans []span

	selStart, selEnd int
}

// NewDoc builds a document of plain paragraphs, one per non-empty entry.
// Used when importing content that arrives as text rather than as a
// document tree.
func NewDoc(paragraphs ...string) *Doc {
	root := &Node{Type: "doc"}
	for _, p := range paragraphs {
		if p == "" {
			continue
		}
		root.Content = append(root.Content, &Node{
			Type:    "paragraph",
			Content: []*Node{{Type: "text", Text: p}},
		})
	}
	return &Doc{root: root, dirty: true}
}

// ParseDoc decodes a ProseMirror-style JSON document body.
func ParseDoc(raw json.RawMessage) (*Doc, error) {
	if len(raw) == 0 {
		return &Doc{root: &Node{Type: "doc"}, dirty: true}, nil
	}
	var root Node
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if root.Type == "" {
		root.Type = "doc"
	}
	return &Doc{root: &root, dirty: true}, nil
}

// JSON serializes the document body back to its wire form.
func (d *Doc) JSON() (json.RawMessage, error) {
	raw, err := json.Marshal(d.root)
	if err != nil {
		return nil, fmt.Errorf("serialize document: %w", err)
	}
	return raw, nil
}

// PlainText renders the document to plain text: text nodes concatenated in
// order, one space between blocks, no leading or trailing whitespace.
func (d *Doc) PlainText() string {
	d.rebuild()
	return d.plain
}

// SetSelection records the caret range in plain-text offsets.
func (d *Doc) SetSelection(start, end int) {
	d.selStart, d.selEnd = start, end
}

// Selection returns the last recorded selection.
func (d *Doc) Selection() (int, int) {
	return d.selStart, d.selEnd
}

// Refresh drops cached layout so the next read reflects the current tree.
func (d *Doc) Refresh() {
	d.dirty = true
	d.rebuild()
}

func (d *Doc) rebuild() {
	if !d.dirty {
		return
	}
	var b strings.Builder
	d.spans = d.spans[:0]
	needSep := false
	d.walkText(d.root, &b, &needSep)
	d.plain = b.String()
	d.dirty = false
}

func (d *Doc) walkText(n *Node, b *strings.Builder, needSep *bool) {
	for i, child := range n.Content {
		switch {
		case child.Type == "text":
			if child.Text == "" {
				continue
			}
			if *needSep && b.Len() > 0 {
				b.WriteString(" ")
			}
			*needSep = false
			start := b.Len()
			b.WriteString(child.Text)
			d.spans = append(d.spans, span{parent: n, index: i, start: start, end: b.Len()})
		case child.Type == "hardBreak":
			*needSep = true
		default:
			d.walkText(child, b, needSep)
			if blockTypes[child.Type] {
				*needSep = true
			}
		}
	}
}

// overlapping returns the spans intersecting the half-open range, snapping
// offsets that fall into inter-block gaps onto the nearest text node.
func (d *Doc) overlapping(start, end int) []span {
	var out []span
	for _, s := range d.spans {
		if s.end > start && s.start < end {
			out = append(out, s)
		}
	}
	if out == nil && start == end {
		// Pure insertion point: attach to the span containing it.
		for _, s := range d.spans {
			if start >= s.start && start <= s.end {
				return []span{s}
			}
		}
	}
	return out
}

// ReplaceRange replaces the plain-text range with replacement at the rich
// level, preserving the marks of the node the range starts in. Returns
// false when the range does not address any text.
func (d *Doc) ReplaceRange(start, end int, replacement string) bool {
	d.rebuild()
	if start < 0 || end < start || end > len(d.plain) {
		return false
	}
	spans := d.overlapping(start, end)
	if len(spans) == 0 {
		return false
	}

	first, last := spans[0], spans[len(spans)-1]
	firstCut := clampInt(start-first.start, 0, len(first.parent.Content[first.index].Text))
	lastCut := clampInt(end-last.start, 0, len(last.parent.Content[last.index].Text))

	if len(spans) == 1 {
		node := first.parent.Content[first.index]
		node.Text = node.Text[:firstCut] + replacement + node.Text[lastCut:]
	} else {
		firstNode := first.parent.Content[first.index]
		firstNode.Text = firstNode.Text[:firstCut] + replacement
		lastNode := last.parent.Content[last.index]
		lastNode.Text = lastNode.Text[lastCut:]
		for _, mid := range spans[1 : len(spans)-1] {
			mid.parent.Content[mid.index].Text = ""
		}
	}

	prune(d.root)
	d.dirty = true
	return true
}

// ApplyMark paints a mark over the plain-text range, splitting text nodes
// at the range boundaries so formatting outside the range is untouched.
func (d *Doc) ApplyMark(start, end int, attrs MarkAttrs) bool {
	d.rebuild()
	if start < 0 || end <= start || end > len(d.plain) {
		return false
	}
	spans := d.overlapping(start, end)
	if len(spans) == 0 {
		return false
	}

	mark := Mark{Type: AnnotationMark, Attrs: attrs.toMap()}

	// Split in reverse so earlier span indexes stay valid.
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		node := s.parent.Content[s.index]
		from := clampInt(start-s.start, 0, len(node.Text))
		to := clampInt(end-s.start, 0, len(node.Text))
		if from >= to {
			continue
		}
		splitAndMark(s.parent, s.index, from, to, mark)
	}

	d.dirty = true
	return true
}

// ClearMarks removes every mark of the given type and merges text nodes
// that earlier splits left behind.
func (d *Doc) ClearMarks(markType string) {
	stripMarks(d.root, markType)
	mergeText(d.root)
	d.dirty = true
}

// MarkCount reports how many distinct annotations of the given type are on
// the document, counting a multi-node annotation once by its errorId.
func (d *Doc) MarkCount(markType string) int {
	seen := make(map[string]struct{})
	plain := 0
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, child := range n.Content {
			for _, m := range child.Marks {
				if m.Type != markType {
					continue
				}
				if id, ok := m.Attrs["errorId"].(string); ok && id != "" {
					seen[id] = struct{}{}
				} else {
					plain++
				}
			}
			walk(child)
		}
	}
	walk(d.root)
	return len(seen) + plain
}

func (a MarkAttrs) toMap() map[string]any {
	m := map[string]any{
		"errorId":  a.ErrorID,
		"type":     a.Type,
		"severity": a.Severity,
		"message":  a.Message,
	}
	if len(a.Suggestions) > 0 {
		suggestions := make([]any, len(a.Suggestions))
		for i, s := range a.Suggestions {
			suggestions[i] = s
		}
		m["suggestions"] = suggestions
	}
	return m
}

// splitAndMark splits parent.Content[index] so the [from, to) byte range of
// its text becomes its own node carrying the extra mark.
func splitAndMark(parent *Node, index, from, to int, mark Mark) {
	node := parent.Content[index]
	var pieces []*Node
	if from > 0 {
		pieces = append(pieces, &Node{Type: "text", Text: node.Text[:from], Marks: cloneMarks(node.Marks)})
	}
	marked := &Node{Type: "text", Text: node.Text[from:to], Marks: append(cloneMarks(node.Marks), mark)}
	pieces = append(pieces, marked)
	if to < len(node.Text) {
		pieces = append(pieces, &Node{Type: "text", Text: node.Text[to:], Marks: cloneMarks(node.Marks)})
	}

	content := make([]*Node, 0, len(parent.Content)+len(pieces)-1)
	content = append(content, parent.Content[:index]...)
	content = append(content, pieces...)
	content = append(content, parent.Content[index+1:]...)
	parent.Content = content
}

func cloneMarks(marks []Mark) []Mark {
	if len(marks) == 0 {
		return nil
	}
	out := make([]Mark, len(marks))
	copy(out, marks)
	return out
}

func stripMarks(n *Node, markType string) {
	for _, child := range n.Content {
		if len(child.Marks) > 0 {
			kept := child.Marks[:0]
			for _, m := range child.Marks {
				if m.Type != markType {
					kept = append(kept, m)
				}
			}
			child.Marks = kept
			if len(child.Marks) == 0 {
				child.Marks = nil
			}
		}
		stripMarks(child, markType)
	}
}

// mergeText joins adjacent text nodes with identical mark sets, undoing
// annotation splits once their marks are cleared.
func mergeText(n *Node) {
	merged := n.Content[:0]
	for _, child := range n.Content {
		mergeText(child)
		if child.Type == "text" && len(merged) > 0 {
			prev := merged[len(merged)-1]
			if prev.Type == "text" && sameMarks(prev.Marks, child.Marks) {
				prev.Text += child.Text
				continue
			}
		}
		merged = append(merged, child)
	}
	n.Content = merged
}

func sameMarks(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type {
			return false
		}
		if !reflect.DeepEqual(a[i].Attrs, b[i].Attrs) {
			return false
		}
	}
	return true
}

// prune drops text nodes a replacement emptied out.
func prune(n *Node) {
	kept := n.Content[:0]
	for _, child := range n.Content {
		prune(child)
		if child.Type == "text" && child.Text == "" {
			continue
		}
		kept = append(kept, child)
	}
	n.Content = kept
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
