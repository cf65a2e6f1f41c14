package richtext

import (
	"fmt"
	"html"
	"strings"
)

// ToHTML renders the document to HTML markup. The correction engine
// projects this markup to plain text for analysis; the search indexer uses
// it for snippets.
func (d *Doc) ToHTML() string {
	if d == nil || d.root == nil {
		return ""
	}
	return renderNode(d.root)
}

func renderNode(node *Node) string {
	switch node.Type {
	case "doc":
		return renderContent(node.Content)
	case "paragraph":
		return fmt.Sprintf("<p>%s</p>\n", renderContent(node.Content))
	case "heading":
		level := 1
		if lvl, ok := node.Attrs["level"].(float64); ok {
			level = int(lvl)
		}
		return fmt.Sprintf("<h%d>%s</h%d>\n", level, renderContent(node.Content), level)
	case "bulletList":
		return fmt.Sprintf("<ul>\n%s</ul>\n", renderContent(node.Content))
	case "orderedList":
		return fmt.Sprintf("<ol>\n%s</ol>\n", renderContent(node.Content))
	case "listItem":
		return fmt.Sprintf("<li>%s</li>\n", renderContent(node.Content))
	case "blockquote":
		return fmt.Sprintf("<blockquote>\n%s</blockquote>\n", renderContent(node.Content))
	case "codeBlock":
		return fmt.Sprintf("<pre><code>%s</code></pre>\n", html.EscapeString(rawText(node)))
	case "text":
		return renderTextWithMarks(node.Text, node.Marks)
	case "hardBreak":
		return "<br>"
	case "horizontalRule":
		return "<hr>\n"
	case "table":
		return fmt.Sprintf("<table>\n%s</table>\n", renderContent(node.Content))
	case "tableRow":
		return fmt.Sprintf("<tr>\n%s</tr>\n", renderContent(node.Content))
	case "tableCell":
		return fmt.Sprintf("<td>%s</td>\n", renderContent(node.Content))
	case "tableHeader":
		return fmt.Sprintf("<th>%s</th>\n", renderContent(node.Content))
	default:
		return renderContent(node.Content)
	}
}

func renderContent(content []*Node) string {
	var b strings.Builder
	for _, child := range content {
		b.WriteString(renderNode(child))
	}
	return b.String()
}

func rawText(node *Node) string {
	if node.Type == "text" {
		return node.Text
	}
	var b strings.Builder
	for _, child := range node.Content {
		b.WriteString(rawText(child))
	}
	return b.String()
}

func renderTextWithMarks(text string, marks []Mark) string {
	if text == "" {
		return ""
	}
	out := html.EscapeString(text)

	// Annotation marks are engine-internal and never rendered.
	for i := len(marks) - 1; i >= 0; i-- {
		switch marks[i].Type {
		case "bold":
			out = fmt.Sprintf("<strong>%s</strong>", out)
		case "italic":
			out = fmt.Sprintf("<em>%s</em>", out)
		case "code":
			out = fmt.Sprintf("<code>%s</code>", out)
		case "link":
			href, _ := marks[i].Attrs["href"].(string)
			out = fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(href), out)
		case "strike":
			out = fmt.Sprintf("<s>%s</s>", out)
		case "underline":
			out = fmt.Sprintf("<u>%s</u>", out)
		}
	}
	return out
}
