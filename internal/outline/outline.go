// Package outline renders the markdown outline attached to an idea.
package outline

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Section is one heading of an outline.
type Section struct {
	Level int    `json:"level"`
	Title string `json:"title"`
}

var md = goldmark.New()

// RenderHTML converts an outline to HTML. Raw HTML in the outline is
// omitted by goldmark's default renderer.
func RenderHTML(outline string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(outline), &buf); err != nil {
		return "", fmt.Errorf("failed to render outline: %w", err)
	}
	return buf.String(), nil
}

// Sections lists the outline's headings in document order.
func Sections(outline string) []Section {
	source := []byte(outline)
	doc := md.Parser().Parse(text.NewReader(source))

	var sections []Section
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			sections = append(sections, Section{Level: h.Level, Title: nodeText(h, source)})
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return sections
}

// PlainText strips markup, keeping one block per line. List items are
// prefixed with "- ".
func PlainText(outline string) string {
	source := []byte(outline)
	doc := md.Parser().Parse(text.NewReader(source))

	var lines []string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindHeading, ast.KindParagraph, ast.KindTextBlock:
			line := nodeText(n, source)
			if _, ok := n.Parent().(*ast.ListItem); ok {
				line = "- " + line
			}
			if line != "" {
				lines = append(lines, line)
			}
			return ast.WalkSkipChildren, nil
		case ast.KindFencedCodeBlock, ast.KindCodeBlock:
			var b strings.Builder
			for i := 0; i < n.Lines().Len(); i++ {
				seg := n.Lines().At(i)
				b.Write(seg.Value(source))
			}
			if code := strings.TrimRight(b.String(), "\n"); code != "" {
				lines = append(lines, code)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(lines, "\n")
}

// nodeText concatenates the text segments below n.
func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
