package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/vidmind/internal/topictree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown outlines using goldmark. Headings form the
// skeleton; bullet and numbered lists nest under the heading above them.
// Paragraph text is not part of a mind map and is dropped.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*topictree.Tree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	o := newOutline(stem(filename))

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := inlineText(node, src)
			if title == "" {
				continue
			}
			o.add(node.Level, title)
		case *ast.List:
			parent := o.current()
			parent.Children = append(parent.Children, listTopics(node, src)...)
		}
	}

	return o.tree(), nil
}

// listTopics turns each list item into a topic labeled with the item's first
// block; nested lists become its children.
func listTopics(list *ast.List, src []byte) []*topictree.Node {
	var out []*topictree.Node
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		n := &topictree.Node{}
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				n.Children = append(n.Children, listTopics(sub, src)...)
				continue
			}
			if n.Label == "" {
				n.Label = inlineText(c, src)
			}
		}
		if n.Label == "" {
			// An empty bullet keeps its nested items.
			out = append(out, n.Children...)
			continue
		}
		out = append(out, n)
	}
	return out
}

// inlineText gets the visible text of a goldmark AST node.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}
