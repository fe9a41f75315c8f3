package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/vidmind/internal/topictree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML outlines: h1-h6 headings plus nested ul/ol lists,
// which is also the shape the result page renders.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*topictree.Tree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := stem(filename)
	// Extract title from <title> tag if present.
	if t := findTitle(doc); t != "" {
		title = t
	}
	o := newOutline(title)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				if t := textContent(n); t != "" {
					o.add(level, t)
				}
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header", "template":
				return
			case "ul", "ol":
				parent := o.current()
				parent.Children = append(parent.Children, htmlListTopics(n)...)
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	// Find <body> or use whole document.
	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	return o.tree(), nil
}

func htmlListTopics(list *html.Node) []*topictree.Node {
	var out []*topictree.Node
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		n := &topictree.Node{Label: ownText(li)}
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			collectLists(c, func(sub *html.Node) {
				n.Children = append(n.Children, htmlListTopics(sub)...)
			})
		}
		if n.Label == "" {
			out = append(out, n.Children...)
			continue
		}
		out = append(out, n)
	}
	return out
}

// collectLists calls fn for every outermost ul/ol at or below n.
func collectLists(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode && (n.Data == "ul" || n.Data == "ol") {
		fn(n)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectLists(c, fn)
	}
}

// ownText is the text of an element, skipping nested lists.
func ownText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "ul" || n.Data == "ol") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
