// Package render produces the HTML pages of the web UI.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/dgallion1/vidmind/internal/topictree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"index", "result", "highlights"}

// Renderer holds the parsed page templates.
type Renderer struct {
	pages map[string]*template.Template
	md    goldmark.Markdown
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	r := &Renderer{
		pages: make(map[string]*template.Template, len(pageNames)),
		md:    goldmark.New(goldmark.WithExtensions(extension.Linkify)),
	}
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// ResultPage is the data behind /result.
type ResultPage struct {
	Summary   template.HTML
	MindMap   template.HTML
	VideoURL  string
	VideoName string
}

// Index renders the upload page.
func (r *Renderer) Index(w io.Writer) error {
	return r.execute(w, "index", nil)
}

// Result renders the analysis page.
func (r *Renderer) Result(w io.Writer, p ResultPage) error {
	return r.execute(w, "result", p)
}

// Highlights renders the player page.
func (r *Renderer) Highlights(w io.Writer, videoURL string) error {
	return r.execute(w, "highlights", struct{ VideoURL string }{videoURL})
}

func (r *Renderer) execute(w io.Writer, name string, data any) error {
	// Render to a buffer so a template error never leaves half a page.
	var buf bytes.Buffer
	if err := r.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Summary converts a markdown summary to HTML. Raw HTML in the source is
// escaped.
func (r *Renderer) Summary(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render summary: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// MindMap renders the tree as nested lists:
//
//	<ul class="mindmap"><li><span class="topic">Root</span><ul>...</ul></li></ul>
func MindMap(tree *topictree.Tree) (template.HTML, error) {
	if tree == nil || tree.Root == nil {
		return "", nil
	}
	ul := element(atom.Ul, "mindmap")
	ul.AppendChild(topicItem(tree.Root))

	var buf bytes.Buffer
	if err := html.Render(&buf, ul); err != nil {
		return "", fmt.Errorf("render mind map: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func topicItem(n *topictree.Node) *html.Node {
	li := element(atom.Li, "")
	span := element(atom.Span, "topic")
	span.AppendChild(&html.Node{Type: html.TextNode, Data: n.Label})
	li.AppendChild(span)

	if len(n.Children) > 0 {
		ul := element(atom.Ul, "")
		for _, c := range n.Children {
			ul.AppendChild(topicItem(c))
		}
		li.AppendChild(ul)
	}
	return li
}

func element(a atom.Atom, class string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if class != "" {
		n.Attr = []html.Attribute{{Key: "class", Val: class}}
	}
	return n
}
