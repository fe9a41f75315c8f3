package parser

import "github.com/dgallion1/vidmind/internal/topictree"

// outline builds a tree from a sequence of (level, label) entries, where a
// higher level nests under the closest preceding lower level. Level 0 is the
// synthetic root.
type outline struct {
	root  *topictree.Node
	stack []outlineEntry
}

type outlineEntry struct {
	node  *topictree.Node
	level int
}

func newOutline(title string) *outline {
	root := &topictree.Node{Label: title}
	return &outline{
		root:  root,
		stack: []outlineEntry{{node: root, level: 0}},
	}
}

// add places a new topic and returns it.
func (o *outline) add(level int, label string) *topictree.Node {
	n := &topictree.Node{Label: label}
	// Pop stack until we find a parent with lower level.
	for len(o.stack) > 1 && o.stack[len(o.stack)-1].level >= level {
		o.stack = o.stack[:len(o.stack)-1]
	}
	parent := o.stack[len(o.stack)-1].node
	parent.Children = append(parent.Children, n)
	o.stack = append(o.stack, outlineEntry{node: n, level: level})
	return n
}

// current is the most recently added topic, or the root.
func (o *outline) current() *topictree.Node {
	return o.stack[len(o.stack)-1].node
}

// tree promotes a single top-level topic to root; otherwise the synthetic
// root named after the file is kept.
func (o *outline) tree() *topictree.Tree {
	return promote(o.root)
}

func promote(root *topictree.Node) *topictree.Tree {
	if len(root.Children) == 1 {
		return &topictree.Tree{Root: root.Children[0]}
	}
	return &topictree.Tree{Root: root}
}
