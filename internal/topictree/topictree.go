package topictree

// Tree is a rooted, ordered, labeled topic hierarchy: the in-memory form of a
// mind map before it is exported.
type Tree struct {
	Root *Node `json:"root" yaml:"root"`
}

// Node is one topic. Children order is significant and is preserved by every
// exporter and renderer.
type Node struct {
	Label    string  `json:"text" yaml:"text"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// New builds a node with the given children.
func New(label string, children ...*Node) *Node {
	return &Node{Label: label, Children: children}
}

// Walk visits every node in pre-order. Depth is 0 for the root. Walk does not
// guard against cycles; call Validate first on untrusted trees.
func (t *Tree) Walk(fn func(n *Node, depth int) error) error {
	if t == nil || t.Root == nil {
		return nil
	}
	return walk(t.Root, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) error) error {
	if err := fn(n, depth); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := walk(c, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of nodes in the tree.
func (t *Tree) Count() int {
	n := 0
	t.Walk(func(*Node, int) error {
		n++
		return nil
	})
	return n
}

// Depth returns the number of levels below the root (0 for a lone root).
func (t *Tree) Depth() int {
	deepest := 0
	t.Walk(func(_ *Node, d int) error {
		if d > deepest {
			deepest = d
		}
		return nil
	})
	return deepest
}

// Clone returns a deep copy.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	return &Tree{Root: t.Root.Clone()}
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Label: n.Label}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return c
}

// Equal reports whether two trees are isomorphic: same labels, same child
// order and the same shape at every node.
func Equal(a, b *Tree) bool {
	if a == nil || b == nil {
		return a == b
	}
	return nodeEqual(a.Root, b.Root)
}

func nodeEqual(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Label != b.Label || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !nodeEqual(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}
