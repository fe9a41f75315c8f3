package topictree

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxDepth bounds traversal when the caller does not pick a limit.
const DefaultMaxDepth = 64

// ErrInvalidTree matches every *InvalidTreeError via errors.Is.
var ErrInvalidTree = errors.New("invalid topic tree")

// InvalidTreeError reports a malformed tree. Path holds the labels from the
// root down to the offending node's parent.
type InvalidTreeError struct {
	Path   []string
	Reason string
}

func (e *InvalidTreeError) Error() string {
	if len(e.Path) == 0 {
		return "invalid topic tree: " + e.Reason
	}
	return fmt.Sprintf("invalid topic tree at %q: %s", strings.Join(e.Path, " > "), e.Reason)
}

func (e *InvalidTreeError) Is(target error) bool {
	return target == ErrInvalidTree
}

// Validate checks that the tree has a root, that every label is usable and
// that no node is reachable twice. maxDepth <= 0 means DefaultMaxDepth.
func Validate(t *Tree, maxDepth int) error {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if t == nil || t.Root == nil {
		return &InvalidTreeError{Reason: "root is nil"}
	}
	v := &validator{
		maxDepth: maxDepth,
		seen:     make(map[*Node]bool),
		onPath:   make(map[*Node]bool),
	}
	return v.visit(t.Root, 0, nil)
}

type validator struct {
	maxDepth int
	seen     map[*Node]bool
	onPath   map[*Node]bool
}

func (v *validator) visit(n *Node, depth int, path []string) error {
	if n == nil {
		return &InvalidTreeError{Path: path, Reason: "nil child"}
	}
	if v.onPath[n] {
		return &InvalidTreeError{Path: path, Reason: fmt.Sprintf("cycle: %q is its own ancestor", n.Label)}
	}
	if v.seen[n] {
		return &InvalidTreeError{Path: path, Reason: fmt.Sprintf("node %q appears under more than one parent", n.Label)}
	}
	if depth > v.maxDepth {
		return &InvalidTreeError{Path: path, Reason: fmt.Sprintf("depth exceeds %d", v.maxDepth)}
	}
	if reason := checkLabel(n.Label); reason != "" {
		return &InvalidTreeError{Path: path, Reason: reason}
	}

	v.seen[n] = true
	v.onPath[n] = true
	defer delete(v.onPath, n)

	childPath := append(path[:len(path):len(path)], n.Label)
	for _, c := range n.Children {
		if err := v.visit(c, depth+1, childPath); err != nil {
			return err
		}
	}
	return nil
}

func checkLabel(label string) string {
	if strings.TrimSpace(label) == "" {
		return "empty label"
	}
	if !utf8.ValidString(label) {
		return "label is not valid UTF-8"
	}
	for _, r := range label {
		if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
			return fmt.Sprintf("label %q contains control character %U", label, r)
		}
		if !isXMLChar(r) {
			return fmt.Sprintf("label %q contains non-character %U", label, r)
		}
	}
	return ""
}

// isXMLChar reports whether r is allowed in XML 1.0 character data. Labels
// outside this range cannot be written to a workbook verbatim.
func isXMLChar(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= unicode.MaxRune:
		return true
	}
	return false
}
