package topictree

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func videoContentTree() *Tree {
	return &Tree{Root: New("Video Content",
		New("AI Intro",
			New("ML Basics"),
			New("DL Concepts"),
		),
	)}
}

func TestWalk_PreOrder(t *testing.T) {
	tree := &Tree{Root: New("root",
		New("a", New("a1"), New("a2")),
		New("b", New("b1")),
	)}

	var got []string
	var depths []int
	err := tree.Walk(func(n *Node, depth int) error {
		got = append(got, n.Label)
		depths = append(depths, depth)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "a", "a1", "a2", "b", "b1"}, got)
	assert.Equal(t, []int{0, 1, 2, 2, 1, 2}, depths)
}

func TestWalk_StopsOnError(t *testing.T) {
	stop := errors.New("stop")
	visited := 0
	err := videoContentTree().Walk(func(n *Node, _ int) error {
		visited++
		if n.Label == "AI Intro" {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, visited)
}

func TestCountAndDepth(t *testing.T) {
	tree := videoContentTree()
	assert.Equal(t, 4, tree.Count())
	assert.Equal(t, 2, tree.Depth())

	lone := &Tree{Root: New("only")}
	assert.Equal(t, 1, lone.Count())
	assert.Equal(t, 0, lone.Depth())
}

func TestCloneIsDeep(t *testing.T) {
	tree := videoContentTree()
	c := tree.Clone()
	require.True(t, Equal(tree, c))

	c.Root.Children[0].Children[1].Label = "changed"
	assert.Equal(t, "DL Concepts", tree.Root.Children[0].Children[1].Label)
	assert.False(t, Equal(tree, c))
}

func TestEqual_ChildOrderMatters(t *testing.T) {
	a := &Tree{Root: New("r", New("x"), New("y"))}
	b := &Tree{Root: New("r", New("y"), New("x"))}
	assert.False(t, Equal(a, b))
	assert.True(t, Equal(a, a.Clone()))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(a, nil))
}

func TestValidate_WellFormed(t *testing.T) {
	require.NoError(t, Validate(videoContentTree(), 0))
}

func TestValidate_Errors(t *testing.T) {
	selfLoop := New("loop")
	selfLoop.Children = []*Node{selfLoop}

	ancestor := New("top")
	mid := New("mid")
	ancestor.Children = []*Node{mid}
	mid.Children = []*Node{ancestor}

	shared := New("shared")

	deep := New("d0")
	cur := deep
	for i := 0; i < 5; i++ {
		next := New("d")
		cur.Children = []*Node{next}
		cur = next
	}

	tests := []struct {
		name     string
		tree     *Tree
		maxDepth int
		reason   string
	}{
		{"nil tree", nil, 0, "root is nil"},
		{"nil root", &Tree{}, 0, "root is nil"},
		{"nil child", &Tree{Root: New("r", nil)}, 0, "nil child"},
		{"empty label", &Tree{Root: New("r", New(""))}, 0, "empty label"},
		{"blank label", &Tree{Root: New("   ")}, 0, "empty label"},
		{"invalid utf8", &Tree{Root: New("bad\xff")}, 0, "not valid UTF-8"},
		{"control char", &Tree{Root: New("a\x00b")}, 0, "control character"},
		{"noncharacter FFFE", &Tree{Root: New("r", New("a\ufffeb"))}, 0, "non-character U+FFFE"},
		{"noncharacter FFFF", &Tree{Root: New("a\uffffb")}, 0, "non-character U+FFFF"},
		{"self cycle", &Tree{Root: selfLoop}, 0, "cycle"},
		{"ancestor cycle", &Tree{Root: ancestor}, 0, "cycle"},
		{"shared subtree", &Tree{Root: New("r", shared, shared)}, 0, "more than one parent"},
		{"too deep", &Tree{Root: deep}, 3, "depth exceeds 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.tree, tt.maxDepth)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTree)

			var ite *InvalidTreeError
			require.ErrorAs(t, err, &ite)
			assert.Contains(t, ite.Reason, tt.reason)
		})
	}
}

func TestValidate_PathPointsAtParent(t *testing.T) {
	tree := &Tree{Root: New("root", New("a", New("ok"), New("")))}
	err := Validate(tree, 0)

	var ite *InvalidTreeError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, []string{"root", "a"}, ite.Path)
	assert.Contains(t, err.Error(), `"root > a"`)
}

func TestValidate_AllowsWhitespaceControls(t *testing.T) {
	tree := &Tree{Root: New("line one\nline two\ttab")}
	assert.NoError(t, Validate(tree, 0))
}

func TestDecodeJSON_WireShape(t *testing.T) {
	input := `{"root":{"text":"Video Content","children":[{"text":"AI Intro","children":[{"text":"ML Basics"},{"text":"DL Concepts"}]}]}}`
	tree, err := DecodeJSON(strings.NewReader(input))
	require.NoError(t, err)
	assert.True(t, Equal(videoContentTree(), tree))
}

func TestDecodeJSON_Malformed(t *testing.T) {
	_, err := DecodeJSON(strings.NewReader(`{"root":`))
	assert.Error(t, err)
}

func TestDecodeYAML(t *testing.T) {
	input := `
root:
  text: Video Content
  children:
    - text: AI Intro
      children:
        - text: ML Basics
        - text: DL Concepts
`
	tree, err := DecodeYAML(strings.NewReader(input))
	require.NoError(t, err)
	assert.True(t, Equal(videoContentTree(), tree))
}

func TestDecodeYAML_Empty(t *testing.T) {
	tree, err := DecodeYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, tree.Root)
}
