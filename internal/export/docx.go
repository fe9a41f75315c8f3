package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dgallion1/vidmind/internal/topictree"
	"github.com/fumiama/go-docx"
)

// docxHeadingLevels is the number of built-in Word heading styles.
const docxHeadingLevels = 9

// DOCXEncoder writes the tree as a Word outline: one heading paragraph per
// node, Heading1 for the root, Heading2 for its children and so on.
// Tabs and line breaks in labels become Word tab and break elements.
type DOCXEncoder struct{}

func NewDOCXEncoder() *DOCXEncoder {
	return &DOCXEncoder{}
}

func (d *DOCXEncoder) Format() Format { return FormatDOCX }

// MaxDepth is zero-based: depth 8 maps to Heading9.
func (d *DOCXEncoder) MaxDepth() int { return docxHeadingLevels - 1 }

func (d *DOCXEncoder) Encode(w io.Writer, tree *topictree.Tree) error {
	doc := docx.New().WithDefaultTheme()

	err := tree.Walk(func(n *topictree.Node, depth int) error {
		if depth >= docxHeadingLevels {
			return fmt.Errorf("depth %d has no heading style", depth)
		}
		doc.AddParagraph().Style("Heading" + strconv.Itoa(depth+1)).AddText(n.Label)
		return nil
	})
	if err != nil {
		return err
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}
