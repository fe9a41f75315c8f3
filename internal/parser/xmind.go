package parser

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dgallion1/vidmind/internal/export"
	"github.com/dgallion1/vidmind/internal/topictree"
)

// XMindParser reads the first sheet of an XMind workbook.
type XMindParser struct{}

func (p *XMindParser) Parse(r io.Reader, filename string) (*topictree.Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	tree, err := export.ReadXMind(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse xmind: %w", err)
	}
	return tree, nil
}
