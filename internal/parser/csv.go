package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/vidmind/internal/topictree"
)

// CSVParser handles spreadsheet outlines. Each row is a path from the top
// level down; an empty cell repeats the cell above it, so both
//
//	Root,Child,Leaf
//
// and the indented form
//
//	Root
//	,Child
//	,,Leaf
//
// produce the same tree. Lines starting with # are comments.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*topictree.Tree, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	root := &topictree.Node{Label: stem(filename)}
	var prev []string

	for i, row := range records {
		// Drop trailing empty cells.
		end := len(row)
		for end > 0 && strings.TrimSpace(row[end-1]) == "" {
			end--
		}
		if end == 0 {
			continue
		}

		path := make([]string, end)
		for j := 0; j < end; j++ {
			cell := strings.TrimSpace(row[j])
			if cell == "" {
				if j >= len(prev) {
					return nil, fmt.Errorf("parse csv: row %d column %d is empty with nothing above it", i+1, j+1)
				}
				cell = prev[j]
			}
			path[j] = cell
		}

		node := root
		for _, label := range path {
			if k := len(node.Children); k > 0 && node.Children[k-1].Label == label {
				node = node.Children[k-1]
				continue
			}
			child := &topictree.Node{Label: label}
			node.Children = append(node.Children, child)
			node = child
		}
		prev = path
	}

	return promote(root), nil
}
