package parser

import (
	"fmt"
	"io"

	"github.com/dgallion1/vidmind/internal/topictree"
)

// JSONParser reads the {"root":{"text":..,"children":[..]}} wire shape.
type JSONParser struct{}

func (p *JSONParser) Parse(r io.Reader, filename string) (*topictree.Tree, error) {
	tree, err := topictree.DecodeJSON(r)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return tree, nil
}

// YAMLParser reads the same shape as JSONParser written in YAML.
type YAMLParser struct{}

func (p *YAMLParser) Parse(r io.Reader, filename string) (*topictree.Tree, error) {
	tree, err := topictree.DecodeYAML(r)
	if err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return tree, nil
}
