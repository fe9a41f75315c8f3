package topictree

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// DecodeJSON reads a tree in the front end's wire shape:
// {"root":{"text":"..","children":[..]}}.
func DecodeJSON(r io.Reader) (*Tree, error) {
	var t Tree
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode tree json: %w", err)
	}
	return &t, nil
}

// DecodeYAML reads the same shape as DecodeJSON from YAML.
func DecodeYAML(r io.Reader) (*Tree, error) {
	var t Tree
	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		if err == io.EOF {
			return &t, nil
		}
		return nil, fmt.Errorf("decode tree yaml: %w", err)
	}
	return &t, nil
}
