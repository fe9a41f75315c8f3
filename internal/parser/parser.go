// Package parser reads outlines in common document formats into topic trees.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/vidmind/internal/topictree"
)

// Parser converts raw document bytes into a topic tree.
type Parser interface {
	Parse(r io.Reader, filename string) (*topictree.Tree, error)
}

// SupportedExtensions lists file extensions this package can read.
var SupportedExtensions = map[string]bool{
	".json":     true,
	".yaml":     true,
	".yml":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".txt":      true,
	".csv":      true,
	".xmind":    true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{}, nil
	case ".yaml", ".yml":
		return &YAMLParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".xmind":
		return &XMindParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// stem returns the base filename without its extension, used to name the
// synthetic root of formats that have no single top-level topic.
func stem(filename string) string {
	base := filepath.Base(filename)
	s := strings.TrimSuffix(base, filepath.Ext(base))
	if strings.TrimSpace(s) == "" || s == "." {
		return "Untitled"
	}
	return s
}
