package export

import (
	"archive/zip"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/dgallion1/vidmind/internal/topictree"
)

// ErrNotXMind is returned when an archive has neither content.xml nor
// content.json.
var ErrNotXMind = errors.New("not an xmind workbook")

// ReadXMind parses the first sheet of an XMind workbook. content.json is
// read when present, since current clients keep only a placeholder sheet in
// content.xml; XMind 8 workbooks fall back to content.xml. Only attached
// topics are read; floating and detached topics are ignored.
func ReadXMind(r io.ReaderAt, size int64) (*topictree.Tree, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open xmind archive: %w", err)
	}

	var xmlEntry, jsonEntry *zip.File
	for _, f := range zr.File {
		switch f.Name {
		case "content.xml":
			xmlEntry = f
		case "content.json":
			jsonEntry = f
		}
	}

	switch {
	case jsonEntry != nil:
		return readContentJSON(jsonEntry)
	case xmlEntry != nil:
		return readContentXML(xmlEntry)
	default:
		return nil, ErrNotXMind
	}
}

func readContentXML(f *zip.File) (*topictree.Tree, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open content.xml: %w", err)
	}
	defer rc.Close()

	var content xmapContent
	if err := xml.NewDecoder(rc).Decode(&content); err != nil {
		return nil, fmt.Errorf("decode content.xml: %w", err)
	}
	if len(content.Sheets) == 0 {
		return nil, fmt.Errorf("%w: no sheets", ErrNotXMind)
	}
	return &topictree.Tree{Root: fromXMLTopic(content.Sheets[0].Topic)}, nil
}

func fromXMLTopic(t xmlTopic) *topictree.Node {
	n := &topictree.Node{Label: t.Title}
	if t.Children == nil {
		return n
	}
	for _, group := range t.Children.Topics {
		if group.Type != "attached" {
			continue
		}
		for _, c := range group.Topics {
			n.Children = append(n.Children, fromXMLTopic(c))
		}
	}
	return n
}

func readContentJSON(f *zip.File) (*topictree.Tree, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open content.json: %w", err)
	}
	defer rc.Close()

	var sheets []jsonSheet
	if err := json.NewDecoder(rc).Decode(&sheets); err != nil {
		return nil, fmt.Errorf("decode content.json: %w", err)
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no sheets", ErrNotXMind)
	}
	return &topictree.Tree{Root: fromJSONTopic(sheets[0].RootTopic)}, nil
}

func fromJSONTopic(t jsonTopic) *topictree.Node {
	n := &topictree.Node{Label: t.Title}
	if t.Children == nil {
		return n
	}
	for _, c := range t.Children.Attached {
		n.Children = append(n.Children, fromJSONTopic(c))
	}
	return n
}
