package export

import (
	"archive/zip"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/dgallion1/vidmind/internal/topictree"
	"github.com/google/uuid"
)

const (
	xmindStructureClass = "org.xmind.ui.map.unbalanced"
	xmindCreator        = "vidmind"
	xmindSheetTitle     = "Sheet 1"
)

// XMindEncoder writes XMind workbooks. The archive carries the legacy
// content.xml document plus content.json so both XMind 8 and current
// clients open it.
type XMindEncoder struct {
	now   func() time.Time
	newID func() string
}

func NewXMindEncoder() *XMindEncoder {
	return &XMindEncoder{
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

func (x *XMindEncoder) Format() Format { return FormatXMind }

func (x *XMindEncoder) MaxDepth() int { return 0 }

type xmapContent struct {
	XMLName   xml.Name   `xml:"urn:xmind:xmap:xmlns:content:2.0 xmap-content"`
	Version   string     `xml:"version,attr"`
	Timestamp int64      `xml:"timestamp,attr"`
	Sheets    []xmlSheet `xml:"sheet"`
}

type xmlSheet struct {
	ID        string   `xml:"id,attr"`
	Timestamp int64    `xml:"timestamp,attr"`
	Topic     xmlTopic `xml:"topic"`
	Title     string   `xml:"title"`
}

type xmlTopic struct {
	ID             string       `xml:"id,attr"`
	StructureClass string       `xml:"structure-class,attr,omitempty"`
	Timestamp      int64        `xml:"timestamp,attr"`
	Title          string       `xml:"title"`
	Children       *xmlChildren `xml:"children,omitempty"`
}

type xmlChildren struct {
	Topics []xmlTopics `xml:"topics"`
}

type xmlTopics struct {
	Type   string     `xml:"type,attr"`
	Topics []xmlTopic `xml:"topic"`
}

type xmlMeta struct {
	XMLName xml.Name `xml:"urn:xmind:xmap:xmlns:meta:2.0 meta"`
	Version string   `xml:"version,attr"`
	Author  string   `xml:"Author>Name"`
	Created string   `xml:"Create>Time"`
	Creator string   `xml:"Creator>Name"`
}

type xmlManifest struct {
	XMLName xml.Name        `xml:"urn:xmind:xmap:xmlns:manifest:1.0 manifest"`
	Entries []manifestEntry `xml:"file-entry"`
}

type manifestEntry struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

type jsonSheet struct {
	ID        string    `json:"id"`
	Class     string    `json:"class"`
	Title     string    `json:"title"`
	RootTopic jsonTopic `json:"rootTopic"`
}

type jsonTopic struct {
	ID             string         `json:"id"`
	Class          string         `json:"class"`
	Title          string         `json:"title"`
	StructureClass string         `json:"structureClass,omitempty"`
	Children       *jsonTopicKids `json:"children,omitempty"`
}

type jsonTopicKids struct {
	Attached []jsonTopic `json:"attached"`
}

// Encode writes the workbook archive for tree. The tree must already be
// validated.
func (x *XMindEncoder) Encode(w io.Writer, tree *topictree.Tree) error {
	now := x.now()
	ts := now.UnixMilli()

	root := x.buildTopic(tree.Root, ts)
	root.StructureClass = xmindStructureClass

	content := xmapContent{
		Version:   "2.0",
		Timestamp: ts,
		Sheets: []xmlSheet{{
			ID:        x.newID(),
			Timestamp: ts,
			Topic:     root,
			Title:     xmindSheetTitle,
		}},
	}

	zw := zip.NewWriter(w)

	if err := writeXML(zw, "content.xml", content); err != nil {
		return err
	}
	if err := writeXML(zw, "meta.xml", xmlMeta{
		Version: "2.0",
		Author:  xmindCreator,
		Created: now.UTC().Format(time.RFC3339),
		Creator: xmindCreator,
	}); err != nil {
		return err
	}
	if err := writeXML(zw, "META-INF/manifest.xml", xmlManifest{Entries: []manifestEntry{
		{FullPath: "content.xml", MediaType: "text/xml"},
		{FullPath: "META-INF/", MediaType: ""},
		{FullPath: "META-INF/manifest.xml", MediaType: "text/xml"},
		{FullPath: "meta.xml", MediaType: "text/xml"},
	}}); err != nil {
		return err
	}

	sheets := []jsonSheet{{
		ID:        content.Sheets[0].ID,
		Class:     "sheet",
		Title:     xmindSheetTitle,
		RootTopic: toJSONTopic(root),
	}}
	if err := writeJSON(zw, "content.json", sheets); err != nil {
		return err
	}
	if err := writeJSON(zw, "metadata.json", map[string]any{
		"creator": map[string]string{"name": xmindCreator},
	}); err != nil {
		return err
	}
	if err := writeJSON(zw, "manifest.json", map[string]any{
		"file-entries": map[string]any{
			"content.json":  map[string]any{},
			"metadata.json": map[string]any{},
		},
	}); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close xmind archive: %w", err)
	}
	return nil
}

// buildTopic creates one XMind topic per tree node, pre-order, keeping the
// children in tree order.
func (x *XMindEncoder) buildTopic(n *topictree.Node, ts int64) xmlTopic {
	t := xmlTopic{
		ID:        x.newID(),
		Timestamp: ts,
		Title:     n.Label,
	}
	if len(n.Children) == 0 {
		return t
	}
	attached := xmlTopics{Type: "attached", Topics: make([]xmlTopic, 0, len(n.Children))}
	for _, c := range n.Children {
		attached.Topics = append(attached.Topics, x.buildTopic(c, ts))
	}
	t.Children = &xmlChildren{Topics: []xmlTopics{attached}}
	return t
}

func toJSONTopic(t xmlTopic) jsonTopic {
	jt := jsonTopic{
		ID:             t.ID,
		Class:          "topic",
		Title:          t.Title,
		StructureClass: t.StructureClass,
	}
	if t.Children == nil {
		return jt
	}
	kids := &jsonTopicKids{}
	for _, group := range t.Children.Topics {
		if group.Type != "attached" {
			continue
		}
		for _, c := range group.Topics {
			kids.Attached = append(kids.Attached, toJSONTopic(c))
		}
	}
	jt.Children = kids
	return jt
}

func writeXML(zw *zip.Writer, name string, v any) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.WriteString(f, xml.Header); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := xml.NewEncoder(f).Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return nil
}

func writeJSON(zw *zip.Writer, name string, v any) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := json.NewEncoder(f).Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return nil
}
