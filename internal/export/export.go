// Package export persists topic trees as mind-map documents.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/vidmind/internal/topictree"
	"github.com/go-git/go-billy/v5"
	"github.com/google/uuid"
)

// Format identifies a document container. It fixes the file extension and
// the MIME type callers use in download headers.
type Format string

const (
	FormatXMind Format = "xmind"
	FormatDOCX  Format = "docx"
)

// ErrUnsupportedFormat is returned for unknown format names.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat maps a user-supplied name (or extension) to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "", "xmind":
		return FormatXMind, nil
	case "docx":
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType returns the download MIME type.
func (f Format) ContentType() string {
	switch f {
	case FormatXMind:
		return "application/vnd.xmind.workbook"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/octet-stream"
}

// Encoder serializes a validated tree into a single-file container.
type Encoder interface {
	Format() Format
	// MaxDepth is the deepest level the container can represent, or 0 when
	// the format itself imposes no limit.
	MaxDepth() int
	Encode(w io.Writer, tree *topictree.Tree) error
}

// ForFormat returns the encoder for a format.
func ForFormat(f Format) (Encoder, error) {
	switch f {
	case FormatXMind:
		return NewXMindEncoder(), nil
	case FormatDOCX:
		return NewDOCXEncoder(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// Document is a handle to a finished export. Path is relative to the
// filesystem the exporter writes to.
type Document struct {
	Path   string
	Format Format
	Size   int64
}

// Exporter writes documents of one format into a filesystem. It holds no
// state between calls.
type Exporter struct {
	fs       billy.Filesystem
	dir      string
	enc      Encoder
	maxDepth int
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithMaxDepth bounds how deep a tree may be before it is rejected.
func WithMaxDepth(n int) Option {
	return func(e *Exporter) {
		e.maxDepth = n
	}
}

// New returns an exporter that places documents without an explicit
// destination under dir.
func New(fs billy.Filesystem, dir string, enc Encoder, opts ...Option) *Exporter {
	e := &Exporter{
		fs:       fs,
		dir:      dir,
		enc:      enc,
		maxDepth: topictree.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Format returns the format this exporter produces.
func (e *Exporter) Format() Format {
	return e.enc.Format()
}

// Export validates tree and writes it to destination, or to a fresh file
// under the exporter's directory when destination is empty. An existing
// destination is replaced. On failure nothing is left at destination.
func (e *Exporter) Export(tree *topictree.Tree, destination string) (Document, error) {
	if err := topictree.Validate(tree, e.depthLimit()); err != nil {
		return Document{}, err
	}

	dest := destination
	if dest == "" {
		dest = e.fs.Join(e.dir, uuid.NewString()+e.enc.Format().Extension())
	}
	dir := filepath.Dir(dest)

	if err := e.fs.MkdirAll(dir, 0o755); err != nil {
		return Document{}, &StorageWriteError{Destination: dest, Op: "mkdir", Err: err}
	}

	tmp, err := e.fs.TempFile(dir, ".export-")
	if err != nil {
		return Document{}, &StorageWriteError{Destination: dest, Op: "create", Err: err}
	}
	tmpName := tmp.Name()

	if err := e.enc.Encode(tmp, tree); err != nil {
		tmp.Close()
		e.fs.Remove(tmpName)
		return Document{}, &StorageWriteError{Destination: dest, Op: "encode", Err: err}
	}
	if err := tmp.Close(); err != nil {
		e.fs.Remove(tmpName)
		return Document{}, &StorageWriteError{Destination: dest, Op: "close", Err: err}
	}
	if err := e.fs.Rename(tmpName, dest); err != nil {
		e.fs.Remove(tmpName)
		return Document{}, &StorageWriteError{Destination: dest, Op: "rename", Err: err}
	}

	info, err := e.fs.Stat(dest)
	if err != nil {
		return Document{}, &StorageWriteError{Destination: dest, Op: "stat", Err: err}
	}

	return Document{Path: dest, Format: e.enc.Format(), Size: info.Size()}, nil
}

// Open returns a reader for a finished document.
func (e *Exporter) Open(doc Document) (billy.File, os.FileInfo, error) {
	f, err := e.fs.Open(doc.Path)
	if err != nil {
		return nil, nil, err
	}
	info, err := e.fs.Stat(doc.Path)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, info, nil
}

func (e *Exporter) depthLimit() int {
	limit := e.maxDepth
	if limit <= 0 {
		limit = topictree.DefaultMaxDepth
	}
	if m := e.enc.MaxDepth(); m > 0 && m < limit {
		limit = m
	}
	return limit
}
