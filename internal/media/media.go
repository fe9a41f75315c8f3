// Package media stores uploaded videos and serves them back.
package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/google/uuid"
)

var (
	ErrUnsupported = errors.New("unsupported video type")
	ErrTooLarge    = errors.New("video exceeds upload limit")
	ErrNotFound    = errors.New("video not found")
)

// contentTypes maps the accepted upload extensions to their MIME types.
var contentTypes = map[string]string{
	".mp4": "video/mp4",
	".avi": "video/x-msvideo",
	".mov": "video/quicktime",
}

// IsAllowed reports whether filename has an accepted video extension.
func IsAllowed(filename string) bool {
	_, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// ContentType returns the MIME type for a stored video.
func ContentType(filename string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// SanitizeFilename strips directory components and traversal sequences from
// a client-supplied name.
func SanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "..", "_")
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "_" {
		name = "unnamed"
	}
	return name
}

// UniqueName prefixes the sanitized name with a fresh UUID so that uploads
// of the same file name never replace each other.
func UniqueName(name string) string {
	return uuid.NewString() + "_" + SanitizeFilename(name)
}

// DisplayName strips the prefix added by UniqueName.
func DisplayName(stored string) string {
	if len(stored) > 37 && stored[36] == '_' {
		if _, err := uuid.Parse(stored[:36]); err == nil {
			return stored[37:]
		}
	}
	return stored
}

// Store keeps videos in one directory of a filesystem.
type Store struct {
	fs       billy.Filesystem
	dir      string
	maxBytes int64
}

// NewStore returns a store rooted at dir. maxBytes <= 0 disables the size
// check.
func NewStore(fs billy.Filesystem, dir string, maxBytes int64) *Store {
	return &Store{fs: fs, dir: dir, maxBytes: maxBytes}
}

// Save writes r under the sanitized name, replacing any earlier upload with
// the same name. It returns the stored name and size.
func (s *Store) Save(name string, r io.Reader) (string, int64, error) {
	name = SanitizeFilename(name)
	if !IsAllowed(name) {
		return "", 0, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(name))
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create upload dir: %w", err)
	}
	tmp, err := s.fs.TempFile(s.dir, ".upload-")
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(tmp, src)
	if err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return "", 0, fmt.Errorf("write upload: %w", err)
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		tmp.Close()
		s.fs.Remove(tmpName)
		return "", 0, fmt.Errorf("%w (%d bytes)", ErrTooLarge, s.maxBytes)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return "", 0, fmt.Errorf("close upload: %w", err)
	}
	if err := s.fs.Rename(tmpName, s.fs.Join(s.dir, name)); err != nil {
		s.fs.Remove(tmpName)
		return "", 0, fmt.Errorf("store upload: %w", err)
	}
	return name, n, nil
}

// Open returns the stored video and its file info.
func (s *Store) Open(name string) (billy.File, os.FileInfo, error) {
	name = SanitizeFilename(name)
	p := s.fs.Join(s.dir, name)

	info, err := s.fs.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, nil, err
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	f, err := s.fs.Open(p)
	if err != nil {
		return nil, nil, err
	}
	return f, info, nil
}
