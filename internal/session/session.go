// Package session keeps the latest analysis result for each browser session.
// Every session holds a single slot: a new upload replaces the previous
// result.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/dgallion1/vidmind/internal/topictree"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a session has no stored result.
var ErrNotFound = errors.New("session not found")

// Result is what the upload flow leaves behind for the result pages.
type Result struct {
	Summary       string          `json:"summary"`
	Tree          *topictree.Tree `json:"mindmap"`
	ExportPath    string          `json:"xmind_path,omitempty"`
	VideoFilename string          `json:"video_filename"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Store is a result cache keyed by session ID.
type Store interface {
	Get(ctx context.Context, id string) (Result, error)
	Put(ctx context.Context, id string, res Result) error
	Delete(ctx context.Context, id string) error
}

// NewID returns a fresh session identifier.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like one NewID produced. Cookies that
// fail this check are replaced instead of used as store keys.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}
