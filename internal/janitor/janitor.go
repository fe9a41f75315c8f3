// Package janitor runs periodic housekeeping: expiring sessions and removing
// exported documents nobody downloaded.
package janitor

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-billy/v5"
)

// Run calls fn every interval until ctx is cancelled. It returns nil on
// cancellation so it can sit in an errgroup next to the HTTP server.
func Run(ctx context.Context, interval time.Duration, fn func()) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fn()
		}
	}
}

// Sweep removes regular files directly under dir whose modification time is
// older than maxAge. A missing dir is not an error.
func Sweep(fs billy.Filesystem, dir string, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("list %s: %w", dir, err)
	}

	removed := 0
	var firstErr error
	for _, e := range entries {
		if e.IsDir() || now.Sub(e.ModTime()) <= maxAge {
			continue
		}
		if err := fs.Remove(fs.Join(dir, e.Name())); err != nil {
			if firstErr == nil && !os.IsNotExist(err) {
				firstErr = fmt.Errorf("remove %s: %w", e.Name(), err)
			}
			continue
		}
		removed++
	}
	return removed, firstErr
}
