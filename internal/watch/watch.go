// Package watch reports changes to the files under a set of directories,
// batching bursts of events like those editors produce when saving.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/trr266/bitesized/internal/logging"
)

// DefaultDelay is how long a Watcher waits for more events before reporting
// a batch.
const DefaultDelay = 100 * time.Millisecond

// Watcher watches directories recursively. Directories created while
// watching are watched too.
type Watcher struct {
	fsw   *fsnotify.Watcher
	delay time.Duration
}

// New watches every directory under each of dirs. A delay of zero uses
// DefaultDelay.
func New(delay time.Duration, dirs ...string) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultDelay
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	w := &Watcher{fsw: fsw, delay: delay}
	for _, dir := range dirs {
		if err := w.addRecursive(dir); err != nil {
			return nil, errors.Join(err, fsw.Close())
		}
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	err := filepath.WalkDir(filepath.Clean(root), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.fsw.Add(path)
	})
	if err != nil {
		return fmt.Errorf("error watching %s: %w", root, err)
	}
	return nil
}

// Run calls onChange with the paths changed in each batch of events, sorted
// and without duplicates, until ctx is done. It closes the Watcher before
// returning.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, paths []string)) error {
	log := logging.FromContext(ctx)
	timer := time.NewTimer(w.delay)
	timer.Stop()
	defer timer.Stop()

	var pending []string
	for {
		select {
		case <-ctx.Done():
			return w.Close()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						log.WarnContext(ctx, "error watching new directory", "path", event.Name, "error", err)
					}
				}
			}
			pending = append(pending, event.Name)
			timer.Reset(w.delay)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.WarnContext(ctx, "file watcher error", "error", err)
		case <-timer.C:
			slices.Sort(pending)
			batch := slices.Compact(pending)
			pending = nil
			log.DebugContext(ctx, "files changed", "paths", batch)
			onChange(ctx, batch)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// relevant filters out permission changes and editor scratch files.
func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	switch {
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasPrefix(base, ".#"),
		base == "4913":
		return false
	}
	return true
}
