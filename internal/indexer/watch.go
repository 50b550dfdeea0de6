package indexer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"docgen/internal/tier"
)

// DefaultDebounce is how long Watch waits for changes to settle.
const DefaultDebounce = 500 * time.Millisecond

// Watch runs an incremental update whenever indexable files change, until
// ctx is cancelled. Bursts of events within debounce collapse into one
// update. onRun, if set, receives the outcome of every update.
func (ix *Indexer) Watch(ctx context.Context, debounce time.Duration, onRun func(*Stats, error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	absRoot, err := filepath.Abs(ix.root)
	if err != nil {
		return err
	}
	if err := ix.addRecursive(w, absRoot); err != nil {
		return err
	}
	ix.logger.Info("watching", "root", absRoot, "dirs", len(w.WatchList()))

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !ix.rules.ExcludedDir(filepath.Base(event.Name)) {
						if err := ix.addRecursive(w, event.Name); err != nil {
							ix.logger.Warn("watch failed", "dir", event.Name, "error", err)
						}
						timer.Reset(debounce)
					}
					continue
				}
			}
			if !ix.relevant(absRoot, event) {
				continue
			}
			ix.logger.Debug("change", "path", event.Name, "op", event.Op.String())
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			ix.logger.Warn("watcher error", "error", err)

		case <-timer.C:
			stats, err := ix.Update(ctx)
			if err != nil {
				ix.logger.Error("incremental update failed", "error", err)
			}
			if onRun != nil {
				onRun(stats, err)
			}
		}
	}
}

// relevant reports whether an event touches a file the index could hold.
// Writes to the index database itself classify as excluded, which keeps the
// watcher from triggering on its own commits.
func (ix *Indexer) relevant(absRoot string, event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	rel, err := filepath.Rel(absRoot, event.Name)
	if err != nil {
		return false
	}
	return tier.Classify(filepath.ToSlash(rel), ix.rules) != tier.TierExcluded
}

// addRecursive watches dir and every non-excluded directory beneath it.
func (ix *Indexer) addRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && ix.rules.ExcludedDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.Add(p); err != nil {
			ix.logger.Warn("watch failed", "dir", p, "error", err)
		}
		return nil
	})
}
