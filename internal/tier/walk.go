package tier

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
)

// FileDescriptor is one non-excluded file found by Walk.
type FileDescriptor struct {
	Path    string // absolute
	RelPath string // relative to the walk root, forward slashes
	Tier    Tier   // 1-3
	Type    NodeType
}

// ErrWalkRoot marks a walk that could not start because its root is unusable.
var ErrWalkRoot = errors.New("cannot walk root")

// Walk lazily yields a descriptor for every file under root that does not
// classify as tier 4. Excluded directories are pruned before descent, so
// nothing beneath them is ever read. Unreadable entries are yielded as errors
// and the walk continues; a root failure is yielded once as ErrWalkRoot and
// ends the walk. Stop early by breaking out of the range loop.
func Walk(root string, r *Rules) iter.Seq2[FileDescriptor, error] {
	return func(yield func(FileDescriptor, error) bool) {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			yield(FileDescriptor{}, fmt.Errorf("%w %s: %w", ErrWalkRoot, root, err))
			return
		}

		err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if p == absRoot {
					return err
				}
				if !yield(FileDescriptor{}, fmt.Errorf("walking %s: %w", p, err)) {
					return fs.SkipAll
				}
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if p != absRoot && r.ExcludedDir(d.Name()) {
					return fs.SkipDir
				}
				return nil
			}
			if !isRegularFile(p, d) {
				return nil
			}

			rel, err := filepath.Rel(absRoot, p)
			if err != nil {
				return nil
			}
			rel = filepath.ToSlash(rel)

			t := Classify(rel, r)
			if t == TierExcluded {
				return nil
			}
			fd := FileDescriptor{Path: p, RelPath: rel, Tier: t, Type: DeriveType(rel, t)}
			if !yield(fd, nil) {
				return fs.SkipAll
			}
			return nil
		})
		if err != nil {
			yield(FileDescriptor{}, fmt.Errorf("%w %s: %w", ErrWalkRoot, absRoot, err))
		}
	}
}

// isRegularFile accepts regular files and symlinks that resolve to one.
func isRegularFile(p string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
