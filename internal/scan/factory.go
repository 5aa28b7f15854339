// Package scan implements the entry factory (C4) and scanner (C5):
// turning filesystem items into model.Entry values and enumerating
// directories under the exclusion policy. Grounded on other_examples
// ivoronin-dupedog's listDirectory/processEntry batched-ReadDir shape,
// generalized from a flat dedup scan to root-level, top-level,
// recursive, and changed-subtree enumeration operations.
package scan

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/akelsh/seek/internal/exclude"
	"github.com/akelsh/seek/internal/logx"
	"github.com/akelsh/seek/internal/model"
)

// bundleExtensions are the opaque-package-directory suffixes recognized
// as bundles.
var bundleExtensions = map[string]struct{}{
	"app": {}, "bundle": {}, "framework": {}, "xcodeproj": {},
	"xcworkspace": {}, "kext": {}, "plugin": {}, "pkg": {},
}

// IsBundle reports whether a directory basename names an opaque package
// directory by extension.
func IsBundle(name string) bool {
	ext := model.Extension(name)
	if ext == nil {
		return false
	}
	_, ok := bundleExtensions[strings.ToLower(*ext)]
	return ok
}

// Factory turns filesystem items into model.Entry values, applying the
// exclusion policy and bundle-size rollup.
type Factory struct {
	policy *exclude.Policy
	log    *logx.Logger
	now    float64
}

// NewFactory builds a Factory. now is the "date added" timestamp applied
// to entries discovered during this pass.
func NewFactory(policy *exclude.Policy, now float64) *Factory {
	return &Factory{policy: policy, log: logx.New("scan"), now: now}
}

// EntryFor builds an Entry for path given its os.FileInfo. If path names
// a bundle directory, size is the recursive sum of its non-directory
// descendants; otherwise size is info.Size() for a regular file, or nil
// for an ordinary directory.
func (f *Factory) EntryFor(path string, info os.FileInfo) model.Entry {
	name := info.Name()
	isDir := info.IsDir()

	e := model.Entry{
		Name:         name,
		FullPath:     path,
		IsDirectory:  isDir,
		DateModified: float64(info.ModTime().Unix()),
		DateAdded:    f.now,
	}

	switch {
	case isDir && IsBundle(name):
		size := f.bundleSize(path)
		e.Size = &size
		e.FileExtension = model.Extension(name)
	case isDir:
		// ordinary directory: size and extension stay nil
	default:
		size := info.Size()
		e.Size = &size
		e.FileExtension = model.Extension(name)
	}

	return e
}

// bundleSize recursively sums non-directory descendant sizes. A child
// enumeration error is logged and skipped rather than aborting the
// rollup.
func (f *Factory) bundleSize(root string) int64 {
	var total int64
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			f.log.Printf("bundle rollup: skip %s: %v", path, err)
			return nil
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		f.log.Printf("bundle rollup: %s: %v", root, err)
	}
	return total
}

// Exclude reports whether path should be skipped by the scanner,
// delegating to the configured exclusion policy.
func (f *Factory) Exclude(path, name string, isDirectory bool) bool {
	return f.policy.Exclude(path, name, isDirectory)
}
