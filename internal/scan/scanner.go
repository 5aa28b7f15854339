package scan

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/akelsh/seek/internal/logx"
	"github.com/akelsh/seek/internal/model"
)

// Options configure one scan call.
type Options struct {
	SkipPackageDescendants bool
	SkipHidden             bool
}

// Scanner enumerates directories under a Factory's exclusion policy,
// batching ReadDir calls the way other_examples ivoronin-dupedog's
// listDirectory does, to bound memory on directories with huge fan-out.
type Scanner struct {
	factory *Factory
	log     *logx.Logger
}

// NewScanner builds a Scanner backed by factory.
func NewScanner(factory *Factory) *Scanner {
	return &Scanner{factory: factory, log: logx.New("scan")}
}

const readDirBatchSize = 1000

// ScanRootLevelFiles returns non-recursive file entries directly under
// root.
func (s *Scanner) ScanRootLevelFiles(root string, opts Options) ([]model.Entry, error) {
	dir, err := os.Open(root)
	if err != nil {
		return nil, fmt.Errorf("scan root level files: %w", err)
	}
	defer dir.Close()

	var entries []model.Entry
	for {
		batch, err := dir.ReadDir(readDirBatchSize)
		if len(batch) == 0 {
			if err != nil && err != io.EOF {
				return entries, fmt.Errorf("scan root level files: %w", err)
			}
			break
		}
		for _, de := range batch {
			if de.IsDir() {
				continue
			}
			e, ok := s.entryForDirEntry(root, de, opts)
			if ok {
				entries = append(entries, e)
			}
		}
	}
	return entries, nil
}

// TopLevelDirectories returns the directories directly under root, minus
// excluded paths and symlinks. Bundles/packages are left out only when
// opts.SkipPackageDescendants is set; otherwise they are returned like
// any other directory.
func (s *Scanner) TopLevelDirectories(root string, opts Options) ([]string, error) {
	dir, err := os.Open(root)
	if err != nil {
		return nil, fmt.Errorf("top level directories: %w", err)
	}
	defer dir.Close()

	var dirs []string
	for {
		batch, err := dir.ReadDir(readDirBatchSize)
		if len(batch) == 0 {
			if err != nil && err != io.EOF {
				return dirs, fmt.Errorf("top level directories: %w", err)
			}
			break
		}
		for _, de := range batch {
			if !de.IsDir() {
				continue
			}
			if de.Type()&os.ModeSymlink != 0 {
				continue
			}
			name := de.Name()
			full := filepath.Join(root, name)
			if opts.SkipPackageDescendants && IsBundle(name) {
				continue
			}
			if s.factory.Exclude(full, name, true) {
				continue
			}
			dirs = append(dirs, full)
		}
	}
	return dirs, nil
}

// ScanRecursive performs a single-threaded recursive scan of dir,
// returning one entry per file and bundle encountered, and one entry for
// every ordinary subdirectory. Used directly by tests and small
// subtrees; the indexer drives the same per-directory step through the
// work-queue coordinator.
func (s *Scanner) ScanRecursive(dir string, opts Options) ([]model.Entry, error) {
	var out []model.Entry
	if err := s.walk(dir, opts, &out); err != nil {
		return out, err
	}
	return out, nil
}

func (s *Scanner) walk(dir string, opts Options, out *[]model.Entry) error {
	f, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("scan recursive: %w", err)
	}
	defer f.Close()

	var subdirs []string
	for {
		batch, err := f.ReadDir(readDirBatchSize)
		if len(batch) == 0 {
			if err != nil && err != io.EOF {
				return fmt.Errorf("scan recursive: %w", err)
			}
			break
		}
		for _, de := range batch {
			if de.Type()&os.ModeSymlink != 0 {
				continue
			}
			full := filepath.Join(dir, de.Name())
			if de.IsDir() {
				if s.factory.Exclude(full, de.Name(), true) {
					continue
				}
				if IsBundle(de.Name()) {
					e, ok := s.entryForDirEntry(dir, de, opts)
					if ok {
						*out = append(*out, e)
					}
					continue
				}
				if e, ok := s.entryForDirEntry(dir, de, opts); ok {
					*out = append(*out, e)
				}
				subdirs = append(subdirs, full)
				continue
			}
			e, ok := s.entryForDirEntry(dir, de, opts)
			if ok {
				*out = append(*out, e)
			}
		}
	}

	for _, sub := range subdirs {
		if err := s.walk(sub, opts, out); err != nil {
			s.log.Printf("recursive scan: skip %s: %v", sub, err)
		}
	}
	return nil
}

// ChangedSubtreeRoots prunes unchanged trees by comparing directory mtime
// to since: any directory whose own mtime exceeds since is reported
// as-is and not descended into.
func (s *Scanner) ChangedSubtreeRoots(dir string, since float64) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("changed subtree roots: %w", err)
	}
	if float64(info.ModTime().Unix()) > since {
		return []string{dir}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("changed subtree roots: %w", err)
	}

	var roots []string
	for _, de := range entries {
		if !de.IsDir() || de.Type()&os.ModeSymlink != 0 {
			continue
		}
		full := filepath.Join(dir, de.Name())
		if s.factory.Exclude(full, de.Name(), true) {
			continue
		}
		sub, err := s.ChangedSubtreeRoots(full, since)
		if err != nil {
			s.log.Printf("changed subtree roots: skip %s: %v", full, err)
			continue
		}
		roots = append(roots, sub...)
	}
	return roots, nil
}

func (s *Scanner) entryForDirEntry(parent string, de os.DirEntry, opts Options) (model.Entry, bool) {
	name := de.Name()
	full := filepath.Join(parent, name)

	if opts.SkipHidden && len(name) > 0 && name[0] == '.' {
		return model.Entry{}, false
	}
	if s.factory.Exclude(full, name, de.IsDir()) {
		return model.Entry{}, false
	}

	info, err := de.Info()
	if err != nil {
		s.log.Printf("stat failed, skip %s: %v", full, err)
		return model.Entry{}, false
	}
	return s.factory.EntryFor(full, info), true
}
