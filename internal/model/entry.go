// Package model defines the canonical entry record and the store schema
// that the rest of seek's subsystems read and write.
package model

import (
	"path/filepath"
	"strings"
)

// Entry is one logical row per indexed filesystem item.
type Entry struct {
	Name          string
	FullPath      string
	IsDirectory   bool
	FileExtension *string // nil for directories and extensionless files
	Size          *int64  // nil for ordinary directories
	DateModified  float64 // epoch seconds
	DateAdded     float64 // epoch seconds; see DESIGN.md Open Question 2
}

// Extension derives the lowercase extension of a path the way the entry
// factory (C4) does, without the leading dot. Returns nil when there is
// no extension.
func Extension(path string) *string {
	ext := filepath.Ext(path)
	if ext == "" || ext == "." {
		return nil
	}
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return nil
	}
	return &ext
}

// IndexMetadata is the single-row table tracking indexing state.
type IndexMetadata struct {
	IsIndexed         bool
	LastIndexedDate   *float64
	IndexedPaths      []string
	TotalFilesIndexed int
	IndexingVersion   int
	LastEventID       *int64
}
