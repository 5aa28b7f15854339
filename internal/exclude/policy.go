// Package exclude implements the exclusion policy (C3): a pure predicate
// deciding whether a path should be skipped by the scanner and indexer.
// Grounded on other_examples ivoronin-dupedog's shouldExclude glob-set
// style, generalized from a single glob list to three independent deny
// sets.
package exclude

import "strings"

// Policy decides whether a path is excluded from indexing. Zero value is
// usable; NewDefault populates the standard deny sets.
type Policy struct {
	systemPaths []string
	devNames    map[string]struct{}
	volumeNames map[string]struct{}

	skipHidden    bool
	skipDevExt    bool
	devExtensions map[string]struct{}
}

// NewDefault builds the standard policy: an unconditional system-path
// deny list, a configurable development directory name deny list, and a
// volume-metadata name deny list.
func NewDefault() *Policy {
	return &Policy{
		systemPaths: []string{
			"/dev", "/private", "/System", "/Volumes", "/.fseventsd",
			"/tmp", "/var/folders", "/usr/bin", "/bin", "/sbin",
			"/Library/Caches", "/Library/Logs",
		},
		devNames: namesOf(
			"node_modules", ".git", "build", "target", ".venv",
			"__pycache__", ".cache", "dist", ".terraform", "vendor",
		),
		volumeNames: namesOf(
			".spotlight-v100", ".documentrevisions-v100", ".fseventsd",
			".trashes", ".temporaryitems",
		),
		devExtensions: namesOf(
			".o", ".pyc", ".class", ".pdb",
		),
	}
}

func namesOf(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[strings.ToLower(n)] = struct{}{}
	}
	return m
}

// SetSkipHidden toggles hidden-file (dotfile) filtering. Opt-in.
func (p *Policy) SetSkipHidden(v bool) { p.skipHidden = v }

// SetSkipDevExtensions toggles development build-artifact extension
// filtering (e.g. .o, .pyc). Opt-in.
func (p *Policy) SetSkipDevExtensions(v bool) { p.skipDevExt = v }

// AddDevDirectory adds a basename (case-insensitive) to the development
// directory deny set, for caller-configured additions.
func (p *Policy) AddDevDirectory(name string) {
	if p.devNames == nil {
		p.devNames = make(map[string]struct{})
	}
	p.devNames[strings.ToLower(name)] = struct{}{}
}

// Exclude reports whether path should be skipped. name is path's
// basename, isDirectory whether path is a directory. Symlinks are not
// handled here: the crawler skips them before this policy is consulted.
func (p *Policy) Exclude(path, name string, isDirectory bool) bool {
	for _, sys := range p.systemPaths {
		if path == sys || strings.HasPrefix(path, sys+"/") {
			return true
		}
	}

	lower := strings.ToLower(name)

	if isDirectory {
		if _, denied := p.devNames[lower]; denied {
			return true
		}
	}
	if _, denied := p.volumeNames[lower]; denied {
		return true
	}

	if p.skipHidden && strings.HasPrefix(name, ".") {
		return true
	}

	if p.skipDevExt && !isDirectory {
		if ext := extensionOf(name); ext != "" {
			if _, denied := p.devExtensions[strings.ToLower(ext)]; denied {
				return true
			}
		}
	}

	return false
}

func extensionOf(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return ""
	}
	return name[i:]
}
