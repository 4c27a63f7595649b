// Ignore rules for folder pushes, mirroring the usual .gitignore suspects.
package githubpush

import "path/filepath"

// ignoredNames are skipped by exact base-name match.
var ignoredNames = []string{
	".git", ".vscode", ".idea",
	"node_modules", "venv", ".venv", "env", "__pycache__",
	".env", ".DS_Store", "Thumbs.db",
}

// ignoredGlobs are skipped by glob match against the base name.
var ignoredGlobs = []string{
	".env.*", "*.pyc", "*.pyo", "*.pyd",
	"*.log", "*.bak", "*.swp", "*.tmp",
}

type ignoreSet struct {
	names map[string]struct{}
	globs []string
}

func newIgnoreSet(extra []string) *ignoreSet {
	s := &ignoreSet{names: make(map[string]struct{}, len(ignoredNames))}
	for _, n := range ignoredNames {
		s.names[n] = struct{}{}
	}
	s.globs = append(s.globs, ignoredGlobs...)
	for _, e := range extra {
		if e == "" {
			continue
		}
		s.globs = append(s.globs, e)
	}
	return s
}

// match reports whether a file or directory base name is ignored.
func (s *ignoreSet) match(name string) bool {
	if _, ok := s.names[name]; ok {
		return true
	}
	for _, g := range s.globs {
		if ok, err := filepath.Match(g, name); err == nil && ok {
			return true
		}
	}
	return false
}
