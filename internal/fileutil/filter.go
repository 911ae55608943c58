package fileutil

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// IsHiddenName returns true if the given file name (not path) is hidden.
// Special entries "." and ".." are not considered hidden.
func IsHiddenName(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".")
}

// ValidateGlobs checks that every ignore glob is well formed.
func ValidateGlobs(globs []string) error {
	for _, g := range globs {
		if strings.TrimSpace(g) == "" {
			return fmt.Errorf("empty ignore glob")
		}
		if _, err := doublestar.Match(g, "x"); err != nil {
			return fmt.Errorf("invalid ignore glob %q: %w", g, err)
		}
	}
	return nil
}

// globMatcher reports whether an entry is excluded by an ignore glob.
type globMatcher struct {
	patterns []string
}

func newGlobMatcher(globs []string) globMatcher {
	patterns := make([]string, 0, len(globs))
	for _, g := range globs {
		if g = strings.TrimSpace(g); g != "" {
			patterns = append(patterns, filepath.ToSlash(g))
		}
	}
	return globMatcher{patterns: patterns}
}

// match checks the base name first, then the root-relative path.
// Malformed patterns never match; they are rejected earlier by ValidateGlobs.
func (m globMatcher) match(name, rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, p := range m.patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
		if rel != name {
			if ok, _ := doublestar.Match(p, rel); ok {
				return true
			}
		}
	}
	return false
}
