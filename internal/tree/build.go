// Package tree rebuilds a forest of display records from flat path records.
//
// The walker yields records in no particular order and may have filtered
// out intermediate directories. Build attaches every record whose parent
// path is present to that parent and promotes everything else to a root,
// so the forest always holds exactly the records it was given.
package tree

import (
	"path/filepath"
	"slices"

	"github.com/harrison/kgls/internal/models"
)

// Entry is a record together with the depth at which it was discovered.
type Entry struct {
	Record *models.Record
	Depth  int
}

// Orphan describes a record promoted to a root because its parent directory
// was not part of the result set.
type Orphan struct {
	Path   string
	Parent string
	Depth  int
}

// Build attaches children to parents and returns the roots in input order,
// plus one Orphan for every root deeper than one level below a scan root.
//
// Paths must be unique across entries. Build performs no I/O and never fails.
func Build(entries []Entry) ([]*models.Record, []Orphan) {
	index := make(map[string]*models.Record, len(entries))
	for _, e := range entries {
		index[e.Record.Path] = e.Record
	}

	attachable := make(map[string]bool, len(entries))
	for _, e := range entries {
		parent, ok := parentPath(e.Record.Path)
		if !ok {
			continue
		}
		if _, found := index[parent]; found {
			attachable[e.Record.Path] = true
		}
	}

	// Deepest first, so a record's own subtree is complete before it is
	// grafted into its parent. Equal depths keep input order.
	ordered := slices.Clone(entries)
	slices.SortStableFunc(ordered, func(a, b Entry) int {
		return b.Depth - a.Depth
	})

	for _, e := range ordered {
		if !attachable[e.Record.Path] {
			continue
		}
		parent, _ := parentPath(e.Record.Path)
		p := index[parent]
		if !p.Expanded() {
			p.Children = make([]*models.Record, 0, 1)
		}
		p.Children = append(p.Children, e.Record)
	}

	var roots []*models.Record
	var orphans []Orphan
	for _, e := range entries {
		if attachable[e.Record.Path] {
			continue
		}
		roots = append(roots, e.Record)

		parent, ok := parentPath(e.Record.Path)
		if ok && e.Depth > 1 {
			orphans = append(orphans, Orphan{Path: e.Record.Path, Parent: parent, Depth: e.Depth})
		}
	}

	return roots, orphans
}

// parentPath returns the filesystem parent of p, or false when p has none.
func parentPath(p string) (string, bool) {
	parent := filepath.Dir(p)
	if parent == p {
		return "", false
	}
	return parent, true
}
