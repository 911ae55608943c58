// Package sorter orders display records with a composable multi-key comparator.
//
// The comparator chains three keys:
//
//  1. directory grouping (dirs first or last), never affected by Reverse
//  2. the selected column, with its own tie-break, then the full path
//  3. Reverse, which inverts only the column key
//
// Sort applies the comparator to a list and then, independently, to every
// child list below it.
package sorter

import (
	"cmp"
	"slices"
	"strings"

	"github.com/harrison/kgls/internal/models"
	"github.com/maruel/natural"
)

// Criteria is the sort policy for one run.
type Criteria struct {
	Column      models.SortColumn
	Reverse     bool
	DirGrouping models.DirGrouping
}

// Compare returns a negative number when a sorts before b, a positive number
// when after, and zero when the criteria cannot tell them apart.
func Compare(c Criteria, a, b *models.Record) int {
	if g := compareGroup(c.DirGrouping, a, b); g != 0 {
		return g
	}

	col := compareColumn(c.Column, a, b)
	if col == 0 && c.Column != models.SortNone {
		// same name in different directories (flat -R, promoted orphans)
		col = cmp.Compare(a.Path, b.Path)
	}
	if c.Reverse {
		return -col
	}
	return col
}

// SortLevel orders records in place without descending into children.
// The sort is stable, so SortNone keeps the input order.
func SortLevel(records []*models.Record, c Criteria) {
	slices.SortStableFunc(records, func(a, b *models.Record) int {
		return Compare(c, a, b)
	})
}

// Sort orders records in place, then sorts every child list with the same
// criteria. Siblings never share sort scope with their descendants.
func Sort(records []*models.Record, c Criteria) {
	SortLevel(records, c)
	for _, r := range records {
		if len(r.Children) > 0 {
			Sort(r.Children, c)
		}
	}
}

func compareGroup(g models.DirGrouping, a, b *models.Record) int {
	if g == models.DirGroupingNone {
		return 0
	}
	ad, bd := a.IsDirLike(), b.IsDirLike()
	if ad == bd {
		return 0
	}
	// First: dirs (true) sort before non-dirs.
	result := 1
	if ad {
		result = -1
	}
	if g == models.DirGroupingLast {
		result = -result
	}
	return result
}

func compareColumn(col models.SortColumn, a, b *models.Record) int {
	switch col {
	case models.SortName:
		return byName(a, b)
	case models.SortExtension:
		return cmp.Or(cmp.Compare(a.Extension(), b.Extension()), byName(a, b))
	case models.SortTime:
		// newest first
		return cmp.Or(b.ModTime.Compare(a.ModTime), byName(a, b))
	case models.SortSize:
		// largest first
		return cmp.Or(cmp.Compare(b.Size, a.Size), byName(a, b))
	case models.SortVersion:
		return cmp.Or(byVersion(a.Name, b.Name), cmp.Compare(a.Name, b.Name))
	case models.SortGitStatus:
		return cmp.Or(cmp.Compare(a.Git, b.Git), byName(a, b))
	default:
		return 0
	}
}

// byName compares case-folded names, falling back to the exact bytes.
func byName(a, b *models.Record) int {
	return cmp.Or(
		cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
		cmp.Compare(a.Name, b.Name),
	)
}

func byVersion(a, b string) int {
	switch {
	case natural.Less(a, b):
		return -1
	case natural.Less(b, a):
		return 1
	default:
		return 0
	}
}
