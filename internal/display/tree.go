package display

import (
	"io"
	"strings"

	"github.com/harrison/kgls/internal/models"
	"github.com/mattn/go-runewidth"
)

const (
	branchMiddle = "├── "
	branchLast   = "└── "
	indentOpen   = "│   "
	indentBlank  = "    "
)

// RenderTree writes each root followed by its descendants.
func (r *Renderer) RenderTree(w io.Writer, roots []*models.Record) error {
	if len(roots) == 0 {
		return nil
	}

	var rows [][]cell
	if r.long() && r.opts.Header {
		rows = append(rows, r.headerRow())
	}
	for _, root := range roots {
		rows = r.treeRows(rows, root, "", "")
	}

	var b strings.Builder
	if r.long() {
		writeTable(&b, rows, r.blocks)
	} else {
		for _, row := range rows {
			b.WriteString(row[0].text)
			b.WriteByte('\n')
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// treeRows appends the row of rec and then the rows of its children.
// branch is drawn before rec's name; indent is inherited by its children.
func (r *Renderer) treeRows(rows [][]cell, rec *models.Record, branch, indent string) [][]cell {
	var row []cell
	if r.long() {
		row = r.row(rec)
	} else {
		row = []cell{r.name(rec)}
	}

	prefix := indent + branch
	for i := range row {
		if !r.long() || r.blocks[i] == BlockName {
			row[i] = cell{text: prefix + row[i].text, width: runewidth.StringWidth(prefix) + row[i].width}
		}
	}
	rows = append(rows, row)

	childIndent := indent
	if branch == branchMiddle {
		childIndent += indentOpen
	} else if branch == branchLast {
		childIndent += indentBlank
	}

	for i, child := range rec.Children {
		childBranch := branchMiddle
		if i == len(rec.Children)-1 {
			childBranch = branchLast
		}
		rows = r.treeRows(rows, child, childBranch, childIndent)
	}
	return rows
}
