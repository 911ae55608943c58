package display

import "strings"

// writeGrid packs cells column-major into as few rows as fit within width.
// A single cell wider than width still gets its own row.
func writeGrid(b *strings.Builder, cells []cell, width int) {
	n := len(cells)
	if n == 0 {
		return
	}

	rows, colWidths := fitGrid(cells, width)
	cols := len(colWidths)

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			i := col*rows + row
			if i >= n {
				break
			}
			b.WriteString(cells[i].text)
			last := col == cols-1 || (col+1)*rows+row >= n
			if !last {
				b.WriteString(strings.Repeat(" ", colWidths[col]-cells[i].width+columnGap))
			}
		}
		b.WriteByte('\n')
	}
}

// fitGrid returns the smallest row count whose column layout fits width,
// and the width of each column in that layout.
func fitGrid(cells []cell, width int) (int, []int) {
	n := len(cells)
	for rows := 1; rows < n; rows++ {
		cols := (n + rows - 1) / rows
		widths := columnWidths(cells, rows, cols)
		total := columnGap * (cols - 1)
		for _, w := range widths {
			total += w
		}
		if total <= width {
			return rows, widths
		}
	}
	return n, columnWidths(cells, n, 1)
}

func columnWidths(cells []cell, rows, cols int) []int {
	widths := make([]int, cols)
	for i, c := range cells {
		col := i / rows
		if c.width > widths[col] {
			widths[col] = c.width
		}
	}
	return widths
}

// writeTable writes rows with every column padded to its widest cell.
// Numeric blocks are right-aligned; the last column is never padded.
func writeTable(b *strings.Builder, rows [][]cell, blocks []Block) {
	if len(rows) == 0 {
		return
	}
	cols := len(rows[0])
	widths := make([]int, cols)
	for _, row := range rows {
		for i, c := range row {
			if c.width > widths[i] {
				widths[i] = c.width
			}
		}
	}

	for _, row := range rows {
		for i, c := range row {
			pad := widths[i] - c.width
			if i == cols-1 {
				b.WriteString(c.text)
				break
			}
			if blocks[i].rightAligned() {
				b.WriteString(strings.Repeat(" ", pad))
				b.WriteString(c.text)
			} else {
				b.WriteString(c.text)
				b.WriteString(strings.Repeat(" ", pad))
			}
			b.WriteString(strings.Repeat(" ", columnGap))
		}
		b.WriteByte('\n')
	}
}
