// Package stats contains statistics calculations and reporting.
package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// column describes one table column. Cells wider than max are truncated
// with an ellipsis; max <= 0 means unlimited.
type column struct {
	title string
	right bool
	max   int
}

func leftCol(title string) column { return column{title: title} }
func rightCol(title string) column { return column{title: title, right: true} }

// formatTable lays out rows under cols, one space between columns. Widths
// are measured in terminal cells so wide runes line up.
func formatTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	cells := make([][]string, 0, len(rows)+1)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.title
	}
	cells = append(cells, header)
	for _, row := range rows {
		line := make([]string, len(cols))
		for i, c := range cols {
			if i < len(row) {
				line[i] = truncateCell(row[i], c.max)
			}
		}
		cells = append(cells, line)
	}

	widths := make([]int, len(cols))
	for _, line := range cells {
		for i, cell := range line {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	out := make([]string, len(cells))
	for n, line := range cells {
		parts := make([]string, len(cols))
		for i, cell := range line {
			pad := strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell))
			if cols[i].right {
				parts[i] = pad + cell
			} else {
				parts[i] = cell + pad
			}
		}
		out[n] = strings.Join(parts, " ")
	}
	return out
}

func truncateCell(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	return runewidth.Truncate(value, width, "...")
}
