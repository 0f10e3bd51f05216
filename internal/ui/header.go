package ui

import (
	"strings"

	"github.com/evalboard/evalboard/internal/api"
	"github.com/evalboard/evalboard/internal/grid"
)

// renderHeader renders the column title row. The sort column carries a
// direction arrow, the active column is highlighted, and a column being
// dragged shows its live width.
func renderHeader(sizing *grid.Sizing, columns []grid.Column, sort api.Sort, activeCol string, noColor bool) string {
	widths := sizing.WidthMap()
	resizing := sizing.Resizing()

	cells := make([]string, 0, len(columns))
	for _, col := range columns {
		width := widths[grid.HeaderWidthPrefix+col.ID]
		title := col.Title

		if col.ID == sort.Column {
			if sort.Direction == "asc" {
				title += " ▲"
			} else {
				title += " ▼"
			}
		}
		if resizing && col.ID == sizing.Active() {
			title += "┆" + fmtInt(width)
		}

		c := cell(title, width)
		if col.ID == activeCol {
			c = stylizeBold(c, noColor, colorAccent)
		} else {
			c = stylize(c, noColor, colorHeader)
		}
		cells = append(cells, c)
	}
	return strings.Join(cells, " ")
}
