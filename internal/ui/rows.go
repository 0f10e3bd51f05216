package ui

import (
	"strings"
	"time"

	"github.com/evalboard/evalboard/internal/api"
	"github.com/evalboard/evalboard/internal/grid"
)

// bodyKey identifies one exact rendering of the grid body. Any field
// change invalidates the cached render.
type bodyKey struct {
	rowsVersion   uint64
	selVersion    uint64
	sizingVersion uint64
	scroll        int
	cursor        int
	height        int
	clock         time.Time
	noColor       bool
}

// bodyRenderer caches the rendered grid body so selection toggles,
// width drags, and data growth each pay only their own region's cost.
// While a drag is active the body is served from the stale cache and
// only the header tracks the live width; the body catches up when the
// drag ends.
type bodyRenderer struct {
	key   bodyKey
	lines string
	valid bool
}

func (r *bodyRenderer) render(
	pager *grid.Pager,
	selection *grid.Selection,
	sizing *grid.Sizing,
	columns []grid.Column,
	scroll, cursor, height int,
	now time.Time,
	noColor bool,
) string {
	key := bodyKey{
		rowsVersion:   pager.Version(),
		selVersion:    selection.Version(),
		sizingVersion: sizing.Version(),
		scroll:        scroll,
		cursor:        cursor,
		height:        height,
		clock:         now.Truncate(time.Minute),
		noColor:       noColor,
	}

	if r.valid {
		cached := r.key
		if sizing.Resizing() {
			// Serve the pre-drag render; only sizing may differ.
			cached.sizingVersion = key.sizingVersion
		}
		if cached == key {
			return r.lines
		}
	}

	r.lines = renderBody(pager, selection, sizing, columns, scroll, cursor, height, now, noColor)
	r.key = key
	r.valid = true
	return r.lines
}

// invalidate drops the cache, forcing the next render to rebuild.
func (r *bodyRenderer) invalidate() {
	r.valid = false
}

func renderBody(
	pager *grid.Pager,
	selection *grid.Selection,
	sizing *grid.Sizing,
	columns []grid.Column,
	scroll, cursor, height int,
	now time.Time,
	noColor bool,
) string {
	rows := pager.Rows()
	ranges := pager.Ranges()
	widths := sizing.WidthMap()

	var b strings.Builder
	for i := scroll; i < scroll+height && i < len(rows); i++ {
		line := renderRow(rows[i], selection, columns, widths, ranges, now)
		if i == cursor {
			line = stylizeBold(line, noColor, colorAccent)
		} else if selection.Has(rows[i].ID) {
			line = stylize(line, noColor, colorSelected)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderRow(
	exp api.Experiment,
	selection *grid.Selection,
	columns []grid.Column,
	widths map[string]int,
	ranges map[string]api.AnnotationRange,
	now time.Time,
) string {
	cells := make([]string, 0, len(columns))
	for _, col := range columns {
		width := widths[grid.ColumnWidthPrefix+col.ID]
		cells = append(cells, renderCell(exp, col, width, selection, ranges, now))
	}
	return strings.Join(cells, " ")
}

func renderCell(
	exp api.Experiment,
	col grid.Column,
	width int,
	selection *grid.Selection,
	ranges map[string]api.AnnotationRange,
	now time.Time,
) string {
	switch col.ID {
	case grid.ColSelect:
		if selection.Has(exp.ID) {
			return cell("[x]", width)
		}
		return cell("[ ]", width)
	case grid.ColName:
		return cell(exp.Name, width)
	case grid.ColCreatedAt:
		return cell(formatTimeAgo(exp.CreatedAt, now), width)
	case grid.ColRunCount:
		return cellRight(fmtInt(exp.RunCount), width)
	case grid.ColErrorRate:
		return cellRight(formatErrorRate(exp.Metrics.ErrorRate), width)
	case grid.ColLatency:
		return cellRight(formatLatency(exp.Metrics.AvgLatencyMS), width)
	case grid.ColCost:
		return cellRight(formatCost(exp.Metrics.TotalCost), width)
	case grid.ColTokens:
		return cellRight(formatTokens(exp.Metrics.TotalTokens), width)
	default:
		// Annotation column; its title is the annotation name.
		summary, ok := exp.AnnotationScores[col.Title]
		if !ok {
			return cell(placeholder, width)
		}
		return formatScoreCell(summary, ranges[col.Title], exp.RunCount, width)
	}
}
