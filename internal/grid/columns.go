package grid

import (
	"sort"

	"github.com/evalboard/evalboard/internal/api"
)

// Column describes one grid column: a stable identifier, a header
// title, and a default width in cells.
type Column struct {
	ID    string
	Title string
	Width int
}

// Fixed column identifiers. Annotation columns are derived from the
// dataset and use the "score." prefix.
const (
	ColSelect    = "select"
	ColName      = "name"
	ColCreatedAt = "createdAt"
	ColRunCount  = "runCount"
	ColErrorRate = "errorRate"
	ColLatency   = "latency"
	ColCost      = "cost"
	ColTokens    = "tokens"

	scoreColPrefix = "score."
)

// DefaultColumns returns the fixed display columns in order.
func DefaultColumns() []Column {
	return []Column{
		{ID: ColSelect, Title: " ", Width: 4},
		{ID: ColName, Title: "Name", Width: 28},
		{ID: ColCreatedAt, Title: "Created", Width: 16},
		{ID: ColRunCount, Title: "Runs", Width: 6},
		{ID: ColErrorRate, Title: "Err%", Width: 7},
		{ID: ColLatency, Title: "P50 ms", Width: 9},
		{ID: ColCost, Title: "Cost", Width: 10},
		{ID: ColTokens, Title: "Tokens", Width: 9},
	}
}

// AnnotationColumns derives one column per annotation name, sorted for a
// stable layout across page loads.
func AnnotationColumns(ranges map[string]api.AnnotationRange) []Column {
	names := make([]string, 0, len(ranges))
	for name := range ranges {
		names = append(names, name)
	}
	sort.Strings(names)

	cols := make([]Column, 0, len(names))
	for _, name := range names {
		cols = append(cols, Column{ID: ScoreColumnID(name), Title: name, Width: 18})
	}
	return cols
}

// ScoreColumnID returns the column id for an annotation name.
func ScoreColumnID(name string) string {
	return scoreColPrefix + name
}
