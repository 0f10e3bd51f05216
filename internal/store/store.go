// Package store persists experiments for the fixture backend using
// SQLite with schema migrations. It implements the cursor-paginated
// listing, cascading deletion, and annotation-range queries the API
// serves to the grid.
package store

import (
	"time"

	"github.com/evalboard/evalboard/internal/api"
)

// Experiment is a stored experiment row plus its annotation summaries.
type Experiment struct {
	ID           string
	Name         string
	Description  string
	ProjectID    *string
	RunCount     int
	ErrorRate    *float64
	AvgLatencyMS *float64
	TotalCost    *float64
	TotalTokens  *float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Annotations  map[string]api.AnnotationSummary
}

// Sort mirrors the fixed server-side sort parameter.
type Sort struct {
	Column    string // "createdAt" or "name"
	Direction string // "asc" or "desc"
}

// Page is one keyset-paginated slice of experiments.
type Page struct {
	Experiments []Experiment
	Cursors     []string // one opaque cursor per experiment
	EndCursor   *string
	HasNextPage bool
}

// ToAPI converts a stored experiment to its wire shape.
func (e Experiment) ToAPI() api.Experiment {
	return api.Experiment{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		ProjectID:   e.ProjectID,
		RunCount:    e.RunCount,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		Metrics: api.Metrics{
			ErrorRate:    e.ErrorRate,
			AvgLatencyMS: e.AvgLatencyMS,
			TotalCost:    e.TotalCost,
			TotalTokens:  e.TotalTokens,
		},
		AnnotationScores: e.Annotations,
	}
}
