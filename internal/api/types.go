// Package api defines the data contracts exchanged with an EvalBoard
// backend and an HTTP client implementation of them. The shapes are
// declared explicitly rather than generated from a schema so the grid
// depends on stable Go types.
package api

import "time"

// Metrics is the nullable per-experiment metrics bag. A nil field means
// the backend reported no value for it; the grid renders those as "--"
// and never coerces them to zero.
type Metrics struct {
	ErrorRate    *float64 `json:"errorRate"`
	AvgLatencyMS *float64 `json:"avgLatencyMs"`
	TotalCost    *float64 `json:"totalCost"`
	TotalTokens  *float64 `json:"totalTokens"`
}

// AnnotationSummary aggregates one named annotation over an experiment's
// runs. MeanScore is nil when no run carried a score.
type AnnotationSummary struct {
	MeanScore  *float64 `json:"meanScore"`
	Count      int      `json:"count"`
	ErrorCount int      `json:"errorCount"`
}

// AnnotationRange is the dataset-wide score spread for one annotation
// name, supplied once per page load rather than per row.
type AnnotationRange struct {
	MinScore *float64 `json:"minScore"`
	MaxScore *float64 `json:"maxScore"`
}

// Experiment is one row in the grid.
type Experiment struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ProjectID   *string   `json:"projectId"`
	RunCount    int       `json:"runCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Metrics     Metrics   `json:"metrics"`

	// AnnotationScores is keyed by annotation name. Keys are not
	// required to be present for every experiment.
	AnnotationScores map[string]AnnotationSummary `json:"annotationScores"`
}

// Sort is the fixed server-side sort parameter carried on every page
// request. The grid does not sort client-side.
type Sort struct {
	Column    string `json:"column"`
	Direction string `json:"direction"`
}

// ListRequest is a cursor-paginated page request.
type ListRequest struct {
	After *string `json:"after"`
	First int     `json:"first"`
	Sort  Sort    `json:"sort"`
}

// ExperimentEdge pairs a row with its continuation cursor.
type ExperimentEdge struct {
	Node   Experiment `json:"node"`
	Cursor string     `json:"cursor"`
}

// PageInfo describes where a page ended and whether more rows exist.
type PageInfo struct {
	EndCursor   *string `json:"endCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

// ExperimentConnection is one page of experiments.
type ExperimentConnection struct {
	Edges    []ExperimentEdge `json:"edges"`
	PageInfo PageInfo         `json:"pageInfo"`
}

// DeleteRequest asks the backend to delete the given experiments and
// everything that depends on them. There are no partial-success
// semantics: the whole request succeeds or fails.
type DeleteRequest struct {
	IDs []string `json:"ids"`
}

// SortColumns lists the sort columns the backend accepts.
var SortColumns = []string{"createdAt", "name"}
