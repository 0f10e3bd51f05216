package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/evalboard/evalboard/internal/api"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements the experiment store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Every connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB exposes the underlying connection for tests.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// InsertExperiment stores an experiment and its annotation summaries.
// A missing ID or CreatedAt is filled in.
func (s *SQLiteStore) InsertExperiment(ctx context.Context, exp *Experiment) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if exp.ID == "" {
		exp.ID = generateID()
	}
	now := time.Now().UTC()
	if exp.CreatedAt.IsZero() {
		exp.CreatedAt = now
	}
	if exp.UpdatedAt.IsZero() {
		exp.UpdatedAt = exp.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO experiments (id, name, description, project_id, run_count,
		    error_rate, avg_latency_ms, total_cost, total_tokens, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		exp.ID, exp.Name, exp.Description, exp.ProjectID, exp.RunCount,
		exp.ErrorRate, exp.AvgLatencyMS, exp.TotalCost, exp.TotalTokens,
		exp.CreatedAt, exp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert experiment: %w", err)
	}

	for name, summary := range exp.Annotations {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO annotation_summaries (experiment_id, name, mean_score, count, error_count)
			 VALUES (?, ?, ?, ?, ?)`,
			exp.ID, name, summary.MeanScore, summary.Count, summary.ErrorCount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert annotation summary: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExperiment retrieves one experiment with its annotations.
// Returns nil, nil when not found.
func (s *SQLiteStore) GetExperiment(ctx context.Context, id string) (*Experiment, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, project_id, run_count,
		    error_rate, avg_latency_ms, total_cost, total_tokens, created_at, updated_at
		 FROM experiments WHERE id = ?`, id)

	exp, err := scanExperiment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get experiment: %w", err)
	}

	annotations, err := s.loadAnnotations(ctx, []string{exp.ID})
	if err != nil {
		return nil, err
	}
	exp.Annotations = annotations[exp.ID]
	return exp, nil
}

// ListExperiments returns one keyset-paginated page after the given
// opaque cursor token (nil for the first page).
func (s *SQLiteStore) ListExperiments(ctx context.Context, after *string, first int, sort Sort) (*Page, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	if first <= 0 {
		first = 100
	}
	if first > 500 {
		first = 500
	}

	keyCol, keyVal, err := sortKey(sort)
	if err != nil {
		return nil, err
	}
	op, order := ">", "ASC"
	if strings.EqualFold(sort.Direction, "desc") || sort.Direction == "" {
		op, order = "<", "DESC"
	}

	query := `SELECT id, name, description, project_id, run_count,
		    error_rate, avg_latency_ms, total_cost, total_tokens, created_at, updated_at
		 FROM experiments`
	args := []any{}
	if after != nil {
		c, err := decodeCursor(*after)
		if err != nil {
			return nil, err
		}
		query += fmt.Sprintf(" WHERE (%s %s ? OR (%s = ? AND id %s ?))", keyCol, op, keyCol, op)
		args = append(args, keyVal(c), keyVal(c), c.ID)
	}
	query += fmt.Sprintf(" ORDER BY %s %s, id %s LIMIT ?", keyCol, order, order)
	args = append(args, first+1) // one extra row decides hasNextPage

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var experiments []Experiment
	for rows.Next() {
		exp, err := scanExperiment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan experiment: %w", err)
		}
		experiments = append(experiments, *exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}

	page := &Page{HasNextPage: len(experiments) > first}
	if page.HasNextPage {
		experiments = experiments[:first]
	}

	ids := make([]string, len(experiments))
	for i := range experiments {
		ids[i] = experiments[i].ID
	}
	annotations, err := s.loadAnnotations(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range experiments {
		experiments[i].Annotations = annotations[experiments[i].ID]
		token := encodeCursor(cursor{
			CreatedAt: experiments[i].CreatedAt,
			Name:      experiments[i].Name,
			ID:        experiments[i].ID,
		})
		page.Cursors = append(page.Cursors, token)
	}
	page.Experiments = experiments
	if len(page.Cursors) > 0 {
		last := page.Cursors[len(page.Cursors)-1]
		page.EndCursor = &last
	}
	return page, nil
}

// DeleteExperiments removes the given experiments. Annotation summaries
// cascade via the foreign key. Returns the number of deleted rows.
func (s *SQLiteStore) DeleteExperiments(ctx context.Context, ids []string) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM experiments WHERE id IN (%s)`, placeholders), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete experiments: %w", err)
	}
	deleted, _ := result.RowsAffected()
	return deleted, nil
}

// AnnotationRanges returns the dataset-wide min/max mean score per
// annotation name. Names whose scores are all NULL are skipped.
func (s *SQLiteStore) AnnotationRanges(ctx context.Context) (map[string]api.AnnotationRange, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, MIN(mean_score), MAX(mean_score)
		 FROM annotation_summaries
		 WHERE mean_score IS NOT NULL
		 GROUP BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query annotation ranges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ranges := make(map[string]api.AnnotationRange)
	for rows.Next() {
		var name string
		var min, max sql.NullFloat64
		if err := rows.Scan(&name, &min, &max); err != nil {
			return nil, fmt.Errorf("failed to scan annotation range: %w", err)
		}
		r := api.AnnotationRange{}
		if min.Valid {
			r.MinScore = &min.Float64
		}
		if max.Valid {
			r.MaxScore = &max.Float64
		}
		ranges[name] = r
	}
	return ranges, rows.Err()
}

// CountExperiments returns the total number of stored experiments.
func (s *SQLiteStore) CountExperiments(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM experiments`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count experiments: %w", err)
	}
	return n, nil
}

// loadAnnotations fetches annotation summaries for a set of experiment
// ids, grouped by experiment.
func (s *SQLiteStore) loadAnnotations(ctx context.Context, ids []string) (map[string]map[string]api.AnnotationSummary, error) {
	out := make(map[string]map[string]api.AnnotationSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT experiment_id, name, mean_score, count, error_count
		 FROM annotation_summaries WHERE experiment_id IN (%s)`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load annotation summaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var expID, name string
		var mean sql.NullFloat64
		var summary api.AnnotationSummary
		if err := rows.Scan(&expID, &name, &mean, &summary.Count, &summary.ErrorCount); err != nil {
			return nil, fmt.Errorf("failed to scan annotation summary: %w", err)
		}
		if mean.Valid {
			summary.MeanScore = &mean.Float64
		}
		if out[expID] == nil {
			out[expID] = make(map[string]api.AnnotationSummary)
		}
		out[expID][name] = summary
	}
	return out, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanExperiment reads one experiment row.
func scanExperiment(sc scanner) (*Experiment, error) {
	exp := &Experiment{}
	var projectID sql.NullString
	var errorRate, latency, cost, tokens sql.NullFloat64

	err := sc.Scan(&exp.ID, &exp.Name, &exp.Description, &projectID, &exp.RunCount,
		&errorRate, &latency, &cost, &tokens, &exp.CreatedAt, &exp.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if projectID.Valid {
		exp.ProjectID = &projectID.String
	}
	if errorRate.Valid {
		exp.ErrorRate = &errorRate.Float64
	}
	if latency.Valid {
		exp.AvgLatencyMS = &latency.Float64
	}
	if cost.Valid {
		exp.TotalCost = &cost.Float64
	}
	if tokens.Valid {
		exp.TotalTokens = &tokens.Float64
	}
	return exp, nil
}

// sortKey maps a sort parameter onto a column and cursor accessor.
func sortKey(sort Sort) (string, func(cursor) any, error) {
	switch sort.Column {
	case "", "createdAt":
		return "created_at", func(c cursor) any { return c.CreatedAt }, nil
	case "name":
		return "name", func(c cursor) any { return c.Name }, nil
	default:
		return "", nil, fmt.Errorf("unsupported sort column: %s", sort.Column)
	}
}
