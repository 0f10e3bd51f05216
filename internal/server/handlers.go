package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/evalboard/evalboard/internal/api"
	"github.com/evalboard/evalboard/internal/store"
)

func (s *Server) routes(r chi.Router) {
	r.Get("/api/experiments", s.handleListExperiments)
	r.Get("/api/annotation-ranges", s.handleAnnotationRanges)
	r.Post("/api/experiments/delete", s.handleDeleteExperiments)
	r.Get("/api/experiments/{id}/export", s.handleExportExperiment)
}

// handleListExperiments serves one cursor-paginated page of experiments.
func (s *Server) handleListExperiments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var after *string
	if token := q.Get("after"); token != "" {
		after = &token
	}

	first := 100
	if raw := q.Get("first"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid first parameter: %q", raw))
			return
		}
		first = n
	}

	sort := store.Sort{
		Column:    q.Get("sortColumn"),
		Direction: q.Get("sortDirection"),
	}
	if sort.Column == "" {
		sort.Column = "createdAt"
	}
	if !slices.Contains(api.SortColumns, sort.Column) {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported sort column: %q", sort.Column))
		return
	}
	switch sort.Direction {
	case "", "asc", "desc":
	default:
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported sort direction: %q", sort.Direction))
		return
	}

	page, err := s.store.ListExperiments(r.Context(), after, first, sort)
	if err != nil {
		s.logger.Error("list experiments failed", "error", err)
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn := api.ExperimentConnection{
		Edges: make([]api.ExperimentEdge, 0, len(page.Experiments)),
		PageInfo: api.PageInfo{
			EndCursor:   page.EndCursor,
			HasNextPage: page.HasNextPage,
		},
	}
	for i, exp := range page.Experiments {
		conn.Edges = append(conn.Edges, api.ExperimentEdge{
			Node:   exp.ToAPI(),
			Cursor: page.Cursors[i],
		})
	}

	s.writeJSON(w, http.StatusOK, conn)
}

// handleAnnotationRanges serves the dataset-wide min/max score per
// annotation name.
func (s *Server) handleAnnotationRanges(w http.ResponseWriter, r *http.Request) {
	ranges, err := s.store.AnnotationRanges(r.Context())
	if err != nil {
		s.logger.Error("annotation ranges failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to compute annotation ranges")
		return
	}
	s.writeJSON(w, http.StatusOK, ranges)
}

// handleDeleteExperiments removes a batch of experiments.
func (s *Server) handleDeleteExperiments(w http.ResponseWriter, r *http.Request) {
	var req api.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		s.writeError(w, http.StatusBadRequest, "no experiment ids given")
		return
	}

	deleted, err := s.store.DeleteExperiments(r.Context(), req.IDs)
	if err != nil {
		s.logger.Error("delete experiments failed", "error", err, "ids", len(req.IDs))
		s.writeError(w, http.StatusInternalServerError, "failed to delete experiments")
		return
	}
	if deleted == 0 {
		s.writeError(w, http.StatusNotFound, "experiments not found")
		return
	}

	s.logger.Info("deleted experiments", "count", deleted)
	s.writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

// handleExportExperiment streams one experiment as a JSON download.
func (s *Server) handleExportExperiment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	exp, err := s.store.GetExperiment(r.Context(), id)
	if err != nil {
		s.logger.Error("export experiment failed", "error", err, "id", id)
		s.writeError(w, http.StatusInternalServerError, "failed to load experiment")
		return
	}
	if exp == nil {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("experiment %q not found", id))
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.ID+".json"))
	s.writeJSON(w, http.StatusOK, exp.ToAPI())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError renders the shared error payload shape, a JSON object with
// an "errors" array of human-readable messages.
func (s *Server) writeError(w http.ResponseWriter, status int, messages ...string) {
	s.writeJSON(w, status, map[string][]string{"errors": messages})
}
