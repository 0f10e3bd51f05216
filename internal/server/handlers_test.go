package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalboard/evalboard/internal/api"
	"github.com/evalboard/evalboard/internal/store"
	"github.com/evalboard/evalboard/internal/testutil"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.SQLiteStore) {
	t.Helper()

	st := store.NewSQLiteStore()
	require.NoError(t, st.Open(":memory:"))
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate())

	srv := NewServer(Config{Store: st, Logger: testutil.NewTestLogger(t)})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

func fptr(v float64) *float64 { return &v }

func seed(t *testing.T, st *store.SQLiteStore, n int) []string {
	t.Helper()
	base := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		exp := &store.Experiment{
			ID:        fmt.Sprintf("exp-%02d", i),
			Name:      fmt.Sprintf("experiment %02d", i),
			RunCount:  i,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			Annotations: map[string]api.AnnotationSummary{
				"correctness": {MeanScore: fptr(0.1 * float64(i+1)), Count: 5},
			},
		}
		require.NoError(t, st.InsertExperiment(context.Background(), exp))
		ids = append(ids, exp.ID)
	}
	return ids
}

func TestListExperimentsEndpoint(t *testing.T) {
	ts, st := newTestServer(t)
	seed(t, st, 7)

	client, err := api.NewHTTPClient(ts.URL)
	require.NoError(t, err)
	ctx := context.Background()
	sort := api.Sort{Column: "createdAt", Direction: "desc"}

	first, err := client.ListExperiments(ctx, api.ListRequest{First: 5, Sort: sort})
	require.NoError(t, err)
	require.Len(t, first.Edges, 5)
	assert.True(t, first.PageInfo.HasNextPage)
	assert.Equal(t, "exp-06", first.Edges[0].Node.ID, "newest first")

	require.NotNil(t, first.PageInfo.EndCursor)
	second, err := client.ListExperiments(ctx, api.ListRequest{
		After: first.PageInfo.EndCursor, First: 5, Sort: sort,
	})
	require.NoError(t, err)
	require.Len(t, second.Edges, 2)
	assert.False(t, second.PageInfo.HasNextPage)
	assert.Equal(t, "exp-00", second.Edges[1].Node.ID)

	score := second.Edges[1].Node.AnnotationScores["correctness"]
	require.NotNil(t, score.MeanScore)
	assert.InDelta(t, 0.1, *score.MeanScore, 1e-9)
}

func TestListExperimentsValidation(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name  string
		query string
	}{
		{name: "bad first", query: "first=zero"},
		{name: "negative first", query: "first=-3"},
		{name: "bad sort column", query: "sortColumn=runCount"},
		{name: "bad sort direction", query: "sortColumn=name&sortDirection=sideways"},
		{name: "malformed cursor", query: "after=%21%21"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/api/experiments?" + tt.query)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var payload struct {
				Errors []string `json:"errors"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
			assert.NotEmpty(t, payload.Errors)
		})
	}
}

func TestAnnotationRangesEndpoint(t *testing.T) {
	ts, st := newTestServer(t)
	seed(t, st, 3)

	client, err := api.NewHTTPClient(ts.URL)
	require.NoError(t, err)
	ranges, err := client.AnnotationRanges(context.Background())
	require.NoError(t, err)

	r, ok := ranges["correctness"]
	require.True(t, ok)
	require.NotNil(t, r.MinScore)
	require.NotNil(t, r.MaxScore)
	assert.InDelta(t, 0.1, *r.MinScore, 1e-9)
	assert.InDelta(t, 0.3, *r.MaxScore, 1e-9)
}

func TestDeleteExperimentsEndpoint(t *testing.T) {
	ts, st := newTestServer(t)
	ids := seed(t, st, 4)
	client, err := api.NewHTTPClient(ts.URL)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("deletes selected rows", func(t *testing.T) {
		require.NoError(t, client.DeleteExperiments(ctx, ids[:2]))

		n, err := st.CountExperiments(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("unknown ids report not found", func(t *testing.T) {
		err := client.DeleteExperiments(ctx, []string{"ghost"})
		require.Error(t, err)
		assert.Equal(t, "experiments not found", api.FirstErrorMessage(err))
	})

	t.Run("empty body is rejected", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/experiments/delete", "application/json",
			strings.NewReader(`{"ids":[]}`))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestExportExperimentEndpoint(t *testing.T) {
	ts, st := newTestServer(t)
	seed(t, st, 1)

	t.Run("streams a download", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/experiments/exp-00/export")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "exp-00.json")

		var exp api.Experiment
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&exp))
		assert.Equal(t, "exp-00", exp.ID)
		assert.Equal(t, "experiment 00", exp.Name)
	})

	t.Run("missing experiment is 404", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/experiments/ghost/export")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
