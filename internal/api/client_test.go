package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_RejectsBadURLs(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "empty", url: ""},
		{name: "no scheme", url: "localhost:8901"},
		{name: "garbage", url: "://nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHTTPClient(tt.url)
			assert.Error(t, err)
		})
	}
}

func TestHTTPClient_ListExperiments(t *testing.T) {
	cursor := "abc123"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/experiments", r.URL.Path)
		assert.Equal(t, "prev", r.URL.Query().Get("after"))
		assert.Equal(t, "50", r.URL.Query().Get("first"))
		assert.Equal(t, "createdAt", r.URL.Query().Get("sortColumn"))
		assert.Equal(t, "desc", r.URL.Query().Get("sortDirection"))

		conn := ExperimentConnection{
			Edges: []ExperimentEdge{
				{Node: Experiment{ID: "e1", Name: "first"}, Cursor: "c1"},
				{Node: Experiment{ID: "e2", Name: "second"}, Cursor: cursor},
			},
			PageInfo: PageInfo{EndCursor: &cursor, HasNextPage: true},
		}
		_ = json.NewEncoder(w).Encode(conn)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL)
	require.NoError(t, err)

	after := "prev"
	conn, err := client.ListExperiments(context.Background(), ListRequest{
		After: &after,
		First: 50,
		Sort:  Sort{Column: "createdAt", Direction: "desc"},
	})
	require.NoError(t, err)

	require.Len(t, conn.Edges, 2)
	assert.Equal(t, "e1", conn.Edges[0].Node.ID)
	assert.True(t, conn.PageInfo.HasNextPage)
	require.NotNil(t, conn.PageInfo.EndCursor)
	assert.Equal(t, cursor, *conn.PageInfo.EndCursor)
}

func TestHTTPClient_AnnotationRanges(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/annotation-ranges", r.URL.Path)
		_, _ = fmt.Fprint(w, `{"quality":{"minScore":0.1,"maxScore":0.9}}`)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL)
	require.NoError(t, err)

	ranges, err := client.AnnotationRanges(context.Background())
	require.NoError(t, err)

	require.Contains(t, ranges, "quality")
	require.NotNil(t, ranges["quality"].MinScore)
	assert.InDelta(t, 0.1, *ranges["quality"].MinScore, 1e-9)
}

func TestHTTPClient_DeleteExperiments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/experiments/delete", r.URL.Path)

		var req DeleteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"a", "b"}, req.IDs)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL)
	require.NoError(t, err)

	assert.NoError(t, client.DeleteExperiments(context.Background(), []string{"a", "b"}))
}

func TestHTTPClient_DeleteExperiments_ErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = fmt.Fprint(w, `{"errors":["experiment is locked","second message"]}`)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL)
	require.NoError(t, err)

	err = client.DeleteExperiments(context.Background(), []string{"a"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "experiment is locked", FirstErrorMessage(err))
}

func TestFirstErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "first non-empty message",
			err:  &APIError{Messages: []string{"", "db unavailable"}},
			want: "db unavailable",
		},
		{
			name: "wrapped api error",
			err:  fmt.Errorf("delete failed: %w", &APIError{Messages: []string{"nope"}}),
			want: "nope",
		},
		{
			name: "no messages yields empty",
			err:  &APIError{StatusCode: 500},
			want: "",
		},
		{
			name: "plain error yields empty",
			err:  errors.New("connection refused"),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstErrorMessage(tt.err))
		})
	}
}

func TestHTTPClient_URLs(t *testing.T) {
	client, err := NewHTTPClient("http://localhost:8901")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8901/api/experiments/e%201/export", client.ExportURL("e 1"))
	assert.Equal(t, "http://localhost:8901/projects/p1/traces", client.TracesURL("p1"))
}

func TestHTTPClient_MalformedErrorBodyFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = fmt.Fprint(w, "<html>oops</html>")
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL)
	require.NoError(t, err)

	err = client.DeleteExperiments(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Equal(t, "", FirstErrorMessage(err))
}
