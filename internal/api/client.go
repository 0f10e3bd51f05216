package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is the backend surface the grid consumes. Implementations must
// be safe for use from multiple goroutines.
type Client interface {
	// ListExperiments fetches one page of experiments.
	ListExperiments(ctx context.Context, req ListRequest) (*ExperimentConnection, error)

	// AnnotationRanges fetches the dataset-wide min/max per annotation
	// name. Fetched alongside the first page, not per row.
	AnnotationRanges(ctx context.Context) (map[string]AnnotationRange, error)

	// DeleteExperiments deletes the given experiments and their
	// dependent records.
	DeleteExperiments(ctx context.Context, ids []string) error

	// ExportURL returns the fixed-path export URL for one experiment.
	ExportURL(id string) string

	// TracesURL returns the trace browser URL for a project.
	TracesURL(projectID string) string
}

// APIError is a failure payload from the backend: a list of
// human-readable messages.
type APIError struct {
	StatusCode int
	Messages   []string `json:"errors"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("api error (status %d): %s", e.StatusCode, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("api error (status %d)", e.StatusCode)
}

// FirstErrorMessage extracts the first human-readable message from an
// error chain. Returns "" when no message can be extracted; callers are
// expected to fall back to a generic message.
func FirstErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		for _, msg := range apiErr.Messages {
			if msg != "" {
				return msg
			}
		}
	}
	return ""
}

// HTTPClient talks to an EvalBoard backend over HTTP.
type HTTPClient struct {
	base *url.URL
	hc   *http.Client
}

// NewHTTPClient creates a client for the backend at baseURL.
func NewHTTPClient(baseURL string) (*HTTPClient, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: missing scheme or host", baseURL)
	}
	return &HTTPClient{
		base: base,
		hc:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// ListExperiments implements Client.
func (c *HTTPClient) ListExperiments(ctx context.Context, req ListRequest) (*ExperimentConnection, error) {
	q := url.Values{}
	if req.After != nil {
		q.Set("after", *req.After)
	}
	q.Set("first", strconv.Itoa(req.First))
	if req.Sort.Column != "" {
		q.Set("sortColumn", req.Sort.Column)
	}
	if req.Sort.Direction != "" {
		q.Set("sortDirection", req.Sort.Direction)
	}

	var conn ExperimentConnection
	if err := c.getJSON(ctx, "/api/experiments", q, &conn); err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}
	return &conn, nil
}

// AnnotationRanges implements Client.
func (c *HTTPClient) AnnotationRanges(ctx context.Context) (map[string]AnnotationRange, error) {
	ranges := make(map[string]AnnotationRange)
	if err := c.getJSON(ctx, "/api/annotation-ranges", nil, &ranges); err != nil {
		return nil, fmt.Errorf("failed to fetch annotation ranges: %w", err)
	}
	return ranges, nil
}

// DeleteExperiments implements Client.
func (c *HTTPClient) DeleteExperiments(ctx context.Context, ids []string) error {
	body, err := json.Marshal(DeleteRequest{IDs: ids})
	if err != nil {
		return fmt.Errorf("failed to encode delete request: %w", err)
	}

	u := c.resolve("/api/experiments/delete", nil)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	return nil
}

// ExportURL implements Client.
func (c *HTTPClient) ExportURL(id string) string {
	return c.resolve("/api/experiments/"+id+"/export", nil)
}

// TracesURL implements Client.
func (c *HTTPClient) TracesURL(projectID string) string {
	return c.resolve("/projects/"+projectID+"/traces", nil)
}

// getJSON issues a GET and decodes a JSON response into out.
func (c *HTTPClient) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	u := c.resolve(path, q)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// resolve joins the base URL with a path and optional query. The path
// is taken unescaped; URL.String escapes it exactly once.
func (c *HTTPClient) resolve(path string, q url.Values) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// decodeError turns a non-2xx response into an *APIError. The body is
// expected to carry {"errors": [...]}; anything else yields an APIError
// with no messages so callers fall back to a generic text.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil && len(body) > 0 {
		_ = json.Unmarshal(body, apiErr)
	}
	return apiErr
}

var _ Client = (*HTTPClient)(nil)
