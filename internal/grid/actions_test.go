package grid

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalboard/evalboard/internal/api"
)

// mutableClient serves pages over a mutable row set so deletes are
// reflected by the refetch that follows them.
type mutableClient struct {
	mu        sync.Mutex
	rows      []api.Experiment
	deleteErr error
	deleted   [][]string
}

func newMutableClient(ids ...string) *mutableClient {
	c := &mutableClient{}
	for _, id := range ids {
		c.rows = append(c.rows, api.Experiment{ID: id, Name: "experiment " + id})
	}
	return c
}

func (c *mutableClient) ListExperiments(_ context.Context, req api.ListRequest) (*api.ExperimentConnection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := 0
	if req.After != nil {
		_, _ = fmt.Sscanf(*req.After, "%d", &start)
	}
	end := start + req.First
	if end > len(c.rows) {
		end = len(c.rows)
	}

	conn := &api.ExperimentConnection{}
	for i := start; i < end; i++ {
		conn.Edges = append(conn.Edges, api.ExperimentEdge{Node: c.rows[i], Cursor: fmt.Sprintf("%d", i+1)})
	}
	if len(conn.Edges) > 0 {
		last := conn.Edges[len(conn.Edges)-1].Cursor
		conn.PageInfo.EndCursor = &last
	}
	conn.PageInfo.HasNextPage = end < len(c.rows)
	return conn, nil
}

func (c *mutableClient) AnnotationRanges(context.Context) (map[string]api.AnnotationRange, error) {
	return nil, nil
}

func (c *mutableClient) DeleteExperiments(_ context.Context, ids []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, ids)
	if c.deleteErr != nil {
		return c.deleteErr
	}
	doomed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		doomed[id] = struct{}{}
	}
	kept := c.rows[:0]
	for _, row := range c.rows {
		if _, ok := doomed[row.ID]; !ok {
			kept = append(kept, row)
		}
	}
	c.rows = kept
	return nil
}

func (c *mutableClient) ExportURL(id string) string  { return "/export/" + id }
func (c *mutableClient) TracesURL(pid string) string { return "/traces/" + pid }

func newToolbar(t *testing.T, client *mutableClient) (*Actions, *Selection, *Pager) {
	t.Helper()
	pager := NewPager(client, api.Sort{}, nil)
	require.NoError(t, pager.Refresh(context.Background(), 100))
	selection := NewSelection(nil)
	return NewActions(client, selection, pager, nil), selection, pager
}

func TestActions_VisibleOnlyWithSelection(t *testing.T) {
	actions, selection, _ := newToolbar(t, newMutableClient("a", "b"))

	assert.False(t, actions.Visible())
	selection.Toggle("a")
	assert.True(t, actions.Visible())
	selection.Clear()
	assert.False(t, actions.Visible())
}

func TestActions_ComparePath_BaselineFirst(t *testing.T) {
	actions, selection, _ := newToolbar(t, newMutableClient("A", "B", "C"))

	selection.Toggle("C")
	selection.Toggle("A")
	selection.Toggle("B")

	assert.Equal(t, "/compare?experimentId=C&experimentId=A&experimentId=B", actions.ComparePath())
}

func TestActions_ComparePath_NeedsTwoRows(t *testing.T) {
	actions, selection, _ := newToolbar(t, newMutableClient("A"))

	assert.Equal(t, "", actions.ComparePath())
	selection.Toggle("A")
	assert.Equal(t, "", actions.ComparePath())
}

func TestActions_DeleteStateMachine(t *testing.T) {
	actions, selection, _ := newToolbar(t, newMutableClient("a", "b"))

	// Delete never starts without a selection.
	actions.RequestDelete()
	assert.Equal(t, DeleteIdle, actions.Phase())

	selection.Toggle("a")
	actions.RequestDelete()
	assert.Equal(t, DeleteConfirming, actions.Phase())

	actions.CancelDelete()
	assert.Equal(t, DeleteIdle, actions.Phase())
	assert.True(t, selection.Has("a"))

	// Confirm without the confirmation step is a no-op.
	require.NoError(t, actions.ConfirmDelete(context.Background(), 100))
	assert.Equal(t, [][]string(nil), findDeletes(t, actions))
}

func findDeletes(t *testing.T, actions *Actions) [][]string {
	t.Helper()
	client, ok := actions.client.(*mutableClient)
	require.True(t, ok)
	client.mu.Lock()
	defer client.mu.Unlock()
	return client.deleted
}

func TestActions_DeleteSuccess(t *testing.T) {
	client := newMutableClient("a", "b", "c", "d")
	actions, selection, pager := newToolbar(t, client)

	selection.Toggle("a")
	selection.Toggle("b")
	selection.Toggle("c")

	actions.RequestDelete()
	require.NoError(t, actions.ConfirmDelete(context.Background(), 100))

	// Success: toast, empty selection, pager reloaded from a nil cursor
	// so the stale rows are gone.
	notice := actions.Notice()
	assert.Equal(t, NoticeSuccess, notice.Kind)
	assert.Equal(t, "3 experiments have been deleted", notice.Text)
	assert.Equal(t, 0, selection.Count())
	assert.Equal(t, []string{"d"}, pager.RowIDs())
	assert.Equal(t, DeleteIdle, actions.Phase())
}

func TestActions_DeleteSuccess_SingularMessage(t *testing.T) {
	client := newMutableClient("a", "b")
	actions, selection, _ := newToolbar(t, client)

	selection.Toggle("b")
	actions.RequestDelete()
	require.NoError(t, actions.ConfirmDelete(context.Background(), 100))

	assert.Equal(t, "1 experiment has been deleted", actions.Notice().Text)
}

func TestActions_DeleteFailure_PreservesSelection(t *testing.T) {
	client := newMutableClient("a", "b", "c")
	client.deleteErr = &api.APIError{StatusCode: 500, Messages: []string{"experiments are referenced by an active run"}}
	actions, selection, pager := newToolbar(t, client)

	selection.Toggle("a")
	selection.Toggle("b")
	selection.Toggle("c")

	actions.RequestDelete()
	err := actions.ConfirmDelete(context.Background(), 100)
	require.Error(t, err)

	// Failure: extracted message surfaced, selection intact for retry,
	// dialog closed, rows untouched.
	notice := actions.Notice()
	assert.Equal(t, NoticeError, notice.Kind)
	assert.Equal(t, "experiments are referenced by an active run", notice.Text)
	assert.Equal(t, []string{"a", "b", "c"}, selection.Selected())
	assert.Equal(t, DeleteIdle, actions.Phase())
	assert.Len(t, pager.RowIDs(), 3)
}

func TestActions_DeleteSuccess_ReloadFailure(t *testing.T) {
	client := &fakeClient{total: 3}
	pager := NewPager(client, api.Sort{}, nil)
	require.NoError(t, pager.Refresh(context.Background(), 100))
	selection := NewSelection(nil)
	actions := NewActions(client, selection, pager, nil)

	selection.Toggle("exp-0")
	actions.RequestDelete()

	client.mu.Lock()
	client.listErr = fmt.Errorf("network down")
	client.mu.Unlock()

	err := actions.ConfirmDelete(context.Background(), 100)
	require.Error(t, err)

	// The delete went through but the refetch did not: the selection
	// stays cleared, and the user sees the reload failure instead of a
	// plain success toast.
	notice := actions.Notice()
	assert.Equal(t, NoticeError, notice.Kind)
	assert.Contains(t, notice.Text, "1 experiment has been deleted")
	assert.Contains(t, notice.Text, "reloading failed")
	assert.Equal(t, 0, selection.Count())
	assert.Equal(t, DeleteIdle, actions.Phase())
}

func TestActions_DeleteFailure_GenericFallback(t *testing.T) {
	client := newMutableClient("a")
	client.deleteErr = fmt.Errorf("connection refused")
	actions, selection, _ := newToolbar(t, client)

	selection.Toggle("a")
	actions.RequestDelete()
	require.Error(t, actions.ConfirmDelete(context.Background(), 100))

	assert.Equal(t, genericDeleteError, actions.Notice().Text)
	assert.True(t, selection.Has("a"))
}

func TestActions_ClearNotice(t *testing.T) {
	client := newMutableClient("a", "b")
	actions, selection, _ := newToolbar(t, client)

	selection.Toggle("a")
	actions.RequestDelete()
	require.NoError(t, actions.ConfirmDelete(context.Background(), 100))
	require.Equal(t, NoticeSuccess, actions.Notice().Kind)

	actions.ClearNotice()
	assert.Equal(t, NoticeNone, actions.Notice().Kind)
}

func TestDeletedMessage_Pluralization(t *testing.T) {
	assert.Equal(t, "1 experiment has been deleted", deletedMessage(1))
	assert.Equal(t, "2 experiments have been deleted", deletedMessage(2))
	assert.Equal(t, "0 experiments have been deleted", deletedMessage(0))
}
