package grid

import (
	"context"
	"fmt"
	"sync"

	"github.com/evalboard/evalboard/internal/api"
	"github.com/evalboard/evalboard/internal/notify"
)

// FetchThreshold is the distance to the bottom of the scroll viewport,
// in display units, below which the next page is fetched. One rendered
// grid row counts as RowHeight units. Fixed by design, not configurable.
const FetchThreshold = 300

// RowHeight is the display height of one grid row in the same units as
// FetchThreshold, so the threshold prefetches 15 rows ahead.
const RowHeight = 20

// Pager owns the growing row list, the opaque continuation cursor, and
// the in-flight-fetch guard. Rows are append-only in arrival order;
// since at most one fetch is in flight, page ordering is total and no
// merge logic is needed.
type Pager struct {
	mu         sync.Mutex
	client     api.Client
	sort       api.Sort
	hub        *notify.Hub
	rows       []api.Experiment
	ranges     map[string]api.AnnotationRange
	cursor     *string
	hasMore    bool
	fetching   bool
	generation uint64
	version    uint64
}

// NewPager creates a pager that fetches pages from client with a fixed
// server-side sort. hub may be nil.
func NewPager(client api.Client, sort api.Sort, hub *notify.Hub) *Pager {
	return &Pager{
		client:  client,
		sort:    sort,
		hub:     hub,
		hasMore: true,
	}
}

// FetchNext fetches the next page of up to pageSize rows and appends it.
// The call is a no-op returning (false, nil) while a fetch is already in
// flight or when the backend reported no further pages; callers retry by
// scrolling again, nothing is queued. Alongside the first page it also
// fetches the dataset-wide annotation ranges.
//
// A resolution that lands after Reset is discarded: it belongs to a
// previous generation of the row list and must not touch the new one.
func (p *Pager) FetchNext(ctx context.Context, pageSize int) (bool, error) {
	p.mu.Lock()
	if p.fetching || !p.hasMore {
		p.mu.Unlock()
		return false, nil
	}
	p.fetching = true
	gen := p.generation
	after := p.cursor
	firstPage := p.cursor == nil
	p.mu.Unlock()

	conn, err := p.client.ListExperiments(ctx, api.ListRequest{
		After: after,
		First: pageSize,
		Sort:  p.sort,
	})

	var ranges map[string]api.AnnotationRange
	if err == nil && firstPage {
		// Side-channel data, fetched once per page load. A failure here
		// is not fatal: cells fall back to the default 0..1 range.
		ranges, _ = p.client.AnnotationRanges(ctx)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation {
		// The pager was reset (or the grid torn down) while this fetch
		// was in flight. Discard the resolution entirely.
		return false, nil
	}
	p.fetching = false

	if err != nil {
		// Transient failure: keep rows, cursor, and hasMore as they
		// were so a later scroll retries naturally.
		return false, fmt.Errorf("page fetch failed: %w", err)
	}

	appended := make([]api.Experiment, 0, len(conn.Edges))
	for _, edge := range conn.Edges {
		appended = append(appended, edge.Node)
	}
	p.rows = append(p.rows, appended...)
	p.cursor = conn.PageInfo.EndCursor
	p.hasMore = conn.PageInfo.HasNextPage
	if ranges != nil {
		p.ranges = ranges
	}
	p.version++
	p.hub.Broadcast(notify.RegionRows)
	return true, nil
}

// Reset clears rows and cursor and re-arms hasMore. Any fetch still in
// flight is orphaned and its resolution dropped. Callers follow up with
// FetchNext (or use Refresh) for the implicit first fetch.
func (p *Pager) Reset() {
	p.mu.Lock()
	p.rows = nil
	p.cursor = nil
	p.hasMore = true
	p.fetching = false
	p.generation++
	p.version++
	p.mu.Unlock()
	p.hub.Broadcast(notify.RegionRows)
}

// Refresh resets the pager and performs the implicit first fetch.
func (p *Pager) Refresh(ctx context.Context, pageSize int) error {
	p.Reset()
	_, err := p.FetchNext(ctx, pageSize)
	return err
}

// Close orphans any in-flight fetch so a resolution arriving after the
// grid unmounted cannot update dead state.
func (p *Pager) Close() {
	p.mu.Lock()
	p.generation++
	p.hasMore = false
	p.fetching = false
	p.mu.Unlock()
}

// ShouldFetch reports whether a fetch should be triggered for the given
// distance to the bottom of the viewport, honoring the in-flight guard.
func (p *Pager) ShouldFetch(distanceToBottom float64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return distanceToBottom < FetchThreshold && p.hasMore && !p.fetching
}

// Rows returns the current row list. The slice is shared; callers treat
// it as read-only and key caches on Version.
func (p *Pager) Rows() []api.Experiment {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rows
}

// RowIDs returns the ids of all loaded rows in display order.
func (p *Pager) RowIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, len(p.rows))
	for i, row := range p.rows {
		ids[i] = row.ID
	}
	return ids
}

// Ranges returns the dataset-wide annotation ranges fetched alongside
// the first page, or nil when unavailable.
func (p *Pager) Ranges() map[string]api.AnnotationRange {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ranges
}

// Version increments whenever the row list changes identity. Renderer
// caches key on it instead of re-deriving row content per frame.
func (p *Pager) Version() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.version
}

// HasMore reports whether the backend may have further pages.
func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// IsFetching reports whether a fetch is in flight.
func (p *Pager) IsFetching() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fetching
}
