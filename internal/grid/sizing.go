package grid

import (
	"sync"

	"github.com/evalboard/evalboard/internal/notify"
)

// MinColumnWidth is the smallest width a column can be dragged to.
const MinColumnWidth = 4

// Width-map key prefixes. The renderer looks widths up in one flat map
// for both the header cell and the body column of each id.
const (
	HeaderWidthPrefix = "header."
	ColumnWidthPrefix = "col."
)

// Sizing owns per-column widths and the transient active-resize marker.
// The flat width map is recomputed once per sizing-state change and its
// cost is O(columns), never O(rows). Sizing state persists for the life
// of the grid instance and is not tied to pager resets.
type Sizing struct {
	mu      sync.Mutex
	hub     *notify.Hub
	order   []string
	widths  map[string]int
	active  string
	flat    map[string]int
	version uint64
}

// NewSizing seeds the engine with the given columns' default widths.
func NewSizing(cols []Column, hub *notify.Hub) *Sizing {
	s := &Sizing{
		hub:    hub,
		widths: make(map[string]int, len(cols)),
	}
	for _, col := range cols {
		s.order = append(s.order, col.ID)
		s.widths[col.ID] = col.Width
	}
	s.recompute()
	return s
}

// AddColumn registers a column discovered after construction (annotation
// columns arrive with the first page). Existing widths are kept.
func (s *Sizing) AddColumn(col Column) {
	s.mu.Lock()
	if _, ok := s.widths[col.ID]; ok {
		s.mu.Unlock()
		return
	}
	s.order = append(s.order, col.ID)
	s.widths[col.ID] = col.Width
	s.recompute()
	s.mu.Unlock()
	s.hub.Broadcast(notify.RegionSizing)
}

// StartResize marks a resize drag on the given column.
func (s *Sizing) StartResize(id string) {
	s.mu.Lock()
	if _, ok := s.widths[id]; !ok {
		s.mu.Unlock()
		return
	}
	s.active = id
	s.recompute()
	s.mu.Unlock()
	s.hub.Broadcast(notify.RegionSizing)
}

// ResizeBy adjusts the active column by delta cells, clamped to
// MinColumnWidth. No-op when no resize is active.
func (s *Sizing) ResizeBy(delta int) {
	s.mu.Lock()
	if s.active == "" {
		s.mu.Unlock()
		return
	}
	w := s.widths[s.active] + delta
	if w < MinColumnWidth {
		w = MinColumnWidth
	}
	if w == s.widths[s.active] {
		s.mu.Unlock()
		return
	}
	s.widths[s.active] = w
	s.recompute()
	s.mu.Unlock()
	s.hub.Broadcast(notify.RegionSizing)
}

// EndResize clears the active-resize marker, persisting the final
// width. The renderer switches back to its normal row path afterwards.
func (s *Sizing) EndResize() {
	s.mu.Lock()
	if s.active == "" {
		s.mu.Unlock()
		return
	}
	s.active = ""
	s.recompute()
	s.mu.Unlock()
	s.hub.Broadcast(notify.RegionSizing)
}

// SetWidth sets a column width directly (restored layouts).
func (s *Sizing) SetWidth(id string, width int) {
	s.mu.Lock()
	if _, ok := s.widths[id]; !ok {
		s.mu.Unlock()
		return
	}
	if width < MinColumnWidth {
		width = MinColumnWidth
	}
	if width == s.widths[id] {
		s.mu.Unlock()
		return
	}
	s.widths[id] = width
	s.recompute()
	s.mu.Unlock()
	s.hub.Broadcast(notify.RegionSizing)
}

// Width returns the current width for a column id.
func (s *Sizing) Width(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.widths[id]
}

// WidthMap returns the flat {header.<id>, col.<id>} → width map. The map
// is rebuilt only on sizing-state changes; callers must not mutate it.
func (s *Sizing) WidthMap() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flat
}

// Active returns the id of the column being resized, or "".
func (s *Sizing) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Resizing reports whether a drag is in progress. While true, the
// renderer serves cached row bodies and re-renders only the header.
func (s *Sizing) Resizing() bool {
	return s.Active() != ""
}

// Version increments on every sizing-state change.
func (s *Sizing) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// TotalWidth returns the summed width of all columns.
func (s *Sizing) TotalWidth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, id := range s.order {
		total += s.widths[id]
	}
	return total
}

// recompute rebuilds the flat width map. Caller holds s.mu.
func (s *Sizing) recompute() {
	flat := make(map[string]int, 2*len(s.order))
	for _, id := range s.order {
		w := s.widths[id]
		flat[HeaderWidthPrefix+id] = w
		flat[ColumnWidthPrefix+id] = w
	}
	s.flat = flat
	s.version++
}
