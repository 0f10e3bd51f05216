// Package notify provides a region-scoped broadcast mechanism for grid
// updates. Each controller broadcasts the region it changed; the
// renderer re-renders only that region and leaves the other caches
// untouched.
package notify

import "sync"

// Region identifies which part of the grid a change affects.
type Region int

const (
	// RegionRows covers page growth and resets.
	RegionRows Region = iota
	// RegionSizing covers column width changes.
	RegionSizing
	// RegionSelection covers selected-row changes.
	RegionSelection
	// RegionAction covers bulk-action state changes.
	RegionAction
)

// String returns the region name for logging.
func (r Region) String() string {
	switch r {
	case RegionRows:
		return "rows"
	case RegionSizing:
		return "sizing"
	case RegionSelection:
		return "selection"
	case RegionAction:
		return "action"
	default:
		return "unknown"
	}
}

// Hub broadcasts region changes to all subscribed listeners.
type Hub struct {
	mu        sync.RWMutex
	listeners map[chan Region]struct{}
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		listeners: make(map[chan Region]struct{}),
	}
}

// Subscribe returns a channel that receives changed regions.
// The caller must call Unsubscribe when done to prevent leaks.
func (h *Hub) Subscribe() chan Region {
	ch := make(chan Region, 16)
	h.mu.Lock()
	h.listeners[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (h *Hub) Unsubscribe(ch chan Region) {
	h.mu.Lock()
	delete(h.listeners, ch)
	h.mu.Unlock()
	close(ch)
}

// Broadcast sends a region change to all listeners.
// Non-blocking: if a listener's channel is full, the ping is skipped
// (the listener re-renders everything on its next full pass anyway).
func (h *Hub) Broadcast(region Region) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.listeners {
		select {
		case ch <- region:
		default:
		}
	}
}
