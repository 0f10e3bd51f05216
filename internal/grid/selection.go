package grid

import (
	"sync"

	"github.com/evalboard/evalboard/internal/notify"
)

// Selection owns the set of selected row ids. Insertion order is
// preserved because the compare action uses the earliest-selected row as
// its baseline. The set is always kept a subset of the loaded rows via
// Prune.
type Selection struct {
	mu      sync.Mutex
	hub     *notify.Hub
	order   []string
	member  map[string]struct{}
	version uint64
}

// NewSelection creates an empty selection. hub may be nil.
func NewSelection(hub *notify.Hub) *Selection {
	return &Selection{
		hub:    hub,
		member: make(map[string]struct{}),
	}
}

// Toggle flips membership for one row id.
func (s *Selection) Toggle(id string) {
	s.mu.Lock()
	if _, ok := s.member[id]; ok {
		s.removeLocked(id)
	} else {
		s.member[id] = struct{}{}
		s.order = append(s.order, id)
	}
	s.version++
	s.mu.Unlock()
	s.hub.Broadcast(notify.RegionSelection)
}

// ToggleAll empties the selection when every loaded id is already
// selected, and selects all loaded ids otherwise. A partial selection
// therefore completes to the full set; partial states never arise from
// this action, only from individual toggles.
func (s *Selection) ToggleAll(loadedIDs []string) {
	s.mu.Lock()
	full := len(loadedIDs) > 0
	for _, id := range loadedIDs {
		if _, ok := s.member[id]; !ok {
			full = false
			break
		}
	}

	if full {
		s.order = nil
		s.member = make(map[string]struct{})
	} else {
		for _, id := range loadedIDs {
			if _, ok := s.member[id]; !ok {
				s.member[id] = struct{}{}
				s.order = append(s.order, id)
			}
		}
	}
	s.version++
	s.mu.Unlock()
	s.hub.Broadcast(notify.RegionSelection)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	if len(s.order) == 0 {
		s.mu.Unlock()
		return
	}
	s.order = nil
	s.member = make(map[string]struct{})
	s.version++
	s.mu.Unlock()
	s.hub.Broadcast(notify.RegionSelection)
}

// Prune drops every selected id that is no longer loaded, keeping the
// selection a subset of the row list after deletes and resets.
func (s *Selection) Prune(loadedIDs []string) {
	loaded := make(map[string]struct{}, len(loadedIDs))
	for _, id := range loadedIDs {
		loaded[id] = struct{}{}
	}

	s.mu.Lock()
	kept := s.order[:0]
	changed := false
	for _, id := range s.order {
		if _, ok := loaded[id]; ok {
			kept = append(kept, id)
		} else {
			delete(s.member, id)
			changed = true
		}
	}
	s.order = kept
	if !changed {
		s.mu.Unlock()
		return
	}
	s.version++
	s.mu.Unlock()
	s.hub.Broadcast(notify.RegionSelection)
}

// Has reports whether a row id is selected.
func (s *Selection) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.member[id]
	return ok
}

// Count returns the number of selected rows.
func (s *Selection) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Selected returns the selected ids in selection order.
func (s *Selection) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// CompareOrder returns the selected ids ordered for the compare action:
// the earliest-selected row first (the baseline), the rest in selection
// order.
func (s *Selection) CompareOrder() []string {
	return s.Selected()
}

// IsIndeterminate reports whether the selection is non-empty but not
// equal to the full loaded set.
func (s *Selection) IsIndeterminate(loadedIDs []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.order) == 0 {
		return false
	}
	if len(s.order) != len(loadedIDs) {
		return true
	}
	for _, id := range loadedIDs {
		if _, ok := s.member[id]; !ok {
			return true
		}
	}
	return false
}

// Version increments on every selection change.
func (s *Selection) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// removeLocked drops one id. Caller holds s.mu.
func (s *Selection) removeLocked(id string) {
	delete(s.member, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
