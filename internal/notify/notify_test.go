package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_Subscribe_Unsubscribe(t *testing.T) {
	h := NewHub()

	ch := h.Subscribe()
	require.NotNil(t, ch)

	h.mu.RLock()
	assert.Len(t, h.listeners, 1)
	h.mu.RUnlock()

	h.Unsubscribe(ch)

	h.mu.RLock()
	assert.Len(t, h.listeners, 0)
	h.mu.RUnlock()
}

func TestHub_Broadcast_CarriesRegion(t *testing.T) {
	h := NewHub()

	ch1 := h.Subscribe()
	ch2 := h.Subscribe()
	defer h.Unsubscribe(ch1)
	defer h.Unsubscribe(ch2)

	h.Broadcast(RegionSizing)

	for _, ch := range []chan Region{ch1, ch2} {
		select {
		case region := <-ch:
			assert.Equal(t, RegionSizing, region)
		case <-time.After(100 * time.Millisecond):
			t.Error("listener did not receive broadcast")
		}
	}
}

func TestHub_Broadcast_NonBlocking(t *testing.T) {
	h := NewHub()

	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	// Fill the channel buffer.
	for i := 0; i < cap(ch); i++ {
		ch <- RegionRows
	}

	done := make(chan bool)
	go func() {
		h.Broadcast(RegionRows)
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Error("Broadcast blocked on full channel")
	}
}

func TestHub_NilReceiverBroadcast(t *testing.T) {
	var h *Hub
	assert.NotPanics(t, func() { h.Broadcast(RegionRows) })
}

func TestHub_Concurrent(t *testing.T) {
	h := NewHub()

	var wg sync.WaitGroup
	const numGoroutines = 10

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := h.Subscribe()
			h.Broadcast(RegionSelection)
			h.Unsubscribe(ch)
		}()
	}

	wg.Wait()

	h.mu.RLock()
	assert.Len(t, h.listeners, 0)
	h.mu.RUnlock()
}

func TestRegion_String(t *testing.T) {
	assert.Equal(t, "rows", RegionRows.String())
	assert.Equal(t, "sizing", RegionSizing.String())
	assert.Equal(t, "selection", RegionSelection.String())
	assert.Equal(t, "action", RegionAction.String())
	assert.Equal(t, "unknown", Region(99).String())
}
