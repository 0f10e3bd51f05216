package grid

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/evalboard/evalboard/internal/api"
	"github.com/evalboard/evalboard/internal/notify"
)

// DeletePhase is the bulk-delete state machine:
// Idle → Confirming → InFlight → Idle. Success returns to Idle with an
// empty selection; failure returns to Idle with the selection preserved
// so the user can retry without re-selecting.
type DeletePhase int

const (
	// DeleteIdle means no delete is pending.
	DeleteIdle DeletePhase = iota
	// DeleteConfirming means the confirmation dialog is open.
	DeleteConfirming
	// DeleteInFlight means the destructive mutation is running.
	DeleteInFlight
)

// NoticeKind distinguishes success from error notifications.
type NoticeKind int

const (
	// NoticeNone means no pending notification.
	NoticeNone NoticeKind = iota
	// NoticeSuccess is a success toast.
	NoticeSuccess
	// NoticeError is an error toast.
	NoticeError
)

// Notice is a pending toast for the notification channel.
type Notice struct {
	Kind NoticeKind
	Text string
}

// genericDeleteError is shown when no human-readable message can be
// extracted from the failure payload.
const genericDeleteError = "Failed to delete experiments. Please try again."

// Actions is the bulk-action toolbar controller. It reads the selection,
// issues delete and compare commands, and owns its own in-flight and
// error state. At most one delete may be in flight per instance.
type Actions struct {
	mu        sync.Mutex
	client    api.Client
	selection *Selection
	pager     *Pager
	hub       *notify.Hub
	phase     DeletePhase
	notice    Notice
	version   uint64
}

// NewActions wires the toolbar to its collaborators. hub may be nil.
func NewActions(client api.Client, selection *Selection, pager *Pager, hub *notify.Hub) *Actions {
	return &Actions{
		client:    client,
		selection: selection,
		pager:     pager,
		hub:       hub,
	}
}

// Visible reports whether the toolbar should be shown: iff the
// selection is non-empty.
func (a *Actions) Visible() bool {
	return a.selection.Count() > 0
}

// ComparePath builds the comparison view path: an ordered experimentId
// query-parameter list with the earliest-selected row (the baseline)
// first. Returns "" when fewer than two rows are selected.
func (a *Actions) ComparePath() string {
	ids := a.selection.CompareOrder()
	if len(ids) < 2 {
		return ""
	}
	params := make([]string, len(ids))
	for i, id := range ids {
		params[i] = "experimentId=" + url.QueryEscape(id)
	}
	return "/compare?" + strings.Join(params, "&")
}

// RequestDelete opens the confirmation step. No-op unless the toolbar
// is idle and the selection is non-empty: deletion is irreversible and
// always confirmed first.
func (a *Actions) RequestDelete() {
	a.mu.Lock()
	if a.phase != DeleteIdle || a.selection.Count() == 0 {
		a.mu.Unlock()
		return
	}
	a.phase = DeleteConfirming
	a.version++
	a.mu.Unlock()
	a.hub.Broadcast(notify.RegionAction)
}

// CancelDelete closes the confirmation dialog without deleting.
func (a *Actions) CancelDelete() {
	a.mu.Lock()
	if a.phase != DeleteConfirming {
		a.mu.Unlock()
		return
	}
	a.phase = DeleteIdle
	a.version++
	a.mu.Unlock()
	a.hub.Broadcast(notify.RegionAction)
}

// ConfirmDelete fires the destructive mutation for the current
// selection. On success it notifies, clears the selection, and resets
// the pager so stale rows disappear; pageSize drives the implicit
// refetch. On failure it surfaces the first extracted message (or a
// generic fallback), preserves the selection, and closes the dialog.
func (a *Actions) ConfirmDelete(ctx context.Context, pageSize int) error {
	a.mu.Lock()
	if a.phase != DeleteConfirming {
		a.mu.Unlock()
		return nil
	}
	a.phase = DeleteInFlight
	a.version++
	ids := a.selection.Selected()
	a.mu.Unlock()
	a.hub.Broadcast(notify.RegionAction)

	err := a.client.DeleteExperiments(ctx, ids)

	a.mu.Lock()
	a.phase = DeleteIdle
	if err != nil {
		msg := api.FirstErrorMessage(err)
		if msg == "" {
			msg = genericDeleteError
		}
		a.notice = Notice{Kind: NoticeError, Text: msg}
		a.version++
		a.mu.Unlock()
		a.hub.Broadcast(notify.RegionAction)
		return fmt.Errorf("bulk delete failed: %w", err)
	}
	a.version++
	a.mu.Unlock()

	a.selection.Clear()
	refreshErr := a.pager.Refresh(ctx, pageSize)

	a.mu.Lock()
	if refreshErr != nil {
		// The delete succeeded; the reload did not. Route the fetch
		// failure to the notification channel so the user retries.
		a.notice = Notice{Kind: NoticeError, Text: deletedMessage(len(ids)) + ", but reloading failed. Press r to retry."}
	} else {
		a.notice = Notice{Kind: NoticeSuccess, Text: deletedMessage(len(ids))}
	}
	a.version++
	a.mu.Unlock()

	a.hub.Broadcast(notify.RegionAction)
	if refreshErr != nil {
		return fmt.Errorf("reload after delete failed: %w", refreshErr)
	}
	return nil
}

// Phase returns the current delete phase.
func (a *Actions) Phase() DeletePhase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

// Notice returns the pending toast, if any.
func (a *Actions) Notice() Notice {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.notice
}

// ClearNotice consumes the pending toast.
func (a *Actions) ClearNotice() {
	a.mu.Lock()
	a.notice = Notice{}
	a.mu.Unlock()
}

// Version increments on every toolbar state change.
func (a *Actions) Version() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.version
}

// deletedMessage formats the success toast with the count pluralized.
func deletedMessage(n int) string {
	if n == 1 {
		return "1 experiment has been deleted"
	}
	return fmt.Sprintf("%d experiments have been deleted", n)
}
