// Package ui renders the experiments grid as a terminal dashboard. The
// grid controllers own all state; this package subscribes to their
// change regions and re-renders only what changed.
package ui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evalboard/evalboard/internal/api"
	"github.com/evalboard/evalboard/internal/grid"
	"github.com/evalboard/evalboard/internal/notify"
)

// chromeLines is the number of non-body lines in the layout: title,
// toolbar, header, and footer, plus a spacer.
const chromeLines = 5

// Navigator opens an external URL, normally in the user's browser.
type Navigator func(url string)

// Options configures the dashboard model.
type Options struct {
	Client    api.Client
	ServerURL string
	PageSize  int
	Sort      api.Sort
	NoColor   bool
	Navigate  Navigator
	Logger    *slog.Logger
}

// Model is the Bubble Tea model for the experiments grid.
type Model struct {
	client    api.Client
	hub       *notify.Hub
	changes   chan notify.Region
	pager     *grid.Pager
	sizing    *grid.Sizing
	selection *grid.Selection
	actions   *grid.Actions
	columns   []grid.Column
	body      *bodyRenderer
	keys      keyMap
	navigate  Navigator
	logger    *slog.Logger
	serverURL string
	sort      api.Sort
	pageSize  int
	noColor   bool

	width  int
	height int
	cursor int
	scroll int
	active int // index into columns

	status   string
	quitting bool
}

// NewModel constructs the dashboard model and wires the controllers
// onto a shared notification hub.
func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	navigate := opts.Navigate
	if navigate == nil {
		navigate = func(string) {}
	}
	if opts.NoColor {
		DisableColors()
	}

	hub := notify.NewHub()
	pager := grid.NewPager(opts.Client, opts.Sort, hub)
	selection := grid.NewSelection(hub)
	columns := grid.DefaultColumns()
	sizing := grid.NewSizing(columns, hub)
	actions := grid.NewActions(opts.Client, selection, pager, hub)

	return Model{
		client:    opts.Client,
		hub:       hub,
		changes:   hub.Subscribe(),
		pager:     pager,
		sizing:    sizing,
		selection: selection,
		actions:   actions,
		columns:   columns,
		body:      &bodyRenderer{},
		keys:      defaultKeyMap(),
		navigate:  navigate,
		logger:    logger,
		serverURL: opts.ServerURL,
		sort:      opts.Sort,
		pageSize:  pageSize,
		noColor:   opts.NoColor,
		height:    24,
		width:     80,
	}
}

// changeMsg carries a region notification from the controllers.
type changeMsg struct {
	region notify.Region
}

// fetchedMsg reports a completed page fetch.
type fetchedMsg struct {
	err error
}

// deletedMsg reports a completed bulk delete.
type deletedMsg struct {
	err error
}

// Init fetches the first page and starts listening for changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), waitForChange(m.changes))
}

// Update consumes key presses, change notifications, and async results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.body.invalidate()
		return m, nil

	case changeMsg:
		if typed.region == notify.RegionRows {
			m.syncColumns()
			m.selection.Prune(m.pager.RowIDs())
			m.clampCursor()
		}
		return m, tea.Batch(waitForChange(m.changes), m.maybeFetch())

	case fetchedMsg:
		if typed.err != nil {
			m.status = "Failed to load experiments: " + firstLine(typed.err.Error())
			m.logger.Error("page fetch failed", "error", typed.err)
		} else {
			m.status = ""
		}
		return m, nil

	case deletedMsg:
		if typed.err != nil {
			m.logger.Error("bulk delete failed", "error", typed.err)
		}
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(typed)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A drag in progress ends on any key that is not another drag step.
	if m.sizing.Resizing() && !key.Matches(msg, m.keys.Narrow, m.keys.Widen) {
		m.sizing.EndResize()
	}

	// The confirmation prompt captures y/n first.
	if m.actions.Phase() == grid.DeleteConfirming {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			return m, m.confirmDeleteCmd()
		case key.Matches(msg, m.keys.Cancel):
			m.actions.CancelDelete()
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.pager.Close()
		m.hub.Unsubscribe(m.changes)
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, m.maybeFetch()
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, m.maybeFetch()
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.visibleRows())
		return m, m.maybeFetch()
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.visibleRows())
		return m, m.maybeFetch()

	case key.Matches(msg, m.keys.Select):
		if id, ok := m.focusedID(); ok {
			m.selection.Toggle(id)
		}
		return m, nil
	case key.Matches(msg, m.keys.SelectAll):
		m.selection.ToggleAll(m.pager.RowIDs())
		return m, nil

	case key.Matches(msg, m.keys.Compare):
		if path := m.actions.ComparePath(); path != "" {
			m.navigate(strings.TrimSuffix(m.serverURL, "/") + path)
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		m.actions.RequestDelete()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.actions.ClearNotice()
		return m, m.refreshCmd()

	case key.Matches(msg, m.keys.Export):
		if id, ok := m.focusedID(); ok {
			m.navigate(m.client.ExportURL(id))
		}
		return m, nil
	case key.Matches(msg, m.keys.Traces):
		if exp, ok := m.focusedRow(); ok && exp.ProjectID != nil {
			m.navigate(m.client.TracesURL(*exp.ProjectID))
		}
		return m, nil

	case key.Matches(msg, m.keys.PrevCol):
		if m.active > 0 {
			m.active--
		}
		return m, nil
	case key.Matches(msg, m.keys.NextCol):
		if m.active < len(m.columns)-1 {
			m.active++
		}
		return m, nil

	case key.Matches(msg, m.keys.Narrow):
		m.startResize()
		m.sizing.ResizeBy(-1)
		return m, nil
	case key.Matches(msg, m.keys.Widen):
		m.startResize()
		m.sizing.ResizeBy(1)
		return m, nil
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	title := m.renderTitle()
	toolbar := m.renderToolbar()
	header := renderHeader(m.sizing, m.columns, m.sort, m.columns[m.active].ID, m.noColor)
	body := m.body.render(m.pager, m.selection, m.sizing, m.columns,
		m.scroll, m.cursor, m.visibleRows(), time.Now(), m.noColor)
	footer := m.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, title, toolbar, header, body, footer)
}

func (m Model) renderTitle() string {
	line := "Experiments (" + fmtInt(len(m.pager.Rows())) + " loaded"
	if m.pager.HasMore() {
		line += ", more available"
	}
	line += ")"
	if m.pager.IsFetching() {
		line += " · loading..."
	}
	if m.status != "" {
		line += "  " + stylize(m.status, m.noColor, colorError)
	}
	return stylizeBold(line, m.noColor, colorHeader)
}

// renderToolbar shows the bulk-action bar when rows are selected, plus
// any pending confirmation or notice.
func (m Model) renderToolbar() string {
	if prompt := renderConfirm(m.selection, m.actions.Phase(), m.noColor); prompt != "" {
		return prompt
	}

	notice := m.actions.Notice()
	switch notice.Kind {
	case grid.NoticeSuccess:
		return stylize(notice.Text, m.noColor, colorSuccess)
	case grid.NoticeError:
		return stylize(notice.Text, m.noColor, colorError)
	}

	if !m.actions.Visible() {
		return stylize("no rows selected", m.noColor, colorMuted)
	}

	parts := []string{fmtInt(m.selection.Count()) + " selected"}
	if m.selection.Count() >= 2 {
		parts = append(parts, "[c] compare")
	}
	parts = append(parts, "[d] delete")
	if m.selection.IsIndeterminate(m.pager.RowIDs()) {
		parts = append(parts, "[a] select all")
	} else {
		parts = append(parts, "[a] clear")
	}
	return stylize(strings.Join(parts, " · "), m.noColor, colorSelected)
}

func (m Model) renderFooter() string {
	parts := make([]string, 0, len(m.keys.helpEntries()))
	for _, b := range m.keys.helpEntries() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return stylize(strings.Join(parts, " · "), m.noColor, colorMuted)
}

// waitForChange blocks until a controller broadcasts a region change.
func waitForChange(changes chan notify.Region) tea.Cmd {
	return func() tea.Msg {
		region, ok := <-changes
		if !ok {
			return nil
		}
		return changeMsg{region: region}
	}
}

// fetchCmd loads the next page in the background.
func (m Model) fetchCmd() tea.Cmd {
	pager, pageSize := m.pager, m.pageSize
	return func() tea.Msg {
		_, err := pager.FetchNext(context.Background(), pageSize)
		return fetchedMsg{err: err}
	}
}

// refreshCmd drops all loaded pages and reloads from the start.
func (m Model) refreshCmd() tea.Cmd {
	pager, pageSize := m.pager, m.pageSize
	return func() tea.Msg {
		return fetchedMsg{err: pager.Refresh(context.Background(), pageSize)}
	}
}

// confirmDeleteCmd runs the bulk delete in the background.
func (m Model) confirmDeleteCmd() tea.Cmd {
	actions, pageSize := m.actions, m.pageSize
	return func() tea.Msg {
		return deletedMsg{err: actions.ConfirmDelete(context.Background(), pageSize)}
	}
}

// maybeFetch triggers the next page load when the viewport is within
// the prefetch threshold of the loaded bottom.
func (m Model) maybeFetch() tea.Cmd {
	remaining := len(m.pager.Rows()) - (m.scroll + m.visibleRows())
	if remaining < 0 {
		remaining = 0
	}
	if m.pager.ShouldFetch(float64(remaining * grid.RowHeight)) {
		return m.fetchCmd()
	}
	return nil
}

// syncColumns appends annotation columns discovered since the last
// page. Existing columns keep their adjusted widths.
func (m *Model) syncColumns() {
	known := make(map[string]struct{}, len(m.columns))
	for _, col := range m.columns {
		known[col.ID] = struct{}{}
	}
	for _, col := range grid.AnnotationColumns(m.pager.Ranges()) {
		if _, ok := known[col.ID]; ok {
			continue
		}
		m.columns = append(m.columns, col)
		m.sizing.AddColumn(col)
	}
}

func (m *Model) startResize() {
	if !m.sizing.Resizing() {
		m.sizing.StartResize(m.columns[m.active].ID)
	}
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	max := len(m.pager.Rows()) - 1
	if m.cursor > max {
		m.cursor = max
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	visible := m.visibleRows()
	if m.cursor < m.scroll {
		m.scroll = m.cursor
	}
	if m.cursor >= m.scroll+visible {
		m.scroll = m.cursor - visible + 1
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}

func (m Model) visibleRows() int {
	visible := m.height - chromeLines
	if visible < 1 {
		visible = 1
	}
	return visible
}

func (m Model) focusedID() (string, bool) {
	rows := m.pager.Rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return "", false
	}
	return rows[m.cursor].ID, true
}

func (m Model) focusedRow() (api.Experiment, bool) {
	rows := m.pager.Rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return api.Experiment{}, false
	}
	return rows[m.cursor], true
}

// firstLine truncates multi-line error text for the title bar.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
