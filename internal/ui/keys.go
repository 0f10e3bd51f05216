package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap binds the dashboard actions to keys. The help text drives the
// footer line.
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Select    key.Binding
	SelectAll key.Binding
	Compare   key.Binding
	Delete    key.Binding
	Refresh   key.Binding
	Export    key.Binding
	Traces    key.Binding
	PrevCol   key.Binding
	NextCol   key.Binding
	Narrow    key.Binding
	Widen     key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "move")),
		Down:      key.NewBinding(key.WithKeys("down", "j")),
		PageUp:    key.NewBinding(key.WithKeys("pgup")),
		PageDown:  key.NewBinding(key.WithKeys("pgdown")),
		Select:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		SelectAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all")),
		Compare:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "compare")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Export:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "export")),
		Traces:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "traces")),
		PrevCol:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "column")),
		NextCol:   key.NewBinding(key.WithKeys("right", "l")),
		Narrow:    key.NewBinding(key.WithKeys("<"), key.WithHelp("</>", "width")),
		Widen:     key.NewBinding(key.WithKeys(">")),
		Confirm:   key.NewBinding(key.WithKeys("y", "Y")),
		Cancel:    key.NewBinding(key.WithKeys("n", "N", "esc")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// helpEntries lists the bindings shown in the footer, in order.
func (k keyMap) helpEntries() []key.Binding {
	return []key.Binding{
		k.Up, k.Select, k.SelectAll, k.Compare, k.Delete, k.Refresh,
		k.Export, k.Traces, k.Narrow, k.PrevCol, k.Quit,
	}
}
