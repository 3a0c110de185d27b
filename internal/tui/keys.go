package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings shared by the ticket, catalog and pending
// views. Vim-style navigation (j/k) alongside standard arrow keys.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	// Tab switching.
	TabTickets key.Binding
	TabCatalog key.Binding
	TabPending key.Binding

	// Pagination (remote list only).
	NextPage key.Binding
	PrevPage key.Binding

	// Sort: column selection plus the header-click toggle.
	ColumnLeft  key.Binding
	ColumnRight key.Binding
	SortToggle  key.Binding

	// Filters.
	CycleStatus   key.Binding
	CycleUrgency  key.Binding
	CycleAssignee key.Binding
	ToggleClosed  key.Binding
	ToggleMine    key.Binding

	// Actions.
	Open    key.Binding
	New     key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "subir"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "bajar"),
	),
	TabTickets: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "tickets"),
	),
	TabCatalog: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "catálogo"),
	),
	TabPending: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "pendientes"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("n", "right"),
		key.WithHelp("n", "página sig."),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("p", "left"),
		key.WithHelp("p", "página ant."),
	),
	ColumnLeft: key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("h", "columna ant."),
	),
	ColumnRight: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "columna sig."),
	),
	SortToggle: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "ordenar"),
	),
	CycleStatus: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "estado"),
	),
	CycleUrgency: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "urgencia"),
	),
	CycleAssignee: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "técnico"),
	),
	ToggleClosed: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "cerrados"),
	),
	ToggleMine: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "míos"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "abrir"),
	),
	New: key.NewBinding(
		key.WithKeys("N"),
		key.WithHelp("N", "nuevo"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "recargar"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "salir"),
	),
}
