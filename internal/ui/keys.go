package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding

	// Clients
	NextClient  key.Binding
	PrevClient  key.Binding
	PickClient  key.Binding
	ClearClient key.Binding
	Retry       key.Binding

	// Panes
	Tab    key.Binding
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Books
	Toggle key.Binding
	Return key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),

		NextClient: key.NewBinding(
			key.WithKeys("]", "right"),
			key.WithHelp("]", "Next client"),
		),
		PrevClient: key.NewBinding(
			key.WithKeys("[", "left"),
			key.WithHelp("[", "Previous client"),
		),
		PickClient: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "Pick client"),
		),
		ClearClient: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "Clear client"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Retry failed load"),
		),

		Tab: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "Switch pane"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),

		Toggle: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Borrow / return"),
		),
		Return: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Return selected"),
		),
	}
}

// ShortHelp returns key bindings for the command bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevClient, k.NextClient, k.Tab, k.Toggle, k.Help, k.Quit}
}

// FullHelp returns key bindings grouped for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevClient, k.NextClient, k.PickClient, k.ClearClient, k.Retry},
		{k.Tab, k.Up, k.Down, k.Top, k.Bottom},
		{k.Toggle, k.Return},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
