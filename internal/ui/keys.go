package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the viewer's keyboard bindings.
type keyMap struct {
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	ToggleLog  key.Binding
	Refresh    key.Binding

	// The leading button reveals earlier images, the trailing one later images.
	Leading  key.Binding
	Trailing key.Binding

	SelectNth    key.Binding
	SelectCenter key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		ToggleLog: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Toggle log pane"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Resync with server"),
		),
		Leading: key.NewBinding(
			key.WithKeys("left", "up", "h", "k"),
			key.WithHelp("←/h", "Scroll back"),
		),
		Trailing: key.NewBinding(
			key.WithKeys("right", "down", "l", "j"),
			key.WithHelp("→/l", "Scroll forward"),
		),
		SelectNth: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "Select visible image"),
		),
		SelectCenter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Select centre image"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Leading, k.Trailing, k.SelectNth, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Leading, k.Trailing},
		{k.SelectNth, k.SelectCenter},
		{k.ToggleLog, k.Refresh, k.CycleTheme},
		{k.Help, k.Quit},
	}
}
