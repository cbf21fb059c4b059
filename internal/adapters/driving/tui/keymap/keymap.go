// Package keymap holds the TUI key bindings, grouped by the mode they
// apply in.
package keymap

import "github.com/charmbracelet/bubbles/key"

// KeyMap is the full set of bindings.
//
// Trace and Open share the enter key: Trace applies while the input is
// focused, Open while an appearance is selected.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding

	Trace    key.Binding
	NewTrace key.Binding

	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Open   key.Binding
}

// DefaultKeyMap returns vim-flavoured defaults.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "keys")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "edit query")),
		Trace:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "trace")),
		NewTrace: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new trace")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Top:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "origin")),
		Bottom:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "actions")),
	}
}

// InputHelp lists the hints shown while typing a query.
func (k *KeyMap) InputHelp() []key.Binding {
	return []key.Binding{k.Trace, k.Quit, k.Help}
}

// ListHelp lists the hints shown while browsing appearances.
func (k *KeyMap) ListHelp() []key.Binding {
	return []key.Binding{k.Open, k.Up, k.Down, k.NewTrace, k.Back}
}

// FullHelp groups every binding for the help screen.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Trace, k.NewTrace, k.Back},
		{k.Up, k.Down, k.Top, k.Bottom, k.Open},
		{k.Help, k.Quit},
	}
}
