package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for the TUI.
type KeyMap struct {
	// Popups
	Simple   key.Binding
	Success  key.Binding
	Warning  key.Binding
	Info     key.Binding
	Error    key.Binding
	Corner   key.Binding
	Sticky   key.Binding
	Position key.Binding

	// Actions
	DismissNewest key.Binding
	DismissOldest key.Binding
	Clear         key.Binding
	Copy          key.Binding

	// Global
	Quit key.Binding
	Help key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Simple, k.Success, k.Error, k.DismissNewest, k.Clear, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Simple, k.Success, k.Warning, k.Info, k.Error},
		{k.Corner, k.Position, k.Sticky},
		{k.DismissNewest, k.DismissOldest, k.Clear, k.Copy},
		{k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Simple: key.NewBinding(
			key.WithKeys("1", "n"),
			key.WithHelp("1/n", "simple"),
		),
		Success: key.NewBinding(
			key.WithKeys("2", "s"),
			key.WithHelp("2/s", "success"),
		),
		Warning: key.NewBinding(
			key.WithKeys("3", "w"),
			key.WithHelp("3/w", "warning"),
		),
		Info: key.NewBinding(
			key.WithKeys("4", "i"),
			key.WithHelp("4/i", "info"),
		),
		Error: key.NewBinding(
			key.WithKeys("5", "e"),
			key.WithHelp("5/e", "error"),
		),
		Corner: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "top-right toast"),
		),
		Position: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "cycle corner"),
		),
		Sticky: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "toggle permanent"),
		),
		DismissNewest: key.NewBinding(
			key.WithKeys("x", "backspace"),
			key.WithHelp("x", "dismiss newest"),
		),
		DismissOldest: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "dismiss oldest"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy as YAML"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}
