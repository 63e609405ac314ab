package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the deadline browser.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	Select key.Binding
	Back   key.Binding
	Quit   key.Binding

	Search key.Binding
	Help   key.Binding

	// Harvest now
	Refresh key.Binding

	// Filters
	ToggleAll     key.Binding
	CycleCategory key.Binding
	CriticalOnly  key.Binding

	// Duplicate review
	Duplicates key.Binding
	KeepFirst  key.Binding
	KeepSecond key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open detail"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search titles"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "harvest now"),
		),
		ToggleAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "show past deadlines"),
		),
		CycleCategory: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "cycle category"),
		),
		CriticalOnly: key.NewBinding(
			key.WithKeys("!"),
			key.WithHelp("!", "critical only"),
		),
		Duplicates: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "review duplicates"),
		),
		KeepFirst: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "keep first, drop second"),
		),
		KeepSecond: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "keep second, drop first"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Quit, k.Help, k.Search,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.Search, k.Help, k.Refresh},
		{k.ToggleAll, k.CycleCategory, k.CriticalOnly},
		{k.Duplicates, k.KeepFirst, k.KeepSecond},
	}
}
