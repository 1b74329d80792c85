package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Switch    key.Binding
	Toggle    key.Binding
	Remove    key.Binding
	Add       key.Binding
	Filter    key.Binding
	PackAll   key.Binding
	UnpackAll key.Binding
	RemoveAll key.Binding
	Quit      key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
	ForceQuit key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Switch:    key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch pane")),
		Toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pack/unpack")),
		Remove:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove")),
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Filter:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		PackAll:   key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "pack all")),
		UnpackAll: key.NewBinding(key.WithKeys("U"), key.WithHelp("U", "unpack all")),
		RemoveAll: key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "remove all")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Confirm:   key.NewBinding(key.WithKeys("enter")),
		Cancel:    key.NewBinding(key.WithKeys("esc")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Remove, k.Filter, k.Switch, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Add, k.Toggle, k.Remove, k.Filter},
		{k.PackAll, k.UnpackAll, k.RemoveAll},
		{k.Switch, k.Quit},
	}
}
