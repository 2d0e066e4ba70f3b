package app

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Follow key.Binding
	Clear  key.Binding
	Quit   key.Binding
}

var GlobalKeys = KeyMap{
	Follow: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "follow"),
	),
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
