package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Edit    key.Binding
	Clear   key.Binding
	Command key.Binding
	Save    key.Binding
	Quit    key.Binding

	// editing
	Commit  key.Binding
	Cancel  key.Binding
	Newline key.Binding
	Delete  key.Binding

	// sheet picker
	NewSheet key.Binding
	Back     key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
	Edit:    key.NewBinding(key.WithKeys("enter", "i"), key.WithHelp("enter", "edit")),
	Clear:   key.NewBinding(key.WithKeys("delete", "backspace", "x"), key.WithHelp("del", "clear")),
	Command: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
	Save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),

	Commit:  key.NewBinding(key.WithKeys("tab", "esc", "enter"), key.WithHelp("tab/esc", "done")),
	Cancel:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "discard")),
	Newline: key.NewBinding(key.WithKeys("alt+enter"), key.WithHelp("alt+enter", "line break")),
	Delete:  key.NewBinding(key.WithKeys("backspace"), key.WithHelp("backspace", "delete")),

	NewSheet: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new sheet")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
}
