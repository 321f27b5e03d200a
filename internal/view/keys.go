package view

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Prev        key.Binding
	Next        key.Binding
	First       key.Binding
	Last        key.Binding
	Copy        key.Binding
	Pin         key.Binding
	Delete      key.Binding
	DeleteAll   key.Binding
	UnpinAll    key.Binding
	Language    key.Binding
	Open        key.Binding
	Reload      key.Binding
	Settings    key.Binding
	Help        key.Binding
	Quit        key.Binding
}

var keys = keyMap{
	Prev:      key.NewBinding(key.WithKeys("left", "up", "k"), key.WithHelp("←/k", "previous")),
	Next:      key.NewBinding(key.WithKeys("right", "down", "j"), key.WithHelp("→/j", "next")),
	First:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first")),
	Last:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last")),
	Copy:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "copy")),
	Pin:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pin")),
	Delete:    key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
	DeleteAll: key.NewBinding(key.WithKeys("D"), key.WithHelp("D D", "delete all")),
	UnpinAll:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unpin all")),
	Language:  key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "language")),
	Open:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open link")),
	Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Settings:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Copy, k.Pin, k.Delete, k.Open, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.First, k.Last},
		{k.Copy, k.Open, k.Language, k.Settings},
		{k.Pin, k.UnpinAll, k.Delete, k.DeleteAll},
		{k.Reload, k.Help, k.Quit},
	}
}
