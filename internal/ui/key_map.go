package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the editor.
type keyMap struct {
	left      key.Binding
	right     key.Binding
	home      key.Binding
	end       key.Binding
	extendL   key.Binding
	extendR   key.Binding
	enter     key.Binding
	tab       key.Binding
	untab     key.Binding
	backspace key.Binding
	check     key.Binding
	up        key.Binding
	down      key.Binding
	back      key.Binding
	playPause key.Binding
	next      key.Binding
	prev      key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		left:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "left")),
		right:     key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "right")),
		home:      key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "start")),
		end:       key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "end")),
		extendL:   key.NewBinding(key.WithKeys("shift+left"), key.WithHelp("⇧←", "select")),
		extendR:   key.NewBinding(key.WithKeys("shift+right"), key.WithHelp("⇧→", "select")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "newline")),
		tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "indent")),
		untab:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("⇧tab", "outdent")),
		backspace: key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "delete")),
		check:     key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "check")),
		up:        key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		down:      key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		playPause: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "play/pause")),
		next:      key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "next")),
		prev:      key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "previous")),
		quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.extendR, k.check, k.playPause, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.left, k.right, k.home, k.end},
		{k.extendL, k.extendR, k.check},
		{k.enter, k.tab, k.untab, k.backspace},
		{k.playPause, k.next, k.prev, k.quit},
	}
}
