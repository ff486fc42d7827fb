package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/focus/internal/notes"
)

var (
	_ list.Item       = formatItem{}
	_ notes.MenuHost = (*Menu)(nil)
)

// formatItem wraps [notes.Descriptor] to implement [list.Item].
type formatItem struct {
	format notes.Descriptor
}

func (i formatItem) FilterValue() string { return i.format.Label }
func (i formatItem) Title() string       { return i.format.Icon + "  " + i.format.Label }
func (i formatItem) Description() string { return i.format.Shortcut }

// Menu is the format menu. It implements [notes.MenuHost]: the session shows
// it next to a selection and hides it after a format is applied.
type Menu struct {
	list      list.Model
	visible   bool
	placement notes.Placement
}

// NewMenu lists every format in menu order.
func NewMenu() *Menu {
	formats := notes.Formats()
	items := make([]list.Item, len(formats))
	for i, f := range formats {
		items[i] = formatItem{format: f}
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(items, delegate, menuWidth-4, len(items)+4)
	l.Title = "Format"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(false)
	return &Menu{list: l}
}

func (m *Menu) ShowAt(p notes.Placement) {
	m.visible = true
	m.placement = p
}

func (m *Menu) Hide() {
	m.visible = false
	m.list.Select(0)
}

// Visible reports whether the menu is shown.
func (m *Menu) Visible() bool { return m.visible }

// Placement returns where the menu was last shown.
func (m *Menu) Placement() notes.Placement { return m.placement }

// Selected returns the highlighted format.
func (m *Menu) Selected() (notes.Kind, bool) {
	item, ok := m.list.SelectedItem().(formatItem)
	if !ok {
		return 0, false
	}
	return item.format.Kind, true
}

func (m *Menu) CursorUp()   { m.list.CursorUp() }
func (m *Menu) CursorDown() { m.list.CursorDown() }

func (m *Menu) View() string {
	return styles.menu.Render(m.list.View())
}
