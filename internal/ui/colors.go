package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/focus/internal/notes"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// Palette is a simple stylesheet built with named [lipgloss.Style] fields.
type Palette struct {
	title    lipgloss.Style
	ok       lipgloss.Style
	err      lipgloss.Style
	warn     lipgloss.Style
	help     lipgloss.Style
	marker   lipgloss.Style
	headings [3]lipgloss.Style
	selected lipgloss.Style
	cursor   lipgloss.Style
	menu     lipgloss.Style
	bar      lipgloss.Style
}

// NewPalette builds the stylesheet from title, success, error, warning and
// muted colors.
func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:  NewBold(t).MarginBottom(1),
		ok:     NewBold(s),
		err:    NewBold(e),
		warn:   NewStyle(w),
		help:   NewEm(h),
		marker: NewStyle(h),
		headings: [3]lipgloss.Style{
			NewBold(t).Underline(true),
			NewBold(t),
			lipgloss.NewStyle().Bold(true),
		},
		selected: lipgloss.NewStyle().Reverse(true).Foreground(lipgloss.Color(t)),
		cursor:   lipgloss.NewStyle().Reverse(true),
		menu:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(t)).Padding(0, 1),
		bar:      NewStyle(s).PaddingLeft(1),
	}
}

// heading returns the style for heading level 1..3.
func (p *Palette) heading(level int) lipgloss.Style {
	return p.headings[min(max(level, 1), 3)-1]
}

// presented applies a checkbox label presentation to base.
func (p *Palette) presented(base lipgloss.Style, pr notes.Presentation) lipgloss.Style {
	if pr.Strike {
		base = base.Strikethrough(true)
	}
	if pr.Opacity < 1 {
		base = base.Faint(true)
	}
	return base
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
