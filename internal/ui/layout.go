package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/focus/internal/notes"
	"github.com/desertthunder/focus/internal/surface"
)

// cell is one rendered rune. off is its flattened text offset, or -1 for
// decoration such as list markers.
type cell struct {
	r     rune
	off   int
	style lipgloss.Style
}

type line []cell

// layout lays the surface out as terminal lines. Block nodes start their own
// line and carry a marker; breaks and newlines in text end the current line.
// A newline keeps a blank cell so the cursor can sit on it.
func layout(t *surface.Tree) []line {
	l := &layouter{tree: t, lines: []line{nil}}
	for _, child := range t.Children(t.Root()) {
		l.node(child, lipgloss.NewStyle())
	}
	return l.lines
}

type layouter struct {
	tree  *surface.Tree
	lines []line
	off   int
}

func (l *layouter) cur() *line { return &l.lines[len(l.lines)-1] }

func (l *layouter) newline() { l.lines = append(l.lines, nil) }

// block moves to a fresh line unless the current one is empty.
func (l *layouter) block() {
	if len(*l.cur()) > 0 {
		l.newline()
	}
}

func (l *layouter) decorate(s string, style lipgloss.Style) {
	for _, r := range s {
		*l.cur() = append(*l.cur(), cell{r: r, off: -1, style: style})
	}
}

func (l *layouter) node(id surface.NodeID, style lipgloss.Style) {
	n, ok := l.tree.Node(id)
	if !ok {
		return
	}

	switch n.Kind {
	case surface.KindText:
		for _, r := range n.Text {
			if r == '\n' {
				*l.cur() = append(*l.cur(), cell{r: ' ', off: l.off, style: style})
				l.newline()
			} else {
				*l.cur() = append(*l.cur(), cell{r: r, off: l.off, style: style})
			}
			l.off++
		}
		return
	case surface.KindBreak:
		l.newline()
		return
	case surface.KindStrong:
		style = style.Bold(true)
	case surface.KindEmphasis:
		style = style.Italic(true)
	case surface.KindHeading:
		l.block()
		style = styles.heading(n.Level)
	case surface.KindListItem:
		l.block()
		marker := "• "
		if n.Ordered {
			marker = fmt.Sprintf("%d. ", n.Seq)
		}
		l.decorate("  "+marker, styles.marker)
	case surface.KindCheckbox:
		l.block()
		box := "[ ] "
		if n.Checked {
			box = "[x] "
		}
		l.decorate(strings.Repeat("  ", n.Indent)+box, styles.marker)
		style = styles.presented(style, notes.PresentationFor(n.Checked))
	}

	for _, child := range l.tree.Children(id) {
		l.node(child, style)
	}
	if n.Kind.IsBlock() {
		l.newline()
	}
}

// locate returns the line and column where the cursor at offset is drawn.
// Offsets that fall after the last rune of a line land just past it.
func locate(lines []line, offset int) (row, col int) {
	lastRow, lastCol := 0, 0
	for i, ln := range lines {
		for j, c := range ln {
			if c.off == offset {
				return i, j
			}
			if c.off == offset-1 {
				lastRow, lastCol = i, j+1
			}
		}
	}
	return lastRow, lastCol
}

// render draws lines with the selection [selStart, selEnd) highlighted and
// the cursor drawn at cursor. A negative cursor hides it.
func render(lines []line, selStart, selEnd, cursor int) string {
	curRow, curCol := -1, -1
	if cursor >= 0 {
		curRow, curCol = locate(lines, cursor)
	}

	var b strings.Builder
	for i, ln := range lines {
		if i == len(lines)-1 && len(ln) == 0 && i != curRow {
			break
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, c := range ln {
			style := c.style
			switch {
			case i == curRow && j == curCol:
				style = styles.cursor
			case c.off >= 0 && c.off >= selStart && c.off < selEnd:
				style = styles.selected
			}
			b.WriteString(style.Render(string(c.r)))
		}
		if i == curRow && curCol >= len(ln) {
			b.WriteString(styles.cursor.Render(" "))
		}
	}
	return b.String()
}

// plain returns the text of a line without styling.
func (ln line) plain() string {
	var b strings.Builder
	for _, c := range ln {
		b.WriteRune(c.r)
	}
	return b.String()
}
