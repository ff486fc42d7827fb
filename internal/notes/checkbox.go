package notes

import (
	"fmt"
	"strings"

	"github.com/desertthunder/focus/internal/surface"
)

// Presentation is the derived look of a checkbox label.
type Presentation struct {
	Strike  bool
	Opacity float64
}

// PresentationFor derives the label presentation from the checked state.
func PresentationFor(checked bool) Presentation {
	if checked {
		return Presentation{Strike: true, Opacity: 0.6}
	}
	return Presentation{Strike: false, Opacity: 1}
}

// RowEvent is emitted when a checkbox row is toggled.
type RowEvent struct {
	Row          surface.NodeID
	Checked      bool
	Presentation Presentation
}

// binding holds the observers of a single checkbox row. Exactly one binding
// exists per live row.
type binding struct {
	row     surface.NodeID
	toggled Signal[RowEvent]
}

func (s *Session) bind(row surface.NodeID) {
	if _, ok := s.bindings[row]; ok {
		return
	}
	b := &binding{row: row}
	b.toggled.Connect(s.toggled.Emit)
	s.bindings[row] = b
}

// rebind drops bindings of rows that no longer exist and binds new rows.
func (s *Session) rebind() {
	for row := range s.bindings {
		if !s.tree.Attached(row) || s.tree.Kind(row) != surface.KindCheckbox {
			delete(s.bindings, row)
		}
	}
	for _, row := range s.tree.FindAll(surface.KindCheckbox) {
		s.bind(row)
	}
}

// Rows returns every checkbox row in document order.
func (s *Session) Rows() []surface.NodeID {
	return s.tree.FindAll(surface.KindCheckbox)
}

// Bound reports whether row has its toggle binding.
func (s *Session) Bound(row surface.NodeID) bool {
	_, ok := s.bindings[row]
	return ok
}

// OnToggle registers fn for toggles of a single row.
func (s *Session) OnToggle(row surface.NodeID, fn func(RowEvent)) error {
	b, ok := s.bindings[row]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotCheckbox, row)
	}
	b.toggled.Connect(fn)
	return nil
}

// OnAnyToggle registers fn for toggles of every row, including rows created later.
func (s *Session) OnAnyToggle(fn func(RowEvent)) { s.toggled.Connect(fn) }

// Presentation returns the current presentation of row.
func (s *Session) Presentation(row surface.NodeID) (Presentation, error) {
	n, ok := s.tree.Node(row)
	if !ok || n.Kind != surface.KindCheckbox {
		return Presentation{}, fmt.Errorf("%w: %d", ErrNotCheckbox, row)
	}
	return PresentationFor(n.Checked), nil
}

// Toggle flips row between unchecked and checked. No other row is affected.
func (s *Session) Toggle(row surface.NodeID) error {
	b, ok := s.bindings[row]
	if !ok || !s.tree.Attached(row) {
		return fmt.Errorf("%w: %d", ErrNotCheckbox, row)
	}

	var checked bool
	if err := s.tree.Update(row, func(n *surface.Node) {
		n.Checked = !n.Checked
		checked = n.Checked
	}); err != nil {
		return err
	}

	b.toggled.Emit(RowEvent{Row: row, Checked: checked, Presentation: PresentationFor(checked)})
	s.commit()
	return nil
}

// ToggleNth toggles the n-th checkbox row, counting from 1.
func (s *Session) ToggleNth(n int) error {
	rows := s.Rows()
	if n < 1 || n > len(rows) {
		return fmt.Errorf("%w: row %d of %d", ErrNotCheckbox, n, len(rows))
	}
	return s.Toggle(rows[n-1])
}

// ToggleAtCursor toggles the row holding the cursor.
func (s *Session) ToggleAtCursor() error {
	row := s.tree.Closest(s.cursor.Node, surface.KindCheckbox)
	if row == surface.Nil {
		return ErrNotCheckbox
	}
	return s.Toggle(row)
}

// Key is an editing key the session handles itself.
type Key int

const (
	KeyEnter Key = iota + 1
	KeyTab
	KeyShiftTab
	KeyBackspace
)

func (k Key) String() string {
	switch k {
	case KeyEnter:
		return "enter"
	case KeyTab:
		return "tab"
	case KeyShiftTab:
		return "shift+tab"
	case KeyBackspace:
		return "backspace"
	default:
		return fmt.Sprintf("key(%d)", int(k))
	}
}

// IndentWidth is the number of spaces Tab inserts outside checkbox rows.
const IndentWidth = 4

// HandleKey runs the editing behavior of k at the cursor and reports whether
// the surface changed.
//
// Inside a checkbox row, Enter opens a new empty row after the current one,
// Tab and Shift+Tab change the row's indentation, and Backspace on an empty
// label removes the row. Elsewhere the keys edit plain text.
func (s *Session) HandleKey(k Key) bool {
	row := s.tree.Closest(s.cursor.Node, surface.KindCheckbox)
	if row != surface.Nil {
		switch k {
		case KeyEnter:
			return s.splitRow(row)
		case KeyTab:
			return s.indentRow(row, 1)
		case KeyShiftTab:
			return s.indentRow(row, -1)
		case KeyBackspace:
			if strings.TrimSpace(s.tree.TextOf(row)) == "" {
				return s.removeRow(row)
			}
		}
	}

	switch k {
	case KeyEnter:
		return s.InsertText("\n")
	case KeyTab:
		return s.InsertText(strings.Repeat(" ", IndentWidth))
	case KeyShiftTab:
		return s.outdentText()
	case KeyBackspace:
		return s.DeleteBackward()
	}
	return false
}

func (s *Session) splitRow(row surface.NodeID) bool {
	n, _ := s.tree.Node(row)
	next := newCheckbox(s.tree, "", n.Indent)
	if err := s.tree.Insert(s.tree.Parent(row), s.tree.IndexOf(row)+1, next); err != nil {
		s.logger.Error("failed to insert checkbox row", "error", err)
		return false
	}
	s.bind(next)
	s.cursor = surface.Anchor{Node: s.tree.Children(next)[0], Offset: 0}
	s.commit()
	return true
}

func (s *Session) indentRow(row surface.NodeID, delta int) bool {
	n, _ := s.tree.Node(row)
	if n.Indent+delta < 0 {
		return false
	}
	_ = s.tree.Update(row, func(n *surface.Node) { n.Indent += delta })
	s.commit()
	return true
}

// removeRow deletes row and moves the cursor to the start of the next
// sibling, else the end of the previous one, else a break placeholder.
func (s *Session) removeRow(row surface.NodeID) bool {
	parent, idx := s.tree.Parent(row), s.tree.IndexOf(row)
	s.tree.Remove(row)
	delete(s.bindings, row)

	kids := s.tree.Children(parent)
	switch {
	case idx < len(kids):
		s.cursor = surface.Anchor{Node: parent, Offset: idx}
		if leaves := s.tree.LeavesOf(kids[idx]); len(leaves) > 0 {
			s.cursor = surface.Anchor{Node: leaves[0], Offset: 0}
		}
	case idx > 0:
		s.cursor = surface.Anchor{Node: parent, Offset: idx}
		if leaves := s.tree.LeavesOf(kids[idx-1]); len(leaves) > 0 {
			last := leaves[len(leaves)-1]
			n, _ := s.tree.Node(last)
			s.cursor = surface.Anchor{Node: last, Offset: runeLen(n.Text)}
		}
	default:
		br := s.tree.NewNode(surface.Node{Kind: surface.KindBreak})
		_ = s.tree.Insert(parent, idx, br)
		s.cursor = surface.Anchor{Node: parent, Offset: idx}
	}

	s.commit()
	return true
}
