package notes

import (
	"strings"

	"github.com/desertthunder/focus/internal/surface"
)

// InsertText inserts s at the cursor and moves the cursor after it.
func (s *Session) InsertText(text string) bool {
	if text == "" {
		return false
	}
	leaf, off := s.textCursor()
	n, _ := s.tree.Node(leaf)

	r := []rune(n.Text)
	ins := []rune(text)
	out := make([]rune, 0, len(r)+len(ins))
	out = append(out, r[:off]...)
	out = append(out, ins...)
	out = append(out, r[off:]...)
	_ = s.tree.SetText(leaf, string(out))

	s.cursor = surface.Anchor{Node: leaf, Offset: off + len(ins)}
	s.commit()
	return true
}

// DeleteBackward removes the rune before the cursor.
func (s *Session) DeleteBackward() bool {
	off := s.CursorOffset()
	if off == 0 {
		return false
	}
	a, ok := s.tree.LeafBefore(off)
	if !ok {
		return false
	}
	n, _ := s.tree.Node(a.Node)
	r := []rune(n.Text)
	_ = s.tree.SetText(a.Node, string(r[:a.Offset-1])+string(r[a.Offset:]))

	s.cursor = surface.Anchor{Node: a.Node, Offset: a.Offset - 1}
	s.commit()
	return true
}

// outdentText removes up to IndentWidth spaces immediately before the cursor.
func (s *Session) outdentText() bool {
	if s.tree.Kind(s.cursor.Node) != surface.KindText {
		return false
	}
	n, _ := s.tree.Node(s.cursor.Node)
	r := []rune(n.Text)
	before := string(r[:s.cursor.Offset])
	trimmed := strings.TrimRight(before, " ")
	remove := min(runeLen(before)-runeLen(trimmed), IndentWidth)
	if remove == 0 {
		return false
	}

	off := s.cursor.Offset - remove
	_ = s.tree.SetText(s.cursor.Node, string(r[:off])+string(r[s.cursor.Offset:]))
	s.cursor.Offset = off
	s.commit()
	return true
}

// textCursor returns a text leaf and rune offset for the cursor, creating an
// empty leaf when the cursor sits between structural nodes.
func (s *Session) textCursor() (surface.NodeID, int) {
	if _, err := s.tree.OffsetOf(s.cursor); err != nil {
		s.cursor = s.tree.End()
	}
	c := s.cursor
	if s.tree.Kind(c.Node) == surface.KindText {
		return c.Node, c.Offset
	}

	kids := s.tree.Children(c.Node)
	if c.Offset > 0 && s.tree.Kind(kids[c.Offset-1]) == surface.KindText {
		n, _ := s.tree.Node(kids[c.Offset-1])
		return kids[c.Offset-1], runeLen(n.Text)
	}
	if c.Offset < len(kids) && s.tree.Kind(kids[c.Offset]) == surface.KindText {
		return kids[c.Offset], 0
	}

	leaf := s.tree.NewText("")
	_ = s.tree.Insert(c.Node, c.Offset, leaf)
	return leaf, 0
}
