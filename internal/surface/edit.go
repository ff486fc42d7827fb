package surface

import "fmt"

// SplitText cuts the text leaf id at rune offset off. The left part stays in
// id and the right part moves into a new sibling inserted directly after it.
func (t *Tree) SplitText(id NodeID, off int) (NodeID, error) {
	if !t.Valid(id) || t.nodes[id].Kind != KindText {
		return Nil, ErrInvalidNode
	}
	parent := t.nodes[id].parent
	if parent == Nil {
		return Nil, ErrDetached
	}
	if off < 0 || off > runeLen(t.nodes[id].Text) {
		return Nil, fmt.Errorf("%w: split at %d", ErrOutOfRange, off)
	}

	left, right := splitRunes(t.nodes[id].Text, off)
	t.nodes[id].Text = left
	r := t.NewText(right)
	t.link(parent, t.IndexOf(id)+1, r)
	return r, nil
}

// DeleteRange removes the content between two text anchors and returns the
// insertion point left behind: the start leaf's parent and the index right
// after the start leaf.
//
// Text covered by the range is removed from the leaves that hold it. Nodes
// that lie entirely inside the range are removed with their subtrees, while
// containers that only partially overlap it are kept.
func (t *Tree) DeleteRange(p AnchorPair) (NodeID, int, error) {
	s, e := p.Start, p.End
	if err := t.checkTextAnchor(s); err != nil {
		return Nil, 0, err
	}
	if err := t.checkTextAnchor(e); err != nil {
		return Nil, 0, err
	}

	if s.Node == e.Node {
		if s.Offset > e.Offset {
			return Nil, 0, fmt.Errorf("%w: inverted range", ErrOutOfRange)
		}
		text := t.nodes[s.Node].Text
		left, _ := splitRunes(text, s.Offset)
		_, right := splitRunes(text, e.Offset)
		t.nodes[s.Node].Text = left

		parent, idx := t.nodes[s.Node].parent, t.IndexOf(s.Node)+1
		if right != "" {
			t.link(parent, idx, t.NewText(right))
		}
		return parent, idx, nil
	}

	order := t.preorder()
	pos := make(map[NodeID]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	ps, okS := pos[s.Node]
	pe, okE := pos[e.Node]
	if !okS || !okE {
		return Nil, 0, ErrDetached
	}
	if ps >= pe {
		return Nil, 0, fmt.Errorf("%w: inverted range", ErrOutOfRange)
	}

	left, _ := splitRunes(t.nodes[s.Node].Text, s.Offset)
	_, right := splitRunes(t.nodes[e.Node].Text, e.Offset)
	t.nodes[s.Node].Text = left
	t.nodes[e.Node].Text = right

	doomed := make(map[NodeID]bool)
	var roots []NodeID
	for _, id := range order[ps+1 : pe] {
		if doomed[t.nodes[id].parent] {
			doomed[id] = true
			continue
		}
		// ancestors of the end leaf are only partially covered
		if t.Contains(id, e.Node) {
			continue
		}
		doomed[id] = true
		roots = append(roots, id)
	}
	for _, id := range roots {
		t.Remove(id)
	}

	return t.nodes[s.Node].parent, t.IndexOf(s.Node) + 1, nil
}

// InsertAll links the detached nodes into parent starting at index, in order.
func (t *Tree) InsertAll(parent NodeID, index int, ids ...NodeID) error {
	for i, id := range ids {
		if err := t.Insert(parent, index+i, id); err != nil {
			return err
		}
	}
	return nil
}

// RemoveIfEmpty removes id when it is a text leaf with no content.
func (t *Tree) RemoveIfEmpty(id NodeID) bool {
	if !t.Valid(id) || t.nodes[id].Kind != KindText || t.nodes[id].Text != "" {
		return false
	}
	t.Remove(id)
	return true
}

func (t *Tree) checkTextAnchor(a Anchor) error {
	if !t.Valid(a.Node) || t.nodes[a.Node].Kind != KindText {
		return fmt.Errorf("%w: anchor must reference a text node", ErrInvalidNode)
	}
	if !t.Attached(a.Node) {
		return ErrDetached
	}
	if a.Offset < 0 || a.Offset > runeLen(t.nodes[a.Node].Text) {
		return fmt.Errorf("%w: anchor offset %d", ErrOutOfRange, a.Offset)
	}
	return nil
}

func (t *Tree) preorder() []NodeID {
	var out []NodeID
	t.Walk(func(id NodeID, _ int) bool {
		out = append(out, id)
		return true
	})
	return out
}
