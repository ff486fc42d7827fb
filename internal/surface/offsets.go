package surface

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAnchor means no text leaf covers the requested offset, e.g. an empty surface.
	ErrMissingAnchor = errors.New("surface: no text node at offset")
	ErrOutOfRange    = errors.New("surface: offset out of range")
	ErrDetached      = errors.New("surface: node is not attached to the root")
)

// Anchor is a boundary point. Offset is a rune offset for text leaves and a
// child index for every other kind.
type Anchor struct {
	Node   NodeID
	Offset int
}

// AnchorPair delimits a range [Start, End).
type AnchorPair struct {
	Start Anchor
	End   Anchor
}

// Collapsed reports whether both ends are the same boundary point.
func (p AnchorPair) Collapsed() bool { return p.Start == p.End }

// ResolveOffsets maps the flattened range [start, end) to concrete anchors.
//
// Leaves are scanned in document order with a running length. The start
// anchor is the first leaf where running+len >= start, and the end anchor is
// the first leaf, continuing the same scan, where running+len >= end.
// Both anchors always land on text leaves.
func ResolveOffsets(t *Tree, start, end int) (AnchorPair, error) {
	if start < 0 || end < start {
		return AnchorPair{}, fmt.Errorf("%w: [%d, %d)", ErrOutOfRange, start, end)
	}

	var (
		pair     AnchorPair
		hasStart bool
		running  int
	)
	for _, leaf := range t.Leaves() {
		n := runeLen(t.nodes[leaf].Text)
		if !hasStart && running+n >= start {
			pair.Start = Anchor{Node: leaf, Offset: start - running}
			hasStart = true
		}
		if hasStart && running+n >= end {
			pair.End = Anchor{Node: leaf, Offset: end - running}
			return pair, nil
		}
		running += n
	}

	return AnchorPair{}, fmt.Errorf("%w: [%d, %d) in %d runes", ErrMissingAnchor, start, end, running)
}

// ResolveOffset maps a single flattened offset to an anchor.
func ResolveOffset(t *Tree, offset int) (Anchor, error) {
	pair, err := ResolveOffsets(t, offset, offset)
	if err != nil {
		return Anchor{}, err
	}
	return pair.Start, nil
}

// Forward moves an anchor at the end of a text leaf to the start of the next
// text leaf. Both name the same flattened offset. ok is false when a is not at
// the end of a leaf or no leaf follows it.
func (t *Tree) Forward(a Anchor) (Anchor, bool) {
	if t.Kind(a.Node) != KindText || a.Offset != runeLen(t.nodes[a.Node].Text) {
		return a, false
	}
	leaves := t.Leaves()
	for i, leaf := range leaves {
		if leaf == a.Node && i+1 < len(leaves) {
			return Anchor{Node: leaves[i+1]}, true
		}
	}
	return a, false
}

// OffsetOf maps an anchor back to its flattened offset.
func (t *Tree) OffsetOf(a Anchor) (int, error) {
	if !t.Valid(a.Node) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidNode, a.Node)
	}

	before, ok := t.textBefore(a.Node)
	if !ok {
		return 0, ErrDetached
	}

	n := t.nodes[a.Node]
	if n.Kind == KindText {
		if a.Offset < 0 || a.Offset > runeLen(n.Text) {
			return 0, fmt.Errorf("%w: %d in text of %d runes", ErrOutOfRange, a.Offset, runeLen(n.Text))
		}
		return before + a.Offset, nil
	}

	if a.Offset < 0 || a.Offset > len(n.children) {
		return 0, fmt.Errorf("%w: child %d of %d", ErrInvalidIndex, a.Offset, len(n.children))
	}
	for _, c := range n.children[:a.Offset] {
		before += runeLen(t.TextOf(c))
	}
	return before, nil
}

// textBefore sums the text of every leaf that precedes id in document order,
// excluding id's own descendants.
func (t *Tree) textBefore(id NodeID) (int, bool) {
	running, found := 0, false
	t.Walk(func(n NodeID, _ int) bool {
		if found {
			return false
		}
		if n == id {
			found = true
			return false
		}
		if t.nodes[n].Kind == KindText {
			running += runeLen(t.nodes[n].Text)
		}
		return true
	})
	return running, found
}

// Extract returns the flattened text in [start, end).
func (t *Tree) Extract(start, end int) (string, bool) {
	r := []rune(t.Text())
	if start < 0 || end < start || end > len(r) {
		return "", false
	}
	return string(r[start:end]), true
}

// End returns the boundary point after the last child of the root.
func (t *Tree) End() Anchor {
	return Anchor{Node: t.root, Offset: t.ChildCount(t.root)}
}

// LeafBefore returns the anchor just after the rune that precedes the
// flattened offset, i.e. the leaf with running < offset <= running+len.
func (t *Tree) LeafBefore(offset int) (Anchor, bool) {
	running := 0
	for _, leaf := range t.Leaves() {
		n := runeLen(t.nodes[leaf].Text)
		if running < offset && offset <= running+n {
			return Anchor{Node: leaf, Offset: offset - running}, true
		}
		running += n
	}
	return Anchor{}, false
}
