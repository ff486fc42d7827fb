package notes

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/focus/internal/surface"
)

// Apply replaces the saved selection with the structure for kind.
//
// The selection is re-located first: when the live text at the recorded
// offsets no longer matches, the occurrence of the selected text nearest to
// the recorded start is used instead. Every step runs against a clone, so on
// any error the surface is left exactly as it was and nothing is persisted.
// The menu is hidden either way.
func (s *Session) Apply(kind Kind) error {
	defer s.menu.Hide()

	if err := s.apply(kind); err != nil {
		fields := []any{"kind", kind, "reason", err}
		if s.snap != nil {
			fields = append(fields, "start", s.snap.Start, "end", s.snap.End)
		}
		s.logger.Warn("format aborted", fields...)
		return err
	}
	return nil
}

func (s *Session) apply(kind Kind) error {
	d, ok := Describe(kind)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownFormat, int(kind))
	}
	if s.snap == nil {
		return ErrNoSnapshot
	}
	snap := *s.snap
	if strings.TrimSpace(snap.Text) == "" {
		return ErrEmptySelection
	}

	start, end, err := s.relocate(snap)
	if err != nil {
		return err
	}

	c := s.tree.Clone()
	pair, err := surface.ResolveOffsets(c, start, end)
	if err != nil {
		return err
	}
	// The resolved start may sit at the end of the previous leaf, possibly in
	// another row. Step to the leaf that holds the first selected rune.
	for {
		next, ok := c.Forward(pair.Start)
		if !ok {
			break
		}
		pair.Start = next
	}
	nodes := d.rule(c, snap.Text)
	if len(nodes) == 0 {
		return ErrEmptySelection
	}

	parent, idx, err := c.DeleteRange(pair)
	if err != nil {
		return err
	}
	if c.RemoveIfEmpty(pair.Start.Node) {
		idx--
	}
	if err := c.InsertAll(parent, idx, nodes...); err != nil {
		return err
	}
	if pair.End.Node != pair.Start.Node {
		prune(c, pair.End.Node)
	}

	s.tree = c
	s.cursor = surface.Anchor{Node: parent, Offset: idx + len(nodes)}
	s.snap = nil
	s.rebind()
	s.commit()

	s.logger.Debug("format applied", "kind", kind, "start", start, "end", end, "nodes", len(nodes))
	return nil
}

// relocate returns the live offsets of snap's text, preferring the recorded
// position and otherwise the nearest occurrence (earlier wins ties).
func (s *Session) relocate(snap Snapshot) (int, int, error) {
	text := []rune(s.tree.Text())
	want := []rune(snap.Text)
	n := len(want)

	if snap.Start >= 0 && snap.Start+n <= len(text) && slices.Equal(text[snap.Start:snap.Start+n], want) {
		return snap.Start, snap.Start + n, nil
	}

	best, bestDist := -1, 0
	for i := 0; i+n <= len(text); i++ {
		if !slices.Equal(text[i:i+n], want) {
			continue
		}
		dist := i - snap.Start
		if dist < 0 {
			dist = -dist
		}
		if best < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrStaleSelection, snap.Text)
	}

	s.logger.Debug("selection drifted", "from", snap.Start, "to", best)
	return best, best + n, nil
}

// prune removes id when it is an empty text leaf, then every ancestor left
// without children below the root.
func prune(t *surface.Tree, id surface.NodeID) {
	if !t.Valid(id) {
		return
	}
	parent := t.Parent(id)
	if !t.RemoveIfEmpty(id) {
		return
	}
	for parent != surface.Nil && parent != t.Root() && t.ChildCount(parent) == 0 {
		next := t.Parent(parent)
		t.Remove(parent)
		parent = next
	}
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
