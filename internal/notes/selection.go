package notes

import "github.com/desertthunder/focus/internal/surface"

// Menu geometry used by [PlaceMenu].
const (
	MenuHeight = 300
	MenuGap    = 10
)

// Rect is a bounding rectangle in host units.
type Rect struct {
	Left, Top     float64
	Width, Height float64
}

// Bottom returns the lower edge of r.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Size is the host viewport.
type Size struct {
	Width, Height float64
}

// Placement positions the format menu. Left is the horizontal center of the
// menu; Above reports whether it was flipped over the selection.
type Placement struct {
	Left  float64
	Top   float64
	Above bool
}

// PlaceMenu positions the menu below the selection, or above it when there is
// not enough room below but enough above.
func PlaceMenu(r Rect, viewport Size) Placement {
	p := Placement{Left: r.Left + r.Width/2, Top: r.Bottom() + MenuGap}
	below := viewport.Height - r.Bottom()
	above := r.Top
	if below < MenuHeight && above > MenuHeight {
		p.Top = r.Top - MenuHeight - MenuGap
		p.Above = true
	}
	return p
}

// Selection is the host's current selection state.
type Selection struct {
	Present  bool // false when the host has no selection at all
	Inside   bool // common ancestor lies within the surface
	Start    surface.Anchor
	End      surface.Anchor
	Rect     Rect
	Viewport Size
}

// Observe reacts to a selection change. An absent, collapsed or foreign
// selection clears the snapshot and hides the menu. Otherwise the selection is
// recorded as flattened offsets and the menu is shown next to it. The surface
// is never modified.
func (s *Session) Observe(sel Selection) {
	if !sel.Present || !sel.Inside {
		s.clearSelection()
		return
	}

	start, err := s.tree.OffsetOf(sel.Start)
	if err != nil {
		s.logger.Debug("ignoring selection", "error", err)
		s.clearSelection()
		return
	}
	end, err := s.tree.OffsetOf(sel.End)
	if err != nil {
		s.logger.Debug("ignoring selection", "error", err)
		s.clearSelection()
		return
	}
	if end < start {
		start, end = end, start
	}
	if start == end {
		s.clearSelection()
		return
	}

	text, _ := s.tree.Extract(start, end)
	s.snap = &Snapshot{Start: start, End: end, Text: text}
	s.menu.ShowAt(PlaceMenu(sel.Rect, sel.Viewport))
}

// Select observes the flattened range [start, end) as a selection inside the
// surface. Out-of-range offsets clear the selection.
func (s *Session) Select(start, end int, r Rect, viewport Size) {
	pair, err := surface.ResolveOffsets(s.tree, min(start, end), max(start, end))
	if err != nil {
		s.clearSelection()
		return
	}
	s.Observe(Selection{
		Present:  true,
		Inside:   true,
		Start:    pair.Start,
		End:      pair.End,
		Rect:     r,
		Viewport: viewport,
	})
}

// ClearSelection drops the snapshot and hides the menu.
func (s *Session) ClearSelection() { s.clearSelection() }

func (s *Session) clearSelection() {
	s.snap = nil
	s.menu.Hide()
}
