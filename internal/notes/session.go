package notes

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/focus/internal/surface"
)

var (
	ErrNoSnapshot     = errors.New("notes: no saved selection")
	ErrEmptySelection = errors.New("notes: selection has no text")
	ErrStaleSelection = errors.New("notes: selected text is no longer present")
	ErrUnknownFormat  = errors.New("notes: unknown format")
	ErrNotCheckbox    = errors.New("notes: node is not a checkbox row")
	ErrUnknownIcon    = errors.New("notes: unknown icon")
)

// Snapshot is a position-independent record of a selection.
// End-Start always equals the rune length of Text.
type Snapshot struct {
	Start int
	End   int
	Text  string
}

// SessionOpts configures a [Session]. Store is required.
type SessionOpts struct {
	Store  Store
	Menu   MenuHost
	Logger *log.Logger
}

// Session is a single editor instance.
type Session struct {
	tree   *surface.Tree
	snap   *Snapshot
	cursor surface.Anchor

	store  Store
	menu   MenuHost
	logger *log.Logger

	bindings map[surface.NodeID]*binding
	toggled  Signal[RowEvent]
	changed  Signal[*surface.Tree]
}

// NewSession creates a session over an empty surface. Call [Session.Load]
// to restore persisted content.
func NewSession(opts SessionOpts) *Session {
	s := &Session{
		store:    opts.Store,
		menu:     opts.Menu,
		logger:   opts.Logger,
		bindings: make(map[surface.NodeID]*binding),
	}
	if s.menu == nil {
		s.menu = nopMenu{}
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	s.reset(surface.New())
	return s
}

// Load rebuilds the surface from the store. Missing content yields an empty
// surface; unreadable content is discarded with a warning.
func (s *Session) Load() {
	tree := surface.New()
	if raw, ok := s.store.Get(KeyContent); ok && raw != "" {
		parsed, err := surface.Unmarshal([]byte(raw))
		if err != nil {
			s.logger.Warn("discarding unreadable notes content", "error", err)
		} else {
			tree = parsed
		}
	}
	s.reset(tree)
	s.logger.Debug("loaded notes", "runes", tree.Len(), "rows", len(s.bindings))
}

func (s *Session) reset(tree *surface.Tree) {
	s.tree = tree
	s.snap = nil
	s.cursor = tree.End()
	s.bindings = make(map[surface.NodeID]*binding)
	for _, row := range tree.FindAll(surface.KindCheckbox) {
		s.bind(row)
	}
}

// Tree returns the live surface. Callers must not mutate it.
func (s *Session) Tree() *surface.Tree { return s.tree }

// Text returns the flattened text of the surface.
func (s *Session) Text() string { return s.tree.Text() }

// Snapshot returns the saved selection, if any.
func (s *Session) Snapshot() (Snapshot, bool) {
	if s.snap == nil {
		return Snapshot{}, false
	}
	return *s.snap, true
}

// OnChange registers fn to run after every persisted mutation.
func (s *Session) OnChange(fn func(*surface.Tree)) { s.changed.Connect(fn) }

// Cursor returns the collapsed caret position.
func (s *Session) Cursor() surface.Anchor { return s.cursor }

// SetCursor moves the caret. Anchors on a break are moved to the boundary
// before it.
func (s *Session) SetCursor(a surface.Anchor) error {
	if !s.tree.Attached(a.Node) {
		return surface.ErrDetached
	}
	if s.tree.Kind(a.Node) == surface.KindBreak {
		a = surface.Anchor{Node: s.tree.Parent(a.Node), Offset: s.tree.IndexOf(a.Node)}
	}
	if _, err := s.tree.OffsetOf(a); err != nil {
		return err
	}
	s.cursor = a
	return nil
}

// SetCursorOffset moves the caret to a flattened offset. At a boundary
// between two leaves the caret goes to the start of the later one, so the
// next row and empty labels stay reachable.
func (s *Session) SetCursorOffset(off int) error {
	if s.tree.Len() == 0 && off == 0 && len(s.tree.Leaves()) == 0 {
		s.cursor = s.tree.End()
		return nil
	}
	a, err := surface.ResolveOffset(s.tree, off)
	if err != nil {
		return err
	}
	if a.Offset > 0 {
		if next, ok := s.tree.Forward(a); ok {
			a = next
		}
	}
	s.cursor = a
	return nil
}

// CursorOffset returns the caret's flattened offset.
func (s *Session) CursorOffset() int {
	off, err := s.tree.OffsetOf(s.cursor)
	if err != nil {
		s.cursor = s.tree.End()
		return s.tree.Len()
	}
	return off
}

// commit persists the surface and notifies observers. Persistence is best
// effort: a failing store is logged and the in-memory change stands.
func (s *Session) commit() {
	data, err := surface.Marshal(s.tree)
	if err != nil {
		s.logger.Error("failed to encode notes", "error", err)
		return
	}
	if err := s.store.Set(KeyContent, string(data)); err != nil {
		s.logger.Warn("failed to persist notes", "error", err)
	}
	s.changed.Emit(s.tree)
}
