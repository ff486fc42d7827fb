package notes

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultTitle = "Notes"
	DefaultIcon  = "🌙"
	DefaultWidth = 384
	MinWidth     = 320
	// MaxWidthRatio bounds the width as a share of the viewport.
	MaxWidthRatio = 0.65
)

// Icon is a selectable title glyph.
type Icon struct {
	Glyph string
	Name  string
}

var icons = []Icon{
	{"🌙", "moon"},
	{"☀️", "sun"},
	{"⭐", "star"},
	{"🌟", "glowing star"},
	{"🦉", "owl"},
	{"🥷", "ninja"},
	{"🦑", "squid"},
	{"🐸", "frog"},
	{"🌿", "herb"},
	{"🌱", "seedling"},
	{"🌻", "sunflower"},
	{"🍀", "four leaf clover"},
	{"🌵", "cactus"},
	{"🌈", "rainbow"},
	{"🌪️", "tornado"},
	{"☁️", "cloud"},
	{"🌤️", "sun behind small cloud"},
	{"💰", "money bag"},
	{"💸", "money with wings"},
	{"💡", "light bulb"},
}

// Icons returns the icon catalog.
func Icons() []Icon {
	out := make([]Icon, len(icons))
	copy(out, icons)
	return out
}

// LookupIcon finds an icon by glyph or name.
func LookupIcon(s string) (Icon, bool) {
	s = strings.TrimSpace(s)
	for _, ic := range icons {
		if ic.Glyph == s || strings.EqualFold(ic.Name, s) {
			return ic, true
		}
	}
	return Icon{}, false
}

// Title returns the saved title.
func (s *Session) Title() string {
	if v, ok := s.store.Get(KeyTitle); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return DefaultTitle
}

// SetTitle saves the trimmed title; a blank title falls back to the default.
func (s *Session) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	return s.store.Set(KeyTitle, title)
}

// Icon returns the saved icon glyph.
func (s *Session) Icon() string {
	if v, ok := s.store.Get(KeyIcon); ok && v != "" {
		return v
	}
	return DefaultIcon
}

// SetIcon saves an icon from the catalog, given by glyph or name.
func (s *Session) SetIcon(glyph string) error {
	ic, ok := LookupIcon(glyph)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownIcon, glyph)
	}
	return s.store.Set(KeyIcon, ic.Glyph)
}

// IconHidden reports whether the icon button is hidden.
func (s *Session) IconHidden() bool {
	v, _ := s.store.Get(KeyIconHidden)
	return v == "true"
}

func (s *Session) HideIcon() error { return s.store.Set(KeyIconHidden, "true") }
func (s *Session) ShowIcon() error { return s.store.Set(KeyIconHidden, "false") }

// Width returns the saved sidebar width.
func (s *Session) Width() int {
	v, ok := s.store.Get(KeyWidth)
	if !ok {
		return DefaultWidth
	}
	w, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "px"))
	if err != nil || w <= 0 {
		return DefaultWidth
	}
	return w
}

// SetWidth saves w when it fits [MinWidth, MaxWidthRatio*viewport] and
// reports whether it did. Requests outside the range are ignored.
func (s *Session) SetWidth(w int, viewport float64) (bool, error) {
	if w < MinWidth || float64(w) > viewport*MaxWidthRatio {
		return false, nil
	}
	if err := s.store.Set(KeyWidth, strconv.Itoa(w)+"px"); err != nil {
		return false, err
	}
	return true, nil
}
