package notes

import (
	"fmt"
	"strings"

	"github.com/desertthunder/focus/internal/surface"
)

// Kind identifies a format action.
type Kind int

const (
	Heading1 Kind = iota + 1
	Heading2
	Heading3
	Bullet
	Number
	Checkbox
	Bold
	Italic
)

// Descriptor is the static metadata of a format kind.
type Descriptor struct {
	Kind     Kind
	Name     string
	Label    string
	Icon     string
	Shortcut string
	Scale    float64 // font scale, headings only

	rule func(t *surface.Tree, text string) []surface.NodeID
}

var formats = []Descriptor{
	{Kind: Heading1, Name: "h1", Label: "Heading 1", Icon: "H1", Shortcut: "# ", Scale: 2, rule: heading(1)},
	{Kind: Heading2, Name: "h2", Label: "Heading 2", Icon: "H2", Shortcut: "## ", Scale: 1.5, rule: heading(2)},
	{Kind: Heading3, Name: "h3", Label: "Heading 3", Icon: "H3", Shortcut: "### ", Scale: 1.25, rule: heading(3)},
	{Kind: Bullet, Name: "bullet", Label: "Bulleted list", Icon: "•", Shortcut: "- ", rule: list(false)},
	{Kind: Number, Name: "number", Label: "Numbered list", Icon: "1.", Shortcut: "1. ", rule: list(true)},
	{Kind: Checkbox, Name: "checkbox", Label: "Checkbox", Icon: "☐", Shortcut: "- [ ] ", rule: checkboxes},
	{Kind: Bold, Name: "bold", Label: "Bold", Icon: "B", Shortcut: "**", rule: inline(surface.KindStrong)},
	{Kind: Italic, Name: "italic", Label: "Italic", Icon: "I", Shortcut: "*", rule: inline(surface.KindEmphasis)},
}

// Formats returns every descriptor in menu order.
func Formats() []Descriptor {
	out := make([]Descriptor, len(formats))
	copy(out, formats)
	return out
}

// Describe returns the descriptor for k.
func Describe(k Kind) (Descriptor, bool) {
	for _, d := range formats {
		if d.Kind == k {
			return d, true
		}
	}
	return Descriptor{}, false
}

// DescriptorOf returns the descriptor of the format that produces n.
// Text and break nodes have none.
func DescriptorOf(n surface.Node) (Descriptor, bool) {
	switch n.Kind {
	case surface.KindHeading:
		return Describe(Heading1 + Kind(n.Level-1))
	case surface.KindListItem:
		if n.Ordered {
			return Describe(Number)
		}
		return Describe(Bullet)
	case surface.KindCheckbox:
		return Describe(Checkbox)
	case surface.KindStrong:
		return Describe(Bold)
	case surface.KindEmphasis:
		return Describe(Italic)
	}
	return Descriptor{}, false
}

func (k Kind) String() string {
	if d, ok := Describe(k); ok {
		return d.Name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind accepts a descriptor name ("h1", "bold", ...) or label, case-insensitively.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	for _, d := range formats {
		if strings.EqualFold(s, d.Name) || strings.EqualFold(s, d.Label) {
			return d.Kind, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func heading(level int) func(*surface.Tree, string) []surface.NodeID {
	return func(t *surface.Tree, text string) []surface.NodeID {
		return []surface.NodeID{t.NewElement(surface.Node{Kind: surface.KindHeading, Level: level}, text)}
	}
}

func inline(k surface.Kind) func(*surface.Tree, string) []surface.NodeID {
	return func(t *surface.Tree, text string) []surface.NodeID {
		return []surface.NodeID{t.NewElement(surface.Node{Kind: k}, text)}
	}
}

func list(ordered bool) func(*surface.Tree, string) []surface.NodeID {
	return func(t *surface.Tree, text string) []surface.NodeID {
		var ids []surface.NodeID
		for i, line := range lines(text) {
			n := surface.Node{Kind: surface.KindListItem, Ordered: ordered}
			if ordered {
				n.Seq = i + 1
			}
			ids = append(ids, t.NewElement(n, line))
		}
		return ids
	}
}

func checkboxes(t *surface.Tree, text string) []surface.NodeID {
	var ids []surface.NodeID
	for _, line := range lines(text) {
		ids = append(ids, newCheckbox(t, line, 0))
	}
	return ids
}

// newCheckbox is the only place checkbox rows are allocated.
func newCheckbox(t *surface.Tree, label string, indent int) surface.NodeID {
	return t.NewElement(surface.Node{Kind: surface.KindCheckbox, Indent: max(indent, 0)}, label)
}

// lines splits on line breaks, trims every line and drops the blank ones.
func lines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
