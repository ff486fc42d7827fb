package surface

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// NodeID indexes a node in a [Tree] arena.
type NodeID int

// Nil is the parent of the root and of detached nodes.
const Nil NodeID = -1

var (
	ErrInvalidNode   = errors.New("surface: invalid node")
	ErrNotContainer  = errors.New("surface: node cannot hold children")
	ErrInvalidIndex  = errors.New("surface: child index out of range")
	ErrAlreadyLinked = errors.New("surface: node already has a parent")
)

// Kind enumerates node types.
type Kind int

const (
	KindRoot Kind = iota
	KindText
	KindBreak
	KindHeading
	KindStrong
	KindEmphasis
	KindListItem
	KindCheckbox
)

var kindNames = map[Kind]string{
	KindRoot:     "root",
	KindText:     "text",
	KindBreak:    "break",
	KindHeading:  "heading",
	KindStrong:   "strong",
	KindEmphasis: "emphasis",
	KindListItem: "item",
	KindCheckbox: "checkbox",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsBlock reports whether nodes of this kind start their own row.
func (k Kind) IsBlock() bool {
	return k == KindHeading || k == KindListItem || k == KindCheckbox
}

// IsLeaf reports whether nodes of this kind never hold children.
func (k Kind) IsLeaf() bool {
	return k == KindText || k == KindBreak
}

// Node is a single arena entry. Only the fields relevant to Kind are meaningful.
type Node struct {
	Kind    Kind
	Text    string // KindText
	Level   int    // KindHeading, 1..3
	Ordered bool   // KindListItem
	Seq     int    // KindListItem when Ordered, 1-based
	Checked bool   // KindCheckbox
	Indent  int    // KindCheckbox, never negative

	parent   NodeID
	children []NodeID
	live     bool
}

// Tree is the editable surface.
type Tree struct {
	nodes []Node
	root  NodeID
}

// New returns an empty surface holding only its root.
func New() *Tree {
	t := &Tree{}
	t.root = t.alloc(Node{Kind: KindRoot})
	return t
}

func (t *Tree) alloc(n Node) NodeID {
	n.parent = Nil
	n.children = nil
	n.live = true
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

// Root returns the root node ID.
func (t *Tree) Root() NodeID { return t.root }

// Valid reports whether id names a live node.
func (t *Tree) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes) && t.nodes[id].live
}

// Node returns a copy of the node with the given ID.
func (t *Tree) Node(id NodeID) (Node, bool) {
	if !t.Valid(id) {
		return Node{}, false
	}
	n := t.nodes[id]
	n.children = nil
	return n, true
}

// Kind returns the kind of id, or KindRoot's zero value when id is invalid.
func (t *Tree) Kind(id NodeID) Kind {
	if !t.Valid(id) {
		return KindRoot
	}
	return t.nodes[id].Kind
}

// Parent returns the parent of id, or [Nil].
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.Valid(id) {
		return Nil
	}
	return t.nodes[id].parent
}

// Children returns a copy of the child list of id.
func (t *Tree) Children(id NodeID) []NodeID {
	if !t.Valid(id) {
		return nil
	}
	out := make([]NodeID, len(t.nodes[id].children))
	copy(out, t.nodes[id].children)
	return out
}

// ChildCount returns the number of children of id.
func (t *Tree) ChildCount(id NodeID) int {
	if !t.Valid(id) {
		return 0
	}
	return len(t.nodes[id].children)
}

// IndexOf returns the position of id among its siblings, or -1 when detached.
func (t *Tree) IndexOf(id NodeID) int {
	p := t.Parent(id)
	if p == Nil {
		return -1
	}
	for i, c := range t.nodes[p].children {
		if c == id {
			return i
		}
	}
	return -1
}

// Attached reports whether id is reachable from the root.
func (t *Tree) Attached(id NodeID) bool {
	for cur := id; t.Valid(cur); cur = t.nodes[cur].parent {
		if cur == t.root {
			return true
		}
	}
	return false
}

// Contains reports whether id is ancestor itself or one of its descendants.
func (t *Tree) Contains(ancestor, id NodeID) bool {
	for cur := id; t.Valid(cur); cur = t.nodes[cur].parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// Closest walks from id toward the root and returns the first node of kind k.
func (t *Tree) Closest(id NodeID, k Kind) NodeID {
	for cur := id; t.Valid(cur); cur = t.nodes[cur].parent {
		if t.nodes[cur].Kind == k {
			return cur
		}
	}
	return Nil
}

// NewText allocates a detached text leaf.
func (t *Tree) NewText(s string) NodeID {
	return t.alloc(Node{Kind: KindText, Text: s})
}

// NewNode allocates a detached node with the attributes of n.
func (t *Tree) NewNode(n Node) NodeID {
	return t.alloc(n)
}

// NewElement allocates a detached node of kind k holding a single text leaf.
func (t *Tree) NewElement(n Node, text string) NodeID {
	id := t.alloc(n)
	child := t.NewText(text)
	t.link(id, len(t.nodes[id].children), child)
	return id
}

// Insert links the detached node child into parent at index.
func (t *Tree) Insert(parent NodeID, index int, child NodeID) error {
	if !t.Valid(parent) || !t.Valid(child) {
		return ErrInvalidNode
	}
	if t.nodes[parent].Kind.IsLeaf() {
		return fmt.Errorf("%w: %s", ErrNotContainer, t.nodes[parent].Kind)
	}
	if t.nodes[child].parent != Nil {
		return ErrAlreadyLinked
	}
	if index < 0 || index > len(t.nodes[parent].children) {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	t.link(parent, index, child)
	return nil
}

// Append links the detached node child as the last child of parent.
func (t *Tree) Append(parent, child NodeID) error {
	return t.Insert(parent, t.ChildCount(parent), child)
}

func (t *Tree) link(parent NodeID, index int, child NodeID) {
	kids := t.nodes[parent].children
	kids = append(kids, Nil)
	copy(kids[index+1:], kids[index:])
	kids[index] = child
	t.nodes[parent].children = kids
	t.nodes[child].parent = parent
}

// Detach unlinks id from its parent without freeing it.
func (t *Tree) Detach(id NodeID) {
	p := t.Parent(id)
	if p == Nil {
		return
	}
	kids := t.nodes[p].children
	for i, c := range kids {
		if c == id {
			t.nodes[p].children = append(kids[:i:i], kids[i+1:]...)
			break
		}
	}
	t.nodes[id].parent = Nil
}

// Remove detaches id and frees its whole subtree.
func (t *Tree) Remove(id NodeID) {
	if !t.Valid(id) || id == t.root {
		return
	}
	t.Detach(id)
	t.free(id)
}

func (t *Tree) free(id NodeID) {
	for _, c := range t.nodes[id].children {
		t.free(c)
	}
	t.nodes[id].children = nil
	t.nodes[id].live = false
}

// Update applies fn to the node's attributes. Structure fields are preserved.
func (t *Tree) Update(id NodeID, fn func(*Node)) error {
	if !t.Valid(id) {
		return ErrInvalidNode
	}
	n := &t.nodes[id]
	kind, parent, children := n.Kind, n.parent, n.children
	fn(n)
	n.Kind, n.parent, n.children, n.live = kind, parent, children, true
	if n.Indent < 0 {
		n.Indent = 0
	}
	return nil
}

// SetText replaces the content of a text leaf.
func (t *Tree) SetText(id NodeID, s string) error {
	if !t.Valid(id) || t.nodes[id].Kind != KindText {
		return ErrInvalidNode
	}
	t.nodes[id].Text = s
	return nil
}

// Walk visits every attached node in document (pre-)order. Returning false
// from fn skips the node's descendants.
func (t *Tree) Walk(fn func(id NodeID, depth int) bool) {
	t.walk(t.root, 0, fn)
}

// WalkFrom is [Tree.Walk] rooted at id.
func (t *Tree) WalkFrom(id NodeID, fn func(id NodeID, depth int) bool) {
	if t.Valid(id) {
		t.walk(id, 0, fn)
	}
}

func (t *Tree) walk(id NodeID, depth int, fn func(NodeID, int) bool) {
	if !fn(id, depth) {
		return
	}
	for _, c := range t.nodes[id].children {
		t.walk(c, depth+1, fn)
	}
}

// Leaves returns every text leaf under the root in document order.
func (t *Tree) Leaves() []NodeID {
	return t.LeavesOf(t.root)
}

// LeavesOf returns every text leaf under id in document order.
func (t *Tree) LeavesOf(id NodeID) []NodeID {
	var out []NodeID
	t.WalkFrom(id, func(n NodeID, _ int) bool {
		if t.nodes[n].Kind == KindText {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Text returns the flattened text of the whole surface.
func (t *Tree) Text() string {
	return t.TextOf(t.root)
}

// TextOf returns the flattened text under id.
func (t *Tree) TextOf(id NodeID) string {
	var sb strings.Builder
	for _, leaf := range t.LeavesOf(id) {
		sb.WriteString(t.nodes[leaf].Text)
	}
	return sb.String()
}

// Len returns the flattened length in runes.
func (t *Tree) Len() int {
	n := 0
	for _, leaf := range t.Leaves() {
		n += runeLen(t.nodes[leaf].Text)
	}
	return n
}

// Count returns the number of attached nodes of kind k.
func (t *Tree) Count(k Kind) int {
	return len(t.FindAll(k))
}

// FindAll returns every attached node of kind k in document order.
func (t *Tree) FindAll(k Kind) []NodeID {
	var out []NodeID
	t.Walk(func(id NodeID, _ int) bool {
		if t.nodes[id].Kind == k {
			out = append(out, id)
		}
		return true
	})
	return out
}

// Clone returns a deep copy that shares no memory with t. Node IDs are preserved.
func (t *Tree) Clone() *Tree {
	c := &Tree{nodes: make([]Node, len(t.nodes)), root: t.root}
	for i, n := range t.nodes {
		if n.children != nil {
			n.children = append([]NodeID(nil), n.children...)
		}
		c.nodes[i] = n
	}
	return c
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// splitRunes splits s at rune offset i, clamping i into range.
func splitRunes(s string, i int) (string, string) {
	r := []rune(s)
	if i < 0 {
		i = 0
	}
	if i > len(r) {
		i = len(r)
	}
	return string(r[:i]), string(r[i:])
}
