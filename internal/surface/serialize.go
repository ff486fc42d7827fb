package surface

import (
	"encoding/json"
	"errors"
	"fmt"
)

// FormatVersion is the version written by [Marshal].
const FormatVersion = 1

var ErrInvalidDocument = errors.New("surface: invalid document")

type element struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	Level    int       `json:"level,omitempty"`
	Ordered  bool      `json:"ordered,omitempty"`
	Seq      int       `json:"seq,omitempty"`
	Checked  bool      `json:"checked,omitempty"`
	Indent   int       `json:"indent,omitempty"`
	Children []element `json:"children,omitempty"`
}

type document struct {
	Version int       `json:"version"`
	Nodes   []element `json:"nodes"`
}

// Marshal encodes the attached structure of t.
func Marshal(t *Tree) ([]byte, error) {
	doc := document{Version: FormatVersion, Nodes: []element{}}
	for _, c := range t.nodes[t.root].children {
		doc.Nodes = append(doc.Nodes, t.encode(c))
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode surface: %w", err)
	}
	return data, nil
}

func (t *Tree) encode(id NodeID) element {
	n := t.nodes[id]
	el := element{Type: n.Kind.String()}
	switch n.Kind {
	case KindText:
		el.Text = n.Text
	case KindHeading:
		el.Level = n.Level
	case KindListItem:
		el.Ordered = n.Ordered
		el.Seq = n.Seq
	case KindCheckbox:
		el.Checked = n.Checked
		el.Indent = n.Indent
	}
	for _, c := range n.children {
		el.Children = append(el.Children, t.encode(c))
	}
	return el
}

// Unmarshal rebuilds a tree from a document produced by [Marshal].
func Unmarshal(data []byte) (*Tree, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.Version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidDocument, doc.Version)
	}

	t := New()
	for i, el := range doc.Nodes {
		id, err := t.decode(el, fmt.Sprintf("nodes[%d]", i))
		if err != nil {
			return nil, err
		}
		t.link(t.root, len(t.nodes[t.root].children), id)
	}
	return t, nil
}

func (t *Tree) decode(el element, path string) (NodeID, error) {
	kind, ok := kindByName(el.Type)
	if !ok || kind == KindRoot {
		return Nil, fmt.Errorf("%w: %s: unknown type %q", ErrInvalidDocument, path, el.Type)
	}
	if kind.IsLeaf() && len(el.Children) > 0 {
		return Nil, fmt.Errorf("%w: %s: %s cannot have children", ErrInvalidDocument, path, kind)
	}

	n := Node{Kind: kind}
	switch kind {
	case KindText:
		n.Text = el.Text
	case KindHeading:
		if el.Level < 1 || el.Level > 3 {
			return Nil, fmt.Errorf("%w: %s: heading level %d", ErrInvalidDocument, path, el.Level)
		}
		n.Level = el.Level
	case KindListItem:
		n.Ordered = el.Ordered
		n.Seq = el.Seq
	case KindCheckbox:
		n.Checked = el.Checked
		n.Indent = max(el.Indent, 0)
	}

	id := t.alloc(n)
	for i, child := range el.Children {
		cid, err := t.decode(child, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return Nil, err
		}
		t.link(id, len(t.nodes[id].children), cid)
	}
	return id, nil
}

func kindByName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}
