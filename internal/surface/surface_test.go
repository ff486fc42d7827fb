package surface

import (
	"errors"
	"strings"
	"testing"
)

// build returns "say " + strong("hello") + " now" under the root.
func build(t *testing.T) (*Tree, NodeID) {
	t.Helper()
	tr := New()
	if err := tr.Append(tr.Root(), tr.NewText("say ")); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	strong := tr.NewElement(Node{Kind: KindStrong}, "hello")
	if err := tr.Append(tr.Root(), strong); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := tr.Append(tr.Root(), tr.NewText(" now")); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	return tr, strong
}

func TestTree(t *testing.T) {
	t.Run("Flattened Text", func(t *testing.T) {
		tr, _ := build(t)
		if got := tr.Text(); got != "say hello now" {
			t.Errorf("expected 'say hello now', got %q", got)
		}
		if tr.Len() != 13 {
			t.Errorf("expected length 13, got %d", tr.Len())
		}
	})

	t.Run("Counts Runes", func(t *testing.T) {
		tr := New()
		_ = tr.Append(tr.Root(), tr.NewText("añb🌙"))
		if tr.Len() != 4 {
			t.Errorf("expected 4 runes, got %d", tr.Len())
		}
	})

	t.Run("Breaks Are Not Text", func(t *testing.T) {
		tr := New()
		_ = tr.Append(tr.Root(), tr.NewText("a"))
		_ = tr.Append(tr.Root(), tr.NewNode(Node{Kind: KindBreak}))
		_ = tr.Append(tr.Root(), tr.NewText("b"))
		if tr.Text() != "ab" {
			t.Errorf("expected 'ab', got %q", tr.Text())
		}
		if len(tr.Leaves()) != 2 {
			t.Errorf("expected 2 text leaves, got %d", len(tr.Leaves()))
		}
	})

	t.Run("Insert Rejects Leaf Parent", func(t *testing.T) {
		tr := New()
		leaf := tr.NewText("x")
		_ = tr.Append(tr.Root(), leaf)
		err := tr.Append(leaf, tr.NewText("y"))
		if !errors.Is(err, ErrNotContainer) {
			t.Errorf("expected ErrNotContainer, got %v", err)
		}
	})

	t.Run("Insert Rejects Linked Child", func(t *testing.T) {
		tr := New()
		leaf := tr.NewText("x")
		_ = tr.Append(tr.Root(), leaf)
		if err := tr.Append(tr.Root(), leaf); !errors.Is(err, ErrAlreadyLinked) {
			t.Errorf("expected ErrAlreadyLinked, got %v", err)
		}
	})

	t.Run("Remove Frees Subtree", func(t *testing.T) {
		tr, strong := build(t)
		leaf := tr.Children(strong)[0]
		tr.Remove(strong)
		if tr.Valid(strong) || tr.Valid(leaf) {
			t.Error("expected removed subtree to be invalid")
		}
		if tr.Text() != "say  now" {
			t.Errorf("expected 'say  now', got %q", tr.Text())
		}
	})

	t.Run("Update Preserves Structure", func(t *testing.T) {
		tr := New()
		row := tr.NewElement(Node{Kind: KindCheckbox}, "task")
		_ = tr.Append(tr.Root(), row)
		_ = tr.Update(row, func(n *Node) {
			n.Kind = KindText
			n.Indent = -3
			n.Checked = true
		})
		n, _ := tr.Node(row)
		if n.Kind != KindCheckbox {
			t.Errorf("expected kind to be preserved, got %s", n.Kind)
		}
		if n.Indent != 0 {
			t.Errorf("expected indent floored at 0, got %d", n.Indent)
		}
		if !n.Checked {
			t.Error("expected checked to be updated")
		}
		if tr.ChildCount(row) != 1 {
			t.Errorf("expected children to be preserved, got %d", tr.ChildCount(row))
		}
	})

	t.Run("Clone Is Independent", func(t *testing.T) {
		tr, strong := build(t)
		c := tr.Clone()
		c.Remove(strong)
		_ = c.SetText(c.Leaves()[0], "hey ")

		if tr.Text() != "say hello now" {
			t.Errorf("original changed: %q", tr.Text())
		}
		if !tr.Valid(strong) {
			t.Error("original node freed by clone")
		}
		if c.Text() != "hey  now" {
			t.Errorf("expected clone text 'hey  now', got %q", c.Text())
		}
	})

	t.Run("Closest", func(t *testing.T) {
		tr := New()
		row := tr.NewElement(Node{Kind: KindCheckbox}, "x")
		_ = tr.Append(tr.Root(), row)
		leaf := tr.Children(row)[0]
		if tr.Closest(leaf, KindCheckbox) != row {
			t.Error("expected closest checkbox to be the row")
		}
		if tr.Closest(leaf, KindHeading) != Nil {
			t.Error("expected no heading ancestor")
		}
	})
}

func TestResolveOffsets(t *testing.T) {
	t.Run("Every Subrange Round Trips", func(t *testing.T) {
		tr, _ := build(t)
		text := []rune(tr.Text())
		for start := 0; start < len(text); start++ {
			for end := start + 1; end <= len(text); end++ {
				pair, err := ResolveOffsets(tr, start, end)
				if err != nil {
					t.Fatalf("[%d,%d) failed: %v", start, end, err)
				}
				s, err := tr.OffsetOf(pair.Start)
				if err != nil {
					t.Fatalf("OffsetOf start failed: %v", err)
				}
				e, err := tr.OffsetOf(pair.End)
				if err != nil {
					t.Fatalf("OffsetOf end failed: %v", err)
				}
				got, _ := tr.Extract(s, e)
				if want := string(text[start:end]); got != want {
					t.Errorf("[%d,%d): expected %q, got %q", start, end, want, got)
				}
			}
		}
	})

	t.Run("Prefers Earlier Leaf At Boundary", func(t *testing.T) {
		tr, _ := build(t)
		first := tr.Leaves()[0]
		pair, err := ResolveOffsets(tr, 4, 4)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pair.Start.Node != first || pair.Start.Offset != 4 {
			t.Errorf("expected end of first leaf, got %+v", pair.Start)
		}
		if !pair.Collapsed() {
			t.Error("expected collapsed pair")
		}
	})

	t.Run("Forward Steps To Next Leaf", func(t *testing.T) {
		tr, strong := build(t)
		first := tr.Leaves()[0]
		label := tr.Children(strong)[0]

		a, ok := tr.Forward(Anchor{Node: first, Offset: 4})
		if !ok || a != (Anchor{Node: label}) {
			t.Errorf("expected start of the strong label, got %+v (%v)", a, ok)
		}
		before, _ := tr.OffsetOf(Anchor{Node: first, Offset: 4})
		after, _ := tr.OffsetOf(a)
		if before != after {
			t.Errorf("expected the same offset, got %d and %d", before, after)
		}

		if _, ok := tr.Forward(Anchor{Node: first, Offset: 2}); ok {
			t.Error("expected no step inside a leaf")
		}
		last := tr.Leaves()[2]
		if _, ok := tr.Forward(Anchor{Node: last, Offset: 4}); ok {
			t.Error("expected no step past the last leaf")
		}
	})

	tests := []struct {
		name       string
		tree       func() *Tree
		start, end int
		want       error
	}{
		{"Empty Surface", New, 0, 0, ErrMissingAnchor},
		{"Only Structure", func() *Tree {
			tr := New()
			_ = tr.Append(tr.Root(), tr.NewNode(Node{Kind: KindBreak}))
			return tr
		}, 0, 0, ErrMissingAnchor},
		{"Past End", func() *Tree {
			tr := New()
			_ = tr.Append(tr.Root(), tr.NewText("abc"))
			return tr
		}, 1, 9, ErrMissingAnchor},
		{"Negative", func() *Tree {
			tr := New()
			_ = tr.Append(tr.Root(), tr.NewText("abc"))
			return tr
		}, -1, 2, ErrOutOfRange},
		{"Inverted", func() *Tree {
			tr := New()
			_ = tr.Append(tr.Root(), tr.NewText("abc"))
			return tr
		}, 2, 1, ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveOffsets(tt.tree(), tt.start, tt.end)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestOffsetOf(t *testing.T) {
	tr, strong := build(t)

	t.Run("Container Anchor Counts Preceding Children", func(t *testing.T) {
		off, err := tr.OffsetOf(Anchor{Node: tr.Root(), Offset: 2})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if off != 9 {
			t.Errorf("expected 9, got %d", off)
		}
	})

	t.Run("Inner Container", func(t *testing.T) {
		off, err := tr.OffsetOf(Anchor{Node: strong, Offset: 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if off != 9 {
			t.Errorf("expected 9, got %d", off)
		}
	})

	t.Run("End", func(t *testing.T) {
		off, err := tr.OffsetOf(tr.End())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if off != tr.Len() {
			t.Errorf("expected %d, got %d", tr.Len(), off)
		}
	})

	t.Run("Detached", func(t *testing.T) {
		leaf := tr.NewText("loose")
		if _, err := tr.OffsetOf(Anchor{Node: leaf}); !errors.Is(err, ErrDetached) {
			t.Errorf("expected ErrDetached, got %v", err)
		}
	})

	t.Run("Out Of Range", func(t *testing.T) {
		leaf := tr.Leaves()[0]
		if _, err := tr.OffsetOf(Anchor{Node: leaf, Offset: 99}); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("expected ErrOutOfRange, got %v", err)
		}
	})
}

func TestDeleteRange(t *testing.T) {
	t.Run("Within One Leaf", func(t *testing.T) {
		tr := New()
		leaf := tr.NewText("say hello now")
		_ = tr.Append(tr.Root(), leaf)

		pair, _ := ResolveOffsets(tr, 4, 9)
		parent, idx, err := tr.DeleteRange(pair)
		if err != nil {
			t.Fatalf("DeleteRange failed: %v", err)
		}
		if parent != tr.Root() || idx != 1 {
			t.Errorf("expected (root, 1), got (%d, %d)", parent, idx)
		}
		if tr.Text() != "say  now" {
			t.Errorf("expected 'say  now', got %q", tr.Text())
		}
		if tr.ChildCount(tr.Root()) != 2 {
			t.Errorf("expected leaf to be split in two, got %d children", tr.ChildCount(tr.Root()))
		}
	})

	t.Run("Across Containers", func(t *testing.T) {
		tr, strong := build(t)
		pair, err := ResolveOffsets(tr, 2, 11)
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		parent, idx, err := tr.DeleteRange(pair)
		if err != nil {
			t.Fatalf("DeleteRange failed: %v", err)
		}
		if tr.Text() != "saow" {
			t.Errorf("expected 'saow', got %q", tr.Text())
		}
		if tr.Valid(strong) {
			t.Error("expected fully covered container to be removed")
		}
		if parent != tr.Root() || idx != 1 {
			t.Errorf("expected (root, 1), got (%d, %d)", parent, idx)
		}
	})

	t.Run("Keeps Partially Covered Container", func(t *testing.T) {
		tr, strong := build(t)
		pair, _ := ResolveOffsets(tr, 1, 7)
		if _, _, err := tr.DeleteRange(pair); err != nil {
			t.Fatalf("DeleteRange failed: %v", err)
		}
		if !tr.Valid(strong) {
			t.Fatal("expected container holding the end anchor to survive")
		}
		if tr.TextOf(strong) != "lo" {
			t.Errorf("expected 'lo', got %q", tr.TextOf(strong))
		}
		if tr.Text() != "slo now" {
			t.Errorf("expected 'slo now', got %q", tr.Text())
		}
	})

	t.Run("Rejects Container Anchor", func(t *testing.T) {
		tr, _ := build(t)
		p := AnchorPair{Start: Anchor{Node: tr.Root()}, End: tr.End()}
		if _, _, err := tr.DeleteRange(p); !errors.Is(err, ErrInvalidNode) {
			t.Errorf("expected ErrInvalidNode, got %v", err)
		}
	})
}

func TestSplitText(t *testing.T) {
	tr := New()
	leaf := tr.NewText("hello")
	_ = tr.Append(tr.Root(), leaf)

	right, err := tr.SplitText(leaf, 2)
	if err != nil {
		t.Fatalf("SplitText failed: %v", err)
	}
	l, _ := tr.Node(leaf)
	r, _ := tr.Node(right)
	if l.Text != "he" || r.Text != "llo" {
		t.Errorf("expected he|llo, got %s|%s", l.Text, r.Text)
	}
	if tr.IndexOf(right) != 1 {
		t.Errorf("expected right half at index 1, got %d", tr.IndexOf(right))
	}
	if _, err := tr.SplitText(leaf, 9); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestSerialization(t *testing.T) {
	t.Run("Round Trip", func(t *testing.T) {
		tr := New()
		_ = tr.Append(tr.Root(), tr.NewElement(Node{Kind: KindHeading, Level: 2}, "Today"))
		_ = tr.Append(tr.Root(), tr.NewElement(Node{Kind: KindListItem, Ordered: true, Seq: 1}, "first"))
		_ = tr.Append(tr.Root(), tr.NewElement(Node{Kind: KindCheckbox, Checked: true, Indent: 2}, "done"))
		_ = tr.Append(tr.Root(), tr.NewNode(Node{Kind: KindBreak}))
		_ = tr.Append(tr.Root(), tr.NewElement(Node{Kind: KindEmphasis}, "tail"))

		data, err := Marshal(tr)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		got, err := Unmarshal(data)
		if err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if got.Text() != tr.Text() {
			t.Errorf("expected %q, got %q", tr.Text(), got.Text())
		}

		rows := got.FindAll(KindCheckbox)
		if len(rows) != 1 {
			t.Fatalf("expected 1 checkbox row, got %d", len(rows))
		}
		n, _ := got.Node(rows[0])
		if !n.Checked || n.Indent != 2 {
			t.Errorf("expected checked row with indent 2, got %+v", n)
		}

		h, _ := got.Node(got.FindAll(KindHeading)[0])
		if h.Level != 2 {
			t.Errorf("expected heading level 2, got %d", h.Level)
		}
		item, _ := got.Node(got.FindAll(KindListItem)[0])
		if !item.Ordered || item.Seq != 1 {
			t.Errorf("expected ordered item 1, got %+v", item)
		}
		if got.Count(KindBreak) != 1 {
			t.Errorf("expected 1 break, got %d", got.Count(KindBreak))
		}

		again, _ := Marshal(got)
		if string(again) != string(data) {
			t.Errorf("expected stable encoding\n%s\n%s", data, again)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		data, err := Marshal(New())
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if !strings.Contains(string(data), `"nodes":[]`) {
			t.Errorf("expected empty node list, got %s", data)
		}
	})

	invalid := []struct {
		name string
		data string
	}{
		{"Not JSON", `<p>hi</p>`},
		{"Unknown Version", `{"version":9,"nodes":[]}`},
		{"Unknown Type", `{"version":1,"nodes":[{"type":"table"}]}`},
		{"Nested Root", `{"version":1,"nodes":[{"type":"root"}]}`},
		{"Leaf With Children", `{"version":1,"nodes":[{"type":"text","children":[{"type":"text"}]}]}`},
		{"Heading Level", `{"version":1,"nodes":[{"type":"heading","level":4}]}`},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(tt.data)); !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("expected ErrInvalidDocument, got %v", err)
			}
		})
	}
}
