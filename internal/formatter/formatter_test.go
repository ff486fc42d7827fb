package formatter

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/focus/internal/notes"
	"github.com/desertthunder/focus/internal/shared"
	"github.com/desertthunder/focus/internal/surface"
	th "github.com/desertthunder/focus/internal/testing"
)

// sampleTree builds a surface with one of every node kind.
func sampleTree(t *testing.T) *surface.Tree {
	t.Helper()
	tree := surface.New()
	root := tree.Root()

	add := func(id surface.NodeID) {
		if err := tree.Append(root, id); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	add(tree.NewText("intro "))
	add(tree.NewElement(surface.Node{Kind: surface.KindStrong}, "bold"))
	add(tree.NewText(" & "))
	add(tree.NewElement(surface.Node{Kind: surface.KindEmphasis}, "<em>"))
	add(tree.NewElement(surface.Node{Kind: surface.KindHeading, Level: 2}, "Plan"))
	add(tree.NewElement(surface.Node{Kind: surface.KindListItem, Ordered: true, Seq: 1}, "one"))
	add(tree.NewElement(surface.Node{Kind: surface.KindListItem, Ordered: true, Seq: 2}, "two"))
	add(tree.NewElement(surface.Node{Kind: surface.KindListItem}, "dot"))
	add(tree.NewElement(surface.Node{Kind: surface.KindCheckbox, Indent: 1, Checked: true}, "done"))
	add(tree.NewElement(surface.Node{Kind: surface.KindCheckbox}, "todo"))
	add(tree.NewText("tail"))
	add(tree.NewNode(surface.Node{Kind: surface.KindBreak}))
	add(tree.NewText("last"))
	return tree
}

func TestExporters(t *testing.T) {
	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleTree(t))
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		want := strings.Join([]string{
			"intro **bold** & *<em>*",
			"## Plan",
			"1. one",
			"2. two",
			"- dot",
			"  - [x] done",
			"- [ ] todo",
			"tail",
			"last",
			"",
		}, "\n")
		if string(data) != want {
			t.Errorf("unexpected markdown:\n%s\nwant:\n%s", data, want)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleTree(t))
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		want := "intro bold & <em>\nPlan\none\ntwo\ndot\ndone\ntodo\ntail\nlast\n"
		if string(data) != want {
			t.Errorf("expected %q, got %q", want, data)
		}
	})

	t.Run("ExportToHTML", func(t *testing.T) {
		data, err := ExportToHTML(sampleTree(t))
		if err != nil {
			t.Fatalf("ExportToHTML failed: %v", err)
		}
		output := string(data)

		for _, want := range []string{
			"<strong>bold</strong>",
			" &amp; ",
			"<em>&lt;em&gt;</em>",
			`<h2 style="font-size: 1.5em; font-weight: bold; margin: 0.5em 0">Plan</h2>`,
			`<div style="margin-left: 1.5em">2. two</div>`,
			`<div style="margin-left: 1.5em">• dot</div>`,
			`margin-left: 2em"><input type="checkbox" checked`,
			`<span style="text-decoration: line-through; opacity: 0.6">done</span>`,
			`<span style="text-decoration: none; opacity: 1">todo</span>`,
			"tail<br>last",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("HTML missing %q in:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		tree := sampleTree(t)
		data, err := ExportToJSON(tree)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		back, err := surface.Unmarshal(data)
		if err != nil {
			t.Fatalf("expected a loadable document: %v", err)
		}
		if back.Text() != tree.Text() {
			t.Errorf("expected %q, got %q", tree.Text(), back.Text())
		}
	})

	t.Run("Empty Surface", func(t *testing.T) {
		for _, f := range []Format{Markdown, Text, HTML} {
			data, err := Export(surface.New(), f)
			if err != nil || len(data) != 0 {
				t.Errorf("%s: expected empty output, got %q (%v)", f, data, err)
			}
		}
	})

	t.Run("From A Formatted Session", func(t *testing.T) {
		s := notes.NewSession(notes.SessionOpts{Store: th.NewMemoryStore(nil)})
		s.Load()
		s.InsertText("milk\neggs")
		s.Select(0, 9, notes.Rect{}, notes.Size{Height: 800})
		if err := s.Apply(notes.Checkbox); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if err := s.ToggleNth(1); err != nil {
			t.Fatalf("ToggleNth failed: %v", err)
		}

		data, _ := ExportToMarkdown(s.Tree())
		if string(data) != "- [x] milk\n- [ ] eggs\n" {
			t.Errorf("unexpected markdown %q", data)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"markdown", Markdown},
		{"md", Markdown},
		{"TEXT", Text},
		{"txt", Text},
		{"html", HTML},
		{" json ", JSON},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if err != nil || got != tt.want {
				t.Errorf("expected %s, got %s (%v)", tt.want, got, err)
			}
		})
	}

	t.Run("Unsupported", func(t *testing.T) {
		if _, err := ParseFormat("csv"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
		if _, err := Export(surface.New(), Format("csv")); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestWriteExport(t *testing.T) {
	t.Run("Explicit Path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.md")
		got, err := WriteExport(sampleTree(t), Markdown, path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		th.AssertFileExists(t, got)
		if !strings.HasPrefix(th.MustReadFile(t, got), "intro **bold**") {
			t.Error("expected markdown content in file")
		}
	})

	t.Run("Default Filename", func(t *testing.T) {
		orig := th.MustGetwd(t)
		defer th.MustChdir(t, orig)
		th.MustChdir(t, t.TempDir())

		got, err := WriteExport(sampleTree(t), HTML, "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if got != "notes.html" {
			t.Errorf("expected notes.html, got %s", got)
		}
		th.AssertFileExists(t, got)
	})

	t.Run("Unwritable Path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "out.txt")
		if _, err := WriteExport(sampleTree(t), Text, path); err == nil {
			t.Error("expected write error")
		}
	})
}
