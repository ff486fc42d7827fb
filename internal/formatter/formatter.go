// package formatter exports the notes surface to Markdown, plain text, HTML and JSON
package formatter

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/focus/internal/notes"
	"github.com/desertthunder/focus/internal/shared"
	"github.com/desertthunder/focus/internal/surface"
)

// Format is an export format name.
type Format string

const (
	Markdown Format = "markdown"
	Text     Format = "text"
	HTML     Format = "html"
	JSON     Format = "json"
)

var extensions = map[Format]string{
	Markdown: "md",
	Text:     "txt",
	HTML:     "html",
	JSON:     "json",
}

// ParseFormat accepts a format name or its file extension.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, ext := range extensions {
		if s == string(f) || s == ext {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidFlag, s)
}

// Extension returns the file extension for f, without a dot.
func (f Format) Extension() string {
	return extensions[f]
}

// Export renders t in format f.
func Export(t *surface.Tree, f Format) ([]byte, error) {
	switch f {
	case Markdown:
		return ExportToMarkdown(t)
	case Text:
		return ExportToText(t)
	case HTML:
		return ExportToHTML(t)
	case JSON:
		return ExportToJSON(t)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidFlag, f)
	}
}

// ExportToMarkdown uses each format's shortcut as its marker. Checkbox rows are indented two
// spaces per level.
func ExportToMarkdown(t *surface.Tree) ([]byte, error) {
	w := &rowWriter{t: t, decorate: markdownMarkers}
	return w.render(), nil
}

// ExportToText writes the flattened text with every row on its own line.
func ExportToText(t *surface.Tree) ([]byte, error) {
	w := &rowWriter{t: t, decorate: func(surface.Node) (string, string, string) { return "", "", "" }}
	return w.render(), nil
}

// ExportToJSON writes the persisted structural document.
func ExportToJSON(t *surface.Tree) ([]byte, error) {
	return surface.Marshal(t)
}

func markdownMarkers(n surface.Node) (prefix, open, end string) {
	d, ok := notes.DescriptorOf(n)
	if !ok {
		return "", "", ""
	}
	switch n.Kind {
	case surface.KindListItem:
		if n.Ordered {
			return strconv.Itoa(n.Seq) + ". ", "", ""
		}
		return d.Shortcut, "", ""
	case surface.KindCheckbox:
		box := d.Shortcut
		if n.Checked {
			box = strings.Replace(box, "[ ]", "[x]", 1)
		}
		return strings.Repeat("  ", n.Indent) + box, "", ""
	case surface.KindStrong, surface.KindEmphasis:
		return "", d.Shortcut, d.Shortcut
	default:
		return d.Shortcut, "", ""
	}
}

// rowWriter renders block nodes on their own lines and wraps inline nodes in markers.
type rowWriter struct {
	t        *surface.Tree
	buf      bytes.Buffer
	decorate func(surface.Node) (prefix, open, end string)
}

func (w *rowWriter) render() []byte {
	for _, c := range w.t.Children(w.t.Root()) {
		w.node(c)
	}
	w.endLine()
	return w.buf.Bytes()
}

func (w *rowWriter) endLine() {
	if b := w.buf.Bytes(); len(b) > 0 && b[len(b)-1] != '\n' {
		w.buf.WriteByte('\n')
	}
}

func (w *rowWriter) node(id surface.NodeID) {
	n, _ := w.t.Node(id)
	switch n.Kind {
	case surface.KindText:
		w.buf.WriteString(n.Text)
		return
	case surface.KindBreak:
		w.buf.WriteByte('\n')
		return
	}

	prefix, open, end := w.decorate(n)
	if n.Kind.IsBlock() {
		w.endLine()
		w.buf.WriteString(prefix)
	}
	w.buf.WriteString(open)
	for _, c := range w.t.Children(id) {
		w.node(c)
	}
	w.buf.WriteString(end)
	if n.Kind.IsBlock() {
		w.endLine()
	}
}

// ExportToHTML mirrors the editor markup: scaled headings, indented list rows and checkbox
// rows whose labels carry their presentation.
func ExportToHTML(t *surface.Tree) ([]byte, error) {
	var buf bytes.Buffer
	for _, c := range t.Children(t.Root()) {
		writeHTML(&buf, t, c)
	}
	return buf.Bytes(), nil
}

func writeHTML(buf *bytes.Buffer, t *surface.Tree, id surface.NodeID) {
	n, _ := t.Node(id)
	children := func() {
		for _, c := range t.Children(id) {
			writeHTML(buf, t, c)
		}
	}

	switch n.Kind {
	case surface.KindText:
		buf.WriteString(strings.ReplaceAll(html.EscapeString(n.Text), "\n", "<br>"))
	case surface.KindBreak:
		buf.WriteString("<br>")
	case surface.KindHeading:
		d, _ := notes.DescriptorOf(n)
		scale := strconv.FormatFloat(d.Scale, 'f', -1, 64)
		fmt.Fprintf(buf, `<h%d style="font-size: %sem; font-weight: bold; margin: 0.5em 0">`, n.Level, scale)
		children()
		fmt.Fprintf(buf, "</h%d>", n.Level)
	case surface.KindStrong:
		buf.WriteString("<strong>")
		children()
		buf.WriteString("</strong>")
	case surface.KindEmphasis:
		buf.WriteString("<em>")
		children()
		buf.WriteString("</em>")
	case surface.KindListItem:
		marker := "• "
		if n.Ordered {
			marker = strconv.Itoa(n.Seq) + ". "
		}
		buf.WriteString(`<div style="margin-left: 1.5em">` + marker)
		children()
		buf.WriteString("</div>")
	case surface.KindCheckbox:
		style := "display: flex; align-items: center; gap: 0.5em; margin: 0.25em 0"
		if n.Indent > 0 {
			style += fmt.Sprintf("; margin-left: %dem", 2*n.Indent)
		}
		checked := ""
		if n.Checked {
			checked = " checked"
		}
		p := notes.PresentationFor(n.Checked)
		decoration := "none"
		if p.Strike {
			decoration = "line-through"
		}
		fmt.Fprintf(buf, `<div style="%s"><input type="checkbox"%s style="cursor: pointer">`, style, checked)
		fmt.Fprintf(buf, `<span style="text-decoration: %s; opacity: %s">`, decoration, strconv.FormatFloat(p.Opacity, 'f', -1, 64))
		children()
		buf.WriteString("</span></div>")
	}
}

// WriteExport renders t in format f and writes it to path.
//
// Defaults to notes.{ext} as the filename.
func WriteExport(t *surface.Tree, f Format, path string) (string, error) {
	if path == "" {
		path = "notes." + f.Extension()
	}

	data, err := Export(t, f)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s export: %w", f, err)
	}
	return path, nil
}
