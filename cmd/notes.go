package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/focus/internal/formatter"
	"github.com/desertthunder/focus/internal/notes"
	"github.com/desertthunder/focus/internal/shared"
	"github.com/urfave/cli/v3"
)

// NotesShow prints the notes, or the persisted structural document with --json.
func (r *Runner) NotesShow(ctx context.Context, cmd *cli.Command) error {
	s, err := r.session(nil)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		data, err := formatter.ExportToJSON(s.Tree())
		if err != nil {
			return err
		}
		return r.writePlain("%s\n", data)
	}

	data, err := formatter.ExportToMarkdown(s.Tree())
	if err != nil {
		return err
	}
	r.writePlainHeader(r.heading(s))
	return r.writePlain("%s", data)
}

// NotesWrite appends text at the end of the notes.
func (r *Runner) NotesWrite(ctx context.Context, cmd *cli.Command) error {
	text := cmd.StringArg("text")
	if text == "" {
		return fmt.Errorf("%w: text", shared.ErrMissingArgument)
	}

	s, err := r.session(nil)
	if err != nil {
		return err
	}
	if err := s.SetCursor(s.Tree().End()); err != nil {
		return err
	}
	s.InsertText(text)
	return r.writePlain("✓ %d characters\n", s.Tree().Len())
}

// NotesFormat selects [start, end) and applies a format to it.
func (r *Runner) NotesFormat(ctx context.Context, cmd *cli.Command) error {
	kind, err := notes.ParseKind(cmd.String("kind"))
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidFlag, err)
	}
	start, end := cmd.Int("start"), cmd.Int("end")

	s, err := r.session(nil)
	if err != nil {
		return err
	}
	if end <= start || end > s.Tree().Len() {
		return fmt.Errorf("%w: [%d, %d) outside 0..%d", shared.ErrInvalidArgument, start, end, s.Tree().Len())
	}

	s.Select(start, end, notes.Rect{}, notes.Size{})
	if err := s.Apply(kind); err != nil {
		return err
	}

	d, _ := notes.Describe(kind)
	r.logger.Info("format applied", "kind", d.Name, "start", start, "end", end)
	return r.writePlain("✓ %s applied\n", d.Label)
}

// NotesToggle flips the checked state of a checkbox row.
func (r *Runner) NotesToggle(ctx context.Context, cmd *cli.Command) error {
	row := cmd.Int("row")

	s, err := r.session(nil)
	if err != nil {
		return err
	}
	var checked bool
	s.OnAnyToggle(func(e notes.RowEvent) { checked = e.Checked })
	if err := s.ToggleNth(row); err != nil {
		return err
	}

	state := "unchecked"
	if checked {
		state = "checked"
	}
	return r.writePlain("✓ Row %d %s\n", row, state)
}

// NotesTitle prints the title, or sets it when a name is given.
func (r *Runner) NotesTitle(ctx context.Context, cmd *cli.Command) error {
	s, err := r.session(nil)
	if err != nil {
		return err
	}

	name := cmd.StringArg("name")
	if name == "" {
		return r.writePlain("%s\n", s.Title())
	}
	if err := s.SetTitle(name); err != nil {
		return err
	}
	return r.writePlain("✓ Title set to %s\n", s.Title())
}

// NotesIcon prints, sets, hides or shows the title icon.
func (r *Runner) NotesIcon(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("hide") && cmd.Bool("show") {
		return fmt.Errorf("%w: cannot use --hide with --show", shared.ErrInvalidFlag)
	}

	if cmd.Bool("list") {
		for _, ic := range notes.Icons() {
			r.writePlain("%s  %s\n", ic.Glyph, ic.Name)
		}
		return nil
	}

	s, err := r.session(nil)
	if err != nil {
		return err
	}

	if glyph := cmd.StringArg("glyph"); glyph != "" {
		if err := s.SetIcon(glyph); err != nil {
			return err
		}
	}

	switch {
	case cmd.Bool("hide"):
		err = s.HideIcon()
	case cmd.Bool("show"):
		err = s.ShowIcon()
	}
	if err != nil {
		return err
	}

	visibility := "shown"
	if s.IconHidden() {
		visibility = "hidden"
	}
	return r.writePlain("%s (%s)\n", s.Icon(), visibility)
}

// NotesWidth prints the sidebar width, or sets it within the allowed range.
func (r *Runner) NotesWidth(ctx context.Context, cmd *cli.Command) error {
	s, err := r.session(nil)
	if err != nil {
		return err
	}

	if w := cmd.Int("set"); w != 0 {
		viewport := float64(cmd.Int("viewport"))
		ok, err := s.SetWidth(w, viewport)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: width must be between %d and %.0f", shared.ErrInvalidArgument,
				notes.MinWidth, viewport*notes.MaxWidthRatio)
		}
	}
	return r.writePlain("%dpx\n", s.Width())
}

// NotesExport writes the notes in the requested format.
func (r *Runner) NotesExport(ctx context.Context, cmd *cli.Command) error {
	f, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	s, err := r.session(nil)
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(s.Tree(), f, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Infof("notes exported to %v", path)
	r.writePlain("✓ Notes exported to %s\n", path)
	r.writePlain("  Format: %s\n", f)
	r.writePlain("  Checkbox rows: %d\n", len(s.Rows()))
	return nil
}

func (r *Runner) heading(s *notes.Session) string {
	if s.IconHidden() {
		return s.Title()
	}
	return s.Icon() + " " + s.Title()
}
