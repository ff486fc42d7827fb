package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/focus/internal/notes"
	"github.com/desertthunder/focus/internal/shared"
	"github.com/desertthunder/focus/internal/tasks"
)

// Host units per terminal cell, used to express selection rectangles in the
// same units as the sidebar width preference.
const (
	cellWidth  = 8
	cellHeight = 16

	minColumns = 20
	menuWidth  = 28
	headerRows = 2
)

// Model is the notes editor with a now-playing bar.
type Model struct {
	ctx     context.Context
	session *notes.Session
	menu    *Menu
	engine  *tasks.PlaybackEngine
	logger  *log.Logger

	updates  chan tasks.Update
	playback tasks.Update
	polled   bool
	stopped  error

	mark   int
	status string
	failed bool

	width  int
	height int
	help   help.Model
	keys   keyMap
}

// ModelOpts configures a [Model]. Session and Menu are required and the
// session must have been created with Menu as its menu host. Engine may be nil
// when Spotify is not connected.
type ModelOpts struct {
	Session *notes.Session
	Menu    *Menu
	Engine  *tasks.PlaybackEngine
	Logger  *log.Logger
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	m := &Model{
		ctx:     ctx,
		session: opts.Session,
		menu:    opts.Menu,
		engine:  opts.Engine,
		logger:  logger,
		mark:    -1,
		help:    help.New(),
		keys:    newKeyMap(),
	}
	if m.engine != nil {
		m.updates = make(chan tasks.Update, 8)
	}
	m.session.OnAnyToggle(func(e notes.RowEvent) {
		verb := "Unchecked"
		if e.Checked {
			verb = "Checked"
		}
		m.setStatus(fmt.Sprintf("%s %q", verb, m.session.Tree().TextOf(e.Row)), nil)
	})
	return m
}

// Init starts the playback engine when one is configured.
func (m *Model) Init() tea.Cmd {
	if m.engine == nil {
		return nil
	}
	return tea.Batch(m.runEngine(), m.waitForUpdate())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		switch msg.kind {
		case MsgPlayback:
			m.playback = msg.data.(tasks.Update)
			m.polled = true
			return m, m.waitForUpdate()
		case MsgEngineStopped:
			m.stopped = msg.err()
			if m.stopped != nil && !errors.Is(m.stopped, context.Canceled) {
				m.logger.Warn("playback engine stopped", "error", m.stopped)
			}
			return m, nil
		case MsgControlDone:
			if err := msg.err(); err != nil {
				m.setStatus("", err)
			}
			return m, nil
		}
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.playPause):
		return m, m.control(tasks.Toggle)
	case key.Matches(msg, m.keys.next):
		return m, m.control(tasks.Next)
	case key.Matches(msg, m.keys.prev):
		return m, m.control(tasks.Previous)
	case key.Matches(msg, m.keys.extendL):
		m.extend(-1)
		return m, nil
	case key.Matches(msg, m.keys.extendR):
		m.extend(1)
		return m, nil
	}

	if m.menu.Visible() {
		switch {
		case key.Matches(msg, m.keys.up):
			m.menu.CursorUp()
			return m, nil
		case key.Matches(msg, m.keys.down):
			m.menu.CursorDown()
			return m, nil
		case key.Matches(msg, m.keys.enter):
			m.applySelected()
			return m, nil
		case key.Matches(msg, m.keys.back):
			m.clearSelection()
			return m, nil
		}
	}

	m.clearSelection()
	switch {
	case key.Matches(msg, m.keys.left):
		m.moveTo(m.session.CursorOffset() - 1)
	case key.Matches(msg, m.keys.right):
		m.moveTo(m.session.CursorOffset() + 1)
	case key.Matches(msg, m.keys.home):
		m.moveTo(0)
	case key.Matches(msg, m.keys.end):
		m.moveTo(m.session.Tree().Len())
	case key.Matches(msg, m.keys.enter):
		m.session.HandleKey(notes.KeyEnter)
	case key.Matches(msg, m.keys.tab):
		m.session.HandleKey(notes.KeyTab)
	case key.Matches(msg, m.keys.untab):
		m.session.HandleKey(notes.KeyShiftTab)
	case key.Matches(msg, m.keys.backspace):
		m.session.HandleKey(notes.KeyBackspace)
	case key.Matches(msg, m.keys.check):
		if err := m.session.ToggleAtCursor(); err != nil {
			m.setStatus("", err)
		}
	case msg.Type == tea.KeySpace:
		m.session.InsertText(" ")
	case msg.Type == tea.KeyRunes:
		m.session.InsertText(string(msg.Runes))
	}
	return m, nil
}

func (m *Model) moveTo(off int) {
	off = min(max(off, 0), m.session.Tree().Len())
	if err := m.session.SetCursorOffset(off); err != nil {
		m.logger.Debug("cursor move ignored", "offset", off, "error", err)
	}
}

// extend grows the selection from the mark by delta and reports it to the
// session, which shows the menu next to it.
func (m *Model) extend(delta int) {
	if m.mark < 0 {
		m.mark = m.session.CursorOffset()
	}
	m.moveTo(m.session.CursorOffset() + delta)

	start, end := min(m.mark, m.session.CursorOffset()), max(m.mark, m.session.CursorOffset())
	if start == end {
		m.clearSelection()
		return
	}
	m.session.Select(start, end, m.selectionRect(start, end), m.viewport())
}

func (m *Model) clearSelection() {
	if m.mark < 0 && !m.menu.Visible() {
		return
	}
	m.mark = -1
	m.session.ClearSelection()
}

func (m *Model) applySelected() {
	kind, ok := m.menu.Selected()
	m.mark = -1
	if !ok {
		m.session.ClearSelection()
		return
	}

	d, _ := notes.Describe(kind)
	if err := m.session.Apply(kind); err != nil {
		m.setStatus("", err)
		return
	}
	m.setStatus("Applied "+d.Label, nil)
}

func (m *Model) selectionRect(start, end int) notes.Rect {
	row, col := locate(layout(m.session.Tree()), start)
	return notes.Rect{
		Left:   float64(col * cellWidth),
		Top:    float64((row + headerRows) * cellHeight),
		Width:  float64((end - start) * cellWidth),
		Height: cellHeight,
	}
}

func (m *Model) viewport() notes.Size {
	return notes.Size{Width: float64(m.width * cellWidth), Height: float64(m.height * cellHeight)}
}

func (m *Model) setStatus(s string, err error) {
	m.status = s
	m.failed = err != nil
	if err != nil {
		m.status = err.Error()
	}
}

func (m *Model) control(action tasks.Action) tea.Cmd {
	if m.engine == nil {
		m.setStatus("", shared.ErrNotAuthenticated)
		return nil
	}
	return func() tea.Msg {
		return controlDoneMsg(action, m.engine.Control(m.ctx, action))
	}
}

func (m *Model) runEngine() tea.Cmd {
	return func() tea.Msg {
		return engineStoppedMsg(m.engine.Run(m.ctx, m.updates))
	}
}

func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		select {
		case update := <-m.updates:
			return playbackMsg(update)
		case <-m.ctx.Done():
			return engineStoppedMsg(m.ctx.Err())
		}
	}
}

// View renders the header, the editor, the menu and the now-playing bar.
func (m *Model) View() string {
	cursor := m.session.CursorOffset()
	selStart, selEnd := -1, -1
	if m.mark >= 0 {
		selStart, selEnd = min(m.mark, cursor), max(m.mark, cursor)
	}

	editor := lipgloss.NewStyle().Width(m.columns()).
		Render(render(layout(m.session.Tree()), selStart, selEnd, cursor))

	sections := []string{m.renderHeader()}
	if m.menu.Visible() {
		menu := lipgloss.NewStyle().MarginLeft(m.menuMargin()).Render(m.menu.View())
		if m.menu.Placement().Above {
			sections = append(sections, menu, editor)
		} else {
			sections = append(sections, editor, menu)
		}
	} else {
		sections = append(sections, editor)
	}

	if m.status != "" {
		style := styles.ok
		if m.failed {
			style = styles.err
		}
		sections = append(sections, style.Render(m.status))
	}
	sections = append(sections, m.renderNowPlaying(), m.help.View(m.keys))
	return strings.Join(sections, "\n")
}

// columns converts the saved sidebar width to terminal columns.
func (m *Model) columns() int {
	cols := max(m.session.Width()/cellWidth, minColumns)
	if m.width > 0 {
		cols = min(cols, max(m.width-2, minColumns))
	}
	return cols
}

func (m *Model) menuMargin() int {
	left := int(m.menu.Placement().Left)/cellWidth - menuWidth/2
	return min(max(left, 0), max(m.columns()-menuWidth, 0))
}

func (m *Model) renderHeader() string {
	title := m.session.Title()
	if !m.session.IconHidden() {
		title = m.session.Icon() + " " + title
	}
	return styles.title.Render(title)
}

func (m *Model) renderNowPlaying() string {
	switch {
	case m.engine == nil:
		return styles.help.Render("Spotify not connected")
	case m.playback.Phase == tasks.Expired:
		return styles.warn.Render(m.playback.Message)
	case m.stopped != nil && !errors.Is(m.stopped, context.Canceled):
		return styles.warn.Render("Playback stopped: " + m.stopped.Error())
	case !m.polled:
		return styles.help.Render("Loading playback...")
	case m.playback.Phase == tasks.Failed:
		return styles.err.Render(m.playback.Message)
	default:
		return styles.bar.Render("♫ " + m.playback.Message)
	}
}
