package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/focus/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlayback MsgKind = iota
	MsgEngineStopped
	MsgControlDone
)

// playbackMsg is the constructor for [MsgPlayback]
func playbackMsg(update tasks.Update) Msg {
	return Msg{kind: MsgPlayback, data: update}
}

// engineStoppedMsg is the constructor for [MsgEngineStopped]
func engineStoppedMsg(err error) Msg {
	return Msg{kind: MsgEngineStopped, data: err}
}

// controlDoneMsg is the constructor for [MsgControlDone]
func controlDoneMsg(action tasks.Action, err error) Msg {
	return Msg{
		kind: MsgControlDone,
		data: struct {
			action tasks.Action
			err    error
		}{action, err},
	}
}

func (m Msg) err() error {
	switch d := m.data.(type) {
	case error:
		return d
	case tasks.Update:
		return d.Err
	case struct {
		action tasks.Action
		err    error
	}:
		return d.err
	}
	return nil
}
