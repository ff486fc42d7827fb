package tasks

import (
	"github.com/desertthunder/focus/internal/models"
)

// Update is emitted by [PlaybackEngine.Run] after every poll.
type Update struct {
	Phase   Phase                 // What produced the update
	State   *models.PlaybackState // Latest state (nil when nothing is playing)
	Message string                // Human-readable message for display
	Err     error                 // Set for Failed and Expired
}

// Phase of a playback update
type Phase int

const (
	Polled Phase = iota
	Failed
	Expired
)

func (p Phase) String() string {
	switch p {
	case Polled:
		return "polled"
	case Failed:
		return "failed"
	case Expired:
		return "expired"
	default:
		return ""
	}
}

func polledUpdate(state *models.PlaybackState) Update {
	return Update{Phase: Polled, State: state, Message: state.Summary()}
}

func failedUpdate(last *models.PlaybackState, err error) Update {
	return Update{Phase: Failed, State: last, Message: "Error loading playback", Err: err}
}

func expiredUpdate(err error) Update {
	return Update{Phase: Expired, Message: "Spotify session expired, connect again", Err: err}
}

// sendUpdate sends without blocking; a full channel drops the update.
func sendUpdate(updates chan<- Update, update Update) {
	if updates == nil {
		return
	}
	select {
	case updates <- update:
	default:
	}
}
