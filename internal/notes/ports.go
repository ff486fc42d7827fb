package notes

// Storage keys shared with the browser dashboard.
const (
	KeyContent    = "notesContent"
	KeyTitle      = "notesTitle"
	KeyIcon       = "notesEmoji"
	KeyIconHidden = "emojiButtonHidden"
	KeyWidth      = "notesWidth"
)

// Store is the persistence host. Absence of a key means "use the default".
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// MenuHost shows and hides the format menu.
type MenuHost interface {
	ShowAt(p Placement)
	Hide()
}

type nopMenu struct{}

func (nopMenu) ShowAt(Placement) {}
func (nopMenu) Hide()            {}

// Signal is a minimal observer list. Observers run synchronously in
// registration order.
type Signal[T any] struct {
	observers []func(T)
}

// Connect registers fn.
func (s *Signal[T]) Connect(fn func(T)) {
	s.observers = append(s.observers, fn)
}

// Emit calls every observer with v.
func (s *Signal[T]) Emit(v T) {
	for _, fn := range s.observers {
		fn(v)
	}
}

// Len returns the number of registered observers.
func (s *Signal[T]) Len() int { return len(s.observers) }
