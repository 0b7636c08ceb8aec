// Package fan is the swipeable card fan shared by the daily moves and the
// first-time tasks. It holds gesture state only; callers own the items.
package fan

import "math"

const (
	SwipeXThreshold        = 80.0
	SwipeYThreshold        = -100.0
	SwipeVelocityThreshold = 500.0

	DefaultWidth = 390.0
)

type Phase int

const (
	Idle Phase = iota
	Dragging
	Exiting
)

func (p Phase) String() string {
	switch p {
	case Dragging:
		return "dragging"
	case Exiting:
		return "exiting"
	default:
		return "idle"
	}
}

type Intent int

const (
	IntentNone Intent = iota
	IntentComplete
	IntentAdvance
	IntentRetreat
	IntentSnapBack
)

func (i Intent) String() string {
	switch i {
	case IntentComplete:
		return "complete"
	case IntentAdvance:
		return "advance"
	case IntentRetreat:
		return "retreat"
	case IntentSnapBack:
		return "snap_back"
	default:
		return "none"
	}
}

type Display struct {
	Badge  string
	Title  string
	Body   string
	Footer string
	Points string
}

type Validation struct {
	Ready  bool
	Reason string
}

// Item is anything the fan can show and complete.
type Item interface {
	ID() string
	Display() Display
	Validation() Validation
}

type Fan[T Item] struct {
	items     []T
	focus     int
	phase     Phase
	dx, dy    float64
	width     float64
	exitingID string
}

func New[T Item](items []T) *Fan[T] {
	f := &Fan[T]{width: DefaultWidth}
	f.SetItems(items)
	return f
}

// SetWidth sets the viewport width used for the center card tilt.
func (f *Fan[T]) SetWidth(w float64) {
	if w > 0 {
		f.width = w
	}
}

// SetItems replaces the list. A focus index that falls off the end resets
// to the first card, and any gesture in progress is dropped.
func (f *Fan[T]) SetItems(items []T) {
	f.items = append([]T(nil), items...)
	if f.focus >= len(f.items) || f.focus < 0 {
		f.focus = 0
	}
	f.reset()
}

func (f *Fan[T]) Items() []T { return append([]T(nil), f.items...) }

func (f *Fan[T]) Len() int { return len(f.items) }

func (f *Fan[T]) Phase() Phase { return f.phase }

// FocusIndex is always within [0, Len()-1], or 0 for an empty fan.
func (f *Fan[T]) FocusIndex() int { return f.safeFocus() }

func (f *Fan[T]) Focused() (T, bool) {
	var zero T
	if len(f.items) == 0 {
		return zero, false
	}
	return f.items[f.safeFocus()], true
}

func (f *Fan[T]) Offset() (dx, dy float64) { return f.dx, f.dy }

// Replace swaps the item with the same id, keeping focus.
func (f *Fan[T]) Replace(item T) bool {
	for i := range f.items {
		if f.items[i].ID() == item.ID() {
			f.items[i] = item
			return true
		}
	}
	return false
}

func (f *Fan[T]) Press() {
	if f.phase == Exiting || len(f.items) == 0 {
		return
	}
	f.phase = Dragging
}

// Drag records the live offset. Downward movement is clamped away.
func (f *Fan[T]) Drag(dx, dy float64) {
	if f.phase != Dragging {
		return
	}
	f.dx = dx
	f.dy = math.Min(0, dy)
}

// Release resolves the gesture. Complete wins over horizontal swipes, but
// only when the focused item validates.
func (f *Fan[T]) Release(vx, vy float64) Intent {
	if f.phase != Dragging || len(f.items) == 0 {
		return IntentNone
	}
	current := f.items[f.safeFocus()]
	n := len(f.items)

	switch {
	case (f.dy < SwipeYThreshold || vy < -SwipeVelocityThreshold) && current.Validation().Ready:
		f.phase = Exiting
		f.exitingID = current.ID()
		return IntentComplete
	case f.dx < -SwipeXThreshold || vx < -SwipeVelocityThreshold:
		f.focus = (f.safeFocus() + 1) % n
		f.reset()
		return IntentAdvance
	case f.dx > SwipeXThreshold || vx > SwipeVelocityThreshold:
		f.focus = (f.safeFocus() - 1 + n) % n
		f.reset()
		return IntentRetreat
	default:
		f.reset()
		return IntentSnapBack
	}
}

// Settle ends the exit animation and returns the id that left the fan.
func (f *Fan[T]) Settle() (string, bool) {
	if f.phase != Exiting {
		return "", false
	}
	id := f.exitingID
	f.reset()
	return id, true
}

// Abort returns an exiting or dragging card to rest.
func (f *Fan[T]) Abort() {
	f.reset()
}

func (f *Fan[T]) reset() {
	f.phase = Idle
	f.dx, f.dy = 0, 0
	f.exitingID = ""
}

func (f *Fan[T]) safeFocus() int {
	if len(f.items) == 0 {
		return 0
	}
	return max(0, min(f.focus, len(f.items)-1))
}
