// Package notify holds the single transient message shown to the user.
//
// There is no queue: showing a message replaces the visible one.
package notify

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Type is the severity of a notification.
type Type string

const (
	Success Type = "success"
	Error   Type = "error"
	Warning Type = "warning"
	Info    Type = "info"
)

// DefaultDuration is used by the typed helpers.
const DefaultDuration = 5 * time.Second

// Notification is one message. A zero Duration persists until dismissed.
type Notification struct {
	ID       uint64        `json:"id"`
	Type     Type          `json:"type"`
	Title    string        `json:"title"`
	Message  string        `json:"message"`
	Duration time.Duration `json:"duration"`
}

// Listener observes changes; visible is false after a dismissal.
type Listener func(n Notification, visible bool)

// Notifier owns the current notification.
type Notifier struct {
	mu        sync.Mutex
	clock     clock.Clock
	seq       uint64
	current   *Notification
	timer     *clock.Timer
	listeners []Listener
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithClock injects the clock driving auto-dismiss.
func WithClock(c clock.Clock) Option {
	return func(n *Notifier) { n.clock = c }
}

// New returns an empty Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{clock: clock.New()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Subscribe registers fn for every change.
func (n *Notifier) Subscribe(fn Listener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, fn)
}

// Show replaces the current notification.
func (n *Notifier) Show(typ Type, title, message string, d time.Duration) Notification {
	n.mu.Lock()
	n.seq++
	note := Notification{ID: n.seq, Type: typ, Title: title, Message: message, Duration: d}
	n.current = &note
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	if d > 0 {
		id := note.ID
		n.timer = n.clock.AfterFunc(d, func() { n.expire(id) })
	}
	listeners := n.listeners
	n.mu.Unlock()

	for _, fn := range listeners {
		fn(note, true)
	}
	return note
}

// Success shows a success message with the default duration.
func (n *Notifier) Success(title, message string) Notification {
	return n.Show(Success, title, message, DefaultDuration)
}

// Error shows an error message that persists until dismissed.
func (n *Notifier) Error(title, message string) Notification {
	return n.Show(Error, title, message, 0)
}

// Warning shows a warning with the default duration.
func (n *Notifier) Warning(title, message string) Notification {
	return n.Show(Warning, title, message, DefaultDuration)
}

// Info shows an informational message with the default duration.
func (n *Notifier) Info(title, message string) Notification {
	return n.Show(Info, title, message, DefaultDuration)
}

// Current returns the visible notification.
func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notification{}, false
	}
	return *n.current, true
}

// Dismiss hides the current notification.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	if n.current == nil {
		n.mu.Unlock()
		return
	}
	n.dismissLocked()
}

// expire dismisses id only if it is still the visible notification.
func (n *Notifier) expire(id uint64) {
	n.mu.Lock()
	if n.current == nil || n.current.ID != id {
		n.mu.Unlock()
		return
	}
	n.dismissLocked()
}

// dismissLocked clears the current notification and unlocks n.mu before
// calling listeners.
func (n *Notifier) dismissLocked() {
	note := *n.current
	n.current = nil
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	listeners := n.listeners
	n.mu.Unlock()

	for _, fn := range listeners {
		fn(note, false)
	}
}
