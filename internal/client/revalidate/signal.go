// Package revalidate marks cached reads stale on a timer and when the user
// comes back to the app, so the next read refetches them.
package revalidate

import "sync"

// Event is an external lifecycle notification.
type Event int

const (
	// PageRestored: the app was restored from a suspended navigation state.
	PageRestored Event = iota + 1
	// VisibilityVisible: the app became visible again.
	VisibilityVisible
	// VisibilityHidden: the app was hidden. It triggers nothing.
	VisibilityHidden
	// FocusGained: the window regained input focus.
	FocusGained
)

func (e Event) String() string {
	switch e {
	case PageRestored:
		return "page-restored"
	case VisibilityVisible:
		return "visible"
	case VisibilityHidden:
		return "hidden"
	case FocusGained:
		return "focus"
	default:
		return "unknown"
	}
}

// revalidates reports whether e should mark data stale.
func (e Event) revalidates() bool {
	return e == PageRestored || e == VisibilityVisible || e == FocusGained
}

// Signal is any source of lifecycle events. The channel is closed when the
// source goes away.
type Signal interface {
	Events() <-chan Event
}

// Channel is an in-process Signal fed by Emit.
type Channel struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

// NewChannel creates a Channel buffering up to size events.
func NewChannel(size int) *Channel {
	if size < 1 {
		size = 1
	}
	return &Channel{ch: make(chan Event, size)}
}

func (c *Channel) Events() <-chan Event {
	return c.ch
}

// Emit queues e. When the buffer is full the event is dropped: a queued
// revalidation already covers it. It reports whether e was queued.
func (c *Channel) Emit(e Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.ch <- e:
		return true
	default:
		return false
	}
}

// Close ends the event stream. It is safe to call more than once.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}
