package revalidate

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/notesync/internal/client/cache"
	"github.com/dmitrijs2005/notesync/internal/client/models"
	"github.com/dmitrijs2005/notesync/internal/logging"
)

// Invalidator is the part of the cache the revalidator needs.
type Invalidator interface {
	Invalidate(key cache.Key)
}

// Revalidator runs two stale-triggers on top of the cache's own staleness
// windows: a fixed-interval poll of the note list, and lifecycle events that
// mark the note list and the currently open note stale. It never writes
// values itself.
type Revalidator struct {
	inv      Invalidator
	signal   Signal
	interval time.Duration
	log      logging.Logger
	refetch  func(ctx context.Context)

	mu       sync.Mutex
	selected *models.NoteID
}

// Option configures a Revalidator.
type Option func(*Revalidator)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(r *Revalidator) { r.log = l }
}

// WithRefetch schedules fn in the background after every trigger, so stale
// entries are reloaded before the next read asks for them.
func WithRefetch(fn func(ctx context.Context)) Option {
	return func(r *Revalidator) { r.refetch = fn }
}

// New creates a Revalidator. A zero interval disables polling; a nil
// signal disables lifecycle triggers.
func New(inv Invalidator, signal Signal, interval time.Duration, opts ...Option) *Revalidator {
	r := &Revalidator{
		inv:      inv,
		signal:   signal,
		interval: interval,
		log:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Select records the note open in a detail view.
func (r *Revalidator) Select(id models.NoteID) {
	r.mu.Lock()
	r.selected = &id
	r.mu.Unlock()
}

// Deselect records that no detail view is open.
func (r *Revalidator) Deselect() {
	r.mu.Lock()
	r.selected = nil
	r.mu.Unlock()
}

// Selected returns the open note, if any.
func (r *Revalidator) Selected() (models.NoteID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.selected == nil {
		return 0, false
	}
	return *r.selected, true
}

// Poll marks the note list stale.
func (r *Revalidator) Poll(ctx context.Context) {
	r.inv.Invalidate(cache.NotesKey())
	r.log.Debug(ctx, "note list marked stale", "trigger", "poll")
	r.scheduleRefetch(ctx)
}

// Handle reacts to a lifecycle event.
func (r *Revalidator) Handle(ctx context.Context, e Event) {
	if !e.revalidates() {
		return
	}

	r.inv.Invalidate(cache.NotesKey())
	if id, ok := r.Selected(); ok {
		r.inv.Invalidate(cache.NoteKey(id))
	}
	r.log.Info(ctx, "revalidating after lifecycle event", "event", e.String())
	r.scheduleRefetch(ctx)
}

func (r *Revalidator) scheduleRefetch(ctx context.Context) {
	if r.refetch == nil {
		return
	}
	go r.refetch(ctx)
}

// Run drives both triggers until ctx is done.
func (r *Revalidator) Run(ctx context.Context) {
	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var events <-chan Event
	if r.signal != nil {
		events = r.signal.Events()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			r.Poll(ctx)
		case e, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			r.Handle(ctx, e)
		}
	}
}
