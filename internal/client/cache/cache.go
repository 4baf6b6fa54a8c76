// Package cache memoizes reads from the remote notes service.
//
// Each entry is addressed by a Key and becomes stale either when its
// family's staleness window elapses or when it is invalidated. Reads of a
// stale key share one in-flight fetch per key (single-flight); while that
// fetch runs, readers keep getting the last good value (stale-while-revalidate).
//
// Every fetch gets a generation number, unique across the cache and
// increasing per key. Only the response of the latest generation issued for
// its key is applied; older responses are discarded on
// arrival. A fetch issued before an invalidation still populates the value
// when it lands, but the entry stays stale so the next read refetches.
//
// Fetches run detached from the reader's context: a reader that goes away
// gets ctx.Err(), while the fetch completes and fills the cache for later
// readers.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/notesync/internal/logging"
)

// Status is the fetch state of an entry.
type Status int

const (
	StatusIdle Status = iota
	StatusFetching
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusFetching:
		return "fetching"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Entry is a point-in-time snapshot of a cached read.
type Entry[T any] struct {
	Key       Key
	Value     T
	HasValue  bool
	Status    Status
	Err       error
	UpdatedAt time.Time
	Stale     bool
}

// Query describes how to read one key.
type Query[T any] struct {
	Key       Key
	StaleTime time.Duration
	Fetch     func(ctx context.Context) (T, error)
}

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Listener is notified after the entry for a key changed: new value, fetch
// error or invalidation.
type Listener func(key Key)

type fetchFunc func(ctx context.Context) (any, error)

// outcome is what a flight hands to its waiters.
type outcome struct {
	gen   uint64
	value any
	err   error
}

type slot struct {
	value     any
	hasValue  bool
	status    Status
	err       error
	updatedAt time.Time
	staleTime time.Duration

	invalidated  bool
	gen          uint64 // latest issued generation
	inflight     uint64 // generation of the running fetch, 0 if none
	staleThrough uint64 // responses up to this generation predate an invalidation
	flight       func() (any, error)
}

type subscription struct {
	fn     Listener
	active bool
}

// Cache is the per-session store of remote reads. The zero value is not
// usable; create one with New and share it by reference.
type Cache struct {
	mu     sync.Mutex
	clock  Clock
	log    logging.Logger
	gcTime time.Duration
	slots  *gocache.Cache
	group  singleflight.Group

	subs    map[Key]map[uint64]*subscription
	nextSub uint64
	nextGen uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock injects the time source used for staleness.
func WithClock(clock Clock) Option {
	return func(c *Cache) { c.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// WithGCTime evicts entries nobody read or subscribed to for d.
// Zero disables eviction.
func WithGCTime(d time.Duration) Option {
	return func(c *Cache) { c.gcTime = d }
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		clock: systemClock{},
		log:   logging.NewNop(),
		subs:  make(map[Key]map[uint64]*subscription),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.gcTime > 0 {
		c.slots = gocache.New(c.gcTime, c.gcTime/2)
	} else {
		c.slots = gocache.New(gocache.NoExpiration, 0)
	}
	c.slots.OnEvicted(func(k string, _ any) {
		c.log.Debug(context.Background(), "cache entry evicted", "key", k)
	})

	return c
}

func flightKey(key Key, gen uint64) string {
	return fmt.Sprintf("%s#%d", key, gen)
}

func (c *Cache) lookupLocked(key Key) *slot {
	v, ok := c.slots.Get(string(key))
	if !ok {
		return nil
	}
	return v.(*slot)
}

func (c *Cache) slotLocked(key Key) *slot {
	if s := c.lookupLocked(key); s != nil {
		return s
	}
	s := &slot{}
	c.touchLocked(key, s)
	return s
}

// touchLocked (re)stores s, resetting its eviction deadline. Entries with a
// running fetch or live subscribers are pinned.
func (c *Cache) touchLocked(key Key, s *slot) {
	exp := gocache.NoExpiration
	if c.gcTime > 0 && s.inflight == 0 && len(c.subs[key]) == 0 {
		exp = c.gcTime
	}
	c.slots.Set(string(key), s, exp)
}

func (c *Cache) staleLocked(s *slot, now time.Time) bool {
	if !s.hasValue || s.invalidated {
		return true
	}
	return now.Sub(s.updatedAt) >= s.staleTime
}

func snapshot[T any](key Key, s *slot, stale bool) Entry[T] {
	e := Entry[T]{Key: key, Status: s.status, Err: s.err, UpdatedAt: s.updatedAt, Stale: stale}
	if s.hasValue {
		if v, ok := s.value.(T); ok {
			e.Value = v
			e.HasValue = true
		}
	}
	return e
}

// startLocked joins the running fetch for key, or issues a new generation
// when there is none or the running one predates an invalidation.
func (c *Cache) startLocked(ctx context.Context, key Key, s *slot, fetch fetchFunc) <-chan singleflight.Result {
	if s.inflight != 0 && s.inflight > s.staleThrough {
		return c.group.DoChan(flightKey(key, s.inflight), s.flight)
	}

	c.nextGen++
	gen := c.nextGen
	s.gen = gen
	s.inflight = gen
	s.status = StatusFetching
	bg := context.WithoutCancel(ctx)

	s.flight = func() (any, error) {
		v, err := fetch(bg)
		c.complete(key, gen, v, err)
		return outcome{gen: gen, value: v, err: err}, nil
	}
	c.touchLocked(key, s)
	c.log.Debug(ctx, "cache fetch started", "key", key, "generation", gen)

	return c.group.DoChan(flightKey(key, gen), s.flight)
}

func (c *Cache) complete(key Key, gen uint64, v any, err error) {
	ctx := context.Background()

	c.mu.Lock()
	s := c.lookupLocked(key)
	if s == nil || gen != s.gen {
		c.mu.Unlock()
		c.log.Debug(ctx, "discarding superseded response", "key", key, "generation", gen)
		return
	}

	s.inflight = 0
	if err != nil {
		s.status = StatusError
		s.err = err
	} else {
		s.value = v
		s.hasValue = true
		s.status = StatusIdle
		s.err = nil
		s.updatedAt = c.clock.Now()
		s.invalidated = gen <= s.staleThrough
	}
	c.touchLocked(key, s)
	listeners := c.listenersLocked(key)
	c.mu.Unlock()

	if err != nil {
		c.log.Warn(ctx, "cache fetch failed", "key", key, "generation", gen, "error", err)
	}
	notify(listeners, key)
}

// await waits for a flight and follows newer generations issued meanwhile.
func (c *Cache) await(ctx context.Context, key Key, ch <-chan singleflight.Result) (outcome, error) {
	for {
		var res singleflight.Result
		select {
		case <-ctx.Done():
			return outcome{}, ctx.Err()
		case res = <-ch:
		}
		out := res.Val.(outcome)

		c.mu.Lock()
		s := c.lookupLocked(key)
		if s != nil && s.inflight > out.gen {
			ch = c.group.DoChan(flightKey(key, s.inflight), s.flight)
			c.mu.Unlock()
			continue
		}
		if s != nil && s.gen > out.gen && s.hasValue {
			out = outcome{gen: s.gen, value: s.value}
		}
		c.mu.Unlock()

		return out, nil
	}
}

func wrap[T any](fetch func(ctx context.Context) (T, error)) fetchFunc {
	return func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}
}

// Read returns the entry for q.Key.
//
// A fresh entry is served without a remote call. A stale entry that has a
// value is served immediately with Status fetching while one shared
// background refetch runs. An entry without a value waits for the shared
// fetch; its failure is returned as the error.
func Read[T any](ctx context.Context, c *Cache, q Query[T]) (Entry[T], error) {
	c.mu.Lock()
	s := c.slotLocked(q.Key)
	s.staleTime = q.StaleTime
	now := c.clock.Now()

	if !c.staleLocked(s, now) {
		e := snapshot[T](q.Key, s, false)
		c.touchLocked(q.Key, s)
		c.mu.Unlock()
		return e, nil
	}

	ch := c.startLocked(ctx, q.Key, s, wrap(q.Fetch))
	if s.hasValue {
		e := snapshot[T](q.Key, s, true)
		c.mu.Unlock()
		return e, nil
	}
	c.mu.Unlock()

	return wait[T](ctx, c, q.Key, ch)
}

// Fetch is like Read but never serves stale data: when the entry is stale
// it waits for the shared refetch. A failed refetch returns the error along
// with the last good value, if any.
func Fetch[T any](ctx context.Context, c *Cache, q Query[T]) (Entry[T], error) {
	c.mu.Lock()
	s := c.slotLocked(q.Key)
	s.staleTime = q.StaleTime

	if !c.staleLocked(s, c.clock.Now()) {
		e := snapshot[T](q.Key, s, false)
		c.touchLocked(q.Key, s)
		c.mu.Unlock()
		return e, nil
	}

	ch := c.startLocked(ctx, q.Key, s, wrap(q.Fetch))
	c.mu.Unlock()

	return wait[T](ctx, c, q.Key, ch)
}

func wait[T any](ctx context.Context, c *Cache, key Key, ch <-chan singleflight.Result) (Entry[T], error) {
	out, err := c.await(ctx, key, ch)
	if err != nil {
		return Entry[T]{Key: key}, err
	}

	c.mu.Lock()
	var e Entry[T]
	if s := c.lookupLocked(key); s != nil {
		e = snapshot[T](key, s, c.staleLocked(s, c.clock.Now()))
	} else {
		e = Entry[T]{Key: key}
	}
	c.mu.Unlock()

	if out.err != nil {
		e.Status = StatusError
		e.Err = out.err
		return e, out.err
	}

	if v, ok := out.value.(T); ok {
		e.Value = v
		e.HasValue = true
	}
	return e, nil
}

// Peek returns the cached entry without fetching.
func Peek[T any](c *Cache, key Key) (Entry[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.lookupLocked(key)
	if s == nil {
		return Entry[T]{Key: key}, false
	}
	return snapshot[T](key, s, c.staleLocked(s, c.clock.Now())), true
}

// Set stores value for key as fresh data. Responses of fetches issued
// before Set are discarded.
func (c *Cache) Set(key Key, value any) {
	c.mu.Lock()
	s := c.slotLocked(key)
	c.nextGen++
	s.gen = c.nextGen
	s.inflight = 0
	s.value = value
	s.hasValue = true
	s.status = StatusIdle
	s.err = nil
	s.updatedAt = c.clock.Now()
	s.invalidated = false
	c.touchLocked(key, s)
	listeners := c.listenersLocked(key)
	c.mu.Unlock()

	notify(listeners, key)
}

// Invalidate marks key stale. Invalidating an absent or already stale key
// is a no-op.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	s := c.lookupLocked(key)
	if s == nil {
		c.mu.Unlock()
		return
	}
	c.invalidateLocked(s)
	listeners := c.listenersLocked(key)
	c.mu.Unlock()

	c.log.Debug(context.Background(), "cache entry invalidated", "key", key)
	notify(listeners, key)
}

// InvalidatePrefix marks stale every key equal to or below prefix and
// returns how many entries it touched.
func (c *Cache) InvalidatePrefix(prefix Key) int {
	c.mu.Lock()
	var keys []Key
	for k, item := range c.slots.Items() {
		key := Key(k)
		if !key.HasPrefix(prefix) {
			continue
		}
		c.invalidateLocked(item.Object.(*slot))
		keys = append(keys, key)
	}
	listeners := make(map[Key][]Listener, len(keys))
	for _, k := range keys {
		listeners[k] = c.listenersLocked(k)
	}
	c.mu.Unlock()

	for k, ls := range listeners {
		notify(ls, k)
	}
	return len(keys)
}

func (c *Cache) invalidateLocked(s *slot) {
	s.invalidated = true
	s.staleThrough = s.gen
}

// Clear drops every entry, e.g. when the signed-in identity changes.
// Responses of fetches started before Clear are discarded on arrival.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.slots.Flush()
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.slots.ItemCount()
}

// Subscribe registers fn for changes to key. The returned function cancels
// the subscription; notifications arriving afterwards are dropped.
func (c *Cache) Subscribe(key Key, fn Listener) (unsubscribe func()) {
	c.mu.Lock()
	c.nextSub++
	id := c.nextSub
	sub := &subscription{fn: fn, active: true}
	if c.subs[key] == nil {
		c.subs[key] = make(map[uint64]*subscription)
	}
	c.subs[key][id] = sub
	if s := c.lookupLocked(key); s != nil {
		c.touchLocked(key, s)
	}
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			sub.active = false
			delete(c.subs[key], id)
			if len(c.subs[key]) == 0 {
				delete(c.subs, key)
			}
			if s := c.lookupLocked(key); s != nil {
				c.touchLocked(key, s)
			}
			c.mu.Unlock()
		})
	}
}

func (c *Cache) listenersLocked(key Key) []Listener {
	subs := c.subs[key]
	if len(subs) == 0 {
		return nil
	}
	out := make([]Listener, 0, len(subs))
	for _, sub := range subs {
		out = append(out, func(k Key) {
			c.mu.Lock()
			active := sub.active
			c.mu.Unlock()
			if active {
				sub.fn(k)
			}
		})
	}
	return out
}

func notify(listeners []Listener, key Key) {
	for _, fn := range listeners {
		fn(key)
	}
}
