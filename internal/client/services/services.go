// Package services is the application layer of the notes client: cached
// reads for the presentation layer and the mutation coordinator.
//
// Every mutation validates its input locally, issues exactly one remote
// write and, only when that write succeeds, marks the affected cache keys
// stale through the invalidation graph. A failed write leaves the cache
// untouched. Mutations are not queued or serialized here; the service is
// the final arbiter of consistency.
package services

import (
	"context"

	"github.com/dmitrijs2005/notesync/internal/client/cache"
	"github.com/dmitrijs2005/notesync/internal/client/invalidation"
	"github.com/dmitrijs2005/notesync/internal/client/models"
	"github.com/dmitrijs2005/notesync/internal/common"
	"github.com/dmitrijs2005/notesync/internal/logging"
)

// ReadMode chooses between serving cached data and waiting for fresh data.
type ReadMode int

const (
	// Cached serves a stale value immediately and refetches in the background.
	Cached ReadMode = iota
	// Latest waits for a refetch when the cached value is stale.
	Latest
)

// IdentityFunc returns the signed-in identity.
type IdentityFunc func() (string, error)

// LikeLedger is the local record of liked notes.
type LikeLedger interface {
	HasLiked(ctx context.Context, identity string, id models.NoteID) (bool, error)
	MarkLiked(ctx context.Context, identity string, id models.NoteID) error
}

// Deps are the collaborators shared by the services.
type Deps struct {
	Cache    *cache.Cache
	Windows  cache.Windows
	Identity IdentityFunc
	Logger   logging.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Windows == nil {
		d.Windows = cache.DefaultWindows()
	}
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	if d.Identity == nil {
		d.Identity = func() (string, error) { return "", common.ErrNoIdentity }
	}
	return d
}

func read[T any](ctx context.Context, d Deps, mode ReadMode, key cache.Key, fetch func(context.Context) (T, error)) (cache.Entry[T], error) {
	q := cache.Query[T]{Key: key, StaleTime: d.Windows.For(key), Fetch: fetch}
	if mode == Latest {
		return cache.Fetch(ctx, d.Cache, q)
	}
	return cache.Read(ctx, d.Cache, q)
}

func (d Deps) invalidate(ctx context.Context, m invalidation.Mutation) {
	invalidation.Apply(d.Cache, m)
	d.Logger.Debug(ctx, "cache invalidated after mutation", "mutation", m.Kind.String(), "note", m.NoteID)
}
