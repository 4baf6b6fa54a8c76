// Package metadata is the local key/value store backing client state that
// must survive restarts.
package metadata

import (
	"context"
)

// Repository stores opaque values by key. Get returns (nil, nil) for
// absent keys and for keys holding NULL. Set overwrites.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
