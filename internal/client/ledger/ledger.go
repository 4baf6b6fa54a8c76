// Package ledger remembers, per signed-in identity, which notes this device
// has liked. It survives restarts and only ever grows.
//
// The ledger is advisory: it stops the UI from sending a like twice, but the
// service stays the authority on like counts.
package ledger

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/notesync/internal/client/models"
	"github.com/dmitrijs2005/notesync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/notesync/internal/common"
	"github.com/dmitrijs2005/notesync/internal/dbx"
)

const likedNotesKey = "liked_notes"

// DB is a database handle that can also start transactions; *sql.DB fits.
type DB interface {
	dbx.DBTX
	dbx.TxBeginner
}

// likedNotes maps identity to the decimal ids of the notes it liked, in the
// order they were liked.
type likedNotes map[string][]string

// Ledger is safe for concurrent use.
type Ledger struct {
	mu sync.Mutex
	db DB
}

func New(db DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) load(ctx context.Context, q dbx.DBTX) (likedNotes, error) {
	liked := likedNotes{}
	if _, err := metadata.GetJSON(ctx, metadata.NewSQLiteRepository(q), likedNotesKey, &liked); err != nil {
		return nil, err
	}
	return liked, nil
}

// HasLiked reports whether identity has liked note id on this device.
func (l *Ledger) HasLiked(ctx context.Context, identity string, id models.NoteID) (bool, error) {
	ids, err := l.Liked(ctx, identity)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, id), nil
}

// Liked lists the notes identity has liked.
func (l *Ledger) Liked(ctx context.Context, identity string) ([]models.NoteID, error) {
	if identity == "" {
		return nil, common.ErrNoIdentity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	liked, err := l.load(ctx, l.db)
	if err != nil {
		return nil, err
	}

	ids := make([]models.NoteID, 0, len(liked[identity]))
	for _, s := range liked[identity] {
		id, err := models.ParseNoteID(s)
		if err != nil {
			return nil, fmt.Errorf("liked note id %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// MarkLiked records that identity liked note id. Marking twice is a no-op.
func (l *Ledger) MarkLiked(ctx context.Context, identity string, id models.NoteID) error {
	if identity == "" {
		return common.ErrNoIdentity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return dbx.WithTx(ctx, l.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		liked, err := l.load(ctx, tx)
		if err != nil {
			return err
		}
		if slices.Contains(liked[identity], id.String()) {
			return nil
		}
		liked[identity] = append(liked[identity], id.String())
		return metadata.SetJSON(ctx, metadata.NewSQLiteRepository(tx), likedNotesKey, liked)
	})
}
