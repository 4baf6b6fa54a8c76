package cli

import (
	"sync/atomic"

	"github.com/dmitrijs2005/notesync/internal/client/cache"
	"github.com/dmitrijs2005/notesync/internal/client/models"
)

// detailView is the note opened with "show". It watches the note's cache
// entry until it is closed; changes arriving after that are dropped.
type detailView struct {
	id          models.NoteID
	changed     atomic.Bool
	unsubscribe func()
}

func (a *App) openDetail(id models.NoteID) {
	a.closeDetail()

	d := &detailView{id: id}
	d.unsubscribe = a.store.Subscribe(cache.NoteKey(id), func(cache.Key) {
		d.changed.Store(true)
	})
	a.detail = d
	a.revalidator.Select(id)
}

func (a *App) closeDetail() {
	if a.detail == nil {
		return
	}
	a.detail.unsubscribe()
	a.detail = nil
	a.revalidator.Deselect()
}
