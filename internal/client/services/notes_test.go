package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/notesync/internal/client/cache"
	"github.com/dmitrijs2005/notesync/internal/client/client"
	"github.com/dmitrijs2005/notesync/internal/client/ledger"
	"github.com/dmitrijs2005/notesync/internal/client/models"
	"github.com/dmitrijs2005/notesync/internal/client/view"
	"github.com/dmitrijs2005/notesync/internal/common"
)

func newNotes(t *testing.T, f *fakeClient, l LikeLedger) (NotesService, *cache.Cache) {
	t.Helper()
	c := cache.New()
	return NewNotesService(f, l, Deps{Cache: c, Windows: longWindows(), Identity: identity("alice")}), c
}

func stale(t *testing.T, c *cache.Cache, key cache.Key) bool {
	t.Helper()
	e, ok := cache.Peek[any](c, key)
	require.True(t, ok, "key %s not cached", key)
	return e.Stale
}

func TestNotes_CreateStarLikeScenario(t *testing.T) {
	ctx := context.Background()
	f := newFakeClient()

	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	svc, _ := newNotes(t, f, ledger.New(db))

	_, err = svc.CreateNote(ctx, models.NoteFields{QuestionNo: "1", Answer: "a"})
	require.NoError(t, err)
	id, err := svc.CreateNote(ctx, models.NoteFields{QuestionNo: "3", Answer: "x"})
	require.NoError(t, err)

	list, err := svc.ListNotes(ctx, Latest)
	require.NoError(t, err)
	require.Len(t, list.Value, 2)
	assert.Equal(t, id, list.Value[1].ID)

	require.NoError(t, svc.ToggleStarPin(ctx, id, true, false))
	list, err = svc.ListNotes(ctx, Latest)
	require.NoError(t, err)
	sorted := view.Sort(list.Value)
	assert.Equal(t, id, sorted[0].ID, "starred note sorts above unstarred ones")

	require.NoError(t, svc.LikeNote(ctx, id))
	err = svc.LikeNote(ctx, id)
	require.ErrorIs(t, err, common.ErrAlreadyLiked)
	assert.Equal(t, 1, f.count("LikeNote"), "second like never reaches the service")

	liked, err := svc.HasLiked(ctx, id)
	require.NoError(t, err)
	assert.True(t, liked)
}

func TestNotes_ValidationFailsLocally(t *testing.T) {
	ctx := context.Background()
	f := newFakeClient()
	svc, _ := newNotes(t, f, newFakeLedger())

	_, err := svc.CreateNote(ctx, models.NoteFields{QuestionNo: "  ", Answer: "\t"})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "Question number is required; Answer is required", common.Describe(err))

	err = svc.UpdateNote(ctx, 1, models.NoteFields{QuestionNo: "2"})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "Answer is required", common.Describe(err))

	assert.Zero(t, f.total(), "no remote call for invalid input")
}

func TestNotes_CreateTrimsFields(t *testing.T) {
	ctx := context.Background()
	f := newFakeClient()
	svc, _ := newNotes(t, f, newFakeLedger())

	id, err := svc.CreateNote(ctx, models.NoteFields{QuestionNo: " 7 ", Answer: " yes "})
	require.NoError(t, err)

	n, err := svc.GetNote(ctx, id, Latest)
	require.NoError(t, err)
	require.NotNil(t, n.Value)
	assert.Equal(t, "7", n.Value.QuestionNo)
	assert.Equal(t, "yes", n.Value.Answer)
}

func TestNotes_FailedMutationLeavesCacheUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFakeClient()
	svc, c := newNotes(t, f, newFakeLedger())

	id, err := svc.CreateNote(ctx, models.NoteFields{QuestionNo: "1", Answer: "a"})
	require.NoError(t, err)
	_, err = svc.ListNotes(ctx, Latest)
	require.NoError(t, err)
	_, err = svc.GetNote(ctx, id, Latest)
	require.NoError(t, err)

	boom := errors.New("boom")
	f.fail("CreateNote", boom)
	f.fail("UpdateNote", boom)
	f.fail("DeleteNote", boom)
	f.fail("ToggleStarPin", boom)

	_, err = svc.CreateNote(ctx, models.NoteFields{QuestionNo: "2", Answer: "b"})
	assert.ErrorIs(t, err, common.ErrRemote)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, svc.UpdateNote(ctx, id, models.NoteFields{QuestionNo: "1", Answer: "c"}), common.ErrRemote)
	assert.ErrorIs(t, svc.DeleteNote(ctx, id), common.ErrRemote)
	assert.ErrorIs(t, svc.ToggleStarPin(ctx, id, true, true), common.ErrRemote)

	assert.False(t, stale(t, c, cache.NotesKey()))
	assert.False(t, stale(t, c, cache.NoteKey(id)))

	_, err = svc.ListNotes(ctx, Cached)
	require.NoError(t, err)
	assert.Equal(t, 1, f.count("ListNotes"), "fresh list served from cache")
}

func TestNotes_SuccessfulMutationsInvalidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(ctx context.Context, svc NotesService, id models.NoteID) error
		stale     []func(id models.NoteID) cache.Key
		untouched []func(id models.NoteID) cache.Key
	}{
		{
			name: "update",
			mutate: func(ctx context.Context, svc NotesService, id models.NoteID) error {
				return svc.UpdateNote(ctx, id, models.NoteFields{QuestionNo: "1", Answer: "new"})
			},
			stale:     []func(models.NoteID) cache.Key{func(models.NoteID) cache.Key { return cache.NotesKey() }, cache.NoteKey},
			untouched: []func(models.NoteID) cache.Key{cache.NoteLikersKey},
		},
		{
			name: "toggle star/pin",
			mutate: func(ctx context.Context, svc NotesService, id models.NoteID) error {
				return svc.ToggleStarPin(ctx, id, false, true)
			},
			stale:     []func(models.NoteID) cache.Key{func(models.NoteID) cache.Key { return cache.NotesKey() }, cache.NoteKey},
			untouched: []func(models.NoteID) cache.Key{cache.NoteLikersKey},
		},
		{
			name: "like",
			mutate: func(ctx context.Context, svc NotesService, id models.NoteID) error {
				return svc.LikeNote(ctx, id)
			},
			stale: []func(models.NoteID) cache.Key{func(models.NoteID) cache.Key { return cache.NotesKey() }, cache.NoteKey, cache.NoteLikersKey},
		},
		{
			name: "delete",
			mutate: func(ctx context.Context, svc NotesService, id models.NoteID) error {
				return svc.DeleteNote(ctx, id)
			},
			stale:     []func(models.NoteID) cache.Key{func(models.NoteID) cache.Key { return cache.NotesKey() }},
			untouched: []func(models.NoteID) cache.Key{cache.NoteKey, cache.NoteLikersKey},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFakeClient()
			svc, c := newNotes(t, f, newFakeLedger())

			id, err := svc.CreateNote(ctx, models.NoteFields{QuestionNo: "1", Answer: "a"})
			require.NoError(t, err)
			_, err = svc.ListNotes(ctx, Latest)
			require.NoError(t, err)
			_, err = svc.GetNote(ctx, id, Latest)
			require.NoError(t, err)
			_, err = svc.GetNoteLikers(ctx, id, Latest)
			require.NoError(t, err)

			require.NoError(t, tt.mutate(ctx, svc, id))

			for _, k := range tt.stale {
				assert.True(t, stale(t, c, k(id)), "%s should be stale", k(id))
			}
			for _, k := range tt.untouched {
				assert.False(t, stale(t, c, k(id)), "%s should stay fresh", k(id))
			}
		})
	}
}

func TestNotes_ReadAfterInvalidationRefetches(t *testing.T) {
	ctx := context.Background()
	f := newFakeClient()
	svc, _ := newNotes(t, f, newFakeLedger())

	_, err := svc.ListNotes(ctx, Latest)
	require.NoError(t, err)
	_, err = svc.CreateNote(ctx, models.NoteFields{QuestionNo: "1", Answer: "a"})
	require.NoError(t, err)

	// Cached serves the stale (empty) list and refetches in the background.
	list, err := svc.ListNotes(ctx, Cached)
	require.NoError(t, err)
	assert.Empty(t, list.Value)
	assert.True(t, list.Stale)

	require.Eventually(t, func() bool {
		e, err := svc.ListNotes(ctx, Cached)
		return err == nil && len(e.Value) == 1 && !e.Stale
	}, time.Second, time.Millisecond)
	assert.Equal(t, 2, f.count("ListNotes"))
}

func TestNotes_GetNoteAbsent(t *testing.T) {
	svc, _ := newNotes(t, newFakeClient(), newFakeLedger())

	e, err := svc.GetNote(context.Background(), 42, Latest)
	require.NoError(t, err)
	assert.True(t, e.HasValue)
	assert.Nil(t, e.Value)
}

func TestNotes_ReadFailureIsRemoteError(t *testing.T) {
	f := newFakeClient()
	f.fail("ListNotes", common.ErrUnavailable)
	svc, _ := newNotes(t, f, newFakeLedger())

	_, err := svc.ListNotes(context.Background(), Cached)
	require.ErrorIs(t, err, common.ErrRemote)
	assert.True(t, common.IsRetryable(err))
}

func TestLikeNote_RemoteFailureDoesNotMark(t *testing.T) {
	ctx := context.Background()
	f := newFakeClient()
	l := newFakeLedger()
	svc, c := newNotes(t, f, l)

	_, err := svc.ListNotes(ctx, Latest)
	require.NoError(t, err)

	f.fail("LikeNote", common.ErrUnavailable)
	err = svc.LikeNote(ctx, 5)
	require.ErrorIs(t, err, common.ErrRemote)

	liked, err := svc.HasLiked(ctx, 5)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.False(t, stale(t, c, cache.NotesKey()))

	// Nothing was recorded, so a retry is allowed.
	f.fail("LikeNote", nil)
	require.NoError(t, svc.LikeNote(ctx, 5))
}

func TestLikeNote_LedgerFailuresAreNotFatal(t *testing.T) {
	ctx := context.Background()
	f := newFakeClient()
	l := newFakeLedger()
	l.readErr = errors.New("disk gone")
	l.markErr = errors.New("disk gone")
	svc, _ := newNotes(t, f, l)

	require.NoError(t, svc.LikeNote(ctx, 1))
	assert.Equal(t, 1, f.count("LikeNote"))
}

func TestLikeNote_PendingGuard(t *testing.T) {
	ctx := context.Background()
	f := newFakeClient()
	gate := make(chan struct{})
	f.likeGate = gate
	svc, _ := newNotes(t, f, newFakeLedger())

	var wg sync.WaitGroup
	wg.Add(1)
	var first error
	go func() {
		defer wg.Done()
		first = svc.LikeNote(ctx, 1)
	}()

	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.likeWaiting == 1
	}, time.Second, time.Millisecond)

	assert.ErrorIs(t, svc.LikeNote(ctx, 1), common.ErrLikePending)

	// A different note is not blocked by the pending like.
	f.mu.Lock()
	f.likeGate = nil
	f.mu.Unlock()
	require.NoError(t, svc.LikeNote(ctx, 2))

	close(gate)
	wg.Wait()
	require.NoError(t, first)
	assert.ErrorIs(t, svc.LikeNote(ctx, 1), common.ErrAlreadyLiked)
}

func TestLikeNote_NeedsIdentity(t *testing.T) {
	f := newFakeClient()
	svc := NewNotesService(f, newFakeLedger(), Deps{Cache: cache.New()})

	assert.ErrorIs(t, svc.LikeNote(context.Background(), 1), common.ErrNoIdentity)
	_, err := svc.HasLiked(context.Background(), 1)
	assert.ErrorIs(t, err, common.ErrNoIdentity)
	assert.Zero(t, f.total())
}

func TestLikeNote_LedgerScopedByIdentity(t *testing.T) {
	ctx := context.Background()
	f := newFakeClient()
	l := newFakeLedger()
	c := cache.New()

	alice := NewNotesService(f, l, Deps{Cache: c, Identity: identity("alice")})
	bob := NewNotesService(f, l, Deps{Cache: c, Identity: identity("bob")})

	require.NoError(t, alice.LikeNote(ctx, 1))
	require.NoError(t, bob.LikeNote(ctx, 1))
	assert.Equal(t, 2, f.count("LikeNote"))
}
