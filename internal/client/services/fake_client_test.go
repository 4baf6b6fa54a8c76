package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/notesync/internal/client/cache"
	"github.com/dmitrijs2005/notesync/internal/client/client"
	"github.com/dmitrijs2005/notesync/internal/client/models"
)

// fakeClient is an in-memory notes service that counts calls.
type fakeClient struct {
	mu       sync.Mutex
	calls    map[string]int
	errs     map[string]error
	nextID   models.NoteID
	notes    map[models.NoteID]models.Note
	likers   map[models.NoteID][]models.NoteLiker
	profile  *models.UserProfile
	profiles map[string]models.UserProfile
	saved    []models.UserProfile

	// likeGate, when set, holds LikeNote until it is closed.
	likeGate    chan struct{}
	likeWaiting int
}

var _ client.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{
		calls:    map[string]int{},
		errs:     map[string]error{},
		notes:    map[models.NoteID]models.Note{},
		likers:   map[models.NoteID][]models.NoteLiker{},
		profiles: map[string]models.UserProfile{},
	}
}

func (f *fakeClient) hit(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.errs[name]
}

func (f *fakeClient) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeClient) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeClient) fail(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[name] = err
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) ListNotes(ctx context.Context) ([]models.Note, error) {
	if err := f.hit("ListNotes"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Note, 0, len(f.notes))
	for _, n := range f.notes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeClient) GetNote(ctx context.Context, id models.NoteID) (*models.Note, error) {
	if err := f.hit("GetNote"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

func (f *fakeClient) CreateNote(ctx context.Context, fields models.NoteFields) (models.NoteID, error) {
	if err := f.hit("CreateNote"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.notes[f.nextID] = models.Note{
		ID: f.nextID, QuestionNo: fields.QuestionNo, Answer: fields.Answer,
		QuestionText: fields.QuestionText, IsStarred: fields.IsStarred, IsPinned: fields.IsPinned,
	}
	return f.nextID, nil
}

func (f *fakeClient) UpdateNote(ctx context.Context, id models.NoteID, fields models.NoteFields) error {
	if err := f.hit("UpdateNote"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.notes[id]
	n.QuestionNo, n.Answer = fields.QuestionNo, fields.Answer
	f.notes[id] = n
	return nil
}

func (f *fakeClient) DeleteNote(ctx context.Context, id models.NoteID) error {
	if err := f.hit("DeleteNote"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.notes, id)
	return nil
}

func (f *fakeClient) ToggleStarPin(ctx context.Context, id models.NoteID, isStarred, isPinned bool) error {
	if err := f.hit("ToggleStarPin"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.notes[id]
	n.IsStarred, n.IsPinned = isStarred, isPinned
	f.notes[id] = n
	return nil
}

func (f *fakeClient) LikeNote(ctx context.Context, id models.NoteID) error {
	f.mu.Lock()
	gate := f.likeGate
	if gate != nil {
		f.likeWaiting++
	}
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	if err := f.hit("LikeNote"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.notes[id]
	n.LikeCount++
	f.notes[id] = n
	return nil
}

func (f *fakeClient) GetNoteLikers(ctx context.Context, id models.NoteID) ([]models.NoteLiker, error) {
	if err := f.hit("GetNoteLikers"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.likers[id], nil
}

func (f *fakeClient) GetCallerProfile(ctx context.Context) (*models.UserProfile, error) {
	if err := f.hit("GetCallerProfile"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profile == nil {
		return nil, nil
	}
	p := *f.profile
	return &p, nil
}

func (f *fakeClient) GetProfile(ctx context.Context, identity string) (*models.UserProfile, error) {
	if err := f.hit("GetProfile"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[identity]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeClient) SaveCallerProfile(ctx context.Context, profile models.UserProfile) error {
	if err := f.hit("SaveCallerProfile"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profile = &profile
	f.saved = append(f.saved, profile)
	return nil
}

func (f *fakeClient) ListUsers(ctx context.Context) ([]models.ExtendedUserProfile, error) {
	if err := f.hit("ListUsers"); err != nil {
		return nil, err
	}
	return nil, nil
}

// fakeLedger is an in-memory LikeLedger with injectable failures.
type fakeLedger struct {
	mu      sync.Mutex
	liked   map[string]map[models.NoteID]bool
	readErr error
	markErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{liked: map[string]map[models.NoteID]bool{}}
}

func (l *fakeLedger) HasLiked(ctx context.Context, identity string, id models.NoteID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.readErr != nil {
		return false, l.readErr
	}
	return l.liked[identity][id], nil
}

func (l *fakeLedger) MarkLiked(ctx context.Context, identity string, id models.NoteID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.markErr != nil {
		return l.markErr
	}
	if l.liked[identity] == nil {
		l.liked[identity] = map[models.NoteID]bool{}
	}
	l.liked[identity][id] = true
	return nil
}

// longWindows keeps every family fresh for an hour, so a stale entry in a
// test can only come from an invalidation.
func longWindows() cache.Windows {
	return cache.Windows{
		cache.FamilyNotes:              time.Hour,
		cache.FamilyNote:               time.Hour,
		cache.FamilyNoteLikers:         time.Hour,
		cache.FamilyCurrentUserProfile: time.Hour,
		cache.FamilyUserProfile:        time.Hour,
		cache.FamilyUserDirectory:      time.Hour,
	}
}

func identity(name string) IdentityFunc {
	return func() (string, error) { return name, nil }
}
