package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/notesync/internal/client/cache"
	"github.com/dmitrijs2005/notesync/internal/client/client"
	"github.com/dmitrijs2005/notesync/internal/client/invalidation"
	"github.com/dmitrijs2005/notesync/internal/client/models"
	"github.com/dmitrijs2005/notesync/internal/common"
)

// NotesService reads and writes notes.
type NotesService interface {
	ListNotes(ctx context.Context, mode ReadMode) (cache.Entry[[]models.Note], error)
	// GetNote serves a nil Value when the note does not exist.
	GetNote(ctx context.Context, id models.NoteID, mode ReadMode) (cache.Entry[*models.Note], error)
	GetNoteLikers(ctx context.Context, id models.NoteID, mode ReadMode) (cache.Entry[[]models.NoteLiker], error)
	HasLiked(ctx context.Context, id models.NoteID) (bool, error)

	CreateNote(ctx context.Context, fields models.NoteFields) (models.NoteID, error)
	UpdateNote(ctx context.Context, id models.NoteID, fields models.NoteFields) error
	DeleteNote(ctx context.Context, id models.NoteID) error
	ToggleStarPin(ctx context.Context, id models.NoteID, isStarred, isPinned bool) error
	// LikeNote fails with common.ErrAlreadyLiked, without a remote call,
	// when the ledger shows this identity already liked the note.
	LikeNote(ctx context.Context, id models.NoteID) error
}

type notesService struct {
	Deps
	client client.Client
	ledger LikeLedger

	mu      sync.Mutex
	pending map[models.NoteID]bool
}

func NewNotesService(c client.Client, ledger LikeLedger, deps Deps) NotesService {
	return &notesService{
		Deps:    deps.withDefaults(),
		client:  c,
		ledger:  ledger,
		pending: make(map[models.NoteID]bool),
	}
}

func (s *notesService) ListNotes(ctx context.Context, mode ReadMode) (cache.Entry[[]models.Note], error) {
	return read(ctx, s.Deps, mode, cache.NotesKey(), func(ctx context.Context) ([]models.Note, error) {
		notes, err := s.client.ListNotes(ctx)
		return notes, common.Remote("list notes", err)
	})
}

func (s *notesService) GetNote(ctx context.Context, id models.NoteID, mode ReadMode) (cache.Entry[*models.Note], error) {
	return read(ctx, s.Deps, mode, cache.NoteKey(id), func(ctx context.Context) (*models.Note, error) {
		n, err := s.client.GetNote(ctx, id)
		return n, common.Remote("get note", err)
	})
}

func (s *notesService) GetNoteLikers(ctx context.Context, id models.NoteID, mode ReadMode) (cache.Entry[[]models.NoteLiker], error) {
	return read(ctx, s.Deps, mode, cache.NoteLikersKey(id), func(ctx context.Context) ([]models.NoteLiker, error) {
		likers, err := s.client.GetNoteLikers(ctx, id)
		return likers, common.Remote("get note likers", err)
	})
}

func (s *notesService) HasLiked(ctx context.Context, id models.NoteID) (bool, error) {
	identity, err := s.Identity()
	if err != nil {
		return false, err
	}
	return s.ledger.HasLiked(ctx, identity, id)
}

func validateNote(f models.NoteFields) error {
	var errs []error
	if f.QuestionNo == "" {
		errs = append(errs, common.NewValidationError("questionNo", "Question number is required"))
	}
	if f.Answer == "" {
		errs = append(errs, common.NewValidationError("answer", "Answer is required"))
	}
	return errors.Join(errs...)
}

func (s *notesService) CreateNote(ctx context.Context, fields models.NoteFields) (models.NoteID, error) {
	fields = fields.Trimmed()
	if err := validateNote(fields); err != nil {
		return 0, err
	}

	id, err := s.client.CreateNote(ctx, fields)
	if err != nil {
		return 0, common.Remote("create note", err)
	}

	s.invalidate(ctx, invalidation.Mutation{Kind: invalidation.CreateNote, NoteID: id})
	return id, nil
}

func (s *notesService) UpdateNote(ctx context.Context, id models.NoteID, fields models.NoteFields) error {
	fields = fields.Trimmed()
	if err := validateNote(fields); err != nil {
		return err
	}

	if err := s.client.UpdateNote(ctx, id, fields); err != nil {
		return common.Remote("update note", err)
	}

	s.invalidate(ctx, invalidation.Mutation{Kind: invalidation.UpdateNote, NoteID: id})
	return nil
}

func (s *notesService) DeleteNote(ctx context.Context, id models.NoteID) error {
	if err := s.client.DeleteNote(ctx, id); err != nil {
		return common.Remote("delete note", err)
	}

	s.invalidate(ctx, invalidation.Mutation{Kind: invalidation.DeleteNote, NoteID: id})
	return nil
}

func (s *notesService) ToggleStarPin(ctx context.Context, id models.NoteID, isStarred, isPinned bool) error {
	if err := s.client.ToggleStarPin(ctx, id, isStarred, isPinned); err != nil {
		return common.Remote("toggle star/pin", err)
	}

	s.invalidate(ctx, invalidation.Mutation{Kind: invalidation.ToggleStarPin, NoteID: id})
	return nil
}

// begin claims the in-flight slot for id.
func (s *notesService) begin(id models.NoteID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[id] {
		return false
	}
	s.pending[id] = true
	return true
}

func (s *notesService) end(id models.NoteID) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

func (s *notesService) LikeNote(ctx context.Context, id models.NoteID) error {
	identity, err := s.Identity()
	if err != nil {
		return err
	}

	if !s.begin(id) {
		return common.ErrLikePending
	}
	defer s.end(id)

	liked, err := s.ledger.HasLiked(ctx, identity, id)
	if err != nil {
		s.Logger.Warn(ctx, "like ledger unreadable, sending like anyway", "note", id, "error", err)
	}
	if liked {
		return common.ErrAlreadyLiked
	}

	if err := s.client.LikeNote(ctx, id); err != nil {
		return common.Remote("like note", err)
	}

	s.invalidate(ctx, invalidation.Mutation{Kind: invalidation.LikeNote, NoteID: id})

	// The like already happened remotely; a ledger failure only costs the
	// local duplicate guard.
	if err := s.ledger.MarkLiked(ctx, identity, id); err != nil {
		s.Logger.Error(ctx, "failed to record like locally", "note", id, "error", err)
	}
	return nil
}
