package client

import (
	"context"

	"github.com/dmitrijs2005/notesync/internal/client/models"
)

// Client is the remote notes service contract. Getters return (nil, nil)
// when the entity does not exist.
type Client interface {
	Close() error

	ListNotes(ctx context.Context) ([]models.Note, error)
	GetNote(ctx context.Context, id models.NoteID) (*models.Note, error)
	CreateNote(ctx context.Context, fields models.NoteFields) (models.NoteID, error)
	UpdateNote(ctx context.Context, id models.NoteID, fields models.NoteFields) error
	DeleteNote(ctx context.Context, id models.NoteID) error
	ToggleStarPin(ctx context.Context, id models.NoteID, isStarred, isPinned bool) error
	LikeNote(ctx context.Context, id models.NoteID) error
	GetNoteLikers(ctx context.Context, id models.NoteID) ([]models.NoteLiker, error)

	GetCallerProfile(ctx context.Context) (*models.UserProfile, error)
	GetProfile(ctx context.Context, identity string) (*models.UserProfile, error)
	SaveCallerProfile(ctx context.Context, profile models.UserProfile) error
	ListUsers(ctx context.Context) ([]models.ExtendedUserProfile, error)
}
