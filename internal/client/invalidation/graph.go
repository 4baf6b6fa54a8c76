// Package invalidation maps each kind of remote write to the cache keys it
// makes outdated. The table is applied only after the write succeeded.
package invalidation

import (
	"github.com/dmitrijs2005/notesync/internal/client/cache"
	"github.com/dmitrijs2005/notesync/internal/client/models"
)

// Kind names a mutation.
type Kind int

const (
	CreateNote Kind = iota + 1
	UpdateNote
	DeleteNote
	ToggleStarPin
	LikeNote
	SaveProfile
	UploadPhoto
	RemovePhoto
)

func (k Kind) String() string {
	switch k {
	case CreateNote:
		return "createNote"
	case UpdateNote:
		return "updateNote"
	case DeleteNote:
		return "deleteNote"
	case ToggleStarPin:
		return "toggleStarPin"
	case LikeNote:
		return "likeNote"
	case SaveProfile:
		return "saveProfile"
	case UploadPhoto:
		return "uploadPhoto"
	case RemovePhoto:
		return "removePhoto"
	default:
		return "unknown"
	}
}

// Mutation is a completed write together with the entity it touched.
type Mutation struct {
	Kind     Kind
	NoteID   models.NoteID
	Identity string
}

// Target is a cache key to invalidate; Prefix selects the whole subtree.
type Target struct {
	Key    cache.Key
	Prefix bool
}

// Targets returns what m invalidates.
//
//	create note, delete note       note list
//	update note, toggle star/pin   note list, the note
//	like note                      note list, the note, its likers
//	profile and photo writes       caller profile, caller's public profile,
//	                               every public profile, user directory
func Targets(m Mutation) []Target {
	switch m.Kind {
	case CreateNote, DeleteNote:
		return []Target{{Key: cache.NotesKey()}}
	case UpdateNote, ToggleStarPin:
		return []Target{
			{Key: cache.NotesKey()},
			{Key: cache.NoteKey(m.NoteID)},
		}
	case LikeNote:
		return []Target{
			{Key: cache.NotesKey()},
			{Key: cache.NoteKey(m.NoteID)},
			{Key: cache.NoteLikersKey(m.NoteID)},
		}
	case SaveProfile, UploadPhoto, RemovePhoto:
		targets := []Target{{Key: cache.CurrentUserProfileKey()}}
		if m.Identity != "" {
			targets = append(targets, Target{Key: cache.UserProfileKey(m.Identity)})
		}
		return append(targets,
			Target{Key: cache.UserProfileFamily(), Prefix: true},
			Target{Key: cache.UserDirectoryKey()},
		)
	default:
		return nil
	}
}

// Invalidator is the part of the cache the graph drives.
type Invalidator interface {
	Invalidate(key cache.Key)
	InvalidatePrefix(prefix cache.Key) int
}

// Apply invalidates every target of m. It is idempotent.
func Apply(inv Invalidator, m Mutation) {
	for _, t := range Targets(m) {
		if t.Prefix {
			inv.InvalidatePrefix(t.Key)
			continue
		}
		inv.Invalidate(t.Key)
	}
}
