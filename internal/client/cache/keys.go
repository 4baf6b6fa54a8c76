package cache

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/notesync/internal/client/models"
)

// Key addresses one cache entry. Keys are slash-separated; the first
// segment names the entity family.
type Key string

const sep = "/"

// Entity families.
const (
	FamilyNotes              = "notes"
	FamilyNote               = "note"
	FamilyNoteLikers         = "noteLikers"
	FamilyCurrentUserProfile = "currentUserProfile"
	FamilyUserProfile        = "userProfile"
	FamilyUserDirectory      = "userDirectory"
)

// Join builds a key from a family and its parameters.
func Join(family string, parts ...string) Key {
	return Key(strings.Join(append([]string{family}, parts...), sep))
}

func NotesKey() Key { return Key(FamilyNotes) }
func NoteKey(id models.NoteID) Key { return Join(FamilyNote, id.String()) }
func NoteLikersKey(id models.NoteID) Key { return Join(FamilyNoteLikers, id.String()) }
func CurrentUserProfileKey() Key { return Key(FamilyCurrentUserProfile) }
func UserProfileKey(identity string) Key { return Join(FamilyUserProfile, identity) }
func UserDirectoryKey() Key { return Key(FamilyUserDirectory) }
func UserProfileFamily() Key { return Key(FamilyUserProfile) }

// Family returns the first segment of k.
func (k Key) Family() string {
	family, _, _ := strings.Cut(string(k), sep)
	return family
}

// HasPrefix reports whether k equals prefix or lies below it. Matching is
// by whole segments: "userProfile" covers "userProfile/abc" but not
// "userProfiles".
func (k Key) HasPrefix(prefix Key) bool {
	if prefix == "" {
		return true
	}
	if k == prefix {
		return true
	}
	return strings.HasPrefix(string(k), string(prefix)+sep)
}

// Windows maps an entity family to its staleness window. Families that are
// not listed are stale as soon as they are fetched.
type Windows map[string]time.Duration

// DefaultWindows: the note list tolerates a few seconds, public profiles
// change rarely.
func DefaultWindows() Windows {
	return Windows{
		FamilyNotes:       3 * time.Second,
		FamilyUserProfile: 5 * time.Minute,
	}
}

// For returns the staleness window for k's family.
func (w Windows) For(k Key) time.Duration {
	return w[k.Family()]
}
