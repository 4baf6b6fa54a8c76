package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/notesync/internal/client/cache"
	"github.com/dmitrijs2005/notesync/internal/client/client"
	"github.com/dmitrijs2005/notesync/internal/client/models"
	"github.com/dmitrijs2005/notesync/internal/client/photo"
	"github.com/dmitrijs2005/notesync/internal/client/revalidate"
	"github.com/dmitrijs2005/notesync/internal/client/services"
	"github.com/dmitrijs2005/notesync/internal/common"
)

var errNotOwner = errors.New("not the author of the note")

// report prints err for the user and returns it.
func (a *App) report(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	a.log.Debug(ctx, "command failed", "command", op, "error", err)
	fmt.Fprintln(a.out, "Error:", common.Describe(err))
	return err
}

func (a *App) List(ctx context.Context, query string) error {
	a.pager.SetQuery(query)
	return a.renderList(ctx, services.Cached)
}

func (a *App) More(ctx context.Context) error {
	a.pager.More()
	return a.renderList(ctx, services.Cached)
}

// Refresh marks the note list stale and waits for the server's copy.
func (a *App) Refresh(ctx context.Context) error {
	a.store.Invalidate(cache.NotesKey())
	return a.renderList(ctx, services.Latest)
}

func (a *App) renderList(ctx context.Context, mode services.ReadMode) error {
	e, err := a.notes.ListNotes(ctx, mode)
	if err != nil && !e.HasValue {
		return a.report(ctx, "list", err)
	}
	writeStatus(a.out, e)
	writePage(a.out, a.pager.Render(e.Value), a.pager.Query())
	return nil
}

// note loads the latest version of id, reporting a missing note.
func (a *App) note(ctx context.Context, op string, id models.NoteID) (*models.Note, error) {
	e, err := a.notes.GetNote(ctx, id, services.Latest)
	if err != nil {
		return nil, a.report(ctx, op, err)
	}
	if e.Value == nil {
		fmt.Fprintf(a.out, "Note %s not found\n", id)
		return nil, common.ErrNotFound
	}
	return e.Value, nil
}

// owned loads id and checks that the signed-in identity wrote it.
func (a *App) owned(ctx context.Context, op string, id models.NoteID) (*models.Note, error) {
	n, err := a.note(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if n.Owner != a.currentIdentity() {
		fmt.Fprintf(a.out, "Only the author can %s note %s\n", op, id)
		return nil, errNotOwner
	}
	return n, nil
}

func (a *App) Show(ctx context.Context, id models.NoteID) error {
	n, err := a.note(ctx, "show", id)
	if err != nil {
		return err
	}

	liked, err := a.notes.HasLiked(ctx, id)
	if err != nil {
		a.log.Warn(ctx, "like ledger unavailable", "error", err)
	}
	writeNote(a.out, *n, liked)
	a.writeAuthor(ctx, n.Owner)

	a.openDetail(id)
	return nil
}

// writeAuthor prints the public profile of owner, when there is one.
func (a *App) writeAuthor(ctx context.Context, owner string) {
	if owner == "" {
		return
	}
	e, err := a.profiles.GetProfile(ctx, owner, services.Cached)
	if err != nil {
		a.log.Warn(ctx, "author profile unavailable", "owner", owner, "error", err)
		return
	}
	if e.Value == nil {
		fmt.Fprintf(a.out, "Posted by %s\n", owner)
		return
	}
	fmt.Fprintf(a.out, "Posted by %s (%s)\n", orDash(e.Value.Name), orDash(e.Value.College))
}

func (a *App) Back(ctx context.Context) error {
	a.closeDetail()
	return nil
}

func (a *App) readNoteFields(current models.NoteFields) (models.NoteFields, error) {
	f := current
	var err error
	if f.QuestionNo, err = GetTextWithDefault(a.reader, "Question number", f.QuestionNo, a.out); err != nil {
		return f, err
	}
	if f.QuestionText, err = GetTextWithDefault(a.reader, "Question", f.QuestionText, a.out); err != nil {
		return f, err
	}
	answer, err := GetMultiline(a.reader, "Answer", a.out)
	if err != nil {
		return f, err
	}
	if answer != "" {
		f.Answer = answer
	}
	if f.Author, err = GetTextWithDefault(a.reader, "Author", f.Author, a.out); err != nil {
		return f, err
	}
	if f.College, err = GetTextWithDefault(a.reader, "College", f.College, a.out); err != nil {
		return f, err
	}
	if f.Year, err = GetTextWithDefault(a.reader, "Year", f.Year, a.out); err != nil {
		return f, err
	}
	return f, nil
}

func (a *App) Create(ctx context.Context) error {
	fields, err := a.readNoteFields(models.NoteFields{})
	if err != nil {
		return a.report(ctx, "create", err)
	}

	id, err := a.notes.CreateNote(ctx, fields)
	if err != nil {
		return a.report(ctx, "create", err)
	}
	fmt.Fprintf(a.out, "Created note %s\n", id)
	return nil
}

func (a *App) Edit(ctx context.Context, id models.NoteID) error {
	n, err := a.owned(ctx, "edit", id)
	if err != nil {
		return err
	}

	fields, err := a.readNoteFields(n.Fields())
	if err != nil {
		return a.report(ctx, "edit", err)
	}

	if err := a.notes.UpdateNote(ctx, id, fields); err != nil {
		return a.report(ctx, "edit", err)
	}
	fmt.Fprintf(a.out, "Updated note %s\n", id)
	return nil
}

func (a *App) Delete(ctx context.Context, id models.NoteID) error {
	if _, err := a.owned(ctx, "delete", id); err != nil {
		return err
	}
	if err := a.notes.DeleteNote(ctx, id); err != nil {
		return a.report(ctx, "delete", err)
	}
	if a.detail != nil && a.detail.id == id {
		a.closeDetail()
	}
	fmt.Fprintf(a.out, "Deleted note %s\n", id)
	return nil
}

func (a *App) Star(ctx context.Context, id models.NoteID) error {
	n, err := a.note(ctx, "star", id)
	if err != nil {
		return err
	}
	if err := a.notes.ToggleStarPin(ctx, id, !n.IsStarred, n.IsPinned); err != nil {
		return a.report(ctx, "star", err)
	}
	if n.IsStarred {
		fmt.Fprintf(a.out, "Unstarred note %s\n", id)
	} else {
		fmt.Fprintf(a.out, "Starred note %s\n", id)
	}
	return nil
}

func (a *App) Pin(ctx context.Context, id models.NoteID) error {
	n, err := a.note(ctx, "pin", id)
	if err != nil {
		return err
	}
	if err := a.notes.ToggleStarPin(ctx, id, n.IsStarred, !n.IsPinned); err != nil {
		return a.report(ctx, "pin", err)
	}
	if n.IsPinned {
		fmt.Fprintf(a.out, "Unpinned note %s\n", id)
	} else {
		fmt.Fprintf(a.out, "Pinned note %s\n", id)
	}
	return nil
}

func (a *App) Like(ctx context.Context, id models.NoteID) error {
	if err := a.notes.LikeNote(ctx, id); err != nil {
		return a.report(ctx, "like", err)
	}
	fmt.Fprintf(a.out, "Liked note %s\n", id)
	return nil
}

func (a *App) Likers(ctx context.Context, id models.NoteID) error {
	e, err := a.notes.GetNoteLikers(ctx, id, services.Latest)
	if err != nil {
		return a.report(ctx, "likers", err)
	}
	if len(e.Value) == 0 {
		fmt.Fprintln(a.out, "No likes yet")
		return nil
	}
	for _, l := range e.Value {
		fmt.Fprintf(a.out, "%s (%s) %s\n", orDash(l.Name), orDash(l.College), l.Identity)
	}
	return nil
}

func (a *App) Me(ctx context.Context) error {
	e, err := a.profiles.GetCallerProfile(ctx, services.Latest)
	if err != nil {
		return a.report(ctx, "me", err)
	}
	if e.Value == nil {
		a.avatar.Set(nil)
		fmt.Fprintln(a.out, "No profile yet. Use 'setprofile' to create one.")
		return nil
	}
	fmt.Fprintf(a.out, "Identity: %s\n", a.currentIdentity())
	writeProfile(a.out, *e.Value, a.avatar.Set(e.Value.Photo))
	return nil
}

func (a *App) Profile(ctx context.Context, identity string) error {
	e, err := a.profiles.GetProfile(ctx, identity, services.Cached)
	if err != nil {
		return a.report(ctx, "profile", err)
	}
	if e.Value == nil {
		a.viewed.Embed(nil)
		fmt.Fprintf(a.out, "%s has no profile\n", identity)
		return nil
	}
	writeProfile(a.out, *e.Value, a.viewed.Embed(e.Value.Photo))
	return nil
}

func (a *App) SetProfile(ctx context.Context) error {
	var current models.UserProfile
	if e, err := a.profiles.GetCallerProfile(ctx, services.Latest); err == nil && e.Value != nil {
		current = *e.Value
	}

	p := current
	var err error
	if p.Name, err = GetTextWithDefault(a.reader, "Name", current.Name, a.out); err != nil {
		return a.report(ctx, "setprofile", err)
	}
	if p.College, err = GetTextWithDefault(a.reader, "College", current.College, a.out); err != nil {
		return a.report(ctx, "setprofile", err)
	}

	if err := a.profiles.SaveProfile(ctx, p); err != nil {
		return a.report(ctx, "setprofile", err)
	}
	fmt.Fprintln(a.out, "Profile saved")
	return nil
}

func (a *App) Photo(ctx context.Context, path string) error {
	p, err := photo.FromFile(path)
	if err != nil {
		return a.report(ctx, "photo", err)
	}
	if err := a.profiles.UploadPhoto(ctx, *p); err != nil {
		return a.report(ctx, "photo", err)
	}
	fmt.Fprintln(a.out, "Photo uploaded")
	return nil
}

// SavePhoto writes the photo shown by the last "me" to path.
func (a *App) SavePhoto(ctx context.Context, path string) error {
	p, ok := a.photos.Open(a.avatar.Current())
	if !ok {
		fmt.Fprintln(a.out, "No photo loaded. Use 'me' first.")
		return common.ErrNotFound
	}
	if err := os.WriteFile(path, p.Data, 0o600); err != nil {
		return a.report(ctx, "savephoto", err)
	}
	fmt.Fprintf(a.out, "Saved %d bytes to %s\n", len(p.Data), path)
	return nil
}

func (a *App) RemovePhoto(ctx context.Context) error {
	if err := a.profiles.RemovePhoto(ctx); err != nil {
		return a.report(ctx, "rmphoto", err)
	}
	a.avatar.Set(nil)
	fmt.Fprintln(a.out, "Photo removed")
	return nil
}

func (a *App) Users(ctx context.Context) error {
	e, err := a.profiles.ListUsers(ctx, services.Latest)
	if err != nil {
		return a.report(ctx, "users", err)
	}
	for _, u := range e.Value {
		fmt.Fprintf(a.out, "%-8s %s (%s) %s\n", u.Role, orDash(u.Profile.Name), orDash(u.Profile.College), u.Identity)
	}
	return nil
}

// Switch signs in with another access token. Everything cached for the
// previous identity is dropped.
func (a *App) Switch(ctx context.Context) error {
	if a.session == nil {
		fmt.Fprintln(a.out, "Switching accounts is not supported by this connection")
		return nil
	}

	token, err := GetSecret("Access token", a.out)
	if err != nil {
		return a.report(ctx, "switch", err)
	}
	if _, err := client.IdentityFromToken(token); err != nil {
		return a.report(ctx, "switch", err)
	}
	a.session.SetAccessToken(token)
	identity, err := a.session.Identity()
	if err != nil {
		return a.report(ctx, "switch", err)
	}

	a.closeDetail()
	dropped := a.store.Len()
	a.store.Clear()
	a.pager.Reset()
	a.avatar.Set(nil)
	a.viewed.Set(nil)

	a.mu.Lock()
	a.identity = identity
	a.mu.Unlock()

	a.log.Info(ctx, "identity switched", "identity", identity, "dropped_entries", dropped)
	fmt.Fprintf(a.out, "Signed in as %s\n", identity)
	return nil
}

func (a *App) Focus(ctx context.Context) error {
	if !a.signal.Emit(revalidate.FocusGained) {
		a.log.Debug(ctx, "focus event dropped, revalidation already queued")
	}
	return nil
}
