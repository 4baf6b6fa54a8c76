package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/notesync/internal/client/models"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	List(ctx context.Context, query string) error
	More(ctx context.Context) error
	Refresh(ctx context.Context) error
	Show(ctx context.Context, id models.NoteID) error
	Back(ctx context.Context) error
	Create(ctx context.Context) error
	Edit(ctx context.Context, id models.NoteID) error
	Delete(ctx context.Context, id models.NoteID) error
	Star(ctx context.Context, id models.NoteID) error
	Pin(ctx context.Context, id models.NoteID) error
	Like(ctx context.Context, id models.NoteID) error
	Likers(ctx context.Context, id models.NoteID) error
	Me(ctx context.Context) error
	Profile(ctx context.Context, identity string) error
	SetProfile(ctx context.Context) error
	Photo(ctx context.Context, path string) error
	SavePhoto(ctx context.Context, path string) error
	RemovePhoto(ctx context.Context) error
	Users(ctx context.Context) error
	Switch(ctx context.Context) error
	Focus(ctx context.Context) error
}

const helpText = `Available commands:
  list [query]      list notes, optionally filtered
  more              show the next page
  refresh           reload the list from the server
  show <id>         open a note
  back              close the open note
  create            add a note
  edit <id>         edit a note
  delete <id>       delete a note
  star <id>         star or unstar a note
  pin <id>          pin or unpin a note
  like <id>         like a note
  likers <id>       who liked a note
  me                your profile
  profile <id>      someone else's profile
  setprofile        edit your profile
  photo <path>      upload a profile photo
  savephoto <path>  save your profile photo to a file
  rmphoto           remove your profile photo
  users             user directory
  switch            sign in with another access token
  focus             refresh as if the window regained focus
  exit | quit       leave the program`

// runREPL starts a simple read–eval–print loop for the notesync CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Commands taking a note id are rejected with
// a usage line when the id is missing or malformed. The loop exits on EOF,
// when ctx is done, or when the user types "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("notes %s > ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		withID := func(fn func(context.Context, models.NoteID) error) {
			if len(args) == 0 {
				printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
				return
			}
			id, err := models.ParseNoteID(args[0])
			if err != nil {
				printlnFn("Invalid note id:", args[0])
				return
			}
			_ = fn(ctx, id)
		}

		switch cmd {
		case "help":
			printlnFn(helpText)

		case "l", "list":
			_ = a.List(ctx, strings.Join(args, " "))

		case "more":
			_ = a.More(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "show":
			withID(a.Show)

		case "back":
			_ = a.Back(ctx)

		case "create":
			_ = a.Create(ctx)

		case "edit":
			withID(a.Edit)

		case "delete":
			withID(a.Delete)

		case "star":
			withID(a.Star)

		case "pin":
			withID(a.Pin)

		case "like":
			withID(a.Like)

		case "likers":
			withID(a.Likers)

		case "me":
			_ = a.Me(ctx)

		case "profile":
			if len(args) == 0 {
				printlnFn("Usage: profile <identity>")
				continue
			}
			_ = a.Profile(ctx, args[0])

		case "setprofile":
			_ = a.SetProfile(ctx)

		case "photo":
			if len(args) == 0 {
				printlnFn("Usage: photo <path>")
				continue
			}
			_ = a.Photo(ctx, strings.Join(args, " "))

		case "savephoto":
			if len(args) == 0 {
				printlnFn("Usage: savephoto <path>")
				continue
			}
			_ = a.SavePhoto(ctx, strings.Join(args, " "))

		case "rmphoto":
			_ = a.RemovePhoto(ctx)

		case "users":
			_ = a.Users(ctx)

		case "switch":
			_ = a.Switch(ctx)

		case "focus":
			_ = a.Focus(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if errors.Is(err, io.EOF) {
			return
		}
	}
}
