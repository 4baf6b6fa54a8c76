package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/notesync/internal/client/cache"
	"github.com/dmitrijs2005/notesync/internal/client/client"
	"github.com/dmitrijs2005/notesync/internal/client/config"
	"github.com/dmitrijs2005/notesync/internal/client/ledger"
	"github.com/dmitrijs2005/notesync/internal/client/models"
	"github.com/dmitrijs2005/notesync/internal/client/photo"
	"github.com/dmitrijs2005/notesync/internal/client/revalidate"
	"github.com/dmitrijs2005/notesync/internal/client/services"
	"github.com/dmitrijs2005/notesync/internal/client/view"
	"github.com/dmitrijs2005/notesync/internal/logging"
)

// session is implemented by remote clients whose credentials can be
// replaced at runtime.
type session interface {
	SetAccessToken(token string)
	Identity() (string, error)
}

type App struct {
	config      *config.Config
	log         logging.Logger
	store       *cache.Cache
	notes       services.NotesService
	profiles    services.ProfileService
	revalidator *revalidate.Revalidator
	signal      *revalidate.Channel
	pager       *view.Pager
	photos      *photo.Manager
	avatar      *photo.Binding
	viewed      *photo.Binding
	session     session
	detail      *detailView
	reader      *bufio.Reader
	out         io.Writer
	closers     []io.Closer

	mu       sync.RWMutex
	identity string
}

// NewApp wires the client stack described by c. When c carries no access
// token the user is asked for one.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	out := io.Writer(os.Stdout)

	token := c.AccessToken
	if token == "" {
		var err error
		if token, err = GetSecret("Access token", out); err != nil {
			return nil, fmt.Errorf("read access token: %w", err)
		}
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr, token)
	if err != nil {
		return nil, err
	}
	identity, err := apiClient.Identity()
	if err != nil {
		_ = apiClient.Close()
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		_ = apiClient.Close()
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	a := newApp(c, log, apiClient, ledger.New(db), identity)
	a.closers = []io.Closer{apiClient, db}
	return a, nil
}

func newApp(c *config.Config, log logging.Logger, api client.Client, l services.LikeLedger, identity string) *App {
	a := &App{
		config:   c,
		log:      log,
		store:    cache.New(cache.WithLogger(log), cache.WithGCTime(c.CacheGCTime)),
		signal:   revalidate.NewChannel(8),
		pager:    view.NewPager(c.PageSize),
		photos:   photo.NewManager(),
		identity: identity,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}
	if s, ok := api.(session); ok {
		a.session = s
	}

	deps := services.Deps{
		Cache:    a.store,
		Windows:  c.Windows(),
		Identity: func() (string, error) { return a.currentIdentity(), nil },
		Logger:   log,
	}
	a.notes = services.NewNotesService(api, l, deps)
	a.profiles = services.NewProfileService(api, deps)

	a.avatar = a.photos.Bind()
	a.viewed = a.photos.Bind()
	a.revalidator = revalidate.New(a.store, a.signal, c.PollInterval,
		revalidate.WithLogger(log),
		revalidate.WithRefetch(a.prefetch),
	)
	return a
}

func (a *App) currentIdentity() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.identity
}

// prefetch reloads the note list in the background so the next "list"
// finds it fresh.
func (a *App) prefetch(ctx context.Context) {
	if _, err := a.notes.ListNotes(ctx, services.Cached); err != nil {
		a.log.Warn(ctx, "background note list refresh failed", "error", err)
	}
}

func (a *App) getStatus() string {
	status := a.currentIdentity()
	if d := a.detail; d != nil && d.changed.Load() {
		e, _ := cache.Peek[*models.Note](a.store, cache.NoteKey(d.id))
		if e.Stale {
			status += fmt.Sprintf(", note %s is outdated", d.id)
		} else {
			status += fmt.Sprintf(", note %s was updated", d.id)
		}
	}
	return fmt.Sprintf("(%s)", status)
}

// Run starts the revalidator and blocks in the REPL until the user exits
// or ctx is done.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.Close()

	go a.revalidator.Run(ctx)

	printlnFn("Welcome to notesync (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close releases photo handles and closes the connections.
func (a *App) Close() {
	a.closeDetail()
	a.avatar.Close()
	a.viewed.Close()
	if n := a.photos.Live(); n > 0 {
		a.log.Warn(context.Background(), "photo handles still open at shutdown", "count", n)
	}
	a.signal.Close()
	for _, c := range a.closers {
		_ = c.Close()
	}
	a.closers = nil
}
