package config

import (
	"time"

	"github.com/dmitrijs2005/notesync/internal/client/cache"
)

// Config holds runtime settings for the notesync CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the notes gRPC endpoint.
//   - AccessToken: bearer token; prompted for when empty.
//   - DatabasePath: SQLite file holding the local like ledger.
//   - PollInterval: how often the note list is marked stale.
//   - NotesStaleTime, ProfileStaleTime: staleness windows of the note list
//     and of public profiles.
//   - CacheGCTime: how long an unread cache entry is kept.
//   - PageSize: notes revealed per "more".
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerEndpointAddr string
	AccessToken        string
	DatabasePath       string
	PollInterval       time.Duration
	NotesStaleTime     time.Duration
	ProfileStaleTime   time.Duration
	CacheGCTime        time.Duration
	PageSize           int
	LogLevel           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DatabasePath = "data/notesync.db"
	c.PollInterval = 5 * time.Second
	c.NotesStaleTime = 3 * time.Second
	c.ProfileStaleTime = 5 * time.Minute
	c.CacheGCTime = 5 * time.Minute
	c.PageSize = 20
	c.LogLevel = "info"
}

// Windows returns the cache staleness windows described by c.
func (c *Config) Windows() cache.Windows {
	w := cache.DefaultWindows()
	w[cache.FamilyNotes] = c.NotesStaleTime
	w[cache.FamilyUserProfile] = c.ProfileStaleTime
	return w
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones. args excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
