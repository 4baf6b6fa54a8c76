package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/notesync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the notes server
//	-t string   access token
//	-d string   local database path
//	-p int      note list poll interval (in seconds)
//	-n int      notes per page
//	-l string   log level
//
// Arguments for other flags are filtered out with flagx.FilterArgs first.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-t", "-d", "-p", "-n", "-l"})

	fs := flag.NewFlagSet("notesync", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.AccessToken, "t", cfg.AccessToken, "access token")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	pollInterval := fs.Int("p", int(cfg.PollInterval.Seconds()), "note list poll interval (in seconds)")
	fs.IntVar(&cfg.PageSize, "n", cfg.PageSize, "notes per page")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.PollInterval = time.Duration(*pollInterval) * time.Second
	return nil
}
