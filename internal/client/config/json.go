package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/notesync/internal/flagx"
	"github.com/dmitrijs2005/notesync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	AccessToken        string         `json:"access_token"`
	DatabasePath       string         `json:"database_path"`
	PollInterval       timex.Duration `json:"poll_interval"`
	NotesStaleTime     timex.Duration `json:"notes_stale_time"`
	ProfileStaleTime   timex.Duration `json:"profile_stale_time"`
	CacheGCTime        timex.Duration `json:"cache_gc_time"`
	PageSize           int            `json:"page_size"`
	LogLevel           string         `json:"log_level"`
}

// parseJson overlays cfg with the values set in the JSON file named by -c
// or -config. Fields missing from the file keep their current value.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.AccessToken, jc.AccessToken)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.PollInterval.Duration != 0 {
		cfg.PollInterval = jc.PollInterval.Duration
	}
	if jc.NotesStaleTime.Duration != 0 {
		cfg.NotesStaleTime = jc.NotesStaleTime.Duration
	}
	if jc.ProfileStaleTime.Duration != 0 {
		cfg.ProfileStaleTime = jc.ProfileStaleTime.Duration
	}
	if jc.CacheGCTime.Duration != 0 {
		cfg.CacheGCTime = jc.CacheGCTime.Duration
	}
	if jc.PageSize != 0 {
		cfg.PageSize = jc.PageSize
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
