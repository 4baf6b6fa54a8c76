// Package config loads runtime configuration for the notesync CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the notes gRPC endpoint
//	-t string   access token
//	-d string   local database path
//	-p int      note list poll interval (seconds)
//	-n int      notes per page
//	-l string   log level
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "database_path": "data/notesync.db",
//	  "poll_interval": "5s",
//	  "notes_stale_time": "3s",
//	  "profile_stale_time": "5m",
//	  "cache_gc_time": "5m",
//	  "page_size": 20,
//	  "log_level": "info"
//	}
//
// Environment variables are not read.
package config
