// Package cli provides the interactive notesync command-line client.
//
// It wires configuration, the local like ledger, the remote client, the
// cache-backed services and an interactive REPL. Typical flow: resolve the
// access token (prompting for it when not configured), start the background
// revalidator, and execute user commands until the user exits.
//
// Key features:
//   - Browse notes: list with search, paging, refresh, show, likers
//   - Edit notes: create, edit and delete (author only), star, pin, like
//   - Profiles: me, profile, setprofile, photo, savephoto, rmphoto, users
//   - Accounts: switch drops everything cached for the previous identity
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
