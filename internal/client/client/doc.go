// Package client talks to the remote notes service and bootstraps local
// storage.
//
// # Overview
//
// The package provides:
//  1. The remote contract (see the Client interface): note reads and writes,
//     likes, likers and user profiles.
//  2. A gRPC implementation (see GRPCClient). Messages travel as
//     google.protobuf.Struct values, so no generated stubs are needed; an
//     interceptor injects the access token and status codes are mapped to
//     the sentinel errors of package common.
//  3. IdentityFromToken, which reads the signed-in identity from the access
//     token. The identity scopes the local like ledger.
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying the embedded goose migrations.
//
// # Error Handling
//
// Transport failures are exposed as common.ErrUnavailable and
// common.ErrUnauthorized; anything else is wrapped as "rpc error: ...".
// A missing entity is not an error.
//
// Concurrency & Contexts
//
// GRPCClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation and deadlines.
package client
