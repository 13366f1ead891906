// Package cli provides the interactive giglog command-line client.
//
// It wires configuration, the local store, the server gateway, and an
// interactive REPL that works fully offline: every write lands locally and
// is synchronized in the background whenever the server is reachable.
//
// Key features:
//   - Register / Login / Logout with a persisted session
//   - Add gigs with purchases, ratings, and venue snapshots
//   - Manage the venue and people library
//   - Statistics (summary and pint analytics) computed locally
//   - Manual and background sync with the server
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
