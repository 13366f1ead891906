// Package migrations embeds the client-side SQLite schema, applied with
// goose on startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
