// Package migrations embeds the PostgreSQL schema migrations so the
// management binary can run them without the source tree.
package migrations

import "embed"

// FS holds every *.sql migration in this directory
//
//go:embed *.sql
var FS embed.FS
