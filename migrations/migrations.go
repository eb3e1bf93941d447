// Package migrations embeds the SQL migrations of the ticket archive.
package migrations

import "embed"

// FS holds the *.sql migration files at its root.
//
//go:embed *.sql
var FS embed.FS
