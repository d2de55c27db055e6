// Package migrations embeds the game journal schema into the binary.
package migrations

import "embed"

// FS holds every *.sql file in this directory, ready for database.Migrate.
//
//go:embed *.sql
var FS embed.FS
