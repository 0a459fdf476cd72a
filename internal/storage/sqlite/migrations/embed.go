package migrations

import "embed"

// FS contains embedded SQLite migrations for chat and principal storage.
//
//go:embed *.sql
var FS embed.FS
