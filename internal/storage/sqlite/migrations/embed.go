package migrations

import "embed"

// FS contains embedded SQLite migrations for binder storage.
//
//go:embed *.sql
var FS embed.FS
