package migrations

import "embed"

// FS contains the Postgres migrations for the hosted backend.
//
//go:embed *.sql
var FS embed.FS
