package migrations

import "embed"

// Files holds the numbered schema migrations, applied in order on every open.
//
//go:embed *.sql
var Files embed.FS
