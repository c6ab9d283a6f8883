// Package migrations embeds the SQL schema so the server can apply it on start.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
