// Package migrations embute o schema SQL aplicado por cmd/migrate.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS

const Schema = "001_schema.sql"
