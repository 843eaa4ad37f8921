// Package migrations embeds the schema for each supported store driver.
package migrations

import "embed"

// Postgres holds the *.up.sql files applied by cmd/migrate.
//
//go:embed postgres/*.sql
var Postgres embed.FS

// SQLite holds the files applied when a SQLite store is opened.
//
//go:embed sqlite/*.sql
var SQLite embed.FS
