package database

import (
	_ "embed"
)

// Embedded DDL for the SQLite fallback store. Postgres uses golang-migrate
// with the files under migrations/ instead.
//
//go:embed schema_sqlite.sql
var sqliteSchema string
