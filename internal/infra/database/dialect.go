package database

import (
	"strconv"
	"strings"
)

// Dialect captures the few SQL differences between the supported engines.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// rebind rewrites ? placeholders to $1, $2, ... for Postgres.
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) schema() []string {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if d == DialectPostgres {
		idColumn = "id BIGSERIAL PRIMARY KEY"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS roster_entries (
			` + idColumn + `,
			name TEXT NOT NULL DEFAULT '',
			call_sign TEXT NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS roster_entries_name_idx ON roster_entries (name)`,
		`CREATE INDEX IF NOT EXISTS roster_entries_call_sign_idx ON roster_entries (call_sign)`,
		`CREATE TABLE IF NOT EXISTS cycles (
			id TEXT PRIMARY KEY,
			started_at BIGINT NOT NULL,
			archived_entries INTEGER NOT NULL DEFAULT 0
		)`,
	}
}
