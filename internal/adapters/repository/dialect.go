package repository

import (
	"strconv"
	"strings"
)

// dialect captures what differs between the supported SQL engines.
type dialect struct {
	name       string
	driverName string // database/sql driver registration name
	numbered   bool   // $1, $2 placeholders instead of ?
	schema     []string
}

var dialects = map[string]dialect{
	DriverSQLite: {
		name:       DriverSQLite,
		driverName: "sqlite",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS todos (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				title TEXT NOT NULL,
				completed BOOLEAN NOT NULL DEFAULT 0
			)`,
			`CREATE INDEX IF NOT EXISTS ix_todos_title ON todos (title)`,
		},
	},
	DriverPostgres: {
		name:       DriverPostgres,
		driverName: "pgx",
		numbered:   true,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS todos (
				id BIGSERIAL PRIMARY KEY,
				title TEXT NOT NULL,
				completed BOOLEAN NOT NULL DEFAULT FALSE
			)`,
			`CREATE INDEX IF NOT EXISTS ix_todos_title ON todos (title)`,
		},
	},
}

// rebind rewrites ? placeholders for dialects that number their parameters.
// Queries in this package never contain a literal question mark.
func (d dialect) rebind(query string) string {
	if !d.numbered {
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

// queries holds the statements used by SQLStore, rebound once at open.
type queries struct {
	list   string
	get    string
	insert string
	update string
	delete string
	count  string
}

func buildQueries(d dialect) queries {
	return queries{
		list:   d.rebind(`SELECT id, title, completed FROM todos ORDER BY id ASC`),
		get:    d.rebind(`SELECT id, title, completed FROM todos WHERE id = ?`),
		insert: d.rebind(`INSERT INTO todos (title, completed) VALUES (?, ?) RETURNING id, title, completed`),
		update: d.rebind(`UPDATE todos SET title = ?, completed = ? WHERE id = ? RETURNING id, title, completed`),
		delete: d.rebind(`DELETE FROM todos WHERE id = ?`),
		count:  d.rebind(`SELECT COUNT(*) FROM todos`),
	}
}

// privateMemoryDSN reports whether dsn names an SQLite in-memory database
// that exists only on the connection that opened it.
func privateMemoryDSN(driver, dsn string) bool {
	if driver != DriverSQLite || strings.Contains(dsn, "cache=shared") {
		return false
	}
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
