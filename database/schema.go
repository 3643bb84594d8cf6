package database

import (
	"context"
	"fmt"
)

var usersTable = map[Dialect]string{
	DialectPostgres: `CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    username VARCHAR(50) UNIQUE NOT NULL,
    password_hash VARCHAR(255) NOT NULL
)`,
	DialectSQLite: `CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
)`,
}

// InitSchema creates the users table when it does not exist yet.
// Safe to call multiple times.
func InitSchema(ctx context.Context, e *Executor) error {
	ddl, ok := usersTable[e.Dialect()]
	if !ok {
		return fmt.Errorf("no schema for dialect %q", e.Dialect())
	}
	if _, err := e.Execute(ctx, ddl, true); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
