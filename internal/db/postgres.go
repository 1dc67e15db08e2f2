// Package db opens the platform's Postgres database and owns its embedded
// schema migrations.
package db

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open connects to the Postgres database behind DATABASE_URL via the pgx
// stdlib driver and verifies connectivity with a ping. Caller must call Close
// when done.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
