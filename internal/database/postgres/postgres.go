package postgres

import (
	"database/sql"

	"github.com/devusSs/warden/internal/database"
	"github.com/devusSs/warden/internal/database/postgres/statements"
	_ "github.com/lib/pq"
)

// Internal Postgres structure which executes database.Service layer functions.
type psql struct {
	db *sql.DB
}

// Inits a new Postgres connection and returns database.Service layer.
func New(dsn string) (database.Service, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	return &psql{db}, nil
}

// Test database connection.
func (p *psql) Ping() error {
	return p.db.Ping()
}

// Closes the database connection.
func (p *psql) Close() error {
	return p.db.Close()
}

// Migrates models / creates tables (check statements/tables.go) on database.
func (p *psql) Migrate() error {
	for _, stmt := range []string{
		statements.CreateGuildSettingsTable,
		statements.CreateCogEventsTable,
		statements.CreateCogEventsIndex,
	} {
		if _, err := p.db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
