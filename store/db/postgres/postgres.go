package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"

	"github.com/hrygo/tutormind/internal/profile"
	"github.com/hrygo/tutormind/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a PostgreSQL database specified by its connection string.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	db, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping db")
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	driver := DB{db: db, profile: profile}
	return &driver, nil
}

func (d *DB) GetDB() any {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Migrate creates the schema. Embedding dimensionality follows the
// configured embedding model; changing the model requires a reindex.
func (d *DB) Migrate(ctx context.Context) error {
	dims := d.profile.EmbeddingDimensions
	if dims <= 0 {
		dims = 1536
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fact (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			chat_id TEXT,
			fact_type TEXT NOT NULL,
			subject TEXT,
			details TEXT NOT NULL,
			confidence DOUBLE PRECISION,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			tags TEXT[] NOT NULL DEFAULT '{}',
			created_ts BIGINT NOT NULL,
			updated_ts BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fact_user_active ON fact (user_id, active)`,
		`CREATE INDEX IF NOT EXISTS idx_fact_user_type_subject ON fact (user_id, fact_type, subject)`,
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS source_item (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			embedding vector(%d),
			created_ts BIGINT NOT NULL
		)`, dims),
	}

	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "failed to execute migration: %.60s", stmt)
		}
	}
	return nil
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
