// Package sqlstore persists configuration documents in a SQL table, keeping
// every saved revision. SQLite (modernc.org/sqlite) and PostgreSQL
// (github.com/lib/pq) are supported.
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	nanoid "github.com/matoous/go-nanoid/v2"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-formdoc/pkg/storage"
)

//go:embed migrations
var migrationsFS embed.FS

// Dialect selects the driver and placeholder style.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

var (
	idAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	idLength   = 12
)

// Revision describes one saved document.
type Revision struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store implements storage.Store over database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
	newID   func() (string, error)
}

var _ storage.Store = (*Store)(nil)

// Open connects to dsn, verifies the connection and applies migrations.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("sqlstore: dsn is required")
	}
	switch dialect {
	case SQLite, Postgres:
	default:
		return nil, fmt.Errorf("sqlstore: unsupported dialect %q", dialect)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open database: %w", err)
	}
	if dialect == SQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: ping database: %w", err)
	}
	if err := runMigrations(db, dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: run migrations: %w", err)
	}
	return New(db, dialect), nil
}

// New wraps an already migrated database handle.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   generateID,
	}
}

func generateID() (string, error) {
	id, err := nanoid.Generate(idAlphabet, idLength)
	if err != nil {
		return "", fmt.Errorf("sqlstore: generate id: %w", err)
	}
	return "rev-" + id, nil
}

func runMigrations(db *sql.DB, dialect Dialect) error {
	source, err := iofs.New(migrationsFS, "migrations/"+string(dialect))
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	var m *migrate.Migrate
	switch dialect {
	case Postgres:
		driver, derr := migratepostgres.WithInstance(db, &migratepostgres.Config{})
		if derr != nil {
			return fmt.Errorf("create migration db driver: %w", derr)
		}
		m, err = migrate.NewWithInstance("iofs", source, "postgres", driver)
	default:
		driver, derr := migratesqlite.WithInstance(db, &migratesqlite.Config{})
		if derr != nil {
			return fmt.Errorf("create migration db driver: %w", derr)
		}
		m, err = migrate.NewWithInstance("iofs", source, "sqlite", driver)
	}
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the most recent revision.
func (s *Store) Load(ctx context.Context) ([]byte, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM formdoc_documents ORDER BY created_at DESC, id DESC LIMIT 1`,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: load: %w", err)
	}
	return []byte(body), nil
}

// Save appends a new revision.
func (s *Store) Save(ctx context.Context, data []byte) error {
	id, err := s.newID()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO formdoc_documents (id, body, created_at) VALUES (?, ?, ?)`),
		id, string(data), s.now(),
	)
	if err != nil {
		return fmt.Errorf("sqlstore: save: %w", err)
	}
	return nil
}

// Clear drops every revision.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM formdoc_documents`); err != nil {
		return fmt.Errorf("sqlstore: clear: %w", err)
	}
	return nil
}

// Revisions lists up to limit saved revisions, newest first.
func (s *Store) Revisions(ctx context.Context, limit int) ([]Revision, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT id, created_at FROM formdoc_documents ORDER BY created_at DESC, id DESC LIMIT ?`),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list revisions: %w", err)
	}
	defer rows.Close()

	var out []Revision
	for rows.Next() {
		var rev Revision
		if err := rows.Scan(&rev.ID, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlstore: scan revision: %w", err)
		}
		out = append(out, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: list revisions: %w", err)
	}
	return out, nil
}

// Revision loads one revision body by id.
func (s *Store) Revision(ctx context.Context, id string) ([]byte, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT body FROM formdoc_documents WHERE id = ?`), id,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: load revision %s: %w", id, err)
	}
	return []byte(body), nil
}

// rebind rewrites "?" placeholders for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
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
