// Package sqlite implements the local, device-scoped storage adapter on
// SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver

	"freelanceflow/internal/project"
	"freelanceflow/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    client         TEXT NOT NULL,
    start_date     TEXT NOT NULL DEFAULT '',
    end_date       TEXT NOT NULL DEFAULT '',
    amount         REAL NOT NULL DEFAULT 0,
    status         TEXT NOT NULL,
    payment_status TEXT NOT NULL,
    paid_amount    REAL NOT NULL DEFAULT 0,
    created_at     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_projects_created_at ON projects(created_at DESC);
`

// Store is the SQLite-backed storage adapter. Ids are millisecond tokens
// generated locally, kept strictly increasing even when two inserts land in
// the same millisecond. The token format differs from the Postgres UUIDs on
// purpose; invoice numbering works from either.
type Store struct {
	db *sql.DB

	mu     sync.Mutex
	lastID int64
}

// Open opens (or creates) the store at the given data source name, e.g. a
// file path or "file:projects?mode=memory&cache=shared".
func Open(dsn string) (*Store, func(), error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, func() {}, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, func() {}, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	s := &Store{db: db}
	return s, func() { _ = db.Close() }, nil
}

// Migrate creates the projects table if missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: migrate: %v", storage.ErrUnavailable, err)
	}
	return nil
}

// nextID returns a strictly increasing millisecond token.
func (s *Store) nextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func (s *Store) FetchAll(ctx context.Context) ([]project.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, client, start_date, end_date, amount, status, payment_status, paid_amount, created_at
		FROM projects
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch projects: %v", storage.ErrUnavailable, err)
	}
	defer rows.Close()

	var out []project.Project
	for rows.Next() {
		var p project.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Client, &p.StartDate, &p.EndDate,
			&p.Amount, &p.Status, &p.PaymentStatus, &p.PaidAmount, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan project: %v", storage.ErrUnavailable, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate projects: %v", storage.ErrUnavailable, err)
	}
	return out, nil
}

func (s *Store) Insert(ctx context.Context, p project.Project) (string, error) {
	id := s.nextID()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, client, start_date, end_date, amount, status, payment_status, paid_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.Name, p.Client, p.StartDate, p.EndDate, p.Amount, p.Status, p.PaymentStatus, p.PaidAmount, p.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("%w: insert project: %v", storage.ErrUnavailable, err)
	}
	return id, nil
}

func (s *Store) Replace(ctx context.Context, id string, p project.Project) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE projects
		SET name=?, client=?, start_date=?, end_date=?, amount=?, status=?, payment_status=?, paid_amount=?
		WHERE id=?`,
		p.Name, p.Client, p.StartDate, p.EndDate, p.Amount, p.Status, p.PaymentStatus, p.PaidAmount, id)
	if err != nil {
		return fmt.Errorf("%w: update project: %v", storage.ErrUnavailable, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: project %s", storage.ErrNotFound, id)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("%w: delete project: %v", storage.ErrUnavailable, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: project %s", storage.ErrNotFound, id)
	}
	return nil
}
