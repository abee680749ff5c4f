// Package postgres implements the remote storage adapter on PostgreSQL via
// the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver for PostgreSQL

	"freelanceflow/internal/config"
	"freelanceflow/internal/logx"
	"freelanceflow/internal/project"
	"freelanceflow/internal/storage"
)

var pgLogger = logx.GetScope("postgres")

const schema = `
CREATE TABLE IF NOT EXISTS projects (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    client         TEXT NOT NULL,
    start_date     TEXT NOT NULL DEFAULT '',
    end_date       TEXT NOT NULL DEFAULT '',
    amount         DOUBLE PRECISION NOT NULL DEFAULT 0,
    status         TEXT NOT NULL,
    payment_status TEXT NOT NULL,
    paid_amount    DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_projects_created_at ON projects(created_at DESC);
`

// Store is the Postgres-backed storage adapter. Ids are server-assigned
// UUIDs.
type Store struct {
	db *sql.DB
}

// Open connects using cfg.PG and returns the adapter with a closer.
func Open(cfg *config.Config) (*Store, func(), error) {
	db, err := sql.Open("pgx", cfg.PG.URL)
	if err != nil {
		return nil, func() {}, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	db.SetMaxOpenConns(cfg.PG.MaxOpenConns)
	db.SetMaxIdleConns(cfg.PG.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, func() {}, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}

	s := &Store{db: db}
	closer := func() {
		if err := db.Close(); err != nil {
			pgLogger.Sugar().Errorf("close pg: %v", err)
		}
	}
	return s, closer, nil
}

// Migrate creates the projects table if missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: migrate: %v", storage.ErrUnavailable, err)
	}
	return nil
}

// UpdatePool applies pool settings at runtime (dynamic config watch).
func (s *Store) UpdatePool(maxOpen, maxIdle int) {
	if maxOpen > 0 {
		s.db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle >= 0 {
		s.db.SetMaxIdleConns(maxIdle)
	}
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
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, client, start_date, end_date, amount, status, payment_status, paid_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, p.Name, p.Client, p.StartDate, p.EndDate, p.Amount, p.Status, p.PaymentStatus, p.PaidAmount, p.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("%w: insert project: %v", storage.ErrUnavailable, err)
	}
	return id, nil
}

func (s *Store) Replace(ctx context.Context, id string, p project.Project) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE projects
		SET name=$1, client=$2, start_date=$3, end_date=$4, amount=$5, status=$6, payment_status=$7, paid_amount=$8
		WHERE id=$9`,
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
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("%w: delete project: %v", storage.ErrUnavailable, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: project %s", storage.ErrNotFound, id)
	}
	return nil
}
