/* Copyright (c) 2026 Eric Schwartz
 * SPDX-License-Identifier: BSD-3-Clause */
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/config"
)

type DB struct {
	Pool *pgxpool.Pool
	log  zerolog.Logger
}

func MustOpen(ctx context.Context, cfg config.Config, log zerolog.Logger) *DB {
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil { log.Fatal().Err(err).Msg("db connect failed") }
	ctx2, cancel := context.WithTimeout(ctx, 10*time.Second); defer cancel()
	if err := pool.Ping(ctx2); err != nil { log.Fatal().Err(err).Msg("db ping failed") }
	return &DB{Pool: pool, log: log}
}

func (d *DB) Close() { d.Pool.Close() }

// Store is the postgres-backed checkpoint store plus run accounting,
// used instead of the state file when DB_DSN is configured.
type Store struct {
	db  *DB
	log zerolog.Logger
}

func NewStore(d *DB, log zerolog.Logger) *Store { return &Store{db: d, log: log} }

func (s *Store) EnsureSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS run_state (
		id SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
		last_run TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS job_runs (
		id BIGSERIAL PRIMARY KEY,
		since TEXT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		finished_at TIMESTAMPTZ,
		tickets_scanned INT NOT NULL DEFAULT 0,
		features INT NOT NULL DEFAULT 0,
		fixes INT NOT NULL DEFAULT 0,
		excluded INT NOT NULL DEFAULT 0,
		ok BOOLEAN,
		note TEXT
	);`
	_, err := s.db.Pool.Exec(ctx, schema)
	return err
}

func (s *Store) Load(ctx context.Context) (string, bool, error) {
	var last string
	err := s.db.Pool.QueryRow(ctx, `SELECT last_run FROM run_state WHERE id = 1`).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) { return "", false, nil }
	if err != nil { return "", false, err }
	if last == "" { return "", false, nil }
	return last, true, nil
}

func (s *Store) Save(ctx context.Context, boundary string) error {
	const q = `
		INSERT INTO run_state(id, last_run, updated_at) VALUES(1, $1, now())
		ON CONFLICT(id) DO UPDATE SET last_run = EXCLUDED.last_run, updated_at = now()`
	_, err := s.db.Pool.Exec(ctx, q, boundary)
	return err
}

func (s *Store) StartRun(ctx context.Context, since string) (int64, error) {
	var id int64
	err := s.db.Pool.QueryRow(ctx, `INSERT INTO job_runs(since) VALUES($1) RETURNING id`, since).Scan(&id)
	return id, err
}

func (s *Store) FinishRun(ctx context.Context, id int64, scanned, features, fixes, excluded int, ok bool, note string) error {
	const q = `
		UPDATE job_runs SET finished_at = now(), tickets_scanned = $2,
			features = $3, fixes = $4, excluded = $5, ok = $6, note = $7
		WHERE id = $1`
	_, err := s.db.Pool.Exec(ctx, q, id, scanned, features, fixes, excluded, ok, note)
	return err
}

// LastRun returns the most recent accounting row for the admin surface.
func (s *Store) LastRun(ctx context.Context) (map[string]any, error) {
	row := s.db.Pool.QueryRow(ctx, `
		SELECT id, since, started_at, finished_at, tickets_scanned, features, fixes, excluded, ok, COALESCE(note,'')
		FROM job_runs ORDER BY id DESC LIMIT 1`)
	var (
		id                              int64
		since, note                     string
		startedAt                       time.Time
		finishedAt                      *time.Time
		scanned, features, fixes, excl  int
		ok                              *bool
	)
	if err := row.Scan(&id, &since, &startedAt, &finishedAt, &scanned, &features, &fixes, &excl, &ok, &note); err != nil {
		if errors.Is(err, pgx.ErrNoRows) { return nil, nil }
		return nil, err
	}
	return map[string]any{
		"id": id, "since": since, "started_at": startedAt, "finished_at": finishedAt,
		"tickets_scanned": scanned, "features": features, "fixes": fixes,
		"excluded": excl, "ok": ok, "note": note,
	}, nil
}
