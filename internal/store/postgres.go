package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/slidestudy/curator-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using a pgx connection pool, for sharing
// one fetch cache across machines.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS fetch_cache (
	url              TEXT PRIMARY KEY,
	status           TEXT NOT NULL,
	page_title       TEXT NOT NULL DEFAULT '',
	meta_description TEXT NOT NULL DEFAULT '',
	final_url        TEXT NOT NULL DEFAULT '',
	fetched_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS verify_runs (
	id          TEXT PRIMARY KEY,
	started_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at TIMESTAMPTZ,
	updated     INTEGER NOT NULL DEFAULT 0,
	needs_human INTEGER NOT NULL DEFAULT 0,
	not_found   INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_fetch_cache_status ON fetch_cache(status);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetFetch(ctx context.Context, url string) (*model.FetchResult, error) {
	var res model.FetchResult
	err := s.pool.QueryRow(ctx,
		`SELECT url, status, page_title, meta_description, final_url FROM fetch_cache WHERE url = $1`,
		url,
	).Scan(&res.URL, &res.Status, &res.PageTitle, &res.MetaDescription, &res.FinalURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get fetch %s", url)
	}
	return &res, nil
}

func (s *PostgresStore) SetFetch(ctx context.Context, url string, result model.FetchResult) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO fetch_cache (url, status, page_title, meta_description, final_url, fetched_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (url) DO UPDATE SET
		   status = EXCLUDED.status,
		   page_title = EXCLUDED.page_title,
		   meta_description = EXCLUDED.meta_description,
		   final_url = EXCLUDED.final_url,
		   fetched_at = EXCLUDED.fetched_at`,
		url, result.Status, result.PageTitle, result.MetaDescription, result.FinalURL, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: set fetch %s", url)
}

func (s *PostgresStore) CacheStats(ctx context.Context) (CacheStats, error) {
	var stats CacheStats
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status LIKE 'http_2%' OR status LIKE 'http_3%' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status IN ('http_401', 'http_403') THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status NOT LIKE 'http%' THEN 1 ELSE 0 END), 0)
		FROM fetch_cache`,
	).Scan(&stats.Entries, &stats.Reachable, &stats.Denied, &stats.Failed)
	if err != nil {
		return CacheStats{}, eris.Wrap(err, "postgres: cache stats")
	}
	return stats, nil
}

func (s *PostgresStore) ClearCache(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM fetch_cache`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: clear cache")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) CreateRun(ctx context.Context) (string, error) {
	id := uuid.New().String()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO verify_runs (id, started_at) VALUES ($1, $2)`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "postgres: create run")
	}
	return id, nil
}

func (s *PostgresStore) FinishRun(ctx context.Context, runID string, updated, needsHuman, notFound int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE verify_runs SET finished_at = $1, updated = $2, needs_human = $3, not_found = $4 WHERE id = $5`,
		time.Now().UTC(), updated, needsHuman, notFound, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: finish run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: run %s not found", runID)
	}
	return nil
}
