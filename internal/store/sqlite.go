package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/slidestudy/curator-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "sqlite: create %s", dir)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS fetch_cache (
	url              TEXT PRIMARY KEY,
	status           TEXT NOT NULL,
	page_title       TEXT NOT NULL DEFAULT '',
	meta_description TEXT NOT NULL DEFAULT '',
	final_url        TEXT NOT NULL DEFAULT '',
	fetched_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS verify_runs (
	id          TEXT PRIMARY KEY,
	started_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at DATETIME,
	updated     INTEGER NOT NULL DEFAULT 0,
	needs_human INTEGER NOT NULL DEFAULT 0,
	not_found   INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_fetch_cache_status ON fetch_cache(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetFetch(ctx context.Context, url string) (*model.FetchResult, error) {
	var res model.FetchResult
	err := s.db.QueryRowContext(ctx,
		`SELECT url, status, page_title, meta_description, final_url FROM fetch_cache WHERE url = ?`,
		url,
	).Scan(&res.URL, &res.Status, &res.PageTitle, &res.MetaDescription, &res.FinalURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get fetch %s", url)
	}
	return &res, nil
}

func (s *SQLiteStore) SetFetch(ctx context.Context, url string, result model.FetchResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fetch_cache (url, status, page_title, meta_description, final_url, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
		   status = excluded.status,
		   page_title = excluded.page_title,
		   meta_description = excluded.meta_description,
		   final_url = excluded.final_url,
		   fetched_at = excluded.fetched_at`,
		url, result.Status, result.PageTitle, result.MetaDescription, result.FinalURL, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: set fetch %s", url)
}

func (s *SQLiteStore) CacheStats(ctx context.Context) (CacheStats, error) {
	var stats CacheStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status LIKE 'http_2%' OR status LIKE 'http_3%' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status IN ('http_401', 'http_403') THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status NOT LIKE 'http%' THEN 1 ELSE 0 END), 0)
		FROM fetch_cache`,
	).Scan(&stats.Entries, &stats.Reachable, &stats.Denied, &stats.Failed)
	if err != nil {
		return CacheStats{}, eris.Wrap(err, "sqlite: cache stats")
	}
	return stats, nil
}

func (s *SQLiteStore) ClearCache(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM fetch_cache`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: clear cache")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: clear cache rows")
	}
	return int(n), nil
}

func (s *SQLiteStore) CreateRun(ctx context.Context) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO verify_runs (id, started_at) VALUES (?, ?)`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: create run")
	}
	return id, nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, runID string, updated, needsHuman, notFound int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE verify_runs SET finished_at = ?, updated = ?, needs_human = ?, not_found = ? WHERE id = ?`,
		time.Now().UTC(), updated, needsHuman, notFound, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish run %s", runID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: finish run rows")
	}
	if n == 0 {
		return eris.Errorf("sqlite: run %s not found", runID)
	}
	return nil
}
