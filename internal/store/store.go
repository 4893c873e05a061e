// Package store persists the source fetch cache and verification run
// history, backed by SQLite for local runs or Postgres for a shared cache.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/slidestudy/curator-cli/internal/config"
	"github.com/slidestudy/curator-cli/internal/model"
)

// CacheStats summarizes the fetch cache contents.
type CacheStats struct {
	Entries   int `json:"entries"`
	Reachable int `json:"reachable"`
	Denied    int `json:"denied"`
	Failed    int `json:"failed"`
}

// Store defines persistence for the verification pass.
type Store interface {
	// Fetch cache. GetFetch returns nil on a miss.
	GetFetch(ctx context.Context, url string) (*model.FetchResult, error)
	SetFetch(ctx context.Context, url string, result model.FetchResult) error
	CacheStats(ctx context.Context) (CacheStats, error)
	ClearCache(ctx context.Context) (int, error)

	// Verification run history.
	CreateRun(ctx context.Context) (string, error)
	FinishRun(ctx context.Context, runID string, updated, needsHuman, notFound int) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open builds the configured backend.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return NewSQLite(cfg.Path)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	}
	return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
}
