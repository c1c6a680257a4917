// Package store persists a log of executed searches for usage review
// and offline analysis. Postgres backs the server deployment; SQLite
// backs local CLI use.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospector/internal/model"
)

// Entry is one logged search execution.
type Entry struct {
	ID            string          `json:"id"`
	Query         string          `json:"query"`
	QueryKind     model.QueryKind `json:"query_kind"`
	EngineUsed    string          `json:"engine_used"`
	EnginesCalled []string        `json:"engines_called"`
	CacheHit      bool            `json:"cache_hit"`
	ResultCount   int             `json:"result_count"`
	Duration      time.Duration   `json:"duration"`
	ExecutedAt    time.Time       `json:"executed_at"`
}

// SearchLog records completed searches and reads back recent history.
type SearchLog interface {
	Record(ctx context.Context, entry Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a SearchLog for the given driver ("postgres" or "sqlite")
// and runs migrations. An empty driver returns nil with no error so
// callers can treat the log as optional.
func Open(ctx context.Context, driver, dsn string, poolCfg *PoolConfig) (SearchLog, error) {
	var (
		log SearchLog
		err error
	)
	switch driver {
	case "":
		return nil, nil
	case "postgres":
		log, err = NewPostgres(ctx, dsn, poolCfg)
	case "sqlite":
		log, err = NewSQLite(dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := log.Migrate(ctx); err != nil {
		log.Close()
		return nil, err
	}
	return log, nil
}
