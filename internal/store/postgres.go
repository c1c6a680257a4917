package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/prospector/internal/model"
)

// PostgresLog implements SearchLog using pgxpool.
type PostgresLog struct {
	pool    searchLogPool
	closeFn func()
}

// searchLogPool is the pgx surface PostgresLog depends on. pgxmock's
// PgxPoolIface satisfies it.
type searchLogPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresLog with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresLog, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxPool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pgxPool.Ping(ctx); err != nil {
		pgxPool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresLog{pool: pgxPool, closeFn: pgxPool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS search_log (
	id             TEXT PRIMARY KEY,
	query          TEXT NOT NULL,
	query_kind     TEXT NOT NULL,
	engine_used    TEXT NOT NULL,
	engines_called TEXT NOT NULL,
	cache_hit      BOOLEAN NOT NULL DEFAULT FALSE,
	result_count   INTEGER NOT NULL DEFAULT 0,
	duration_ms    BIGINT NOT NULL DEFAULT 0,
	executed_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_search_log_executed_at ON search_log(executed_at);
CREATE INDEX IF NOT EXISTS idx_search_log_query_kind ON search_log(query_kind);
`

func (s *PostgresLog) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresLog) Record(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.ExecutedAt.IsZero() {
		entry.ExecutedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO search_log (id, query, query_kind, engine_used, engines_called, cache_hit, result_count, duration_ms, executed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID,
		entry.Query,
		string(entry.QueryKind),
		entry.EngineUsed,
		strings.Join(entry.EnginesCalled, ","),
		entry.CacheHit,
		entry.ResultCount,
		entry.Duration.Milliseconds(),
		entry.ExecutedAt,
	)
	return eris.Wrap(err, "postgres: insert search log entry")
}

func (s *PostgresLog) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, query, query_kind, engine_used, engines_called, cache_hit, result_count, duration_ms, executed_at
		 FROM search_log ORDER BY executed_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query search log")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			kind       string
			called     string
			durationMS int64
		)
		if err := rows.Scan(&e.ID, &e.Query, &kind, &e.EngineUsed, &called, &e.CacheHit, &e.ResultCount, &durationMS, &e.ExecutedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan search log entry")
		}
		e.QueryKind = model.QueryKind(kind)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		if called != "" {
			e.EnginesCalled = strings.Split(called, ",")
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "postgres: iterate search log")
}

func (s *PostgresLog) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}
