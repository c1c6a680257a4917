package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/prospector/internal/model"
)

// SQLiteLog implements SearchLog using modernc.org/sqlite.
type SQLiteLog struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite", dsn)
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
	return &SQLiteLog{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS search_log (
	id             TEXT PRIMARY KEY,
	query          TEXT NOT NULL,
	query_kind     TEXT NOT NULL,
	engine_used    TEXT NOT NULL,
	engines_called TEXT NOT NULL,
	cache_hit      INTEGER NOT NULL DEFAULT 0,
	result_count   INTEGER NOT NULL DEFAULT 0,
	duration_ms    INTEGER NOT NULL DEFAULT 0,
	executed_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_search_log_executed_at ON search_log(executed_at);
CREATE INDEX IF NOT EXISTS idx_search_log_query_kind ON search_log(query_kind);
`

func (s *SQLiteLog) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteLog) Record(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.ExecutedAt.IsZero() {
		entry.ExecutedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO search_log (id, query, query_kind, engine_used, engines_called, cache_hit, result_count, duration_ms, executed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Query,
		string(entry.QueryKind),
		entry.EngineUsed,
		strings.Join(entry.EnginesCalled, ","),
		entry.CacheHit,
		entry.ResultCount,
		entry.Duration.Milliseconds(),
		entry.ExecutedAt.Format(time.RFC3339),
	)
	return eris.Wrap(err, "sqlite: insert search log entry")
}

func (s *SQLiteLog) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, query_kind, engine_used, engines_called, cache_hit, result_count, duration_ms, executed_at
		 FROM search_log ORDER BY executed_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query search log")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			kind       string
			called     string
			durationMS int64
			executedAt string
		)
		if err := rows.Scan(&e.ID, &e.Query, &kind, &e.EngineUsed, &called, &e.CacheHit, &e.ResultCount, &durationMS, &executedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan search log entry")
		}
		e.QueryKind = model.QueryKind(kind)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		if called != "" {
			e.EnginesCalled = strings.Split(called, ",")
		}
		if ts, err := time.Parse(time.RFC3339, executedAt); err == nil {
			e.ExecutedAt = ts
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: iterate search log")
}

func (s *SQLiteLog) Close() error {
	return s.db.Close()
}
