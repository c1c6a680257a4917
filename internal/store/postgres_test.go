package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospector/internal/model"
)

// newMockPostgresLog creates a PostgresLog backed by pgxmock for unit testing.
func newMockPostgresLog(t *testing.T) (*PostgresLog, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresLog{pool: mock}
	return s, mock
}

func TestPostgresLog_Record(t *testing.T) {
	s, mock := newMockPostgresLog(t)

	mock.ExpectExec(`INSERT INTO search_log`).
		WithArgs(pgxmock.AnyArg(), "food ingredients companies in Asia", "cohort", "apollo",
			"apollo,exa", false, 12, int64(2400), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.Record(context.Background(), Entry{
		Query:         "food ingredients companies in Asia",
		QueryKind:     model.QueryKindCohort,
		EngineUsed:    "apollo",
		EnginesCalled: []string{"apollo", "exa"},
		ResultCount:   12,
		Duration:      2400 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLog_Record_GeneratesID(t *testing.T) {
	s, mock := newMockPostgresLog(t)

	mock.ExpectExec(`INSERT INTO search_log`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.Record(context.Background(), Entry{Query: "Acme Corp", QueryKind: model.QueryKindName, EngineUsed: "serper"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLog_Recent(t *testing.T) {
	s, mock := newMockPostgresLog(t)

	executed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{
		"id", "query", "query_kind", "engine_used", "engines_called",
		"cache_hit", "result_count", "duration_ms", "executed_at",
	}).AddRow("log-1", "Acme Corp", "name", "serper", "serper", false, 1, int64(900), executed).
		AddRow("log-2", "saas companies", "cohort", "apollo", "", true, 8, int64(15), executed.Add(-time.Hour))

	mock.ExpectQuery(`SELECT .* FROM search_log ORDER BY executed_at DESC LIMIT \$1`).
		WithArgs(2).
		WillReturnRows(rows)

	entries, err := s.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "log-1", entries[0].ID)
	assert.Equal(t, model.QueryKindName, entries[0].QueryKind)
	assert.Equal(t, []string{"serper"}, entries[0].EnginesCalled)
	assert.Equal(t, 900*time.Millisecond, entries[0].Duration)

	assert.True(t, entries[1].CacheHit)
	assert.Nil(t, entries[1].EnginesCalled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLog_Recent_DefaultLimit(t *testing.T) {
	s, mock := newMockPostgresLog(t)

	mock.ExpectQuery(`SELECT .* FROM search_log ORDER BY executed_at DESC LIMIT \$1`).
		WithArgs(50).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "query", "query_kind", "engine_used", "engines_called",
			"cache_hit", "result_count", "duration_ms", "executed_at",
		}))

	entries, err := s.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}
