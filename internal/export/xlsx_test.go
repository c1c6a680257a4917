package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/store"
)

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prospects.xlsx")

	companies := []model.CompanyRecord{
		{
			Domain:        "acme.com",
			Name:          "Acme Corp",
			Vertical:      "manufacturing",
			EmployeeCount: 120,
			Region:        "Texas",
			ICPScore:      87.5,
			Relevance:     0.91,
			Sources:       []string{"exa", "apollo"},
			Signals: []model.Signal{
				{ID: "s1", Type: model.SignalHiring},
				{ID: "s2", Type: model.SignalHiring},
				{ID: "s3", Type: model.SignalFunding},
			},
			Description: "Industrial fasteners",
		},
		{Domain: "other.io", Name: "Other"},
	}

	require.NoError(t, WriteXLSX(path, companies))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	assert.Equal(t, "Prospects", sheet.Name)
	require.Len(t, sheet.Rows, 3)

	assert.Equal(t, "Domain", sheet.Rows[0].Cells[0].Value)
	assert.Equal(t, "acme.com", sheet.Rows[1].Cells[0].Value)
	assert.Equal(t, "Acme Corp", sheet.Rows[1].Cells[1].Value)
	assert.Equal(t, "120", sheet.Rows[1].Cells[3].Value)

	// Duplicate signal types collapse in the summary column.
	assert.Equal(t, "hiring, funding", sheet.Rows[1].Cells[7].Value)
	assert.Equal(t, "Found by Exa + Apollo", sheet.Rows[1].Cells[8].Value)

	assert.Equal(t, "other.io", sheet.Rows[2].Cells[0].Value)
	assert.Empty(t, sheet.Rows[2].Cells[7].Value)
}

func TestWriteHistoryXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.xlsx")

	entries := []store.Entry{
		{
			ID:            "log-1",
			Query:         "logistics startups in Texas",
			QueryKind:     model.QueryKindCohort,
			EngineUsed:    "apollo",
			EnginesCalled: []string{"apollo", "exa"},
			ResultCount:   14,
			Duration:      3200 * time.Millisecond,
			ExecutedAt:    time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		},
	}

	require.NoError(t, WriteHistoryXLSX(path, entries))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)

	sheet := f.Sheets[0]
	assert.Equal(t, "Searches", sheet.Name)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "logistics startups in Texas", sheet.Rows[1].Cells[1].Value)
	assert.Equal(t, "apollo, exa", sheet.Rows[1].Cells[4].Value)
	assert.Equal(t, "3.2s", sheet.Rows[1].Cells[7].Value)
}

func TestWriteXLSX_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteXLSX(path, nil))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets[0].Rows, 1)
}
