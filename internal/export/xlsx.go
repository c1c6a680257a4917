// Package export writes search results to spreadsheet files.
package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/prospector/internal/dedupe"
	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/store"
)

var xlsxHeader = []string{
	"Domain", "Name", "Vertical", "Employees", "Region",
	"ICP Score", "Relevance", "Signals", "Sources", "Description",
}

// WriteXLSX writes companies to an XLSX file at path, one row per company.
func WriteXLSX(path string, companies []model.CompanyRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Prospects")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range xlsxHeader {
		header.AddCell().Value = h
	}

	for _, c := range companies {
		row := sheet.AddRow()
		row.AddCell().Value = c.Domain
		row.AddCell().Value = c.Name
		row.AddCell().Value = c.Vertical
		row.AddCell().Value = strconv.Itoa(c.EmployeeCount)
		row.AddCell().Value = c.Region
		row.AddCell().SetFloatWithFormat(c.ICPScore, "0.0")
		row.AddCell().SetFloatWithFormat(c.Relevance, "0.00")
		row.AddCell().Value = signalSummary(c.Signals)
		row.AddCell().Value = sourceColumn(c.Sources)
		row.AddCell().Value = c.Description
	}

	return eris.Wrap(f.Save(path), "export: save file")
}

// WriteHistoryXLSX writes search log entries to an XLSX file at path.
func WriteHistoryXLSX(path string, entries []store.Entry) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Searches")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Executed", "Query", "Kind", "Engine", "Engines Called", "Cache Hit", "Results", "Duration"} {
		header.AddCell().Value = h
	}

	for _, e := range entries {
		row := sheet.AddRow()
		row.AddCell().Value = e.ExecutedAt.Format(time.RFC3339)
		row.AddCell().Value = e.Query
		row.AddCell().Value = string(e.QueryKind)
		row.AddCell().Value = e.EngineUsed
		row.AddCell().Value = strings.Join(e.EnginesCalled, ", ")
		row.AddCell().SetBool(e.CacheHit)
		row.AddCell().SetInt(e.ResultCount)
		row.AddCell().Value = e.Duration.Round(time.Millisecond).String()
	}

	return eris.Wrap(f.Save(path), "export: save file")
}

// sourceColumn prefers the provenance label, falling back to the raw tag
// for single-source rows where no label is rendered.
func sourceColumn(sources []string) string {
	if label := dedupe.SourceLabel(sources); label != "" {
		return label
	}
	return strings.Join(sources, ", ")
}

func signalSummary(signals []model.Signal) string {
	if len(signals) == 0 {
		return ""
	}
	types := make([]string, 0, len(signals))
	seen := make(map[string]bool, len(signals))
	for _, s := range signals {
		if !seen[s.Type] {
			seen[s.Type] = true
			types = append(types, s.Type)
		}
	}
	return strings.Join(types, ", ")
}
