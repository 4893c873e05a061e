package verify

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/slidestudy/curator-cli/internal/model"
)

// worksHeader is the review-table column set of works.csv.
var worksHeader = []string{
	"global_row_index",
	"id",
	"title",
	"confirmed_year_expr",
	"historical_background_zh",
	"historical_background_en",
	"sources",
	"source_count",
	"status",
	"sub_reason",
	"notes",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func worksRowValues(row model.ReviewRow) ([]string, error) {
	sourcesJSON, err := json.Marshal(row.Sources)
	if err != nil {
		return nil, eris.Wrapf(err, "verify: marshal sources for %s", row.ID)
	}
	if row.Sources == nil {
		sourcesJSON = []byte("[]")
	}
	return []string{
		strconv.Itoa(row.GlobalRowIndex),
		row.ID,
		row.Title,
		row.ConfirmedYearExpr,
		row.BackgroundZH,
		row.BackgroundEN,
		string(sourcesJSON),
		strconv.Itoa(row.SourceCount),
		row.Status,
		row.SubReason,
		strings.Join(row.Notes, "; "),
	}, nil
}

// WriteWorksCSV writes the review table with a BOM for spreadsheet apps.
func WriteWorksCSV(rows []model.ReviewRow, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "verify: create %s", path)
	}
	defer f.Close()
	if _, err := f.Write(utf8BOM); err != nil {
		return eris.Wrapf(err, "verify: write %s", path)
	}

	w := csv.NewWriter(f)
	if err := w.Write(worksHeader); err != nil {
		return eris.Wrapf(err, "verify: write %s", path)
	}
	for _, row := range rows {
		values, err := worksRowValues(row)
		if err != nil {
			return err
		}
		if err := w.Write(values); err != nil {
			return eris.Wrapf(err, "verify: write %s", path)
		}
	}
	w.Flush()
	return eris.Wrapf(w.Error(), "verify: flush %s", path)
}

// WriteWorksXLSX writes the same review table as a workbook.
func WriteWorksXLSX(rows []model.ReviewRow, path string) error {
	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet("works")
	if err != nil {
		return eris.Wrap(err, "verify: add sheet")
	}

	header := sheet.AddRow()
	for _, name := range worksHeader {
		header.AddCell().SetString(name)
	}
	for _, row := range rows {
		values, err := worksRowValues(row)
		if err != nil {
			return err
		}
		xr := sheet.AddRow()
		for _, v := range values {
			xr.AddCell().SetString(v)
		}
	}
	return eris.Wrapf(wb.Save(path), "verify: save %s", path)
}

// ReadWorksCSV parses a (possibly hand-edited) works.csv back into review
// rows for the sync merge. The sources JSON column is parsed leniently:
// malformed JSON yields an empty source list rather than an error, since a
// reviewer may have pasted plain URLs there.
func ReadWorksCSV(path string) ([]model.ReviewRow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "verify: read %s", path)
	}
	text := strings.TrimPrefix(string(raw), string(utf8BOM))

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "verify: parse %s", path)
	}
	if len(records) == 0 {
		return nil, eris.Errorf("verify: %s is empty", path)
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}
	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	rows := make([]model.ReviewRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		globalIdx, _ := strconv.Atoi(get(rec, "global_row_index"))
		sourceCount, _ := strconv.Atoi(get(rec, "source_count"))

		var sources []model.SourceRecord
		if s := strings.TrimSpace(get(rec, "sources")); s != "" {
			if err := json.Unmarshal([]byte(s), &sources); err != nil {
				sources = nil
			}
		}

		var notes []string
		if s := strings.TrimSpace(get(rec, "notes")); s != "" {
			for _, part := range strings.Split(s, "; ") {
				if part = strings.TrimSpace(part); part != "" {
					notes = append(notes, part)
				}
			}
		}

		rows = append(rows, model.ReviewRow{
			GlobalRowIndex:    globalIdx,
			ID:                get(rec, "id"),
			Title:             get(rec, "title"),
			ConfirmedYearExpr: get(rec, "confirmed_year_expr"),
			BackgroundZH:      get(rec, "historical_background_zh"),
			BackgroundEN:      get(rec, "historical_background_en"),
			Sources:           sources,
			SourceCount:       sourceCount,
			Status:            get(rec, "status"),
			SubReason:         get(rec, "sub_reason"),
			Notes:             notes,
		})
	}
	return rows, nil
}

// WriteReport renders report.md: summary counts, then per-status sections
// with notes and the top sources per row. The leading banner appears only
// when no row needs human review.
func WriteReport(report *Report, scopeNote, path string) error {
	updated, needsHuman, notFound := report.Counts()

	var lines []string
	if needsHuman == 0 {
		lines = append(lines, "✅ All done", "")
	}
	lines = append(lines,
		"# Verification Report",
		"",
		"- Generated: "+time.Now().Format("2006-01-02 15:04:05"),
	)
	if scopeNote != "" {
		lines = append(lines, "- Scope: "+scopeNote)
	}
	lines = append(lines,
		fmt.Sprintf("- Updated: %d", updated),
		fmt.Sprintf("- Needs human: %d", needsHuman),
		fmt.Sprintf("- Not found: %d", notFound),
		"",
	)

	addSection := func(title string, rows []model.ReviewRow) {
		lines = append(lines, "## "+title, "")
		if len(rows) == 0 {
			lines = append(lines, "- None", "")
			return
		}
		for _, row := range rows {
			lines = append(lines, fmt.Sprintf("- `%s` (row %d): %s", row.ID, row.GlobalRowIndex, row.Title))
			if len(row.Notes) > 0 {
				lines = append(lines, "  - Notes: "+strings.Join(row.Notes, "; "))
			}
			for i, s := range row.Sources {
				if i >= 2 {
					break
				}
				lines = append(lines, fmt.Sprintf("  - Source: %s | %s | %s", s.Institution, s.Title, s.URL))
			}
			lines = append(lines, "")
		}
	}
	addSection("Updated", report.Updated)
	addSection("Needs human", report.NeedsHuman)
	addSection("Not found", report.NotFound)

	content := strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n"
	return eris.Wrapf(os.WriteFile(path, []byte(content), 0o644), "verify: write %s", path)
}
