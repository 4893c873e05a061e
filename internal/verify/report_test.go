package verify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/slidestudy/curator-cli/internal/model"
)

func sampleReviewRows() []model.ReviewRow {
	return []model.ReviewRow{
		{
			GlobalRowIndex:    1,
			ID:                "arts_crafts-s003-i01",
			Title:             "Sussex chair",
			ConfirmedYearExpr: "c. 1865",
			BackgroundZH:      "背景一。背景二。",
			BackgroundEN:      "First sentence. Second sentence.",
			Sources: []model.SourceRecord{{
				Institution: "Victoria and Albert Museum",
				Title:       "The Sussex chair",
				URL:         "https://collections.vam.ac.uk/item/O7240/",
				Tier:        TierOfficial,
				Relevance:   6,
				HTTPStatus:  "http_200",
			}},
			SourceCount: 1,
			Status:      model.StatusUpdated,
			Notes:       []string{"verified from existing linked sources (1 preferred reachable source)"},
		},
		{
			GlobalRowIndex: 4,
			ID:             "arts_crafts-s007-i02",
			Title:          "Peacock Room panel",
			Status:         model.StatusNeedsHuman,
			SubReason:      model.SubReasonTitleMismatch,
			Notes:          []string{"sources mention author/context but not this specific work"},
		},
	}
}

func TestWorksCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "works.csv")
	rows := sampleReviewRows()
	require.NoError(t, WriteWorksCSV(rows, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), string(utf8BOM)))
	assert.Contains(t, string(raw), "global_row_index,id,title")

	got, err := ReadWorksCSV(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, rows[0].ID, got[0].ID)
	assert.Equal(t, rows[0].ConfirmedYearExpr, got[0].ConfirmedYearExpr)
	assert.Equal(t, rows[0].Notes, got[0].Notes)
	require.Len(t, got[0].Sources, 1)
	assert.Equal(t, rows[0].Sources[0], got[0].Sources[0])
	assert.Nil(t, got[1].Sources)
	assert.Equal(t, model.SubReasonTitleMismatch, got[1].SubReason)
}

func TestReadWorksCSVToleratesHandEditedSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "works.csv")
	content := "global_row_index,id,title,sources,status\n" +
		"1,x-s001-i01,Chair,https://example.com/pasted-not-json,updated\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := ReadWorksCSV(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Sources)
	assert.Equal(t, model.StatusUpdated, got[0].Status)
}

func TestWriteWorksXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "works.xlsx")
	require.NoError(t, WriteWorksXLSX(sampleReviewRows(), path))

	wb, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)
	sheet := wb.Sheets[0]
	require.GreaterOrEqual(t, len(sheet.Rows), 3)
	assert.Equal(t, "global_row_index", sheet.Rows[0].Cells[0].Value)
	assert.Equal(t, "arts_crafts-s003-i01", sheet.Rows[1].Cells[1].Value)
	assert.Equal(t, "needs_human", sheet.Rows[2].Cells[8].Value)
}

func TestWriteReportWithPendingRows(t *testing.T) {
	rows := sampleReviewRows()
	report := &Report{
		Updated:    rows[:1],
		NeedsHuman: rows[1:],
	}
	path := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, WriteReport(report, "rows 1-10", path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)

	assert.NotContains(t, content, "✅ All done")
	assert.Contains(t, content, "# Verification Report")
	assert.Contains(t, content, "- Scope: rows 1-10")
	assert.Contains(t, content, "- Updated: 1")
	assert.Contains(t, content, "- Needs human: 1")
	assert.Contains(t, content, "- `arts_crafts-s003-i01` (row 1): Sussex chair")
	assert.Contains(t, content, "  - Source: Victoria and Albert Museum | The Sussex chair | https://collections.vam.ac.uk/item/O7240/")
	assert.Contains(t, content, "  - Notes: sources mention author/context but not this specific work")
	assert.Contains(t, content, "## Not found\n\n- None")
}

func TestWriteReportAllDoneBanner(t *testing.T) {
	report := &Report{Updated: sampleReviewRows()[:1]}
	path := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, WriteReport(report, "", path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "✅ All done\n"))
	assert.NotContains(t, string(raw), "- Scope:")
}
