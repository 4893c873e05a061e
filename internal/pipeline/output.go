package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/slidestudy/curator-cli/internal/model"
)

// comparisonHeader is the review-table column set. Downstream tooling reads
// these names, so the order is part of the format.
var comparisonHeader = []string{
	"id",
	"course",
	"slide",
	"image_index",
	"title",
	"record_type",
	"image_path",
	"year_creation",
	"period_creation",
	"author",
	"production_place",
	"region",
	"style",
	"material",
	"historical_background_zh",
	"historical_background_en",
	"historical_background_sources",
	"study_description",
	"raw_slide_text",
}

// utf8BOM makes the CSVs open cleanly in spreadsheet apps.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteDataset writes artworks.json into dataDir.
func WriteDataset(ds *model.Dataset, dataDir string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", eris.Wrapf(err, "pipeline: create %s", dataDir)
	}
	out := filepath.Join(dataDir, "artworks.json")

	raw, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "pipeline: marshal dataset")
	}
	if err := os.WriteFile(out, raw, 0o644); err != nil {
		return "", eris.Wrapf(err, "pipeline: write %s", out)
	}
	return out, nil
}

// WriteComparisonTable writes comparison_table.csv into dataDir.
func WriteComparisonTable(ds *model.Dataset, dataDir string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", eris.Wrapf(err, "pipeline: create %s", dataDir)
	}
	out := filepath.Join(dataDir, "comparison_table.csv")

	f, err := os.Create(out)
	if err != nil {
		return "", eris.Wrapf(err, "pipeline: create %s", out)
	}
	defer f.Close()
	if _, err := f.Write(utf8BOM); err != nil {
		return "", eris.Wrapf(err, "pipeline: write %s", out)
	}

	w := csv.NewWriter(f)
	if err := w.Write(comparisonHeader); err != nil {
		return "", eris.Wrapf(err, "pipeline: write %s", out)
	}
	for _, item := range ds.Items {
		m := item.Metadata
		row := []string{
			item.ID,
			item.DeckTitle,
			strconv.Itoa(item.SlideNumber),
			strconv.Itoa(item.ImageIndex),
			item.Title,
			m.RecordType,
			item.Image,
			m.Year,
			m.Period,
			m.Author,
			m.ProductionPlace,
			m.Region,
			m.Style,
			m.Material,
			m.HistoricalBackgroundZh,
			m.HistoricalBackgroundEn,
			strings.Join(m.HistoricalBackgroundSources, " | "),
			item.StudyDescription,
			item.Description,
		}
		if err := w.Write(row); err != nil {
			return "", eris.Wrapf(err, "pipeline: write %s", out)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", eris.Wrapf(err, "pipeline: flush %s", out)
	}
	return out, nil
}

// ComparisonRow is one parsed line of comparison_table.csv. The verification
// pass reads the table rather than artworks.json so that hand edits to the
// CSV flow into verification.
type ComparisonRow struct {
	ID              string
	Course          string
	Slide           int
	ImageIndex      int
	Title           string
	RecordType      string
	ImagePath       string
	Year            string
	Period          string
	Author          string
	ProductionPlace string
	Region          string
	Style           string
	Material        string
	BackgroundZH    string
	BackgroundEN    string
	Sources         []string
	StudyDesc       string
	RawSlideText    string
}

// ReadComparisonTable parses comparison_table.csv, tolerating a UTF-8 BOM.
func ReadComparisonTable(path string) ([]ComparisonRow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: read %s", path)
	}
	raw = []byte(strings.TrimPrefix(string(raw), string(utf8BOM)))

	r := csv.NewReader(strings.NewReader(string(raw)))
	r.FieldsPerRecord = len(comparisonHeader)
	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: parse %s", path)
	}
	if len(records) == 0 {
		return nil, eris.Errorf("pipeline: %s is empty", path)
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}
	for _, name := range comparisonHeader {
		if _, ok := col[name]; !ok {
			return nil, eris.Errorf("pipeline: %s missing column %q", path, name)
		}
	}

	rows := make([]ComparisonRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		slide, _ := strconv.Atoi(rec[col["slide"]])
		imageIdx, _ := strconv.Atoi(rec[col["image_index"]])
		var sources []string
		if s := strings.TrimSpace(rec[col["historical_background_sources"]]); s != "" {
			for _, part := range strings.Split(s, " | ") {
				if part = strings.TrimSpace(part); part != "" {
					sources = append(sources, part)
				}
			}
		}
		rows = append(rows, ComparisonRow{
			ID:              rec[col["id"]],
			Course:          rec[col["course"]],
			Slide:           slide,
			ImageIndex:      imageIdx,
			Title:           rec[col["title"]],
			RecordType:      rec[col["record_type"]],
			ImagePath:       rec[col["image_path"]],
			Year:            rec[col["year_creation"]],
			Period:          rec[col["period_creation"]],
			Author:          rec[col["author"]],
			ProductionPlace: rec[col["production_place"]],
			Region:          rec[col["region"]],
			Style:           rec[col["style"]],
			Material:        rec[col["material"]],
			BackgroundZH:    rec[col["historical_background_zh"]],
			BackgroundEN:    rec[col["historical_background_en"]],
			Sources:         sources,
			StudyDesc:       rec[col["study_description"]],
			RawSlideText:    rec[col["raw_slide_text"]],
		})
	}
	return rows, nil
}
