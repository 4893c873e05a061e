package verify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/slidestudy/curator-cli/internal/model"
	"github.com/slidestudy/curator-cli/internal/pipeline"
)

// SyncStats summarizes one merge of reviewed rows into the dataset.
type SyncStats struct {
	Items         int `json:"items"`
	Matched       int `json:"matched"`
	Updated       int `json:"updated"`
	Degenericized int `json:"degenericized"`
}

// Sync merges a reviewed works.csv back into artworks.json in dataDir and
// rewrites both dataset artifacts.
//
// Reviewed backgrounds replace the generated ones whenever the reviewer left
// them non-empty, regardless of status. Rows marked updated additionally
// promote the confirmed year expression to the record's period, clear the
// raw year on artworks (the period expression is now authoritative), and
// replace the record's source list with the verified one. Items without a
// review row keep their data, except that deck-level generic backgrounds are
// rewritten into item-specific ones.
func Sync(worksPath, dataDir string) (*SyncStats, error) {
	rows, err := ReadWorksCSV(worksPath)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.ReviewRow, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	dsPath := filepath.Join(dataDir, "artworks.json")
	raw, err := os.ReadFile(dsPath)
	if err != nil {
		return nil, eris.Wrapf(err, "verify: read %s", dsPath)
	}
	var ds model.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, eris.Wrapf(err, "verify: parse %s", dsPath)
	}

	defaults := make(map[string]model.Deck, len(ds.Decks))
	for _, d := range ds.Decks {
		defaults[d.ID] = d
	}

	stats := &SyncStats{Items: len(ds.Items)}
	for i := range ds.Items {
		item := &ds.Items[i]
		row, ok := byID[item.ID]
		if !ok {
			if degenericizeBackground(item, defaults[item.DeckID]) {
				stats.Degenericized++
				refreshDerived(item)
			}
			continue
		}
		stats.Matched++

		m := &item.Metadata
		if row.BackgroundZH != "" {
			m.HistoricalBackgroundZh = row.BackgroundZH
		}
		if row.BackgroundEN != "" {
			m.HistoricalBackgroundEn = row.BackgroundEN
		}

		if row.Status == model.StatusUpdated {
			stats.Updated++
			if row.ConfirmedYearExpr != "" {
				m.Period = row.ConfirmedYearExpr
			}
			if m.RecordType == string(model.RecordTypeArtwork) {
				m.Year = ""
			}
			if urls := reviewedSourceURLs(row.Sources); len(urls) > 0 {
				m.HistoricalBackgroundSources = urls
			}
			if primary := ChoosePrimary(row.Sources); primary != nil {
				m.HistoricalBackgroundZh = replaceMissingSourceZH(m.HistoricalBackgroundZh, primary)
				m.HistoricalBackgroundEn = replaceMissingSourceEN(m.HistoricalBackgroundEn, primary)
			}
		}
		refreshDerived(item)
	}

	ds.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	ds.Count = len(ds.Items)

	if _, err := pipeline.WriteDataset(&ds, dataDir); err != nil {
		return nil, err
	}
	if _, err := pipeline.WriteComparisonTable(&ds, dataDir); err != nil {
		return nil, err
	}

	zap.L().Info("sync complete",
		zap.Int("items", stats.Items),
		zap.Int("matched", stats.Matched),
		zap.Int("updated", stats.Updated),
		zap.Int("degenericized", stats.Degenericized))
	return stats, nil
}

// refreshDerived recomputes the fields that restate metadata: the combined
// background and the bilingual study card.
func refreshDerived(item *model.SlideRecord) {
	m := &item.Metadata
	switch {
	case m.HistoricalBackgroundZh != "" && m.HistoricalBackgroundEn != "":
		m.HistoricalBackground = m.HistoricalBackgroundZh + "\n" + m.HistoricalBackgroundEn
	case m.HistoricalBackgroundZh != "":
		m.HistoricalBackground = m.HistoricalBackgroundZh
	default:
		m.HistoricalBackground = m.HistoricalBackgroundEn
	}
	item.StudyDescription = pipeline.StudyDescription(
		m.Material, m.Period, m.HistoricalBackgroundZh, m.HistoricalBackgroundEn)
}

// degenericizeBackground rewrites a background that is still the deck-level
// default into an item-specific one, so unreviewed records at least identify
// the object they describe. Returns true when it changed anything.
func degenericizeBackground(item *model.SlideRecord, d model.Deck) bool {
	m := &item.Metadata
	if d.ID == "" || m.RecordType != string(model.RecordTypeArtwork) {
		return false
	}
	genericEN := d.DefaultBackgroundEN != "" && strings.HasPrefix(m.HistoricalBackgroundEn, d.DefaultBackgroundEN)
	genericZH := d.DefaultBackgroundZH != "" && strings.HasPrefix(m.HistoricalBackgroundZh, d.DefaultBackgroundZH)
	if !genericEN && !genericZH {
		return false
	}

	period := m.Period
	if period == "" {
		period = "an unrecorded period"
	}
	material := m.Material
	if material == "" || material == model.MaterialNotStated {
		material = "unrecorded material"
	}
	if genericEN {
		lead := fmt.Sprintf("%s is catalogued in this course as a work in %s, dated to %s.", item.Title, strings.ToLower(material), period)
		m.HistoricalBackgroundEn = lead + " " + m.HistoricalBackgroundEn
	}
	if genericZH {
		zhPeriod := m.Period
		if zhPeriod == "" {
			zhPeriod = "未标注"
		}
		lead := fmt.Sprintf("“%s”为本课程收录作品，时期记作%s。", item.Title, zhPeriod)
		m.HistoricalBackgroundZh = lead + m.HistoricalBackgroundZh
	}
	return true
}

func reviewedSourceURLs(records []model.SourceRecord) []string {
	var out []string
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if r.URL == "" || seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		out = append(out, r.URL)
	}
	return out
}

// replaceMissingSourceZH swaps the missing-source placeholder sentence for a
// confirmed-source one once verification produced a primary source.
func replaceMissingSourceZH(text string, primary *model.SourceRecord) string {
	if !strings.Contains(text, MissingSourceSentenceZH) {
		return text
	}
	confirmed := fmt.Sprintf("本次核对已确认核心来源为%s页面《%s》。", primary.Institution, CompactSourceTitle(primary.Title))
	return strings.Replace(text, MissingSourceSentenceZH, confirmed, 1)
}

func replaceMissingSourceEN(text string, primary *model.SourceRecord) string {
	idx := strings.Index(text, MissingSourceSentenceEN)
	if idx < 0 {
		return text
	}
	end := strings.Index(text[idx:], ".")
	if end < 0 {
		end = len(text) - idx
	} else {
		end++
	}
	confirmed := fmt.Sprintf("A confirmed verification source is %s (%s).", primary.Institution, CompactSourceTitle(primary.Title))
	return text[:idx] + confirmed + text[idx+end:]
}
