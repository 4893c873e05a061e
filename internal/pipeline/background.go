// Package pipeline assembles slide records into the published dataset: it
// runs the extractors over deck text, layers rule-driven backgrounds and
// overrides, and writes the dataset artifacts.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/slidestudy/curator-cli/internal/model"
	"github.com/slidestudy/curator-cli/internal/rules"
)

// Display-length caps for the merged background narratives. English runs
// longer than Chinese for the same information density.
const (
	backgroundMaxEN = 460
	backgroundMaxZH = 280
)

// Backgrounds composes the bilingual historical-background narrative for a
// record: every matching rule sentence, the deck default when none match,
// then style and region context lines, truncated to the display caps.
func Backgrounds(text string, d model.Deck, style, region string, rs *rules.Set) (zh, en string, sources []string) {
	low := strings.ToLower(text)

	var notesEN, notesZH []string
	for _, rule := range rs.Backgrounds {
		for _, kw := range rule.Keywords {
			if strings.Contains(low, kw) {
				notesEN = append(notesEN, rule.EN)
				notesZH = append(notesZH, rule.ZH)
				sources = append(sources, rule.Sources...)
				break
			}
		}
	}

	if len(notesEN) == 0 {
		notesEN = append(notesEN, d.DefaultBackgroundEN)
		notesZH = append(notesZH, d.DefaultBackgroundZH)
	}
	if style != "" {
		notesEN = append(notesEN, fmt.Sprintf("Style context: %s.", style))
		notesZH = append(notesZH, fmt.Sprintf("风格语境：%s。", style))
	}
	if region != "" {
		notesEN = append(notesEN, fmt.Sprintf("Regional context: %s.", region))
		notesZH = append(notesZH, fmt.Sprintf("地域语境：%s。", region))
	}

	en = truncateRunes(strings.Join(uniqueOrder(notesEN), " "), backgroundMaxEN)
	zh = truncateRunes(strings.Join(uniqueOrder(notesZH), " "), backgroundMaxZH)
	return zh, en, uniqueOrder(sources)
}

// StudyDescription renders the bilingual study card shown under each record.
func StudyDescription(material, period, bgZH, bgEN string) string {
	periodZH := orDefault(period, "未标注")
	periodEN := orDefault(period, model.MaterialNotStated)
	materialZH := orDefault(material, "未标注")
	materialEN := orDefault(material, model.MaterialNotStated)
	zh := orDefault(bgZH, "未标注")
	en := orDefault(bgEN, model.MaterialNotStated)
	return fmt.Sprintf("材质：%s。时期：%s。历史背景：%s\nMaterial: %s. Period: %s. Historical background: %s",
		materialZH, periodZH, zh, materialEN, periodEN, en)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func uniqueOrder(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
