package verify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/slidestudy/curator-cli/internal/model"
	"github.com/slidestudy/curator-cli/internal/pipeline"
)

const compactTitleMax = 220

var fourDigitRange = regexp.MustCompile(`^\d{4}-\d{4}$`)

// NormalizeYearExpr produces the confirmed production-period expression for
// review: the year when stated (4-digit ranges get an en dash), otherwise a
// compacted form of the century period with "century" shortened to "c.".
func NormalizeYearExpr(yearCreation, periodCreation string) string {
	year := strings.TrimSpace(yearCreation)
	period := strings.TrimSpace(periodCreation)

	if year != "" && year != "N/A" && year != model.NAReference {
		if fourDigitRange.MatchString(year) {
			return strings.ReplaceAll(year, "-", "–")
		}
		return year
	}
	if period == "" || period == "N/A" || period == model.NAReference {
		return ""
	}

	base := strings.TrimSpace(strings.SplitN(period, "(", 2)[0])
	base = strings.TrimRight(base, ".")
	base = strings.ReplaceAll(base, "century", "c.")
	base = strings.ReplaceAll(base, "Century", "c.")
	return collapseWhitespace(base)
}

var metTitleSuffix = regexp.MustCompile(`\s+-\s+The Metropolitan Museum of Art$`)
var pipeTail = regexp.MustCompile(`\s+\|\s+.*$`)

// CompactSourceTitle strips site-name suffixes and pipe-separated tails from
// a fetched page title, capped for the review table.
func CompactSourceTitle(text string) string {
	text = strings.TrimSpace(text)
	text = metTitleSuffix.ReplaceAllString(text, "")
	text = pipeTail.ReplaceAllString(text, "")
	if r := []rune(text); r != nil && len(r) > compactTitleMax {
		text = string(r[:compactTitleMax])
	}
	return text
}

// The missing-source placeholder sentences. The sync merge looks for these
// to replace them after human review, so the wording is load-bearing.
const (
	MissingSourceSentenceZH = "当前仍需补充更明确的单件作品来源页，以完成最终核对。"
	MissingSourceSentenceEN = "The current course entry still needs a stronger object-level source set for final verification in"
)

// ComposeBackgrounds writes the object-specific bilingual background for a
// review row from its metadata and its best verification source: an
// identification sentence, a context/attribution sentence, and a source
// sentence (or the missing-source placeholder).
func ComposeBackgrounds(row pipeline.ComparisonRow, sources []model.SourceRecord) (zh, en string) {
	title := strings.TrimSpace(row.Title)
	material := strings.TrimSpace(row.Material)
	if material == "" {
		material = "material not clearly stated"
	}
	period := NormalizeYearExpr(row.Year, row.Period)
	if period == "" {
		period = strings.TrimSpace(row.Period)
	}
	place := strings.TrimSpace(row.ProductionPlace)
	if place == "" {
		place = strings.TrimSpace(row.Region)
	}
	region := strings.TrimSpace(row.Region)
	style := strings.TrimSpace(row.Style)
	author := strings.TrimSpace(row.Author)
	course := strings.TrimSpace(row.Course)

	primary := ChoosePrimary(sources)
	var primaryTitle, primaryInst, primaryDesc string
	if primary != nil {
		primaryTitle = CompactSourceTitle(primary.Title)
		primaryInst = primary.Institution
		primaryDesc = strings.TrimSpace(primary.MetaDescription)
	}

	styleOrDefault := style
	if styleOrDefault == "" {
		styleOrDefault = "historical design"
	}
	attributed := author != "" && author != "Unknown" && author != "Unknown artist" &&
		!strings.HasSuffix(author, " artist")

	var enParts []string
	first := fmt.Sprintf("%s is documented as a %s work in the %s period", title, strings.ToLower(material), period)
	if place != "" {
		first += ", associated with " + place
	}
	enParts = append(enParts, first+".")
	if attributed {
		enParts = append(enParts, fmt.Sprintf("The object is presented in the course under %s, within a %s context.", author, styleOrDefault))
	} else {
		second := fmt.Sprintf("The object is studied in a %s context", styleOrDefault)
		if region != "" {
			second += " within " + region
		}
		enParts = append(enParts, second+".")
	}
	if primary != nil {
		sourceSentence := fmt.Sprintf("A core verification source is %s (%s).", primaryInst, primaryTitle)
		if primaryDesc != "" {
			sourceSentence += " The page description supports object-specific identification and collection context."
		}
		enParts = append(enParts, sourceSentence)
	} else {
		enParts = append(enParts, fmt.Sprintf("%s %s.", MissingSourceSentenceEN, course))
	}
	en = strings.Join(enParts[:3], " ")

	zhStyle := style
	if zhStyle == "" {
		zhStyle = "相关设计史"
	}
	zhPeriod := period
	if zhPeriod == "" {
		zhPeriod = "待补充"
	}
	var zhParts []string
	zhFirst := fmt.Sprintf("该展品在课程中对应为“%s”，材质为%s，作品生产时期记作%s", title, material, zhPeriod)
	if place != "" {
		zhFirst += fmt.Sprintf("，并与%s相关", place)
	}
	zhParts = append(zhParts, zhFirst+"。")
	if attributed {
		zhParts = append(zhParts, fmt.Sprintf("课程将其放在%s语境中讨论，并与%s的实践或归属信息相联系。", zhStyle, author))
	} else {
		zhSecond := fmt.Sprintf("该件作品主要在%s语境下讨论", zhStyle)
		if region != "" {
			zhSecond += fmt.Sprintf("，地域范围为%s", region)
		}
		zhParts = append(zhParts, zhSecond+"。")
	}
	if primary != nil {
		zhParts = append(zhParts, fmt.Sprintf("本次核对采用的核心来源之一为%s页面《%s》，用于确认该件作品的对象层级信息与收藏/研究语境。", primaryInst, primaryTitle))
	} else {
		zhParts = append(zhParts, MissingSourceSentenceZH)
	}
	zh = strings.Join(zhParts[:3], "")

	return zh, en
}

var zhSentenceSplit = regexp.MustCompile(`[。！？]+`)
var enSentenceSplit = regexp.MustCompile(`[.!?]+`)

// SentenceCountZH counts Chinese sentences by terminal punctuation.
func SentenceCountZH(text string) int {
	return countNonEmpty(zhSentenceSplit.Split(strings.TrimSpace(text), -1))
}

// SentenceCountEN counts English sentences by terminal punctuation.
func SentenceCountEN(text string) int {
	return countNonEmpty(enSentenceSplit.Split(strings.TrimSpace(text), -1))
}

func countNonEmpty(parts []string) int {
	n := 0
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}
