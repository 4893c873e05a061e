package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// yearPattern matches a 4-digit year candidate, optionally prefixed with a
// circa abbreviation and optionally followed by a 2- or 4-digit range end.
// Params.MinYear/MaxYear decide which candidates survive.
var yearPattern = regexp.MustCompile(`(?:c(?:a)?\.?\s*)?([12]\d{3})(?:\s*-\s*(\d{2,4}))?`)

// yearContextHints are descriptive-context words whose presence near a year
// candidate raises confidence that it dates a work rather than a lecture.
var yearContextHints = regexp.MustCompile(`(?i)\b(c(?:a)?\.?|century|oil|wood|bronze|lithograph|porcelain|earthenware|chair|vase|mask|figure|throne|textile|cloth|dated|designed)\b`)

var craftWords = []string{"artist", "wood", "bronze", "porcelain", "oil", "lithograph"}

type yearCandidate struct {
	score int
	pos   int
	text  string
}

// normalizeYearRange expands a short range end ("1890-92") to four digits by
// reusing the start year's century prefix.
func normalizeYearRange(start, end string) string {
	if end == "" {
		return start
	}
	if len(end) == 2 {
		end = start[:2] + end
	}
	return start + "-" + end
}

// Year scans text for the most plausible creation year or range. Candidates
// outside [MinYear, MaxYear] are discarded; the rest are scored from
// surrounding context and ranked by (score desc, position asc), and the
// winner is returned only with a non-negative score. Years at or beyond the
// noise threshold are course-schedule markers and skipped.
func Year(text string, p Params) string {
	normalized := strings.ReplaceAll(text, "–", "-")

	var candidates []yearCandidate
	for _, idx := range yearPattern.FindAllStringSubmatchIndex(normalized, -1) {
		full := normalized[idx[0]:idx[1]]
		start := normalized[idx[2]:idx[3]]
		startYear, _ := strconv.Atoi(start)
		if startYear < p.MinYear || startYear > p.MaxYear {
			continue
		}
		if startYear >= p.NoiseYearFrom {
			continue
		}

		endRaw := ""
		if idx[4] >= 0 {
			endRaw = normalized[idx[4]:idx[5]]
		}
		yearText := normalizeYearRange(start, endRaw)
		endYear := startYear
		if parts := strings.SplitN(yearText, "-", 2); len(parts) == 2 {
			if v, err := strconv.Atoi(parts[1]); err == nil {
				endYear = v
			}
		}

		left := idx[0] - p.WindowLeft
		if left < 0 {
			left = 0
		}
		right := idx[1] + p.WindowRight
		if right > len(normalized) {
			right = len(normalized)
		}
		window := normalized[left:right]
		windowLower := strings.ToLower(window)

		score := 0
		if yearContextHints.MatchString(window) {
			score += p.HintBonus
		}
		if strings.Contains(windowLower, "century") {
			score += p.CenturyBonus
		}
		fullLower := strings.ToLower(full)
		if strings.Contains(fullLower, "c.") || strings.Contains(fullLower, "ca.") {
			score += p.CircaBonus
		}
		for _, w := range craftWords {
			if strings.Contains(windowLower, w) {
				score += p.CraftBonus
				break
			}
		}
		if endYear >= p.NoiseYearFrom && endYear <= p.ScheduleBandTo {
			score += p.SchedulePenalty
		}
		span := endYear - startYear
		switch {
		case span >= p.LifespanSpan:
			// Most likely an artist lifespan rather than a creation range.
			score += p.LifespanPenalty
		case span >= p.WideSpan:
			score += p.WideSpanPenalty
		}

		candidates = append(candidates, yearCandidate{score: score, pos: idx[0], text: yearText})
	}

	if len(candidates) == 0 {
		return ""
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].pos < candidates[j].pos
	})
	if candidates[0].score < 0 {
		return ""
	}
	return candidates[0].text
}

// centuryPhrasePatterns match explicit century expressions, most specific
// first, after ordinal suffixes are glued to their digits.
var centuryPhrasePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d{1,2}(?:st|nd|rd|th)\s*-\s*(?:early|mid|late)\s+\d{1,2}(?:st|nd|rd|th)\s+century)`),
	regexp.MustCompile(`(?i)((?:early|mid|late)\s+\d{1,2}(?:st|nd|rd|th)\s*-\s*(?:early|mid|late)\s+\d{1,2}(?:st|nd|rd|th)\s+century)`),
	regexp.MustCompile(`(?i)((?:early|mid|late)\s+\d{1,2}(?:st|nd|rd|th)\s*-\s*\d{1,2}(?:st|nd|rd|th)\s+century)`),
	regexp.MustCompile(`(?i)((?:early|mid|late)\s+\d{1,2}(?:st|nd|rd|th)\s+century)`),
	regexp.MustCompile(`(?i)(\d{1,2}(?:st|nd|rd|th)\s*-\s*\d{1,2}(?:st|nd|rd|th)\s+century)`),
	regexp.MustCompile(`(?i)(\d{1,2}(?:st|nd|rd|th)\s+century)`),
}

var looseOrdinal = regexp.MustCompile(`(?i)(\d{1,2})\s+(st|nd|rd|th)\b`)

// CenturyPhrase returns the first explicit century expression in the text,
// or "" when none is present.
func CenturyPhrase(text string) string {
	normalized := strings.ReplaceAll(text, "–", "-")
	normalized = looseOrdinal.ReplaceAllString(normalized, "$1$2")
	for _, re := range centuryPhrasePatterns {
		if m := re.FindStringSubmatch(normalized); m != nil {
			return CollapseSpaces(m[1])
		}
	}
	return ""
}

// OrdinalCentury formats n with the standard English ordinal suffix
// (11th/12th/13th keep "th").
func OrdinalCentury(n int) string {
	if v := n % 100; v >= 10 && v <= 20 {
		return fmt.Sprintf("%dth", n)
	}
	switch n % 10 {
	case 1:
		return fmt.Sprintf("%dst", n)
	case 2:
		return fmt.Sprintf("%dnd", n)
	case 3:
		return fmt.Sprintf("%drd", n)
	}
	return fmt.Sprintf("%dth", n)
}

// PeriodFromYear derives a century phrase from an extracted year value.
// A year ending exactly on a century boundary belongs to the lower century:
// 1900 is the 19th, per (year-1)/100+1.
func PeriodFromYear(yearText string) string {
	if yearText == "" {
		return ""
	}
	start := strings.SplitN(yearText, "-", 2)[0]
	v, err := strconv.Atoi(start)
	if err != nil {
		return ""
	}
	century := (v-1)/100 + 1
	return fmt.Sprintf("%s century (c. %s)", OrdinalCentury(century), yearText)
}

// Period returns the explicit century phrase when the text carries one,
// falling back to a phrase derived from the extracted year.
func Period(text, year string) string {
	if phrase := CenturyPhrase(text); phrase != "" {
		return phrase
	}
	return PeriodFromYear(year)
}
