package verify

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/slidestudy/curator-cli/internal/model"
	"github.com/slidestudy/curator-cli/internal/rules"
)

// Relevance scoring weights. Author-token hits outweigh title-token hits;
// a museum collection-path URL earns a small bonus on top of any match.
const (
	titleTokenWeight     = 2
	authorTokenWeight    = 3
	collectionPathBonus  = 1
	collectionPathMarker = "/art/collection/search/"
)

var wordPattern = regexp.MustCompile(`[A-Za-z][A-Za-z'.-]{2,}`)

var diacriticFolder = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// foldToken lowercases and strips diacritics so that "Gallé" and "galle"
// compare equal.
func foldToken(s string) string {
	folded, _, err := transform.String(diacriticFolder, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// SignificantTokens extracts the distinctive lowercase tokens of a title or
// author string: at least four characters after folding, not in the generic
// vocabulary, first occurrence only.
func SignificantTokens(text string, rs *rules.Set) []string {
	var out []string
	seen := make(map[string]bool)
	for _, raw := range wordPattern.FindAllString(text, -1) {
		tok := strings.Trim(foldToken(raw), ".")
		if len(tok) < 4 {
			continue
		}
		if rs.IsGenericTitleToken(tok) {
			continue
		}
		if seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

var leadNamePattern = regexp.MustCompile(`^\W*([A-Z][a-z]+)(?:\s+([A-Z][a-z]+))?(?:\s+([A-Z][a-z]+))?`)

// ScoreSource computes a source's relevance to a work and stores the title
// and author components on the record. Title tokens that also belong to the
// author (or to a leading name in the title) count as author evidence, not
// title evidence.
func ScoreSource(s *model.SourceRecord, title, author string, rs *rules.Set) int {
	hay := foldToken(s.Title + " " + s.MetaDescription + " " + s.URL)

	titleTokens := SignificantTokens(title, rs)
	authorTokens := make(map[string]bool)
	for _, t := range SignificantTokens(author, rs) {
		authorTokens[t] = true
	}
	if m := leadNamePattern.FindStringSubmatch(title); m != nil {
		for _, g := range m[1:] {
			if g != "" {
				authorTokens[foldToken(g)] = true
			}
		}
	}

	titleScore := 0
	for _, tok := range titleTokens {
		if authorTokens[tok] {
			continue
		}
		if strings.Contains(hay, tok) {
			titleScore += titleTokenWeight
		}
	}
	authorScore := 0
	for tok := range authorTokens {
		if strings.Contains(hay, tok) {
			authorScore += authorTokenWeight
		}
	}

	score := titleScore + authorScore
	if strings.Contains(s.URL, collectionPathMarker) && score > 0 {
		score += collectionPathBonus
	}
	s.TitleSpecificRelevance = titleScore
	s.AuthorRelevance = authorScore
	s.Relevance = score
	return score
}
