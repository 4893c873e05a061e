package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/slidestudy/curator-cli/internal/rules"
)

// authorPattern matches a capitalized multi-word name sequence immediately
// followed by a comma, allowing lowercase name particles between words.
// The letter classes include Latin-1 accents so "Gallé" and "Müller" parse.
var authorPattern = regexp.MustCompile(`\b([A-ZÀ-ÖØ-Þ][A-Za-zÀ-ÖØ-öø-ÿ'’\-.]+(?:\s+(?:[A-ZÀ-ÖØ-Þ][A-Za-zÀ-ÖØ-öø-ÿ'’\-.]+|de|van|von|da|del|du|la)){1,6})\s*,`)

// authorContextHints must appear shortly after a name for it to count as an
// attribution rather than an incidental mention.
var authorContextHints = regexp.MustCompile(`(?i)\b(oil|wood|bronze|lithograph|porcelain|earthenware|chair|vase|mask|figure|throne|designed|painting|service|bowl|textile|cloth)\b`)

// artistPhrasePattern is the looser "<Name> artist" fallback.
var artistPhrasePattern = regexp.MustCompile(`\b([A-ZÀ-ÖØ-Þ][A-Za-zÀ-ÖØ-öø-ÿ'’\-.]+(?:\s+[A-ZÀ-ÖØ-Þ][A-Za-zÀ-ÖØ-öø-ÿ'’\-.]+){0,2}\s+artist)\b`)

var placePrefixes = map[string]bool{
	"england": true, "france": true, "britain": true,
	"london": true, "paris": true, "america": true,
}

// trimAuthorCandidate cleans a raw name match: drops a leading place
// sentence fragment, strips workshop prefixes, and iteratively removes
// trailing object nouns ("Henri van de Velde, chair" → "Henri van de Velde").
func trimAuthorCandidate(name string, rs *rules.Set) string {
	candidate := CleanName(name)
	if prefix, rest, ok := strings.Cut(candidate, ". "); ok {
		if placePrefixes[strings.ToLower(prefix)] {
			candidate = CleanName(rest)
		}
	}
	low := strings.ToLower(candidate)
	if strings.HasPrefix(low, "wiener werkstatte ") {
		if parts := strings.SplitN(candidate, " ", 3); len(parts) == 3 {
			candidate = parts[2]
		}
	}
	if strings.HasPrefix(low, "co. ") || strings.HasPrefix(low, "company ") {
		return ""
	}

	words := strings.Fields(candidate)
	for len(words) > 0 {
		tail := strings.ToLower(strings.Trim(words[len(words)-1], ".:-"))
		if !rs.IsAuthorObjectWord(tail) {
			break
		}
		words = words[:len(words)-1]
	}
	return CleanName(strings.Join(words, " "))
}

func isValidAuthor(name string, rs *rules.Set, p Params) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if unicode.IsDigit(r) {
			return false
		}
	}
	words := strings.Fields(name)
	if len(words) < p.AuthorMinWords || len(words) > p.AuthorMaxWords {
		return false
	}
	for _, w := range words {
		lw := strings.ToLower(strings.Trim(w, ".:-"))
		if rs.IsAuthorStopword(lw) || rs.IsAuthorObjectWord(lw) {
			return false
		}
		switch lw {
		case "the", "and", "of", "for", "with":
			return false
		}
	}
	if rs.IsNonPersonPrefix(strings.ToLower(strings.Trim(words[0], ".:-"))) {
		return false
	}
	if name == strings.ToUpper(name) {
		return false
	}
	return true
}

// Author extracts a person or workshop name from slide text. A candidate is
// accepted only when a craft/medium word follows within the context window;
// absent that, the looser "<Name> artist" phrase is tried. Returns "" when
// nothing qualifies; the production-place fallback author is the caller's
// concern, not this extractor's.
func Author(text string, rs *rules.Set, p Params) string {
	for _, idx := range authorPattern.FindAllStringSubmatchIndex(text, -1) {
		candidate := trimAuthorCandidate(text[idx[2]:idx[3]], rs)
		if !isValidAuthor(candidate, rs, p) {
			continue
		}
		end := idx[1] + p.AuthorContextWindow
		if end > len(text) {
			end = len(text)
		}
		if authorContextHints.MatchString(text[idx[1]:end]) {
			return candidate
		}
	}

	if m := artistPhrasePattern.FindStringSubmatch(text); m != nil {
		return CleanName(m[1])
	}
	return ""
}

// IsFallbackAuthor reports whether the value is a synthetic "<place> artist"
// stand-in rather than an extracted attribution.
func IsFallbackAuthor(author string) bool {
	return author == "" || strings.HasSuffix(author, "artist")
}
