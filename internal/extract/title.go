package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/slidestudy/curator-cli/internal/model"
	"github.com/slidestudy/curator-cli/internal/rules"
)

// titleCutPattern marks where a title ends: the first year-like token or
// explicit century mention.
var titleCutPattern = regexp.MustCompile(`(?i)\b(?:c(?:a)?\.?\s*)?(?:1[4-9]\d{2}|20[0-2]\d)\b|\b\d{1,2}(?:st|nd|rd|th)\s+century\b`)

var sentenceSplit = regexp.MustCompile(`[.;]`)

// isBoilerplateTitle rejects course-logistics fragments as titles.
func isBoilerplateTitle(candidate string, rs *rules.Set) bool {
	low := strings.ToLower(candidate)
	for _, b := range rs.BoilerplateTitles {
		if strings.Contains(low, b) {
			return true
		}
	}
	return false
}

func syntheticTitle(deckTitle string, slideNum, imageIdx int) string {
	return fmt.Sprintf("%s - Slide %d Image %d", deckTitle, slideNum, imageIdx)
}

// Title derives a display title from slide text: strip a leading topic
// prefix, cut at the first date mention, and fall back through non-
// boilerplate sentence segments to a synthetic slide identifier.
func Title(text, deckTitle string, slideNum, imageIdx int, rs *rules.Set, p Params) string {
	if text == "" {
		return syntheticTitle(deckTitle, slideNum, imageIdx)
	}

	working := CollapseSpaces(text)
	if _, rest, ok := strings.Cut(working, ":"); ok && rest != "" {
		working = strings.TrimSpace(rest)
	}

	if loc := titleCutPattern.FindStringIndex(working); loc != nil {
		working = working[:loc[0]]
	}
	cut := CleanName(working)

	if cut == "" || isBoilerplateTitle(cut, rs) {
		var segments []string
		for _, seg := range sentenceSplit.Split(text, -1) {
			if c := CleanName(seg); c != "" {
				segments = append(segments, c)
			}
		}
		cut = ""
		for _, seg := range segments {
			if !isBoilerplateTitle(seg, rs) {
				cut = seg
				break
			}
		}
		if cut == "" && len(segments) > 0 {
			cut = segments[0]
		}
	}

	if cut == "" {
		cut = syntheticTitle(deckTitle, slideNum, imageIdx)
	}

	if runes := []rune(cut); len(runes) > p.TitleMaxLen {
		cut = string(runes[:p.TitleMaxLen])
	}
	return cut
}

// RecordType classifies a record as a catalogued artwork or a context-only
// reference. Empty descriptions and known non-substantive marker phrases
// (course logistics, off-topic jokes) force the reference type.
func RecordType(title, description string, rs *rules.Set) model.RecordType {
	blob := strings.ToLower(title + " " + description)
	for _, marker := range rs.ReferenceMarkers {
		if strings.Contains(blob, marker) {
			return model.RecordTypeReference
		}
	}
	if strings.TrimSpace(description) == "" {
		return model.RecordTypeReference
	}
	return model.RecordTypeArtwork
}

// IsDetailLike reports whether slide text signals a repeat or detail view of
// a previously described object.
func IsDetailLike(text string, rs *rules.Set) bool {
	low := strings.ToLower(text)
	for _, marker := range rs.DetailMarkers {
		if strings.Contains(low, marker) {
			return true
		}
	}
	return false
}
