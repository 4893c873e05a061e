package extract

import (
	"strings"

	"github.com/slidestudy/curator-cli/internal/rules"
)

// maxPlaces keeps the production-place field readable in review UIs.
const maxPlaces = 3

// Region returns all region labels whose keywords appear in the text,
// joined by " / ", or the deck default when nothing matches.
func Region(text string, rs *rules.Set, deckDefault string) string {
	low := strings.ToLower(text)
	var hits []string
	for _, r := range rs.Regions {
		if r.Match(low) {
			hits = append(hits, r.Label)
		}
	}
	if len(hits) == 0 {
		return deckDefault
	}
	return strings.Join(uniqueOrder(hits), " / ")
}

// ProductionPlace returns up to the first three matching place labels in
// table order, or the deck default when nothing matches.
func ProductionPlace(text string, rs *rules.Set, deckDefault string) string {
	low := strings.ToLower(text)
	var hits []string
	for _, r := range rs.Places {
		if r.Match(low) {
			hits = append(hits, r.Label)
		}
	}
	if len(hits) == 0 {
		return deckDefault
	}
	hits = uniqueOrder(hits)
	if len(hits) > maxPlaces {
		hits = hits[:maxPlaces]
	}
	return strings.Join(hits, " / ")
}

// Style returns the first style whose keywords appear in the text. The table
// is checked in its defined priority order, not by longest match.
func Style(text string, rs *rules.Set, deckDefault string) string {
	low := strings.ToLower(text)
	for _, r := range rs.Styles {
		if r.Match(low) {
			return r.Label
		}
	}
	return deckDefault
}

// uniqueOrder removes duplicates and empties while preserving first-seen order.
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
