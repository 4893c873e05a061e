package verify

import (
	"regexp"
	"strings"

	"github.com/slidestudy/curator-cli/internal/model"
	"github.com/slidestudy/curator-cli/internal/rules"
)

// Verdict is the outcome of judging a record's source set.
type Verdict struct {
	OK        bool
	Reason    string
	SubReason string
}

var detailTitleMarkers = []string{"detail", "same image", "see previous slide", "detail of"}

// personNameTitle matches a title that is nothing but a capitalized personal
// name, optionally followed by a parenthetical qualifier.
var personNameTitle = regexp.MustCompile(`^[A-Z][A-Za-z'.\-]*(?:\s+(?:[A-Z][A-Za-z'.\-]*|de|van|von|da|del|du|la)){1,3}(?:\s*\(.*\))?$`)

// SufficientSources decides whether a record's sources justify publishing
// its metadata. Scores every record as a side effect.
//
// The checks run in order: at least one usable source, not Wikipedia-only,
// at least one preferred (official/scholarly/university) source, relevance
// above zero, and title-specific relevance above zero. An access-denied
// tier 1-3 source with positive relevance counts as usable: museum sites
// that block bots still anchor identification when the URL and cached
// description match the work. The title-specific check is waived for
// detail-view titles and for standalone person-name titles whose author
// evidence is positive. An identifier listed in the verdict-exception table
// passes outright.
func SufficientSources(records []model.SourceRecord, title, author, id string, rs *rules.Set) Verdict {
	for i := range records {
		ScoreSource(&records[i], title, author, rs)
	}

	if exc, ok := rs.VerdictExceptions[id]; ok {
		return Verdict{OK: true, Reason: "accepted by exception: " + exc.Justification}
	}

	var usable []model.SourceRecord
	for _, r := range records {
		if reachableStatus(r.HTTPStatus) {
			usable = append(usable, r)
			continue
		}
		if accessDeniedStatus(r.HTTPStatus) && r.Tier <= TierAcademic && r.Relevance > 0 {
			usable = append(usable, r)
		}
	}
	if len(usable) == 0 {
		return Verdict{Reason: "no reachable sources", SubReason: model.SubReasonSourceMissing}
	}

	nonWiki := 0
	for _, r := range usable {
		if !IsCrowdSourced(r.URL) {
			nonWiki++
		}
	}
	if nonWiki == 0 {
		return Verdict{
			Reason:    "Wikipedia/Wikimedia cannot be the only basis",
			SubReason: model.SubReasonSourceQuality,
		}
	}

	preferred := 0
	for _, r := range usable {
		if r.Tier >= TierOfficial && r.Tier <= TierAcademic {
			preferred++
		}
	}
	if preferred == 0 {
		return Verdict{
			Reason:    "no preferred source (official/scholarly/university)",
			SubReason: model.SubReasonSourceQuality,
		}
	}

	maxRelevance, maxTitleRelevance, maxAuthorRelevance := 0, 0, 0
	for _, r := range usable {
		if r.Relevance > maxRelevance {
			maxRelevance = r.Relevance
		}
		if r.TitleSpecificRelevance > maxTitleRelevance {
			maxTitleRelevance = r.TitleSpecificRelevance
		}
		if r.AuthorRelevance > maxAuthorRelevance {
			maxAuthorRelevance = r.AuthorRelevance
		}
	}
	if maxRelevance <= 0 {
		return Verdict{
			Reason:    "sources appear generic or mismatched to this work",
			SubReason: model.SubReasonSourceQuality,
		}
	}
	if maxTitleRelevance <= 0 && !titleSpecificityWaived(title, maxAuthorRelevance) {
		return Verdict{
			Reason:    "sources mention author/context but not this specific work",
			SubReason: model.SubReasonTitleMismatch,
		}
	}

	return Verdict{OK: true}
}

func titleSpecificityWaived(title string, maxAuthorRelevance int) bool {
	low := strings.ToLower(title)
	for _, marker := range detailTitleMarkers {
		if strings.Contains(low, marker) {
			return true
		}
	}
	return personNameTitle.MatchString(strings.TrimSpace(title)) && maxAuthorRelevance > 0
}

// CountPreferredReachable counts reachable tier 1-3 sources, for run notes.
func CountPreferredReachable(records []model.SourceRecord) int {
	n := 0
	for _, r := range records {
		if reachableStatus(r.HTTPStatus) && r.Tier >= TierOfficial && r.Tier <= TierAcademic {
			n++
		}
	}
	return n
}

// CountReachable counts sources that answered with a 2xx/3xx status.
func CountReachable(records []model.SourceRecord) int {
	n := 0
	for _, r := range records {
		if reachableStatus(r.HTTPStatus) {
			n++
		}
	}
	return n
}
