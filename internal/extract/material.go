package extract

import (
	"strings"

	"github.com/slidestudy/curator-cli/internal/model"
	"github.com/slidestudy/curator-cli/internal/rules"
)

// Material collects all matching material labels in table order, then drops
// any broader label refined by a more specific match (generic "Porcelain"
// gives way to "Hard-paste porcelain"). Returns a comma-joined list, or the
// not-stated sentinel when nothing matched.
func Material(text string, rs *rules.Set) string {
	low := strings.ToLower(text)

	var found []string
	suppressed := make(map[string]bool)
	for i := range rs.Materials {
		r := &rs.Materials[i]
		if !r.Match(low) {
			continue
		}
		found = append(found, r.Label)
		if r.Refines != "" {
			suppressed[r.Refines] = true
		}
	}
	found = uniqueOrder(found)

	out := found[:0]
	for _, label := range found {
		if suppressed[label] {
			continue
		}
		out = append(out, label)
	}
	if len(out) == 0 {
		return model.MaterialNotStated
	}
	return strings.Join(out, ", ")
}
