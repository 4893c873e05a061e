package verify

import (
	"context"
	"sort"
	"strings"

	"github.com/slidestudy/curator-cli/internal/model"
	"github.com/slidestudy/curator-cli/internal/rules"
)

// SplitSourceURLs parses the " | "-joined source list from the comparison
// table, deduplicating while preserving order.
func SplitSourceURLs(raw string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, " | ") {
		u := strings.TrimSpace(part)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// BuildSourceRecords fetches every URL and classifies the results.
// Classification uses the final URL after redirects, so a shortened or moved
// link is judged by where it actually lands. Records come back sorted by
// (tier, URL) for stable downstream ordering.
func BuildSourceRecords(ctx context.Context, f *Fetcher, urls []string, rs *rules.Set) ([]model.SourceRecord, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	results, err := f.FetchAll(ctx, urls)
	if err != nil {
		return nil, err
	}

	records := make([]model.SourceRecord, 0, len(urls))
	for _, u := range urls {
		res := results[u]
		finalURL := res.FinalURL
		if finalURL == "" {
			finalURL = u
		}
		title := res.PageTitle
		if title == "" {
			title = "(title fetch failed)"
		}
		records = append(records, model.SourceRecord{
			Institution:     InstitutionFor(finalURL, rs),
			Title:           title,
			MetaDescription: res.MetaDescription,
			URL:             finalURL,
			Tier:            SourceTier(finalURL, rs),
			HTTPStatus:      res.Status,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Tier != records[j].Tier {
			return records[i].Tier < records[j].Tier
		}
		return records[i].URL < records[j].URL
	})
	return records, nil
}

// ChoosePrimary picks the best reachable source: lowest tier, then highest
// title-specific relevance, then highest combined relevance, then URL.
func ChoosePrimary(records []model.SourceRecord) *model.SourceRecord {
	var ok []model.SourceRecord
	for _, r := range records {
		if reachableStatus(r.HTTPStatus) {
			ok = append(ok, r)
		}
	}
	if len(ok) == 0 {
		return nil
	}
	sort.Slice(ok, func(i, j int) bool {
		a, b := ok[i], ok[j]
		if a.Tier != b.Tier {
			return a.Tier < b.Tier
		}
		if a.TitleSpecificRelevance != b.TitleSpecificRelevance {
			return a.TitleSpecificRelevance > b.TitleSpecificRelevance
		}
		if a.Relevance != b.Relevance {
			return a.Relevance > b.Relevance
		}
		return a.URL < b.URL
	})
	return &ok[0]
}

func reachableStatus(status string) bool {
	return strings.HasPrefix(status, "http_2") || strings.HasPrefix(status, "http_3")
}

func accessDeniedStatus(status string) bool {
	return status == "http_401" || status == "http_403"
}
