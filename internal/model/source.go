package model

import "strings"

// FetchResult is the cached outcome of retrieving one source URL.
type FetchResult struct {
	URL             string `json:"url"`
	Status          string `json:"status"`
	PageTitle       string `json:"page_title"`
	MetaDescription string `json:"meta_description"`
	FinalURL        string `json:"final_url"`
}

// Reachable reports whether the fetch ended in a 2xx or 3xx response.
func (f FetchResult) Reachable() bool {
	return strings.HasPrefix(f.Status, "http_2") || strings.HasPrefix(f.Status, "http_3")
}

// AccessDenied reports whether the host refused the automated client.
func (f FetchResult) AccessDenied() bool {
	return f.Status == "http_401" || f.Status == "http_403"
}

// SourceRecord is one classified, scored citation for a work.
type SourceRecord struct {
	Institution     string `json:"institution"`
	Title           string `json:"title"`
	MetaDescription string `json:"meta_description"`
	URL             string `json:"url"`
	Tier            int    `json:"tier"`
	HTTPStatus      string `json:"http_status"`

	Relevance              int `json:"relevance"`
	TitleSpecificRelevance int `json:"title_specific_relevance"`
	AuthorRelevance        int `json:"author_relevance"`
}

// Verification statuses.
const (
	StatusUpdated    = "updated"
	StatusNeedsHuman = "needs_human"
	StatusNotFound   = "not_found"
)

// Sub-reasons qualifying a needs_human or not_found status.
const (
	SubReasonSourceMissing = "source_missing"
	SubReasonTitleMismatch = "title_mismatch"
	SubReasonSourceQuality = "source_quality"
	SubReasonOther         = "other"
)

// ReviewRow is one line of the human-review works table. Sources holds the
// top-ranked records and is serialized as a JSON array in the CSV cell;
// SourceCount counts all reachable sources, ranked or not.
type ReviewRow struct {
	GlobalRowIndex    int
	ID                string
	Title             string
	ConfirmedYearExpr string
	BackgroundZH      string
	BackgroundEN      string
	Sources           []SourceRecord
	SourceCount       int
	Status            string
	SubReason         string
	Notes             []string
}
