package verify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/slidestudy/curator-cli/internal/model"
	"github.com/slidestudy/curator-cli/internal/pipeline"
	"github.com/slidestudy/curator-cli/internal/rules"
)

// Options configures a verification run.
type Options struct {
	TopSources  int
	SkipRowFrom int // 1-based global row index, inclusive; 0 disables
	SkipRowTo   int
}

// Report groups review rows by outcome for report.md.
type Report struct {
	Updated    []model.ReviewRow
	NeedsHuman []model.ReviewRow
	NotFound   []model.ReviewRow
}

// Counts returns the per-status row counts.
func (r *Report) Counts() (updated, needsHuman, notFound int) {
	return len(r.Updated), len(r.NeedsHuman), len(r.NotFound)
}

// Runner drives verification over comparison-table rows.
type Runner struct {
	Fetcher *Fetcher
	Rules   *rules.Set
	Opts    Options
}

// Run verifies every artwork row: fetch and judge its sources, compose its
// reviewed backgrounds, and classify it as updated, needs_human or
// not_found. Reference rows and rows inside the skip range pass through
// untouched (they are simply absent from the output).
func (r *Runner) Run(ctx context.Context, rows []pipeline.ComparisonRow) ([]model.ReviewRow, *Report, error) {
	topSources := r.Opts.TopSources
	if topSources <= 0 {
		topSources = 4
	}

	var out []model.ReviewRow
	report := &Report{}

	for i, row := range rows {
		globalIdx := i + 1
		if row.RecordType != string(model.RecordTypeArtwork) {
			continue
		}
		if r.Opts.SkipRowFrom > 0 && globalIdx >= r.Opts.SkipRowFrom && globalIdx <= r.Opts.SkipRowTo {
			continue
		}

		reviewed, err := r.verifyRow(ctx, globalIdx, row)
		if err != nil {
			return nil, nil, err
		}
		if len(reviewed.Sources) > topSources {
			reviewed.Sources = reviewed.Sources[:topSources]
		}
		out = append(out, reviewed)

		switch reviewed.Status {
		case model.StatusUpdated:
			report.Updated = append(report.Updated, reviewed)
		case model.StatusNeedsHuman:
			report.NeedsHuman = append(report.NeedsHuman, reviewed)
		case model.StatusNotFound:
			report.NotFound = append(report.NotFound, reviewed)
		}
		zap.L().Debug("row verified",
			zap.String("id", reviewed.ID),
			zap.String("status", reviewed.Status),
			zap.String("sub_reason", reviewed.SubReason))
	}
	return out, report, nil
}

func (r *Runner) verifyRow(ctx context.Context, globalIdx int, row pipeline.ComparisonRow) (model.ReviewRow, error) {
	urls := row.Sources
	records, err := BuildSourceRecords(ctx, r.Fetcher, urls, r.Rules)
	if err != nil {
		return model.ReviewRow{}, err
	}

	verdict := SufficientSources(records, row.Title, row.Author, row.ID, r.Rules)
	zh, en := ComposeBackgrounds(row, records)
	yearExpr := NormalizeYearExpr(row.Year, row.Period)

	status := model.StatusUpdated
	subReason := ""
	var notes []string

	degrade := func(to, sub, note string) {
		// not_found is sticky over needs_human; the first cause names the
		// sub-reason.
		if status == model.StatusNotFound && to == model.StatusNeedsHuman {
			to = model.StatusNotFound
		}
		status = to
		if subReason == "" {
			subReason = sub
		}
		if note != "" {
			notes = append(notes, note)
		}
	}

	if len(urls) == 0 {
		degrade(model.StatusNeedsHuman, model.SubReasonSourceMissing, "no existing source URLs in dataset")
	}
	if len(urls) > 0 && noCompletedFetch(records) {
		degrade(model.StatusNotFound, model.SubReasonSourceMissing, "source fetch failed for every URL")
	}
	if len(urls) > 0 && !verdict.OK {
		degrade(model.StatusNeedsHuman, verdict.SubReason, verdict.Reason)
	}

	zhSentences, enSentences := SentenceCountZH(zh), SentenceCountEN(en)
	if zhSentences < 2 || enSentences < 2 {
		degrade(model.StatusNeedsHuman, model.SubReasonOther,
			fmt.Sprintf("generated background too short (zh=%d, en=%d; need 2-3 sentences)", zhSentences, enSentences))
	}
	if yearExpr == "" {
		degrade(model.StatusNeedsHuman, model.SubReasonOther, "missing year expression")
	}

	if verdict.OK && verdict.Reason != "" {
		notes = append(notes, verdict.Reason)
	}
	if status == model.StatusUpdated {
		preferred := CountPreferredReachable(records)
		plural := "s"
		if preferred == 1 {
			plural = ""
		}
		notes = append(notes,
			fmt.Sprintf("verified from existing linked sources (%d preferred reachable source%s)", preferred, plural))
	}

	return model.ReviewRow{
		GlobalRowIndex:    globalIdx,
		ID:                row.ID,
		Title:             row.Title,
		ConfirmedYearExpr: yearExpr,
		BackgroundZH:      zh,
		BackgroundEN:      en,
		Sources:           records,
		SourceCount:       CountReachable(records),
		Status:            status,
		SubReason:         subReason,
		Notes:             notes,
	}, nil
}

// noCompletedFetch reports whether not a single URL produced an HTTP
// response (every fetch died in transport).
func noCompletedFetch(records []model.SourceRecord) bool {
	for _, r := range records {
		if len(r.HTTPStatus) >= 5 && r.HTTPStatus[:5] == "http_" {
			return false
		}
	}
	return true
}
