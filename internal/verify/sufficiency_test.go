package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slidestudy/curator-cli/internal/model"
)

func TestSufficientSourcesAcceptsGoodRecord(t *testing.T) {
	rs := loadRules(t)

	records := []model.SourceRecord{{
		Title:      "Armchair (Sussex chair) - The Metropolitan Museum of Art",
		URL:        "https://www.metmuseum.org/art/collection/search/2008",
		Tier:       TierOfficial,
		HTTPStatus: "http_200",
	}}
	v := SufficientSources(records, "Sussex chair", "", "x-s001-i01", rs)
	assert.True(t, v.OK)
	assert.Empty(t, v.SubReason)
	// Scoring happens as a side effect.
	assert.Positive(t, records[0].Relevance)
}

func TestSufficientSourcesNoReachable(t *testing.T) {
	rs := loadRules(t)

	records := []model.SourceRecord{{
		Title:      "(title fetch failed)",
		URL:        "https://www.metmuseum.org/art/collection/search/2008",
		Tier:       TierOfficial,
		HTTPStatus: "url_error:context deadline exceeded",
	}}
	v := SufficientSources(records, "Sussex chair", "", "x-s001-i01", rs)
	assert.False(t, v.OK)
	assert.Equal(t, model.SubReasonSourceMissing, v.SubReason)
}

func TestSufficientSourcesRejectsWikipediaOnly(t *testing.T) {
	rs := loadRules(t)

	records := []model.SourceRecord{{
		Title:      "Sussex chair - Wikipedia",
		URL:        "https://en.wikipedia.org/wiki/Sussex_chair",
		Tier:       TierCrowd,
		HTTPStatus: "http_200",
	}}
	v := SufficientSources(records, "Sussex chair", "", "x-s001-i01", rs)
	assert.False(t, v.OK)
	assert.Equal(t, model.SubReasonSourceQuality, v.SubReason)
	assert.Contains(t, v.Reason, "Wikipedia")
}

func TestSufficientSourcesRequiresPreferredTier(t *testing.T) {
	rs := loadRules(t)

	records := []model.SourceRecord{{
		Title:      "The Sussex chair explained",
		URL:        "https://example.com/antiques/sussex-chair",
		Tier:       TierDefault,
		HTTPStatus: "http_200",
	}}
	v := SufficientSources(records, "Sussex chair", "", "x-s001-i01", rs)
	assert.False(t, v.OK)
	assert.Equal(t, model.SubReasonSourceQuality, v.SubReason)
	assert.Contains(t, v.Reason, "preferred")
}

func TestSufficientSourcesRejectsGenericMatch(t *testing.T) {
	rs := loadRules(t)

	records := []model.SourceRecord{{
		Title:      "Teacup",
		URL:        "https://collections.vam.ac.uk/item/O123/unrelated-object/",
		Tier:       TierOfficial,
		HTTPStatus: "http_200",
	}}
	v := SufficientSources(records, "Sussex chair", "", "x-s001-i01", rs)
	assert.False(t, v.OK)
	assert.Equal(t, model.SubReasonSourceQuality, v.SubReason)
}

func TestSufficientSourcesTitleMismatch(t *testing.T) {
	rs := loadRules(t)

	// The page identifies the designer but never this particular work.
	records := []model.SourceRecord{{
		Title:      "Christopher Dresser - Victoria and Albert Museum",
		URL:        "https://collections.vam.ac.uk/people/christopher-dresser",
		Tier:       TierOfficial,
		HTTPStatus: "http_200",
	}}
	v := SufficientSources(records, "Teapot design", "Christopher Dresser", "x-s001-i01", rs)
	assert.False(t, v.OK)
	assert.Equal(t, model.SubReasonTitleMismatch, v.SubReason)
}

func TestSufficientSourcesPersonNameTitleWaived(t *testing.T) {
	rs := loadRules(t)

	// A portrait-style record titled with just the person's name cannot be
	// expected to score title-specific evidence beyond the name itself.
	records := []model.SourceRecord{{
		Title:      "Christopher Dresser - Victoria and Albert Museum",
		URL:        "https://collections.vam.ac.uk/people/christopher-dresser",
		Tier:       TierOfficial,
		HTTPStatus: "http_200",
	}}
	v := SufficientSources(records, "Christopher Dresser", "Christopher Dresser", "x-s001-i01", rs)
	assert.True(t, v.OK)
}

func TestSufficientSourcesDetailTitleWaived(t *testing.T) {
	rs := loadRules(t)

	records := []model.SourceRecord{{
		Title:      "William Morris - Victoria and Albert Museum",
		URL:        "https://collections.vam.ac.uk/people/william-morris",
		Tier:       TierOfficial,
		HTTPStatus: "http_200",
	}}
	v := SufficientSources(records, "Detail of the same chair", "William Morris", "x-s001-i01", rs)
	assert.True(t, v.OK)
}

func TestSufficientSourcesSoftPassAccessDenied(t *testing.T) {
	rs := loadRules(t)

	// A museum page that blocks bots still counts when tier and relevance
	// both hold up.
	records := []model.SourceRecord{{
		Title:      "Armchair (Sussex chair) - The Metropolitan Museum of Art",
		URL:        "https://www.metmuseum.org/art/collection/search/2008",
		Tier:       TierOfficial,
		HTTPStatus: "http_403",
	}}
	v := SufficientSources(records, "Sussex chair", "", "x-s001-i01", rs)
	assert.True(t, v.OK)
}

func TestSufficientSourcesDeniedCrowdDoesNotSoftPass(t *testing.T) {
	rs := loadRules(t)

	records := []model.SourceRecord{{
		Title:      "Sussex chair - Wikipedia",
		URL:        "https://en.wikipedia.org/wiki/Sussex_chair",
		Tier:       TierCrowd,
		HTTPStatus: "http_403",
	}}
	v := SufficientSources(records, "Sussex chair", "", "x-s001-i01", rs)
	assert.False(t, v.OK)
	assert.Equal(t, model.SubReasonSourceMissing, v.SubReason)
}

func TestSufficientSourcesExceptionTable(t *testing.T) {
	rs := loadRules(t)

	// No usable sources at all, but the identifier is force-accepted.
	v := SufficientSources(nil, "Chair", "Arthur Mackmurdo", "art_nouveau-s014-i01", rs)
	assert.True(t, v.OK)
	assert.Contains(t, v.Reason, "accepted by exception")
}

func TestSufficientSourcesMonotonicInRelevance(t *testing.T) {
	rs := loadRules(t)

	base := []model.SourceRecord{{
		Title:      "Armchair (Sussex chair) - The Metropolitan Museum of Art",
		URL:        "https://www.metmuseum.org/art/collection/search/2008",
		Tier:       TierOfficial,
		HTTPStatus: "http_200",
	}}
	require.True(t, SufficientSources(base, "Sussex chair", "Philip Webb", "x-s001-i01", rs).OK)

	// Adding a stronger source to a sufficient set never flips the verdict.
	stronger := append(base, model.SourceRecord{
		Title:           "The Sussex chair by Philip Webb",
		MetaDescription: "Sussex chair, ebonized beech, Philip Webb for Morris & Co.",
		URL:             "https://collections.vam.ac.uk/item/O7240/the-sussex-chair-webb-philip/",
		Tier:            TierOfficial,
		HTTPStatus:      "http_200",
	})
	v := SufficientSources(stronger, "Sussex chair", "Philip Webb", "x-s001-i01", rs)
	assert.True(t, v.OK)
	assert.Greater(t, stronger[1].Relevance, stronger[0].Relevance)
}

func TestCountPreferredReachable(t *testing.T) {
	records := []model.SourceRecord{
		{Tier: TierOfficial, HTTPStatus: "http_200"},
		{Tier: TierScholarly, HTTPStatus: "http_301"},
		{Tier: TierOfficial, HTTPStatus: "http_403"},
		{Tier: TierDefault, HTTPStatus: "http_200"},
		{Tier: TierCrowd, HTTPStatus: "http_200"},
	}
	assert.Equal(t, 2, CountPreferredReachable(records))
	assert.Equal(t, 3, CountReachable(records))
}
