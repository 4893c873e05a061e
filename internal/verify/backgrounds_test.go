package verify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slidestudy/curator-cli/internal/model"
	"github.com/slidestudy/curator-cli/internal/pipeline"
)

func TestNormalizeYearExpr(t *testing.T) {
	tests := []struct {
		name   string
		year   string
		period string
		want   string
	}{
		{"plain year", "1884", "19th century (1800-1899)", "1884"},
		{"circa year", "c. 1865", "19th century (1800-1899)", "c. 1865"},
		{"range gets en dash", "1876-1877", "", "1876–1877"},
		{"period compacts century", "", "19th century (1800-1899)", "19th c."},
		{"period capital century", "", "Late 19th Century", "Late 19th c."},
		{"reference sentinel", model.NAReference, model.NAReference, ""},
		{"nothing", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeYearExpr(tt.year, tt.period))
		})
	}
}

func TestCompactSourceTitle(t *testing.T) {
	assert.Equal(t, "Armchair (Sussex chair)",
		CompactSourceTitle("Armchair (Sussex chair) - The Metropolitan Museum of Art"))
	assert.Equal(t, "The Sussex chair",
		CompactSourceTitle("The Sussex chair | V&A Explore The Collections"))

	long := strings.Repeat("x", 300)
	assert.Len(t, []rune(CompactSourceTitle(long)), 220)
}

func testRow() pipeline.ComparisonRow {
	return pipeline.ComparisonRow{
		ID:              "arts_crafts-s003-i01",
		Course:          "Arts and Crafts",
		Title:           "Sussex chair",
		RecordType:      "artwork",
		Year:            "1865",
		Period:          "19th century (1800-1899)",
		Author:          "Philip Webb",
		ProductionPlace: "London",
		Region:          "Britain / Europe",
		Style:           "Arts and Crafts",
		Material:        "Ebonized beech",
	}
}

func TestComposeBackgroundsWithPrimarySource(t *testing.T) {
	sources := []model.SourceRecord{{
		Institution: "Victoria and Albert Museum",
		Title:       "The Sussex chair | V&A Explore The Collections",
		URL:         "https://collections.vam.ac.uk/item/O7240/",
		Tier:        TierOfficial,
		HTTPStatus:  "http_200",
	}}
	zh, en := ComposeBackgrounds(testRow(), sources)

	assert.Equal(t, 3, SentenceCountEN(en))
	assert.Equal(t, 3, SentenceCountZH(zh))
	assert.Contains(t, en, "Sussex chair is documented")
	assert.Contains(t, en, "1865")
	assert.Contains(t, en, "Philip Webb")
	assert.Contains(t, en, "Victoria and Albert Museum")
	assert.Contains(t, zh, "Sussex chair")
	assert.Contains(t, zh, "Philip Webb")
	assert.Contains(t, zh, "Victoria and Albert Museum")
	assert.NotContains(t, zh, MissingSourceSentenceZH)
}

func TestComposeBackgroundsWithoutSources(t *testing.T) {
	zh, en := ComposeBackgrounds(testRow(), nil)

	assert.Equal(t, 3, SentenceCountEN(en))
	assert.Equal(t, 3, SentenceCountZH(zh))
	assert.Contains(t, zh, MissingSourceSentenceZH)
	assert.Contains(t, en, MissingSourceSentenceEN)
	assert.Contains(t, en, "Arts and Crafts")
}

func TestComposeBackgroundsUnattributedAuthor(t *testing.T) {
	row := testRow()
	row.Author = "Britain / Europe artist"
	_, en := ComposeBackgrounds(row, nil)

	assert.NotContains(t, en, "presented in the course under")
	assert.Contains(t, en, "studied in a Arts and Crafts context")
}

func TestSentenceCounts(t *testing.T) {
	assert.Equal(t, 2, SentenceCountEN("One sentence. Two sentences!"))
	assert.Equal(t, 0, SentenceCountEN("   "))
	assert.Equal(t, 3, SentenceCountZH("一。二！三？"))
	assert.Equal(t, 0, SentenceCountZH(""))
}
