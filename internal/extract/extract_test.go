package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slidestudy/curator-cli/internal/model"
	"github.com/slidestudy/curator-cli/internal/rules"
)

func loadRules(t *testing.T) *rules.Set {
	t.Helper()
	rs, err := rules.Load("")
	require.NoError(t, err)
	return rs
}

func TestMaterial(t *testing.T) {
	rs := loadRules(t)

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "refined label suppresses parent",
			text: "Teapot, hard-paste porcelain with gilt decoration",
			want: "Hard-paste porcelain",
		},
		{
			name: "plain parent survives alone",
			text: "Vase, porcelain, glazed",
			want: "Porcelain",
		},
		{
			name: "multiple independent materials in table order",
			text: "Chair of mahogany with bronze mounts",
			want: "Bronze, Mahogany",
		},
		{
			name: "nothing stated",
			text: "A lecture about taste and reform",
			want: model.MaterialNotStated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Material(tt.text, rs))
		})
	}
}

func TestMaterialIdempotent(t *testing.T) {
	rs := loadRules(t)
	text := "Cabinet, oak and ebony veneer with gilt bronze"
	first := Material(text, rs)
	assert.Equal(t, first, Material(text, rs))
}

func TestRegionAndPlace(t *testing.T) {
	rs := loadRules(t)

	assert.Equal(t, "Britain", Region("Made in London for the Great Exhibition", rs, "Europe"))
	assert.Equal(t, "Europe", Region("An object of unclear origin", rs, "Europe"))

	// Four place keywords present; output caps at three, in table order.
	place := ProductionPlace("Made in Paris, shown in London, Vienna and Berlin", rs, "France")
	assert.Equal(t, "Paris / London / Berlin", place)

	assert.Equal(t, "France", ProductionPlace("no places here", rs, "France"))
}

func TestStyleFirstMatchWins(t *testing.T) {
	rs := loadRules(t)
	// Both styles appear; table order decides, not match position.
	got := Style("industrial machine production with whiplash ornament", rs, "")
	assert.Equal(t, "Art Nouveau", got)
	assert.Equal(t, "Victorian", Style("nothing stylistic", rs, "Victorian"))
}

func TestAuthor(t *testing.T) {
	rs := loadRules(t)
	p := DefaultParams()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "name comma medium",
			text: "Henri van de Velde, chair of oak and leather, 1895",
			want: "Henri van de Velde",
		},
		{
			name: "trailing object word trimmed",
			text: "Arthur Mackmurdo Chair, mahogany, designed 1882",
			want: "Arthur Mackmurdo",
		},
		{
			name: "stopword credit line rejected",
			text: "Victoria and Albert Museum, London. Chair, oak, 1870",
			want: "",
		},
		{
			name: "no craft context nearby",
			text: "John Ruskin, whose lectures shaped public taste across decades of debate and reform in England and beyond, a very long digression that keeps any medium word far away from the name in question",
			want: "",
		},
		{
			name: "single word too short",
			text: "Morris, wallpaper block-printed in wood",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Author(tt.text, rs, p))
		})
	}
}

func TestIsFallbackAuthor(t *testing.T) {
	assert.True(t, IsFallbackAuthor(""))
	assert.True(t, IsFallbackAuthor("France artist"))
	assert.False(t, IsFallbackAuthor("Henri van de Velde"))
}

func TestTitle(t *testing.T) {
	rs := loadRules(t)
	p := DefaultParams()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "cut at year",
			text: "Arts and Crafts: Sussex chair, ebonized beech, c. 1865, London",
			want: "Sussex chair, ebonized beech",
		},
		{
			name: "cut at century",
			text: "Mask of carved wood, 19th century, Gabon",
			want: "Mask of carved wood",
		},
		{
			name: "boilerplate falls through to next segment",
			text: "Reading for next week. Peacock Room panel; oil and gold leaf",
			want: "Peacock Room panel",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Title(tt.text, "Deck", 1, 1, rs, p))
		})
	}
}

func TestTitleSyntheticFallback(t *testing.T) {
	rs := loadRules(t)
	p := DefaultParams()
	assert.Equal(t, "Design History - Slide 7 Image 2", Title("", "Design History", 7, 2, rs, p))
}

func TestTitleTruncates(t *testing.T) {
	rs := loadRules(t)
	p := DefaultParams()
	long := ""
	for i := 0; i < 40; i++ {
		long += "verylongword "
	}
	got := Title(long, "Deck", 1, 1, rs, p)
	assert.LessOrEqual(t, len([]rune(got)), p.TitleMaxLen)
}

func TestRecordType(t *testing.T) {
	rs := loadRules(t)

	assert.Equal(t, model.RecordTypeArtwork,
		RecordType("Sussex chair", "Ebonized beech, rush seat, made for Morris & Co.", rs))
	assert.Equal(t, model.RecordTypeReference,
		RecordType("Comparison image", "Just for context, not a core object", rs))
	assert.Equal(t, model.RecordTypeReference, RecordType("Untitled", "", rs))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b c", CollapseSpaces("  a \n b\t c "))
	assert.Equal(t, "1870-80", Normalize("1870–80"))
	assert.Equal(t, "Henri van de Velde", CleanName("  Henri van de Velde,. "))
}
