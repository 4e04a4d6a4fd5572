package pipeline

import (
	"context"
	"errors"
	"testing"

	"localizer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformDegradesGracefullyWhenAIFails(t *testing.T) {
	gen := &fakeGen{err: errors.New("service unavailable")}
	tr := newTestTransformer(gen)

	item := &models.CatalogItem{
		ID:       1,
		Title:    "Wireless Mouse",
		BodyHTML: "<p>A great mouse</p>",
		Status:   models.StatusActive,
	}

	out, err := tr.Transform(context.Background(), item)
	require.NoError(t, err, "AI failure must not fail the item")

	assert.Equal(t, "Wireless Mouse", out.Title)
	assert.Equal(t, "<p>A great mouse</p>", out.Description)
	assert.Equal(t, "wireless-mouse", out.Slug)
	assert.Contains(t, out.Tags, "AI-Optimized")
}

func TestTransformOutput(t *testing.T) {
	gen := &fakeGen{
		titleOut: "Souris sans fil ergonomique",
		descOut:  "Une souris *excellente* pour le bureau",
		seoOut:   "Souris sans fil ### Une souris confortable pour le bureau",
		tagsOut:  "souris, bureau, sans fil, new, souris",
	}
	tr := newTestTransformer(gen)

	item := &models.CatalogItem{
		ID:       2,
		Title:    "Wireless Mouse!! (2024 Edition)",
		BodyHTML: "Ergonomic wireless headphones companion. Ships in 3-7 days.",
		Status:   models.StatusActive,
		Tags:     []string{"accessories"},
	}

	out, err := tr.Transform(context.Background(), item)
	require.NoError(t, err)

	assert.Equal(t, "Souris sans fil ergonomique", out.Title)
	assert.Equal(t, "Une souris excellente pour le bureau", out.Description, "markdown symbols are stripped")
	assert.Equal(t, "Souris sans fil", out.SEOTitle)
	assert.Equal(t, "Une souris confortable pour le bureau", out.SEODescription)

	// Slug comes from the original title, not the rewritten one.
	assert.Equal(t, "wireless-mouse-2024-edition", out.Slug)

	assert.Equal(t, "3-7 days", out.DeliveryDays)

	// Source tags first, then generated (deduped, banned words dropped),
	// then category and marker.
	assert.Equal(t, "accessories", out.Tags[0])
	assert.Contains(t, out.Tags, "souris")
	assert.NotContains(t, out.Tags, "new")
	assert.Contains(t, out.Tags, "AI-Optimized")
}

func TestSEOMalformedResponseFallsBack(t *testing.T) {
	gen := &fakeGen{seoOut: "no delimiter here at all"}
	tr := newTestTransformer(gen)

	title, desc := tr.generateSEO(context.Background(), "Short Title", "<p>Body text</p>")
	assert.Equal(t, "Short Title", title)
	assert.Equal(t, "Body text", desc)
}

func TestSEOLengthLimitsEnforced(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	gen := &fakeGen{seoOut: string(long) + " ### " + string(long)}
	tr := newTestTransformer(gen)

	title, desc := tr.generateSEO(context.Background(), "t", "d")
	assert.LessOrEqual(t, len([]rune(title)), seoTitleMaxLen)
	assert.LessOrEqual(t, len([]rune(desc)), seoDescMaxLen)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "wireless-mouse", Slugify("Wireless Mouse", 70))
	assert.Equal(t, "wireless-mouse", Slugify("  Wireless   Mouse!! ", 70))
	assert.Equal(t, "abc-123", Slugify("ABC @#$ 123", 70))
	assert.Equal(t, "a-b", Slugify("a - b", 70), "source hyphens never double up")
	assert.Equal(t, "wireless-mouse", Slugify("Wireless -- Mouse", 70))
	assert.Equal(t, "ab", Slugify("ab-------cd", 3), "truncation never leaves a trailing hyphen")
	assert.Equal(t, "", Slugify("!!!", 70))
}

func TestExtractDeliveryDays(t *testing.T) {
	cases := map[string]string{
		"Ships in 3-7 days":              "3-7 days",
		"delivery: 5 - 10":               "5-10 days",
		"takes 7 to 14 days to arrive":   "7-14 days",
		"arrives within 2-4 business days": "2-4 days",
		"in stock":                       "",
		"":                               "",
	}
	for in, want := range cases {
		assert.Equal(t, want, ExtractDeliveryDays(in), "input %q", in)
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Fast wireless charger", CleanText("<b>Fast</b>  wireless, charger!!"))
}

func TestMergeTagsDedupesCaseInsensitively(t *testing.T) {
	out := mergeTags([]string{"Audio", "gift"}, []string{"audio", "bluetooth"}, "Electronics", "AI-Optimized")
	assert.Equal(t, []string{"Audio", "gift", "bluetooth", "Electronics", "AI-Optimized"}, out)
}
