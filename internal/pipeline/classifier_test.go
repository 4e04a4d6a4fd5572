package pipeline

import (
	"context"
	"errors"
	"testing"

	"localizer/internal/logger"

	"github.com/stretchr/testify/assert"
)

type scriptedGen struct {
	out string
	err error
}

func (g *scriptedGen) Generate(ctx context.Context, system, prompt string) (string, error) {
	return g.out, g.err
}

func testCatalog() *Catalog {
	return &Catalog{
		FallbackCategory: "Other",
		Categories: []Category{
			{Title: "Audio", Keywords: []string{"headphones", "speaker"}, ProductType: "Audio"},
			{Title: "Kitchen", Keywords: []string{"kettle", "blender"}, ProductType: "Kitchen"},
			{Title: "Other", Keywords: nil, ProductType: "Misc"},
		},
	}
}

func TestTitleMatchesOutweighDescription(t *testing.T) {
	c := NewClassifier(testCatalog(), 3, nil, logger.New("error"))

	// One title hit for Audio (3) beats two description hits for Kitchen (2).
	cat := c.Classify(context.Background(), "Wireless headphones", "works near a kettle or blender")
	assert.Equal(t, "Audio", cat.Title)
}

func TestWordBoundaryMatching(t *testing.T) {
	c := NewClassifier(testCatalog(), 1, nil, logger.New("error"))

	cat := c.Classify(context.Background(), "Loudspeakerish gadget", "")
	assert.Equal(t, "Other", cat.Title, "substring hits must not count")

	cat = c.Classify(context.Background(), "Bluetooth SPEAKER", "")
	assert.Equal(t, "Audio", cat.Title, "matching is case-insensitive")
}

func TestTieKeepsFirstSeenCategory(t *testing.T) {
	catalog := &Catalog{
		FallbackCategory: "Other",
		Categories: []Category{
			{Title: "First", Keywords: []string{"widget"}},
			{Title: "Second", Keywords: []string{"widget"}},
			{Title: "Other"},
		},
	}
	c := NewClassifier(catalog, 1, nil, logger.New("error"))

	cat := c.Classify(context.Background(), "widget", "")
	assert.Equal(t, "First", cat.Title)
}

func TestLowConfidenceFallsBackToAI(t *testing.T) {
	c := NewClassifier(testCatalog(), 5, &scriptedGen{out: "Kitchen"}, logger.New("error"))

	// "kettle" in the description scores only 1, below the threshold.
	cat := c.Classify(context.Background(), "Model X-200", "a compact kettle")
	assert.Equal(t, "Kitchen", cat.Title)
}

func TestUnknownAIAnswerFallsBackToCatchAll(t *testing.T) {
	c := NewClassifier(testCatalog(), 5, &scriptedGen{out: "Gadgets & Gizmos"}, logger.New("error"))

	cat := c.Classify(context.Background(), "Model X-200", "")
	assert.Equal(t, "Other", cat.Title, "answers outside the catalog are rejected")
}

func TestAIFailureFallsBackToCatchAll(t *testing.T) {
	c := NewClassifier(testCatalog(), 5, &scriptedGen{err: errors.New("rate limited")}, logger.New("error"))

	cat := c.Classify(context.Background(), "Model X-200", "")
	assert.Equal(t, "Other", cat.Title)
	assert.Equal(t, "Misc", cat.ProductType)
}
