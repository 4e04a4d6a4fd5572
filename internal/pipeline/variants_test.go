package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"localizer/internal/logger"
	"localizer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGen dispatches on the system message so each transformer concern can
// be scripted independently.
type fakeGen struct {
	translations map[string]string
	titleOut     string
	descOut      string
	seoOut       string
	tagsOut      string
	categoryOut  string
	listOut      func(values []string) (string, error)
	err          error
}

func (g *fakeGen) Generate(ctx context.Context, system, prompt string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	switch {
	case strings.Contains(system, "translate product labels"):
		parts := strings.Split(prompt, "\n\n")
		values := strings.Split(parts[len(parts)-1], "\n")
		if g.listOut != nil {
			return g.listOut(values)
		}
		var out []string
		for _, v := range values {
			if tv, ok := g.translations[v]; ok {
				out = append(out, tv)
			} else {
				out = append(out, "tr:"+v)
			}
		}
		return strings.Join(out, "\n"), nil
	case strings.Contains(system, "copywriter"):
		return g.titleOut, nil
	case strings.Contains(system, "marketing"):
		return g.descOut, nil
	case strings.Contains(system, "SEO specialist"):
		return g.seoOut, nil
	case strings.Contains(system, "search keywords"):
		return g.tagsOut, nil
	case strings.Contains(system, "categorization"):
		return g.categoryOut, nil
	}
	return "", errors.New("unexpected prompt")
}

func newTestTransformer(gen Generator) *ContentTransformer {
	log := logger.New("error")
	classifier := NewClassifier(DefaultCatalog(), 5, nil, log)
	return NewContentTransformer(gen, classifier, TransformerConfig{
		TargetLanguage: "French",
		TitleMaxLength: 70,
		MarkerTag:      "AI-Optimized",
	}, log)
}

func str(s string) *string { return &s }

func TestValueIdentityPreserved(t *testing.T) {
	gen := &fakeGen{translations: map[string]string{"Red": "Rouge", "Blue": "Bleu", "Color": "Couleur"}}
	tr := newTestTransformer(gen)

	item := &models.CatalogItem{
		ID:      1,
		Options: []models.ItemOption{{Name: "Color", Values: []string{"Red", "Blue", "Red"}}},
		Variants: []models.ItemVariant{
			{ID: 1, Option1: str("Red")},
			{ID: 2, Option1: str("Blue")},
			{ID: 3, Option1: str("Red")},
		},
	}

	options, variants := tr.translateOptions(context.Background(), item)

	require.Len(t, options, 1)
	assert.Equal(t, "Couleur", options[0].Name)
	assert.Equal(t, []string{"Rouge", "Bleu"}, options[0].Values)

	require.Len(t, variants, 2, "the second Rouge variant collides and is dropped")
	assert.Equal(t, "Rouge", *variants[0].Option1)
	assert.Equal(t, "Bleu", *variants[1].Option1)
}

func TestTranslationCollisionDropsDuplicateVariant(t *testing.T) {
	gen := &fakeGen{translations: map[string]string{"Crimson": "Rouge", "Scarlet": "Rouge", "Color": "Couleur"}}
	tr := newTestTransformer(gen)

	item := &models.CatalogItem{
		ID:      2,
		Options: []models.ItemOption{{Name: "Color", Values: []string{"Crimson", "Scarlet"}}},
		Variants: []models.ItemVariant{
			{ID: 10, Option1: str("Crimson")},
			{ID: 11, Option1: str("Scarlet")},
		},
	}

	options, variants := tr.translateOptions(context.Background(), item)

	assert.Equal(t, []string{"Rouge"}, options[0].Values)
	require.Len(t, variants, 1)
	assert.Equal(t, int64(10), variants[0].ID, "the first variant of a colliding pair is kept")
}

func TestShortCodesBypassTranslation(t *testing.T) {
	gen := &fakeGen{translations: map[string]string{"Size": "Taille", "Large": "Grand"}}
	tr := newTestTransformer(gen)

	item := &models.CatalogItem{
		ID:      3,
		Options: []models.ItemOption{{Name: "Size", Values: []string{"XL", "S", "Large"}}},
		Variants: []models.ItemVariant{
			{ID: 1, Option1: str("XL")},
			{ID: 2, Option1: str("S")},
			{ID: 3, Option1: str("Large")},
		},
	}

	options, variants := tr.translateOptions(context.Background(), item)

	assert.Equal(t, []string{"XL", "S", "Grand"}, options[0].Values)
	require.Len(t, variants, 3)
	assert.Equal(t, "XL", *variants[0].Option1)
}

func TestCountMismatchKeepsOriginals(t *testing.T) {
	gen := &fakeGen{
		translations: map[string]string{"Material": "Matière"},
		listOut: func(values []string) (string, error) {
			if len(values) > 1 {
				// Malformed response: one line short.
				return strings.Join(values[:len(values)-1], "\n"), nil
			}
			return "tr:" + values[0], nil
		},
	}
	tr := newTestTransformer(gen)

	item := &models.CatalogItem{
		ID:      4,
		Options: []models.ItemOption{{Name: "Material", Values: []string{"Leather", "Cotton", "Wool"}}},
		Variants: []models.ItemVariant{
			{ID: 1, Option1: str("Leather")},
			{ID: 2, Option1: str("Cotton")},
			{ID: 3, Option1: str("Wool")},
		},
	}

	options, variants := tr.translateOptions(context.Background(), item)

	assert.Equal(t, []string{"Leather", "Cotton", "Wool"}, options[0].Values, "misaligned response must never guess positions")
	require.Len(t, variants, 3)
	assert.Equal(t, "Leather", *variants[0].Option1)
}

func TestTranslationFailureKeepsOriginals(t *testing.T) {
	gen := &fakeGen{
		listOut: func([]string) (string, error) { return "", errors.New("timeout") },
	}
	tr := newTestTransformer(gen)

	item := &models.CatalogItem{
		ID:       5,
		Options:  []models.ItemOption{{Name: "Color", Values: []string{"Green"}}},
		Variants: []models.ItemVariant{{ID: 1, Option1: str("Green")}},
	}

	options, variants := tr.translateOptions(context.Background(), item)

	assert.Equal(t, "Color", options[0].Name)
	assert.Equal(t, []string{"Green"}, options[0].Values)
	assert.Equal(t, "Green", *variants[0].Option1)
}
