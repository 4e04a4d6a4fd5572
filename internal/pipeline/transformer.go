package pipeline

import (
	"context"
	"fmt"
	"strings"

	"localizer/internal/logger"
	"localizer/internal/models"
)

const (
	seoTitleMaxLen = 70
	seoDescMaxLen  = 160
	slugMaxLen     = 70
	seoDelimiter   = "###"
	maxTags        = 10
)

// Generator is the generative text service boundary. Calls are stateless
// and may fail or time out; nothing here retries them.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// TransformerConfig tunes the content transformer.
type TransformerConfig struct {
	TargetLanguage string
	TitleMaxLength int
	MarkerTag      string
}

// ContentTransformer rewrites source-language product copy into the target
// language and derives SEO metadata, a slug, and a category. Every external
// failure degrades to the original field value; Transform does not fail an
// item because the model was unavailable.
type ContentTransformer struct {
	gen            Generator
	classifier     *Classifier
	logger         *logger.Logger
	targetLanguage string
	titleMaxLen    int
	markerTag      string
}

func NewContentTransformer(gen Generator, classifier *Classifier, cfg TransformerConfig, logger *logger.Logger) *ContentTransformer {
	if cfg.TargetLanguage == "" {
		cfg.TargetLanguage = "Arabic"
	}
	if cfg.TitleMaxLength <= 0 {
		cfg.TitleMaxLength = 70
	}
	return &ContentTransformer{
		gen:            gen,
		classifier:     classifier,
		logger:         logger,
		targetLanguage: cfg.TargetLanguage,
		titleMaxLen:    cfg.TitleMaxLength,
		markerTag:      cfg.MarkerTag,
	}
}

// Transform produces the full translated item for one processing attempt.
func (t *ContentTransformer) Transform(ctx context.Context, item *models.CatalogItem) (*models.TranslatedItem, error) {
	title := t.rewriteTitle(ctx, item)
	description := t.rewriteDescription(ctx, item)
	seoTitle, seoDescription := t.generateSEO(ctx, title, description)

	// The slug comes from the original source title, not the translated
	// one, so the URL stays stable across reprocessing runs.
	slug := Slugify(item.Title, slugMaxLen)

	category := t.classifier.Classify(ctx, title, description)

	options, variants := t.translateOptions(ctx, item)

	tags := t.generateTags(ctx, title, description)
	tags = mergeTags(item.Tags, tags, category.Title, t.markerTag)

	return &models.TranslatedItem{
		Title:          title,
		Description:    description,
		SEOTitle:       seoTitle,
		SEODescription: seoDescription,
		Slug:           slug,
		Category:       category.Title,
		ProductType:    category.ProductType,
		Tags:           tags,
		Options:        options,
		Variants:       variants,
		DeliveryDays:   ExtractDeliveryDays(item.BodyHTML),
	}, nil
}

func (t *ContentTransformer) rewriteTitle(ctx context.Context, item *models.CatalogItem) string {
	prompt := fmt.Sprintf(`Rewrite the following product title in %s. Make it clear and
descriptive of the actual product, without marketing filler.

Title: %s
Description: %s

Return only the rewritten title.`, t.targetLanguage, item.Title, StripHTML(item.BodyHTML))

	out, err := t.gen.Generate(ctx, "You are a specialist product copywriter.", prompt)
	if err != nil {
		t.logger.Error("Title rewrite failed for item %d, keeping original: %v", item.ID, err)
		return Truncate(item.Title, t.titleMaxLen)
	}
	return Truncate(strings.TrimSpace(strings.ReplaceAll(out, "\n", " ")), t.titleMaxLen)
}

func (t *ContentTransformer) rewriteDescription(ctx context.Context, item *models.CatalogItem) string {
	prompt := fmt.Sprintf(`Translate the following product copy into %s in a clear,
professional marketing tone, around 250 words, without special symbols:

%s
%s`, t.targetLanguage, item.Title, item.BodyHTML)

	out, err := t.gen.Generate(ctx, "You are a marketing copy specialist.", prompt)
	if err != nil {
		t.logger.Error("Description rewrite failed for item %d, keeping original: %v", item.ID, err)
		return item.BodyHTML
	}
	return strings.TrimSpace(strings.NewReplacer("*", "", "#", "").Replace(out))
}

// generateSEO asks for the SEO title and description in one call, split on
// a fixed delimiter. A response without exactly two parts falls back to
// values derived from the already-available copy.
func (t *ContentTransformer) generateSEO(ctx context.Context, title, description string) (string, string) {
	prompt := fmt.Sprintf(`Write an SEO page title (max %d characters) and an SEO meta
description (max %d characters) in %s for this product.
Return the title, then the line %q, then the description. Nothing else.

Title: %s
Description: %s`, seoTitleMaxLen, seoDescMaxLen, t.targetLanguage, seoDelimiter, title, StripHTML(description))

	out, err := t.gen.Generate(ctx, "You are an e-commerce SEO specialist.", prompt)
	if err == nil {
		parts := strings.Split(out, seoDelimiter)
		if len(parts) == 2 {
			return Truncate(strings.TrimSpace(parts[0]), seoTitleMaxLen),
				Truncate(strings.TrimSpace(parts[1]), seoDescMaxLen)
		}
		t.logger.Error("SEO generation returned %d parts, using fallback", len(parts))
	} else {
		t.logger.Error("SEO generation failed, using fallback: %v", err)
	}

	return Truncate(title, seoTitleMaxLen), Truncate(StripHTML(description), seoDescMaxLen)
}
