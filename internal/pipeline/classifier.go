package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"localizer/internal/logger"
)

// Category is one entry in the fixed catalog the classifier scores against.
type Category struct {
	Title       string   `json:"title"`
	Keywords    []string `json:"keywords"`
	ProductType string   `json:"product_type"`
}

// Catalog is the fixed, ordered category list plus the catch-all used when
// nothing matches. Iteration order is the file order, which makes tie
// resolution deterministic.
type Catalog struct {
	FallbackCategory string     `json:"fallback_category"`
	Categories       []Category `json:"categories"`
}

// LoadCatalog reads the category catalog from a JSON file. A missing file
// falls back to the built-in default catalog.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultCatalog(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if catalog.FallbackCategory == "" {
		catalog.FallbackCategory = DefaultCatalog().FallbackCategory
	}
	return &catalog, nil
}

// DefaultCatalog is the built-in category list used when no catalog file is
// configured.
func DefaultCatalog() *Catalog {
	return &Catalog{
		FallbackCategory: "Miscellaneous",
		Categories: []Category{
			{Title: "Electronics", Keywords: []string{"phone", "headphones", "earbuds", "camera", "charger", "bluetooth", "speaker", "laptop", "tablet", "smartwatch"}, ProductType: "Electronics"},
			{Title: "Home & Kitchen", Keywords: []string{"kitchen", "cookware", "refrigerator", "blender", "lamp", "furniture", "bedding", "vacuum"}, ProductType: "Home"},
			{Title: "Fashion", Keywords: []string{"shirt", "dress", "shoes", "jacket", "watch", "bag", "sunglasses", "jeans"}, ProductType: "Apparel"},
			{Title: "Beauty & Care", Keywords: []string{"cream", "serum", "makeup", "shampoo", "perfume", "skincare", "lotion"}, ProductType: "Beauty"},
			{Title: "Toys & Games", Keywords: []string{"toy", "game", "puzzle", "lego", "doll", "board game"}, ProductType: "Toys"},
			{Title: "Sports & Outdoors", Keywords: []string{"fitness", "yoga", "bicycle", "camping", "running", "gym", "hiking"}, ProductType: "Sports"},
		},
	}
}

// Classifier maps transformed text to one catalog category. Keyword scoring
// first; an AI single-label call when confidence is low; the catch-all when
// everything else fails. Classification never fails the pipeline.
type Classifier struct {
	catalog   *Catalog
	threshold int
	gen       Generator
	logger    *logger.Logger
	keywords  [][]*regexp.Regexp
}

func NewClassifier(catalog *Catalog, threshold int, gen Generator, logger *logger.Logger) *Classifier {
	c := &Classifier{
		catalog:   catalog,
		threshold: threshold,
		gen:       gen,
		logger:    logger,
	}
	for _, cat := range catalog.Categories {
		var res []*regexp.Regexp
		for _, kw := range cat.Keywords {
			res = append(res, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
		}
		c.keywords = append(c.keywords, res)
	}
	return c
}

// Classify returns the winning category for the given copy.
func (c *Classifier) Classify(ctx context.Context, title, description string) Category {
	best, score := c.scoreWeighted(title, description)
	if score >= c.threshold {
		return best
	}

	if cat, ok := c.aiFallback(ctx, title, description); ok {
		return cat
	}

	return c.fallbackCategory()
}

// scoreWeighted runs the keyword scorer: a title hit counts three times a
// description hit, word-boundary matched, case-insensitive. Ties keep the
// first-seen category.
func (c *Classifier) scoreWeighted(title, description string) (Category, int) {
	best := c.fallbackCategory()
	bestScore := 0

	for i, cat := range c.catalog.Categories {
		score := 0
		for _, re := range c.keywords[i] {
			score += len(re.FindAllStringIndex(title, -1)) * 3
			score += len(re.FindAllStringIndex(description, -1))
		}
		if score > bestScore {
			bestScore = score
			best = cat
		}
	}

	return best, bestScore
}

// aiFallback asks the model to pick exactly one of the catalog titles.
// Anything that is not a known title is rejected.
func (c *Classifier) aiFallback(ctx context.Context, title, description string) (Category, bool) {
	if c.gen == nil {
		return Category{}, false
	}

	var titles []string
	for _, cat := range c.catalog.Categories {
		titles = append(titles, "- "+cat.Title)
	}

	prompt := fmt.Sprintf(`Classify the following product into exactly one of these categories:
%s

Title: %s
Description: %s

Answer with only the category name, nothing else.`, strings.Join(titles, "\n"), title, description)

	answer, err := c.gen.Generate(ctx, "You are a product categorization assistant.", prompt)
	if err != nil {
		c.logger.Error("AI category fallback failed: %v", err)
		return Category{}, false
	}

	answer = strings.TrimSpace(strings.Trim(strings.TrimSpace(answer), `"-`))
	for _, cat := range c.catalog.Categories {
		if strings.EqualFold(cat.Title, answer) {
			return cat, true
		}
	}

	c.logger.Info("AI category fallback returned unknown category %q", answer)
	return Category{}, false
}

func (c *Classifier) fallbackCategory() Category {
	for _, cat := range c.catalog.Categories {
		if strings.EqualFold(cat.Title, c.catalog.FallbackCategory) {
			return cat
		}
	}
	return Category{Title: c.catalog.FallbackCategory, ProductType: c.catalog.FallbackCategory}
}
