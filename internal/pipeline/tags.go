package pipeline

import (
	"context"
	"fmt"
	"strings"
)

// Generic words that add nothing to search; filtered locally after the AI
// pass, matching in any casing.
var bannedTagWords = map[string]bool{
	"new": true, "great": true, "sale": true, "available": true,
	"original": true, "premium": true, "store": true, "product": true,
	"discount": true, "price": true, "buy": true, "shipping": true,
	"free": true, "offer": true, "quality": true, "best": true,
}

// generateTags extracts search keywords from the product copy. Failures
// return nil; tags are additive and never block the item.
func (t *ContentTransformer) generateTags(ctx context.Context, title, description string) []string {
	text := CleanText(title + " " + description)

	prompt := fmt.Sprintf(`You are an e-commerce SEO expert. Extract precise search keywords
from the following product text, in %s.
Focus on words describing the product itself: kind, category, use,
features, technology, materials. Exclude generic filler words, store
names, places, codes, and numbers.
Output the keywords only, separated by single commas.

Text:
"%s"`, t.targetLanguage, text)

	raw, err := t.gen.Generate(ctx, "You extract product search keywords.", prompt)
	if err != nil {
		t.logger.Error("Tag generation failed: %v", err)
		return nil
	}

	raw = strings.NewReplacer("\n", " ", `"`, "", "'", "").Replace(raw)

	seen := make(map[string]bool)
	var tags []string
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '،' }) {
		tag := strings.TrimSpace(part)
		if len([]rune(tag)) < 2 || bannedTagWords[strings.ToLower(tag)] || seen[strings.ToLower(tag)] {
			continue
		}
		seen[strings.ToLower(tag)] = true
		tags = append(tags, tag)
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}

// mergeTags unions the source tags, generated tags, category, and the
// processing marker, deduplicated case-insensitively, source order first.
func mergeTags(source, generated []string, category, marker string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(tag string) {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[strings.ToLower(tag)] {
			return
		}
		seen[strings.ToLower(tag)] = true
		out = append(out, tag)
	}
	for _, t := range source {
		add(t)
	}
	for _, t := range generated {
		add(t)
	}
	add(category)
	add(marker)
	return out
}
