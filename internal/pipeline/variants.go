package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"localizer/internal/models"
)

// Alphanumeric codes this short are model/size codes, not words; they pass
// through untranslated.
var keepAsIsRe = regexp.MustCompile(`^[A-Za-z0-9]{1,3}$`)

// translateOptions translates option names and the set of distinct values
// actually used, then rehydrates the variants by substitution. One
// dictionary per option keeps value identity: variants sharing a source
// value always share the translated value.
func (t *ContentTransformer) translateOptions(ctx context.Context, item *models.CatalogItem) ([]models.ItemOption, []models.ItemVariant) {
	options := make([]models.ItemOption, 0, len(item.Options))
	dicts := make([]map[string]string, 0, len(item.Options))

	for _, opt := range item.Options {
		name := t.translateOne(ctx, opt.Name)

		dict := t.buildValueDict(ctx, opt.Values)
		dicts = append(dicts, dict)

		// Distinct source labels can collapse onto the same translated
		// label; the option's value list must stay unique.
		seen := make(map[string]bool)
		var values []string
		for _, v := range opt.Values {
			tv := dict[v]
			if !seen[tv] {
				seen[tv] = true
				values = append(values, tv)
			}
		}

		options = append(options, models.ItemOption{Name: name, Values: values})
	}

	variants := t.rehydrateVariants(item, dicts)
	return options, variants
}

// buildValueDict translates the unique value set in one list call and maps
// source value to translated value. A malformed response (wrong line count)
// keeps the originals rather than guessing positions.
func (t *ContentTransformer) buildValueDict(ctx context.Context, values []string) map[string]string {
	dict := make(map[string]string, len(values))

	var unique []string
	seen := make(map[string]bool)
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		if keepAsIsRe.MatchString(v) {
			dict[v] = v
			continue
		}
		unique = append(unique, v)
	}

	if len(unique) == 0 {
		return dict
	}

	translated, err := t.translateList(ctx, unique)
	if err != nil || len(translated) != len(unique) {
		if err != nil {
			t.logger.Error("Option value translation failed, keeping originals: %v", err)
		} else {
			t.logger.Error("Option value translation returned %d lines for %d inputs, keeping originals", len(translated), len(unique))
		}
		for _, v := range unique {
			dict[v] = v
		}
		return dict
	}

	for i, v := range unique {
		dict[v] = translated[i]
	}
	return dict
}

// rehydrateVariants substitutes translated values into each variant and
// drops variants that became identical across all option values. Most
// storefronts reject updates containing duplicate option combinations.
func (t *ContentTransformer) rehydrateVariants(item *models.CatalogItem, dicts []map[string]string) []models.ItemVariant {
	sub := func(pos int, v *string) *string {
		if v == nil || pos >= len(dicts) {
			return v
		}
		if tv, ok := dicts[pos][*v]; ok {
			out := tv
			return &out
		}
		return v
	}

	seen := make(map[string]bool)
	var variants []models.ItemVariant
	for _, variant := range item.Variants {
		nv := variant
		nv.Option1 = sub(0, variant.Option1)
		nv.Option2 = sub(1, variant.Option2)
		nv.Option3 = sub(2, variant.Option3)

		key := strings.Join(nv.OptionValues(), "\x00")
		if seen[key] {
			t.logger.Info("Dropping duplicate variant %d for item %d (collides on %q after translation)", variant.ID, item.ID, strings.Join(nv.OptionValues(), "/"))
			continue
		}
		seen[key] = true
		variants = append(variants, nv)
	}

	return variants
}

// translateList translates the given labels in one call, one line per
// label, same order. Callers validate the line count.
func (t *ContentTransformer) translateList(ctx context.Context, values []string) ([]string, error) {
	prompt := fmt.Sprintf(`Translate each of the following %d lines into %s.
Return exactly one line per input line, in the same order.
No numbering, no explanations, no extra lines.

%s`, len(values), t.targetLanguage, strings.Join(values, "\n"))

	raw, err := t.gen.Generate(ctx, "You translate product labels. Output only the translations.", prompt)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}

// translateOne translates a single short label, falling back to the
// original on failure.
func (t *ContentTransformer) translateOne(ctx context.Context, text string) string {
	if keepAsIsRe.MatchString(text) {
		return text
	}
	out, err := t.translateList(ctx, []string{text})
	if err != nil || len(out) != 1 {
		return text
	}
	return out[0]
}
