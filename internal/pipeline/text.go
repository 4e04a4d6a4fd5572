package pipeline

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	htmlTagRe    = regexp.MustCompile(`</?[^>]+(>|$)`)
	nonTextRe    = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	spaceRe      = regexp.MustCompile(`\s+`)
	nonSlugRe    = regexp.MustCompile(`[^a-z0-9\s-]`)
	hyphenRunRe  = regexp.MustCompile(`-+`)
	deliveryRes  = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\s*-\s*(\d+)\s*(?:business\s+)?days?`),
		regexp.MustCompile(`(?i)delivery[:\s]*(\d+)\s*-\s*(\d+)`),
		regexp.MustCompile(`(?i)ships?\s*in\s*(\d+)\s*-\s*(\d+)`),
		regexp.MustCompile(`(?i)(\d+)\s*to\s*(\d+)\s*days?`),
	}
)

// StripHTML removes markup from storefront rich-text fields.
func StripHTML(text string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(htmlTagRe.ReplaceAllString(text, " "), " "))
}

// CleanText strips markup and punctuation, leaving words only. Used for
// keyword extraction and social captions.
func CleanText(text string) string {
	text = htmlTagRe.ReplaceAllString(text, " ")
	text = nonTextRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// Slugify derives a URL handle from the original source title: lowercase,
// non-alphanumerics stripped, whitespace collapsed to single hyphens,
// truncated to maxLen. Deterministic so repeated runs keep the same URL.
func Slugify(title string, maxLen int) string {
	s := strings.ToLower(title)
	s = nonSlugRe.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), "-")
	s = hyphenRunRe.ReplaceAllString(s, "-")
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return strings.Trim(s, "-")
}

// Truncate cuts a string to at most maxLen runes.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}

// ExtractDeliveryDays pulls a "ships in X-Y days" style range out of the
// source description, for the delivery metafield.
func ExtractDeliveryDays(text string) string {
	if text == "" {
		return ""
	}
	for _, re := range deliveryRes {
		if m := re.FindStringSubmatch(text); m != nil {
			return fmt.Sprintf("%s-%s days", m[1], m[2])
		}
	}
	return ""
}
