// SPDX-License-Identifier: MIT

package jobs

import (
	"regexp"
	"strings"
	"unicode"
)

// slugify converts a page title or symbol name into a URL-safe anchor slug.
// Example: "FastaStringExtractor" → "fastastringextractor",
// "Variant effects" → "variant-effects".
func slugify(name string) string {
	if name == "" {
		return "section"
	}

	s := strings.ToLower(name)

	var result strings.Builder
	lastWasDash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
			lastWasDash = false
		} else if !lastWasDash {
			result.WriteRune('-')
			lastWasDash = true
		}
	}

	slug := strings.Trim(result.String(), "-")

	reDash := regexp.MustCompile(`-+`)
	slug = reDash.ReplaceAllString(slug, "-")

	if len(slug) > 80 {
		slug = slug[:80]
		slug = strings.TrimRight(slug, "-")
	}

	if slug == "" {
		return "section"
	}

	return slug
}

// pageTitle derives a readable title from an output page path when the
// navigation does not supply one. "transforms/functional.md" → "Functional".
func pageTitle(page string) string {
	base := page
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}
	base = strings.TrimSuffix(base, ".md")
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	if base == "" {
		return page
	}
	return strings.ToUpper(base[:1]) + base[1:]
}
