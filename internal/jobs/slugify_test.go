// SPDX-License-Identifier: MIT

package jobs

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "FastaStringExtractor", "fastastringextractor"},
		{"dotted path", "kipoiseq.utils", "kipoiseq-utils"},
		{"member suffix stripped", "kipoiseq.dataloaders++", "kipoiseq-dataloaders"},
		{"spaces", "Variant effects", "variant-effects"},
		{"multiple separators", "a..b  c", "a-b-c"},
		{"empty", "", "section"},
		{"only symbols", "+++", "section"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := slugify(tt.input); got != tt.expected {
				t.Errorf("slugify(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSlugify_LongInput(t *testing.T) {
	long := strings.Repeat("abc.", 60)
	slug := slugify(long)
	if len(slug) > 80 {
		t.Errorf("slug length %d exceeds cap", len(slug))
	}
	if strings.HasSuffix(slug, "-") {
		t.Errorf("slug has trailing dash: %q", slug)
	}
}

func TestPageTitle(t *testing.T) {
	tests := []struct {
		page     string
		expected string
	}{
		{"extractors.md", "Extractors"},
		{"transforms/functional.md", "Functional"},
		{"variant_source.md", "Variant source"},
		{"data-loaders.md", "Data loaders"},
	}

	for _, tt := range tests {
		if got := pageTitle(tt.page); got != tt.expected {
			t.Errorf("pageTitle(%q) = %q, want %q", tt.page, got, tt.expected)
		}
	}
}
