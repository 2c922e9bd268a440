// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package docpath parses dotted symbol paths as used in documentation
// configuration files, e.g. "kipoiseq.extractors.FastaStringExtractor++".
package docpath

import (
	"fmt"
	"strings"
	"unicode"
)

// IncludeMode controls which members of a symbol are documented alongside it.
type IncludeMode int

const (
	// IncludeNone documents only the symbol itself.
	IncludeNone IncludeMode = iota
	// IncludeMembers documents the symbol and its direct members ("+").
	IncludeMembers
	// IncludeInherited documents the symbol, its members and inherited
	// members ("++").
	IncludeInherited
)

// String returns the suffix notation for the include mode.
func (m IncludeMode) String() string {
	switch m {
	case IncludeMembers:
		return "+"
	case IncludeInherited:
		return "++"
	default:
		return ""
	}
}

// Path is a parsed dotted symbol path.
type Path struct {
	Segments []string
	Members  IncludeMode
}

// Parse parses a dotted symbol path with an optional "+" or "++" suffix.
func Parse(spec string) (Path, error) {
	raw := strings.TrimSpace(spec)
	if raw == "" {
		return Path{}, fmt.Errorf("empty symbol path")
	}

	mode := IncludeNone
	switch {
	case strings.HasSuffix(raw, "++"):
		mode = IncludeInherited
		raw = strings.TrimSuffix(raw, "++")
	case strings.HasSuffix(raw, "+"):
		mode = IncludeMembers
		raw = strings.TrimSuffix(raw, "+")
	}

	if raw == "" {
		return Path{}, fmt.Errorf("symbol path %q has no segments", spec)
	}
	if strings.ContainsAny(raw, " \t") {
		return Path{}, fmt.Errorf("symbol path %q contains whitespace", spec)
	}

	segments := strings.Split(raw, ".")
	for _, seg := range segments {
		if err := checkIdentifier(seg); err != nil {
			return Path{}, fmt.Errorf("symbol path %q: %w", spec, err)
		}
	}

	return Path{Segments: segments, Members: mode}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// compile-time constants.
func MustParse(spec string) Path {
	p, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return p
}

// String renders the path back to its spec form, including the member suffix.
func (p Path) String() string {
	return strings.Join(p.Segments, ".") + p.Members.String()
}

// Dotted renders the path without the member suffix.
func (p Path) Dotted() string {
	return strings.Join(p.Segments, ".")
}

// Root returns the top-level package segment.
func (p Path) Root() string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[0]
}

// Leaf returns the last segment.
func (p Path) Leaf() string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[len(p.Segments)-1]
}

func checkIdentifier(seg string) error {
	if seg == "" {
		return fmt.Errorf("empty segment")
	}
	for i, r := range seg {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return fmt.Errorf("segment %q must start with a letter or underscore", seg)
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return fmt.Errorf("segment %q contains invalid character %q", seg, r)
		}
	}
	return nil
}

// SplitInclude splits a navigation leaf value into its page path and an
// optional "<<" include source, e.g. "index.md << ../README.md".
func SplitInclude(value string) (page string, include string) {
	if idx := strings.Index(value, "<<"); idx >= 0 {
		page = strings.TrimSpace(value[:idx])
		include = strings.TrimSpace(value[idx+2:])
		return page, include
	}
	return strings.TrimSpace(value), ""
}
