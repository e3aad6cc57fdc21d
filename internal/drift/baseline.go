package drift

import (
	"fmt"
	"regexp"
)

// Baseline holds the authorized wildcard host patterns per category.
// Absence of the whole file is meaningful and handled by the caller
// (first-run mode); an absent category inside a present baseline simply
// authorizes nothing for that category.
type Baseline struct {
	patterns map[Category][]string
	compiled map[Category][]*regexp.Regexp
}

// NewBaseline builds a baseline from category-name → patterns. Unknown
// category names and malformed patterns are rejected so a typo in the
// baseline file fails loudly instead of silently authorizing nothing.
func NewBaseline(entries map[string][]string) (*Baseline, error) {
	b := &Baseline{
		patterns: make(map[Category][]string, len(entries)),
		compiled: make(map[Category][]*regexp.Regexp, len(entries)),
	}
	for name, patterns := range entries {
		cat, err := ParseCategory(name)
		if err != nil {
			return nil, err
		}
		compiled := make([]*regexp.Regexp, 0, len(patterns))
		for _, p := range patterns {
			re, err := CompilePattern(p)
			if err != nil {
				return nil, fmt.Errorf("category %s pattern %q: %w", name, p, err)
			}
			compiled = append(compiled, re)
		}
		b.patterns[cat] = append([]string(nil), patterns...)
		b.compiled[cat] = compiled
	}
	return b, nil
}

// Patterns returns the raw pattern list for a category.
func (b *Baseline) Patterns(category Category) []string {
	return b.patterns[category]
}

// HasCategory reports whether the baseline defines any patterns for the
// category.
func (b *Baseline) HasCategory(category Category) bool {
	return len(b.compiled[category]) > 0
}

// Authorized reports whether any of the category's patterns matches host.
func (b *Baseline) Authorized(category Category, host string) bool {
	for _, re := range b.compiled[category] {
		if re.MatchString(host) {
			return true
		}
	}
	return false
}
