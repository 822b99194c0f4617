// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match filters a catalog snapshot by field-level criteria using
// exact, partial (substring), or fuzzy (similarity ratio) matching.
package match

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pdiddy/catalog-search/pkg/types"
)

// ErrConfiguration reports an unknown mode, an unknown field, or an
// out-of-range fuzzy threshold.
var ErrConfiguration = errors.New("match: invalid configuration")

// Mode is the matching strategy.
type Mode string

// Match mode constants.
const (
	// Exact compares values case-sensitively.
	Exact Mode = "exact"
	// Partial checks case-insensitive substring containment of the target.
	Partial Mode = "partial"
	// Fuzzy compares the case-insensitive similarity ratio to a threshold.
	Fuzzy Mode = "fuzzy"
)

// DefaultFuzzyThreshold is the similarity ratio fuzzy matching uses unless
// the caller chooses another.
const DefaultFuzzyThreshold = 0.80

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Exact || m == Partial || m == Fuzzy
}

// ParseMode accepts a mode name in any case or its menu number (1 exact,
// 2 partial, 3 fuzzy).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exact", "1":
		return Exact, nil
	case "partial", "2":
		return Partial, nil
	case "fuzzy", "3":
		return Fuzzy, nil
	}
	return "", fmt.Errorf("%w: unknown match mode %q (want exact, partial, or fuzzy)", ErrConfiguration, s)
}

// Criteria maps a field name to the value searched for in that field.
type Criteria map[string]string

// Validate checks that every field in c is searchable.
func (c Criteria) Validate() error {
	for _, field := range c.fields() {
		if !IsField(field) {
			return fmt.Errorf("%w: unknown field %q (want one of %s)", ErrConfiguration, field, strings.Join(Fields(), ", "))
		}
	}
	return nil
}

// validThreshold reports whether t is a usable fuzzy threshold in [0,1].
func validThreshold(t float64) bool {
	return !math.IsNaN(t) && t >= 0 && t <= 1
}

func (c Criteria) fields() []string {
	fields := make([]string, 0, len(c))
	for f := range c {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Match returns the items for which at least one criterion is satisfied
// under mode. Multi-valued fields such as tags match when any value does.
// The result keeps the input order and holds each item at most once.
// threshold is only consulted in Fuzzy mode and must lie in [0,1]; the
// comparison is inclusive.
func Match(items []types.CatalogItem, criteria Criteria, mode Mode, threshold float64) ([]types.CatalogItem, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: unknown match mode %q (want exact, partial, or fuzzy)", ErrConfiguration, string(mode))
	}
	if mode == Fuzzy && !validThreshold(threshold) {
		return nil, fmt.Errorf("%w: fuzzy threshold must be within [0,1], got %v", ErrConfiguration, threshold)
	}
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	m := newMatcher(mode, threshold)
	fields := criteria.fields()

	matched := []types.CatalogItem{}
	for _, item := range items {
		if m.matchItem(item, criteria, fields) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

type matcher struct {
	mode      Mode
	threshold float64
	lower     cases.Caser
}

func newMatcher(mode Mode, threshold float64) *matcher {
	return &matcher{mode: mode, threshold: threshold, lower: cases.Lower(language.Und)}
}

func (m *matcher) matchItem(item types.CatalogItem, criteria Criteria, fields []string) bool {
	for _, field := range fields {
		values, _ := Values(item, field)
		target := criteria[field]
		for _, v := range values {
			if m.matchValue(v, target) {
				return true
			}
		}
	}
	return false
}

func (m *matcher) matchValue(value, target string) bool {
	switch m.mode {
	case Exact:
		return value == target
	case Partial:
		return strings.Contains(m.lower.String(value), m.lower.String(target))
	case Fuzzy:
		return Ratio(m.lower.String(value), m.lower.String(target)) >= m.threshold
	}
	return false
}
