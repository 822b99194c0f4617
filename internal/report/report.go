// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders match results for people and writes run records
// (YAML or SQLite) for downstream analysis. Nothing written here is read
// back by catalog-search.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/catalog-search/internal/catalog"
	"github.com/pdiddy/catalog-search/pkg/types"
)

// Report is the record of one fetch-and-match run.
type Report struct {
	Portal         string                         `json:"portal" yaml:"portal"`
	FilterMode     string                         `json:"filter_mode" yaml:"filter_mode"`
	FilterTypes    []string                       `json:"filter_types,omitempty" yaml:"filter_types,omitempty"`
	Criteria       map[string]string              `json:"criteria" yaml:"criteria"`
	MatchMode      string                         `json:"match_mode" yaml:"match_mode"`
	FuzzyThreshold float64                        `json:"fuzzy_threshold,omitempty" yaml:"fuzzy_threshold,omitempty"`
	Fetched        int                            `json:"fetched" yaml:"fetched"`
	Stats          catalog.Stats                  `json:"stats" yaml:"stats"`
	Warnings       []catalog.PartialResultWarning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Matches        []types.CatalogItem            `json:"matches" yaml:"matches"`
	Timestamp      time.Time                      `json:"timestamp" yaml:"timestamp"`
}

const (
	titleWidth = 50
	ownerWidth = 20
)

// FormatTable writes items as a Title/Owner/Type table to w.
func FormatTable(w io.Writer, items []types.CatalogItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No matches found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-*s  %-*s  %s\n", "#", titleWidth, "Title", ownerWidth, "Owner", "Type")
	fmt.Fprintln(w, strings.Repeat("-", 4+2+titleWidth+2+ownerWidth+2+24))

	for i, it := range items {
		fmt.Fprintf(w, "%-4d  %-*s  %-*s  %s\n",
			i+1, titleWidth, truncate(it.Title, titleWidth), ownerWidth, truncate(it.Owner, ownerWidth), it.Type)
	}

	fmt.Fprintf(w, "\n%d matches\n", len(items))
}

// FormatJSON writes items as indented JSON to w.
func FormatJSON(w io.Writer, items []types.CatalogItem) error {
	if items == nil {
		items = []types.CatalogItem{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// FormatWarnings writes one line per partial-result warning to w.
func FormatWarnings(w io.Writer, warnings []catalog.PartialResultWarning) {
	for _, pw := range warnings {
		fmt.Fprintf(w, "warning: %v\n", pw)
	}
}

// truncate shortens s to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
