// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"math"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/catalog-search/internal/catalog"
	"github.com/pdiddy/catalog-search/internal/match"
	"github.com/pdiddy/catalog-search/internal/portal"
)

func newSearchFlagsCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "search"}
	addSearchFlags(cmd.Flags())
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestParseCriteria(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    match.Criteria
		wantErr string
	}{
		{"none", nil, match.Criteria{}, ""},
		{"single", []string{"title=Web Map"}, match.Criteria{"title": "Web Map"}, ""},
		{"value with equals", []string{"description=a=b"}, match.Criteria{"description": "a=b"}, ""},
		{"empty value", []string{"snippet="}, match.Criteria{"snippet": ""}, ""},
		{"multiple fields", []string{"title=Map", "owner=alice"}, match.Criteria{"title": "Map", "owner": "alice"}, ""},
		{"missing equals", []string{"title"}, nil, "want field=value"},
		{"missing name", []string{"=x"}, nil, "want field=value"},
		{"duplicate field", []string{"title=a", "title=b"}, nil, "given twice"},
		{"unknown field", []string{"colour=red"}, nil, "unknown field"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCriteria(tt.pairs)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearchParamsFromFlags(t *testing.T) {
	cmd := newSearchFlagsCmd(t,
		"--filter-mode", "include",
		"--types", "Web Map,CSV",
		"--field", "title=map",
		"--field", "owner=alice",
	)

	p, err := searchParamsFromFlags(cmd, "2", 0.8)
	require.NoError(t, err)
	assert.Equal(t, catalog.FilterInclude, p.filterMode)
	assert.Equal(t, []string{"Web Map", "CSV"}, p.types)
	assert.Equal(t, match.Criteria{"title": "map", "owner": "alice"}, p.criteria)
	assert.Equal(t, match.Partial, p.mode)
}

func TestSearchParamsFromFlagsErrors(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		mode      string
		threshold float64
		wantErr   string
	}{
		{"bad filter mode", []string{"--filter-mode", "some"}, "exact", 0.8, "unknown filter mode"},
		{"types without mode", []string{"--types", "CSV"}, "exact", 0.8, "--types requires"},
		{"bad match mode", nil, "regex", 0.8, "unknown match mode"},
		{"fuzzy threshold range", nil, "fuzzy", 1.5, "fuzzy threshold"},
		{"fuzzy threshold not a number", nil, "fuzzy", math.NaN(), "fuzzy threshold"},
		{"bad field", []string{"--field", "nope=1"}, "exact", 0.8, "unknown field"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newSearchFlagsCmd(t, tt.args...)
			_, err := searchParamsFromFlags(cmd, tt.mode, tt.threshold)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFuzzyOnly(t *testing.T) {
	assert.Equal(t, 0.7, fuzzyOnly(match.Fuzzy, 0.7))
	assert.Zero(t, fuzzyOnly(match.Exact, 0.7))
}

func TestFetchError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHint bool
	}{
		{"invalid token", &portal.APIError{Path: "/search", Code: 498, Message: "Invalid token."}, true},
		{"forbidden", &portal.APIError{Path: "/portals/self", Code: 403, Message: "Forbidden"}, true},
		{"server error", &portal.APIError{Path: "/search", Code: 500, Message: "Internal Server Error"}, false},
		{"empty result", catalog.ErrEmptyResult, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fetchError(tt.err)
			assert.ErrorIs(t, err, tt.err)
			assert.Contains(t, err.Error(), "fetching catalog")
			if tt.wantHint {
				assert.Contains(t, err.Error(), "check --token")
			} else {
				assert.NotContains(t, err.Error(), "check --token")
			}
		})
	}
}
