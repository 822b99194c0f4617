// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"strconv"

	"github.com/pdiddy/catalog-search/pkg/types"
)

// accessor returns a field's values as an ordered list of strings. Scalar
// fields yield a single-element list.
type accessor func(types.CatalogItem) []string

func scalar(s string) []string { return []string{s} }

// accessors is the closed set of searchable fields.
var accessors = map[string]accessor{
	"id":          func(it types.CatalogItem) []string { return scalar(it.ID) },
	"owner":       func(it types.CatalogItem) []string { return scalar(it.Owner) },
	"title":       func(it types.CatalogItem) []string { return scalar(it.Title) },
	"type":        func(it types.CatalogItem) []string { return scalar(it.Type) },
	"description": func(it types.CatalogItem) []string { return scalar(it.Description) },
	"tags":        func(it types.CatalogItem) []string { return it.Tags },
	"snippet":     func(it types.CatalogItem) []string { return scalar(it.Snippet) },
	"categories":  func(it types.CatalogItem) []string { return it.Categories },
	"numViews":    func(it types.CatalogItem) []string { return scalar(strconv.Itoa(it.NumViews)) },
}

// fieldOrder is the display order used by Fields.
var fieldOrder = []string{
	"owner", "title", "type", "description", "tags", "snippet", "categories", "numViews", "id",
}

// Fields returns the searchable field names.
func Fields() []string {
	return append([]string(nil), fieldOrder...)
}

// IsField reports whether name is a searchable field.
func IsField(name string) bool {
	_, ok := accessors[name]
	return ok
}

// Values returns the values of field name on item, or false when name is
// not a searchable field.
func Values(item types.CatalogItem, name string) ([]string, bool) {
	get, ok := accessors[name]
	if !ok {
		return nil, false
	}
	return get(item), true
}
