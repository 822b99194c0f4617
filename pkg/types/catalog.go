// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for catalog-search.
// CatalogItem and PortalUser are produced by catalog providers and read by
// the matcher, the reports, and the CLI.
package types

// CatalogItem is a read-only snapshot of one portal content item. Two items
// with the same ID are the same entity.
type CatalogItem struct {
	// ID is the portal's opaque item identifier.
	ID string `json:"id" yaml:"id"`

	Owner string `json:"owner" yaml:"owner"`
	Title string `json:"title" yaml:"title"`

	// Type is one of the portal item type names (e.g. "Web Map").
	Type string `json:"type" yaml:"type"`

	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags" yaml:"tags"`
	Categories  []string `json:"categories" yaml:"categories"`
	Snippet     string   `json:"snippet" yaml:"snippet"`
	NumViews    int      `json:"num_views" yaml:"num_views"`
}

// PortalUser is a portal account as returned by a user listing.
type PortalUser struct {
	Username string `json:"username" yaml:"username"`

	// StorageUsage is the number of bytes the user's content occupies.
	// Users with zero usage own no items and are skipped by the fetcher.
	StorageUsage int64 `json:"storage_usage" yaml:"storage_usage"`
}
