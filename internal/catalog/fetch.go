// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog enumerates every item of interest in a portal catalog
// whose search endpoint caps each query at Cap results.
//
// The fetcher issues a base query and, only where a query comes back
// truncated, re-queries at finer granularity: once per user, then once per
// user and item type. Results are deduplicated by item ID and restricted
// to the requested type filter.
package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/catalog-search/internal/logger"
	"github.com/pdiddy/catalog-search/pkg/types"
)

const (
	// Cap is the most items the portal returns for a single query. A query
	// returning exactly Cap items is treated as truncated.
	Cap = 500

	// MaxUsers bounds the user listing used by the per-user fallback.
	MaxUsers = 10000
)

// Provider is the catalog search backend.
type Provider interface {
	// Search runs a portal query expression and returns at most maxItems
	// items. outsideOrg widens the scope beyond the caller's organization.
	Search(ctx context.Context, query string, maxItems int, outsideOrg bool) ([]types.CatalogItem, error)

	// ListUsers returns at most maxUsers portal accounts.
	ListUsers(ctx context.Context, maxUsers int) ([]types.PortalUser, error)
}

// Stats counts the work done by one fetch.
type Stats struct {
	BaseQueries     int `json:"base_queries" yaml:"base_queries"`
	UserQueries     int `json:"user_queries" yaml:"user_queries"`
	UserTypeQueries int `json:"user_type_queries" yaml:"user_type_queries"`
	UsersScanned    int `json:"users_scanned" yaml:"users_scanned"`

	// DuplicatesRemoved counts items dropped because their ID was seen earlier.
	DuplicatesRemoved int `json:"duplicates_removed" yaml:"duplicates_removed"`

	// ForeignTypesDropped counts items whose type was outside the filter.
	ForeignTypesDropped int `json:"foreign_types_dropped" yaml:"foreign_types_dropped"`
}

// Queries returns the total number of search queries issued.
func (s Stats) Queries() int {
	return s.BaseQueries + s.UserQueries + s.UserTypeQueries
}

// FetchResult is a deduplicated, ordered snapshot of catalog items. No two
// items share an ID and every item's type is in Filter.
type FetchResult struct {
	Items    []types.CatalogItem
	Filter   TypeFilter
	Warnings []PartialResultWarning
	Stats    Stats
}

// Fetcher runs the cascading catalog enumeration against a Provider.
type Fetcher struct {
	provider Provider
	metrics  *Metrics
}

// NewFetcher returns a Fetcher backed by p. metrics may be nil.
func NewFetcher(p Provider, metrics *Metrics) *Fetcher {
	return &Fetcher{provider: p, metrics: metrics}
}

// Fetch resolves mode and set into a TypeFilter and enumerates every
// matching item. See FetchFilter.
func (f *Fetcher) Fetch(ctx context.Context, mode FilterMode, set []string) (FetchResult, error) {
	filter, err := NewTypeFilter(mode, set)
	if err != nil {
		return FetchResult{}, err
	}
	return f.FetchFilter(ctx, filter)
}

// FetchFilter enumerates every item whose type is in filter.
//
// It fails with ErrConfiguration when filter is empty and with
// ErrEmptyResult when the base query matches nothing. Provider errors and
// context cancellation abort the fetch and are returned unchanged. A
// (user, type) combination that cannot be fully enumerated is reported in
// FetchResult.Warnings and its truncated batch is kept.
func (f *Fetcher) FetchFilter(ctx context.Context, filter TypeFilter) (FetchResult, error) {
	if filter.IsEmpty() {
		return FetchResult{}, fmt.Errorf("%w: unsatisfiable type filter (no known types selected)", ErrConfiguration)
	}

	log := logger.FromContext(ctx)
	res := FetchResult{Filter: filter}

	base, err := f.search(ctx, LevelBase, BaseQuery(filter))
	if err != nil {
		return FetchResult{}, err
	}
	res.Stats.BaseQueries++

	var acc []types.CatalogItem
	switch {
	case len(base) == 0:
		return FetchResult{}, fmt.Errorf("%w: base query for %d type(s)", ErrEmptyResult, filter.Len())
	case len(base) < Cap:
		acc = base
	default:
		log.Info("base query truncated, falling back to per-user queries",
			zap.Int("cap", Cap), zap.Int("types", filter.Len()))
		acc, err = f.fetchByUser(ctx, filter, &res)
		if err != nil {
			return FetchResult{}, err
		}
	}

	res.Items, res.Stats.DuplicatesRemoved, res.Stats.ForeignTypesDropped = cleanup(acc, filter)

	log.Info("catalog fetch complete",
		zap.Int("items", len(res.Items)),
		zap.Int("queries", res.Stats.Queries()),
		zap.Int("duplicates_removed", res.Stats.DuplicatesRemoved),
		zap.Int("foreign_types_dropped", res.Stats.ForeignTypesDropped),
		zap.Int("warnings", len(res.Warnings)))
	return res, nil
}

// fetchByUser rebuilds the result set one user at a time.
func (f *Fetcher) fetchByUser(ctx context.Context, filter TypeFilter, res *FetchResult) ([]types.CatalogItem, error) {
	log := logger.FromContext(ctx)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	users, err := f.provider.ListUsers(ctx, MaxUsers)
	if err != nil {
		return nil, err
	}

	var acc []types.CatalogItem
	for _, u := range users {
		if u.StorageUsage == 0 {
			continue
		}
		res.Stats.UsersScanned++

		batch, err := f.search(ctx, LevelUser, UserQuery(filter, u.Username))
		if err != nil {
			return nil, err
		}
		res.Stats.UserQueries++

		switch {
		case len(batch) == 0:
			log.Debug("user has no matching items", zap.String("user", u.Username))
		case len(batch) < Cap:
			acc = append(acc, batch...)
		default:
			log.Info("user query truncated, falling back to per-type queries",
				zap.String("user", u.Username))
			acc, err = f.fetchByUserType(ctx, filter, u.Username, acc, res)
			if err != nil {
				return nil, err
			}
		}
	}
	return acc, nil
}

// fetchByUserType queries each filtered type for a single user and appends
// the batches to acc.
func (f *Fetcher) fetchByUserType(ctx context.Context, filter TypeFilter, user string, acc []types.CatalogItem, res *FetchResult) ([]types.CatalogItem, error) {
	log := logger.FromContext(ctx)

	for _, t := range filter.types {
		batch, err := f.search(ctx, LevelUserType, UserTypeQuery(t, user))
		if err != nil {
			return nil, err
		}
		res.Stats.UserTypeQueries++

		if len(batch) >= Cap {
			w := PartialResultWarning{User: user, Type: t}
			res.Warnings = append(res.Warnings, w)
			f.metrics.observePartial()
			log.Warn("partial result", zap.String("user", user), zap.String("type", t), zap.Error(w))
		}
		acc = append(acc, batch...)
	}
	return acc, nil
}

func (f *Fetcher) search(ctx context.Context, level, query string) ([]types.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := f.provider.Search(ctx, query, Cap, false)
	if err != nil {
		return nil, err
	}
	f.metrics.observeQuery(level, len(items))
	return items, nil
}

// cleanup keeps the first occurrence of each ID and drops items whose type
// is outside filter. It returns the kept items and the counts of removed
// duplicates and foreign types.
func cleanup(items []types.CatalogItem, filter TypeFilter) ([]types.CatalogItem, int, int) {
	seen := make(map[string]struct{}, len(items))
	kept := make([]types.CatalogItem, 0, len(items))
	dups, foreign := 0, 0

	for _, it := range items {
		if _, ok := seen[it.ID]; ok {
			dups++
			continue
		}
		seen[it.ID] = struct{}{}
		if !filter.Contains(it.Type) {
			foreign++
			continue
		}
		kept = append(kept, it)
	}
	return kept, dups, foreign
}
