// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package portal

import (
	"context"
	"net/url"
	"strconv"

	"github.com/pdiddy/catalog-search/pkg/types"
)

// Search runs query against the portal's item search and returns at most
// maxItems items in the portal's order. Unless outsideOrg is set the
// query is restricted to the caller's organization.
func (c *Client) Search(ctx context.Context, query string, maxItems int, outsideOrg bool) ([]types.CatalogItem, error) {
	if maxItems <= 0 {
		return nil, nil
	}

	q := query
	if !outsideOrg {
		org, err := c.orgScope(ctx)
		if err != nil {
			return nil, err
		}
		if org != "" {
			q += " orgid:" + org
		}
	}

	var items []types.CatalogItem
	for start := 1; start > 0; {
		params := url.Values{
			"q":     {q},
			"start": {strconv.Itoa(start)},
			"num":   {pageNum(len(items), maxItems)},
		}

		var page searchPage
		if err := c.getJSON(ctx, "/search", params, &page); err != nil {
			return nil, err
		}
		if len(page.Results) == 0 {
			break
		}
		for _, r := range page.Results {
			items = append(items, r.item())
		}
		start = nextPage(page.NextStart, len(items), maxItems)
	}

	if len(items) > maxItems {
		items = items[:maxItems]
	}
	return items, nil
}

// Portal search JSON structures.
type searchPage struct {
	Total     int          `json:"total"`
	Start     int          `json:"start"`
	Num       int          `json:"num"`
	NextStart int          `json:"nextStart"`
	Results   []searchItem `json:"results"`
}

type searchItem struct {
	ID          string   `json:"id"`
	Owner       string   `json:"owner"`
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Categories  []string `json:"categories"`
	Snippet     string   `json:"snippet"`
	NumViews    int      `json:"numViews"`
}

func (r searchItem) item() types.CatalogItem {
	return types.CatalogItem{
		ID:          r.ID,
		Owner:       r.Owner,
		Title:       r.Title,
		Type:        r.Type,
		Description: r.Description,
		Tags:        r.Tags,
		Categories:  r.Categories,
		Snippet:     r.Snippet,
		NumViews:    r.NumViews,
	}
}

type portalSelf struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
