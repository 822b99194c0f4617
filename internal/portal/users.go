// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package portal

import (
	"context"
	"net/url"
	"strconv"

	"github.com/pdiddy/catalog-search/pkg/types"
)

// ListUsers returns at most maxUsers accounts of the caller's portal.
func (c *Client) ListUsers(ctx context.Context, maxUsers int) ([]types.PortalUser, error) {
	if maxUsers <= 0 {
		return nil, nil
	}

	var users []types.PortalUser
	for start := 1; start > 0; {
		params := url.Values{
			"start": {strconv.Itoa(start)},
			"num":   {pageNum(len(users), maxUsers)},
		}

		var page usersPage
		if err := c.getJSON(ctx, "/portals/self/users", params, &page); err != nil {
			return nil, err
		}
		if len(page.Users) == 0 {
			break
		}
		for _, u := range page.Users {
			users = append(users, types.PortalUser{Username: u.Username, StorageUsage: u.StorageUsage})
		}
		start = nextPage(page.NextStart, len(users), maxUsers)
	}

	if len(users) > maxUsers {
		users = users[:maxUsers]
	}
	return users, nil
}

type usersPage struct {
	Total     int          `json:"total"`
	NextStart int          `json:"nextStart"`
	Users     []portalUser `json:"users"`
}

type portalUser struct {
	Username     string `json:"username"`
	FullName     string `json:"fullName"`
	StorageUsage int64  `json:"storageUsage"`
}
