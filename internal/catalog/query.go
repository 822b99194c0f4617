// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"strings"
)

// ReservedOwnerPrefix is the owner-name prefix of accounts the portal
// vendor reserves for its own content. The base query excludes them.
const ReservedOwnerPrefix = "esri"

// TypeClause renders the filter as `type:("A" OR "B" ...)`.
func TypeClause(f TypeFilter) string {
	return `type:("` + strings.Join(f.types, `" OR "`) + `")`
}

// BaseQuery matches every filtered type not owned by a reserved account.
func BaseQuery(f TypeFilter) string {
	return TypeClause(f) + " NOT owner:" + ReservedOwnerPrefix + "*"
}

// UserQuery matches every filtered type owned by user.
func UserQuery(f TypeFilter, user string) string {
	return TypeClause(f) + " owner:" + user
}

// UserTypeQuery matches a single type owned by user.
func UserTypeQuery(itemType, user string) string {
	return `type:"` + itemType + `" AND owner:` + user
}
