// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the fetcher. Callers compare with errors.Is.
var (
	// ErrConfiguration reports an invalid filter mode or an unsatisfiable
	// type filter. It is a caller error and never worth retrying.
	ErrConfiguration = errors.New("catalog: invalid configuration")

	// ErrEmptyResult reports that the base query matched nothing, which
	// usually means a misconfigured filter or credential scope.
	ErrEmptyResult = errors.New("catalog: no items returned")
)

// PartialResultWarning reports a (user, type) combination that still hit
// the per-query cap at the finest query granularity. The fetch succeeds and
// keeps the truncated batch, so the result may undercount that combination.
type PartialResultWarning struct {
	User string `json:"user" yaml:"user"`
	Type string `json:"type" yaml:"type"`
}

func (w PartialResultWarning) Error() string {
	return fmt.Sprintf("user %s has at least %d items of type %q; only the first %d were retrieved", w.User, Cap, w.Type, Cap)
}
