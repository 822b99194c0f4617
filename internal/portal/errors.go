// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package portal

import "fmt"

// APIError is a failure reported by the portal, either as a non-200 HTTP
// status or as a JSON error envelope in a 200 response.
type APIError struct {
	Path    string
	Code    int
	Message string
	Details []string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("portal %s: error %d: %s", e.Path, e.Code, e.Message)
	for _, d := range e.Details {
		msg += "; " + d
	}
	return msg
}

// IsAuth reports whether the portal rejected the request's credentials.
func (e *APIError) IsAuth() bool {
	return e.Code == 498 || e.Code == 499 || e.Code == 401 || e.Code == 403
}

type errorEnvelope struct {
	Error *struct {
		Code    int      `json:"code"`
		Message string   `json:"message"`
		Details []string `json:"details"`
	} `json:"error"`
}
