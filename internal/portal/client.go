// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package portal implements catalog.Provider against the ArcGIS sharing
// REST API. It pages through search and user listings, which the portal
// serves at most pageSize records at a time.
package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/pdiddy/catalog-search/internal/catalog"
	"github.com/pdiddy/catalog-search/internal/httputil"
	"github.com/pdiddy/catalog-search/pkg/types"
)

var _ catalog.Provider = (*Client)(nil)

// pageSize is the largest page the sharing API returns.
const pageSize = 100

// Client talks to one portal. The organization ID is resolved on first use
// and cached once a lookup succeeds; a failed lookup is retried by the next
// call.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	agent   string
	retries int

	orgMu       sync.Mutex
	orgID       string
	orgResolved bool
}

// New returns a Client for cfg. A nil httpClient gets one with cfg.Timeout.
func New(cfg types.PortalConfig, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid portal url %q", cfg.URL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.URL, "/") + "/sharing/rest",
		token:   cfg.Token,
		agent:   cfg.UserAgent,
		retries: cfg.RateLimitRetries,
	}, nil
}

// authHeader carries the access token so it never appears in request URLs.
const authHeader = "X-Esri-Authorization"

// getJSON performs a GET against path with params and decodes the body
// into v. Portal error envelopes become *APIError.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	params.Set("f", "json")
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.agent != "" {
		req.Header.Set("User-Agent", c.agent)
	}
	if c.token != "" {
		req.Header.Set(authHeader, "Bearer "+c.token)
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.retries)
	if err != nil {
		return fmt.Errorf("portal request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading portal response %s: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{Path: path, Code: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		return &APIError{Path: path, Code: env.Error.Code, Message: env.Error.Message, Details: env.Error.Details}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing portal response %s: %w", path, err)
	}
	return nil
}

// orgScope returns the organization ID used to keep searches inside the
// caller's organization.
func (c *Client) orgScope(ctx context.Context) (string, error) {
	c.orgMu.Lock()
	defer c.orgMu.Unlock()

	if c.orgResolved {
		return c.orgID, nil
	}
	var self portalSelf
	if err := c.getJSON(ctx, "/portals/self", url.Values{}, &self); err != nil {
		return "", err
	}
	c.orgID, c.orgResolved = self.ID, true
	return c.orgID, nil
}

// nextPage returns the 1-based start of the next page, or 0 when done.
func nextPage(next, got, want int) int {
	if next <= 0 || got >= want {
		return 0
	}
	return next
}

func pageNum(got, want int) string {
	n := want - got
	if n > pageSize {
		n = pageSize
	}
	return strconv.Itoa(n)
}
