// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/catalog-search/internal/httputil"
	"github.com/pdiddy/catalog-search/internal/logger"
	"github.com/pdiddy/catalog-search/pkg/types"
)

// --- mock portal ---

// mockPortal serves a fixed set of items and users with sharing API paging.
type mockPortal struct {
	mu       sync.Mutex
	orgID    string
	items    []searchItem
	users    []portalUser
	queries  []string
	selfHits int
	token    string

	// selfFailures is how many portals/self lookups fail before one succeeds.
	selfFailures int
}

func (m *mockPortal) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/portal/sharing/rest/portals/self", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.selfHits++
		fail := m.selfFailures > 0
		if fail {
			m.selfFailures--
		}
		m.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(t, w, portalSelf{ID: m.orgID, Name: "Test Org"})
	})

	mux.HandleFunc("/portal/sharing/rest/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("f"))
		assert.Empty(t, r.URL.Query().Get("token"))
		if m.token != "" {
			assert.Equal(t, "Bearer "+m.token, r.Header.Get(authHeader))
		}
		m.mu.Lock()
		m.queries = append(m.queries, r.URL.Query().Get("q"))
		m.mu.Unlock()

		start, num := paging(t, r)
		results, next := window(len(m.items), start, num)
		writeJSON(t, w, searchPage{
			Total:     len(m.items),
			Start:     start,
			Num:       num,
			NextStart: next,
			Results:   m.items[results[0]:results[1]],
		})
	})

	mux.HandleFunc("/portal/sharing/rest/portals/self/users", func(w http.ResponseWriter, r *http.Request) {
		start, num := paging(t, r)
		results, next := window(len(m.users), start, num)
		writeJSON(t, w, usersPage{
			Total:     len(m.users),
			NextStart: next,
			Users:     m.users[results[0]:results[1]],
		})
	})

	return mux
}

func paging(t *testing.T, r *http.Request) (int, int) {
	start, err := strconv.Atoi(r.URL.Query().Get("start"))
	require.NoError(t, err)
	num, err := strconv.Atoi(r.URL.Query().Get("num"))
	require.NoError(t, err)
	assert.LessOrEqual(t, num, pageSize)
	return start, num
}

// window returns the [lo,hi) slice bounds for a 1-based page and the
// portal's nextStart value (-1 on the last page).
func window(total, start, num int) ([2]int, int) {
	lo := start - 1
	if lo > total {
		lo = total
	}
	hi := lo + num
	if hi > total {
		hi = total
	}
	next := -1
	if hi < total {
		next = hi + 1
	}
	return [2]int{lo, hi}, next
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func newTestClient(t *testing.T, m *mockPortal) *Client {
	t.Helper()
	ts := httptest.NewServer(m.handler(t))
	t.Cleanup(ts.Close)

	c, err := New(types.PortalConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test/0.1"},
		URL:        ts.URL + "/portal/",
		Token:      m.token,
	}, ts.Client())
	require.NoError(t, err)
	return c
}

func makeSearchItems(n int) []searchItem {
	items := make([]searchItem, n)
	for i := range items {
		items[i] = searchItem{
			ID:       fmt.Sprintf("item%03d", i),
			Owner:    "alice",
			Title:    fmt.Sprintf("Item %d", i),
			Type:     "Web Map",
			Tags:     []string{"tag"},
			NumViews: i,
		}
	}
	return items
}

// --- New ---

func TestNewRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "/relative/path"} {
		_, err := New(types.PortalConfig{URL: raw}, nil)
		assert.Error(t, err, raw)
	}
}

// --- Search ---

func TestSearchPagesUntilMaxItems(t *testing.T) {
	m := &mockPortal{orgID: "ORG1", items: makeSearchItems(250), token: "tok"}
	c := newTestClient(t, m)

	items, err := c.Search(context.Background(), `type:"Web Map"`, 230, false)
	require.NoError(t, err)

	require.Len(t, items, 230)
	assert.Equal(t, "item000", items[0].ID)
	assert.Equal(t, "item229", items[229].ID)
	assert.Equal(t, 229, items[229].NumViews)
	assert.Equal(t, []string{"tag"}, items[0].Tags)
	assert.Len(t, m.queries, 3, "pages of 100, 100, 30")
	for _, q := range m.queries {
		assert.Equal(t, `type:"Web Map" orgid:ORG1`, q)
	}
}

func TestSearchStopsAtLastPage(t *testing.T) {
	m := &mockPortal{items: makeSearchItems(120)}
	c := newTestClient(t, m)

	items, err := c.Search(context.Background(), "q", 500, true)
	require.NoError(t, err)
	assert.Len(t, items, 120)
	assert.Len(t, m.queries, 2)
	assert.Zero(t, m.selfHits, "outside-org searches skip org lookup")
	assert.Equal(t, "q", m.queries[0])
}

func TestSearchResolvesOrgOnce(t *testing.T) {
	m := &mockPortal{orgID: "ORG1", items: makeSearchItems(3)}
	c := newTestClient(t, m)

	for i := 0; i < 3; i++ {
		_, err := c.Search(context.Background(), "q", 10, false)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, m.selfHits)
}

func TestSearchRetriesFailedOrgLookup(t *testing.T) {
	m := &mockPortal{orgID: "ORG1", items: makeSearchItems(3), selfFailures: 1}
	c := newTestClient(t, m)

	_, err := c.Search(context.Background(), "q", 10, false)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Code)

	for i := 0; i < 2; i++ {
		items, err := c.Search(context.Background(), "q", 10, false)
		require.NoError(t, err)
		assert.Len(t, items, 3)
	}
	assert.Equal(t, 2, m.selfHits, "lookup retried once after failure, then cached")
	assert.Equal(t, []string{"q orgid:ORG1", "q orgid:ORG1"}, m.queries)
}

func TestSearchEmptyResult(t *testing.T) {
	c := newTestClient(t, &mockPortal{})
	items, err := c.Search(context.Background(), "q", 500, true)
	require.NoError(t, err)
	assert.Empty(t, items)
}

// --- ListUsers ---

func TestListUsers(t *testing.T) {
	m := &mockPortal{}
	for i := 0; i < 150; i++ {
		m.users = append(m.users, portalUser{Username: fmt.Sprintf("user%d", i), StorageUsage: int64(i)})
	}
	c := newTestClient(t, m)

	users, err := c.ListUsers(context.Background(), 10000)
	require.NoError(t, err)
	require.Len(t, users, 150)
	assert.Equal(t, types.PortalUser{Username: "user149", StorageUsage: 149}, users[149])

	users, err = c.ListUsers(context.Background(), 120)
	require.NoError(t, err)
	assert.Len(t, users, 120)
}

// --- errors ---

func TestPortalErrors(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantCode int
		wantAuth bool
	}{
		{
			name: "error envelope in 200 response",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"error":{"code":498,"message":"Invalid token.","details":[]}}`)
			},
			wantCode: 498,
			wantAuth: true,
		},
		{
			name: "http status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantCode: http.StatusBadGateway,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()
			c, err := New(types.PortalConfig{URL: ts.URL}, ts.Client())
			require.NoError(t, err)

			_, err = c.Search(context.Background(), "q", 10, true)
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr), "got %v", err)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantAuth, apiErr.IsAuth())

			_, err = c.ListUsers(context.Background(), 10)
			assert.True(t, errors.As(err, &apiErr))
		})
	}
}

func TestSearchMalformedJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"results": [`)
	}))
	defer ts.Close()
	c, err := New(types.PortalConfig{URL: ts.URL}, ts.Client())
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "q", 10, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing portal response")
}

func TestSearchOrgLookupFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()
	c, err := New(types.PortalConfig{URL: ts.URL}, ts.Client())
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "q", 10, false)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "/portals/self", apiErr.Path)
}

// --- credentials ---

func TestTokenKeptOutOfErrorsAndLogs(t *testing.T) {
	const secret = "SUPERSECRET"

	t.Run("transport error", func(t *testing.T) {
		release := make(chan struct{})
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer ts.Close()
		defer close(release)

		c, err := New(types.PortalConfig{URL: ts.URL, Token: secret}, &http.Client{Timeout: 50 * time.Millisecond})
		require.NoError(t, err)

		_, err = c.Search(context.Background(), "q", 10, true)
		require.Error(t, err)
		assert.NotContains(t, err.Error(), secret)
	})

	t.Run("rate limit log", func(t *testing.T) {
		old := httputil.RetryBaseDelay
		httputil.RetryBaseDelay = time.Millisecond
		t.Cleanup(func() { httputil.RetryBaseDelay = old })

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer "+secret, r.Header.Get(authHeader))
			assert.NotContains(t, r.URL.RawQuery, secret)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer ts.Close()

		c, err := New(types.PortalConfig{URL: ts.URL, Token: secret, RateLimitRetries: 2}, ts.Client())
		require.NoError(t, err)

		core, logs := observer.New(zapcore.WarnLevel)
		ctx := logger.ContextWithLogger(context.Background(), zap.New(core))

		_, err = c.Search(ctx, "q", 10, true)
		require.Error(t, err)
		assert.NotContains(t, err.Error(), secret)

		require.Equal(t, 2, logs.Len())
		for _, entry := range logs.All() {
			assert.NotContains(t, entry.Message, secret)
			for k, v := range entry.ContextMap() {
				assert.NotContains(t, fmt.Sprint(v), secret, "log field %s", k)
			}
		}
	})
}
