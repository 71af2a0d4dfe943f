package landing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iapss/iapss-backend/internal/platform/httpx"
)

func TestNewsAPIClientTopHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/top-headlines", r.URL.Path)
		assert.Equal(t, "in", r.URL.Query().Get("country"))
		assert.Equal(t, "technology", r.URL.Query().Get("category"))
		assert.Equal(t, "8", r.URL.Query().Get("pageSize"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","articles":[
			{"source":{"name":"Wire"},"title":"Go 2","url":"https://x/1","publishedAt":"2025-01-01T10:00:00Z"},
			{"source":{"name":""},"title":"No source","url":"https://x/2","publishedAt":"2025-01-01T11:00:00Z"},
			{"source":{"name":"Wire"},"title":"","url":"https://x/3"}
		]}`))
	}))
	defer srv.Close()

	c := NewNewsAPIClient("secret", WithBaseURL(srv.URL), WithTimeout(time.Second))
	items, err := c.TopHeadlines(context.Background(), "IN")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Wire", items[0].Source)
	assert.Equal(t, "Unknown", items[1].Source)
	assert.Equal(t, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), items[0].PublishedAt.UTC())
}

func TestNewsAPIClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"status":"error","code":"rateLimited"}`))
	}))
	defer srv.Close()

	_, err := NewNewsAPIClient("k", WithBaseURL(srv.URL)).TopHeadlines(context.Background(), "US")
	require.Error(t, err)
	assert.True(t, httpx.IsRateLimited(err))
}

func TestKontestsClientFiltersAndLimits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/all", r.URL.Path)
		body := `[
			{"name":"Round 1","url":"https://cf/1","start_time":"2025-02-01T14:35:00.000Z","end_time":"2025-02-01T16:35:00.000Z","duration":"7200.0","site":"CodeForces","status":"BEFORE"},
			{"name":"Other","url":"https://o/1","start_time":"2025-02-01T14:35:00.000Z","end_time":"2025-02-01T16:35:00.000Z","duration":"60","site":"Somewhere","status":"BEFORE"},
			{"name":"ABC","url":"https://ac/1","start_time":"2025-02-02 12:00:00 UTC","end_time":"2025-02-02 13:40:00 UTC","duration":6000,"site":"AtCoder","status":"CODING"}`
		for i := 0; i < 20; i++ {
			body += `,{"name":"Weekly","url":"https://lc/1","start_time":"2025-02-03T02:30:00Z","end_time":"2025-02-03T04:00:00Z","duration":"5400","site":"LeetCode","status":"BEFORE"}`
		}
		body += "]"
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	items, err := NewKontestsClient(WithBaseURL(srv.URL)).Upcoming(context.Background())
	require.NoError(t, err)
	require.Len(t, items, contestLimit)

	assert.Equal(t, "CodeForces", items[0].Site)
	assert.Equal(t, "7200.0", items[0].Duration)
	assert.Equal(t, time.Date(2025, 2, 1, 14, 35, 0, 0, time.UTC), items[0].StartTime)

	assert.Equal(t, "AtCoder", items[1].Site)
	assert.Equal(t, "6000", items[1].Duration)
	assert.Equal(t, time.Date(2025, 2, 2, 12, 0, 0, 0, time.UTC), items[1].StartTime)
	for _, it := range items {
		assert.NotEqual(t, "Somewhere", it.Site)
	}
}

func TestKontestsClientTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewKontestsClient(WithBaseURL(srv.URL)).Upcoming(context.Background())
	assert.Error(t, err)
}

func TestSourceOptionsTimeoutIsOrderIndependent(t *testing.T) {
	shared := &http.Client{}

	o := newOptions(DefaultNewsAPIURL, []Option{WithTimeout(3 * time.Second), WithHTTPClient(shared)})
	assert.Equal(t, 3*time.Second, o.httpClient.Timeout)
	assert.NotSame(t, shared, o.httpClient)

	o = newOptions(DefaultNewsAPIURL, []Option{WithHTTPClient(shared), WithTimeout(3 * time.Second)})
	assert.Equal(t, 3*time.Second, o.httpClient.Timeout)
	assert.Zero(t, shared.Timeout, "shared client must not be modified")

	o = newOptions(DefaultNewsAPIURL, []Option{WithHTTPClient(shared)})
	assert.Same(t, shared, o.httpClient)

	o = newOptions(DefaultNewsAPIURL, nil)
	assert.Equal(t, defaultSourceTimeout, o.httpClient.Timeout)
}
