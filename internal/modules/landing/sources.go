package landing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	types "github.com/iapss/iapss-backend/internal/domain"
	"github.com/iapss/iapss-backend/internal/platform/httpx"
)

const (
	DefaultNewsAPIURL     = "https://newsapi.org"
	DefaultContestsAPIURL = "https://kontests.net"

	newsPageSize = 8
	newsQuery    = `programming OR coding OR "competitive programming" OR ICPC`
	contestLimit = 15
)

// NewsSource fetches live headlines for a country.
type NewsSource interface {
	TopHeadlines(ctx context.Context, country string) ([]types.NewsItem, error)
}

// ContestSource fetches live contests.
type ContestSource interface {
	Upcoming(ctx context.Context) ([]types.ContestItem, error)
}

const defaultSourceTimeout = 8 * time.Second

type clientOptions struct {
	httpClient *http.Client
	baseURL    string
	// timeout is zero unless WithTimeout was given.
	timeout time.Duration
}

// Option configures a source client.
type Option func(*clientOptions)

// WithBaseURL overrides the API host (tests, proxies).
func WithBaseURL(u string) Option {
	return func(o *clientOptions) {
		o.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout bounds each request. It applies to a copy of the client, so a shared
// client passed through WithHTTPClient is never modified.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithHTTPClient replaces the default client. Its own Timeout is kept unless WithTimeout is also given.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		if c != nil {
			o.httpClient = c
		}
	}
}

func newOptions(baseURL string, opts []Option) clientOptions {
	o := clientOptions{baseURL: baseURL}
	for _, opt := range opts {
		opt(&o)
	}
	switch {
	case o.httpClient == nil:
		timeout := defaultSourceTimeout
		if o.timeout > 0 {
			timeout = o.timeout
		}
		o.httpClient = &http.Client{Timeout: timeout}
	case o.timeout > 0:
		c := *o.httpClient
		c.Timeout = o.timeout
		o.httpClient = &c
	}
	return o
}

func getJSON(ctx context.Context, client *http.Client, service, endpoint string, header http.Header, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s fetch: %w", service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &httpx.StatusError{Service: service, StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%s decode: %w", service, err)
	}
	return nil
}

// NewsAPIClient reads technology headlines from newsapi.org.
type NewsAPIClient struct {
	apiKey string
	opts   clientOptions
}

func NewNewsAPIClient(apiKey string, opts ...Option) *NewsAPIClient {
	return &NewsAPIClient{apiKey: apiKey, opts: newOptions(DefaultNewsAPIURL, opts)}
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

func (c *NewsAPIClient) TopHeadlines(ctx context.Context, country string) ([]types.NewsItem, error) {
	q := url.Values{}
	q.Set("country", strings.ToLower(country))
	q.Set("category", "technology")
	q.Set("pageSize", strconv.Itoa(newsPageSize))
	q.Set("q", newsQuery)
	endpoint := c.opts.baseURL + "/v2/top-headlines?" + q.Encode()

	header := http.Header{}
	header.Set("X-Api-Key", c.apiKey)

	var out newsAPIResponse
	if err := getJSON(ctx, c.opts.httpClient, "newsapi", endpoint, header, &out); err != nil {
		return nil, err
	}
	if out.Status != "" && out.Status != "ok" {
		return nil, fmt.Errorf("newsapi %s: %s", out.Code, out.Message)
	}

	items := make([]types.NewsItem, 0, len(out.Articles))
	for _, a := range out.Articles {
		if strings.TrimSpace(a.Title) == "" || strings.TrimSpace(a.URL) == "" {
			continue
		}
		source := a.Source.Name
		if source == "" {
			source = "Unknown"
		}
		items = append(items, types.NewsItem{Title: a.Title, URL: a.URL, Source: source, PublishedAt: a.PublishedAt})
	}
	return items, nil
}

// relevantSites are the judges shown on the landing page.
var relevantSites = map[string]bool{
	"CodeForces":      true,
	"CodeForces::Gym": true,
	"AtCoder":         true,
	"CodeChef":        true,
	"LeetCode":        true,
	"HackerRank":      true,
	"HackerEarth":     true,
	"Kick Start":      true,
	"TopCoder":        true,
	"CS Academy":      true,
}

// KontestsClient reads the public contest calendar from kontests.net.
type KontestsClient struct {
	opts clientOptions
}

func NewKontestsClient(opts ...Option) *KontestsClient {
	return &KontestsClient{opts: newOptions(DefaultContestsAPIURL, opts)}
}

type kontest struct {
	Name      string          `json:"name"`
	URL       string          `json:"url"`
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
	Duration  json.RawMessage `json:"duration"`
	Site      string          `json:"site"`
	Status    string          `json:"status"`
}

func (c *KontestsClient) Upcoming(ctx context.Context) ([]types.ContestItem, error) {
	var raw []kontest
	if err := getJSON(ctx, c.opts.httpClient, "kontests", c.opts.baseURL+"/api/v1/all", nil, &raw); err != nil {
		return nil, err
	}

	items := make([]types.ContestItem, 0, contestLimit)
	for _, k := range raw {
		if !relevantSites[k.Site] {
			continue
		}
		items = append(items, types.ContestItem{
			Name:      k.Name,
			Site:      k.Site,
			URL:       k.URL,
			StartTime: parseContestTime(k.StartTime),
			EndTime:   parseContestTime(k.EndTime),
			Duration:  rawString(k.Duration),
			Status:    k.Status,
		})
		if len(items) == contestLimit {
			break
		}
	}
	return items, nil
}

var contestTimeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05 MST", "2006-01-02 15:04:05"}

func parseContestTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range contestTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// rawString accepts a JSON string or number.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
