// Package catalog is the client for the remote skill catalog search API.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/jingkaihe/skillhub/pkg/logger"
	skilltypes "github.com/jingkaihe/skillhub/pkg/types/skills"
	"github.com/jingkaihe/skillhub/pkg/version"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultBaseURL is the public catalog search API
	DefaultBaseURL = "https://skillsmp.com/api/v1/skills"
	// DefaultLimit is the page size used when a query leaves it unset
	DefaultLimit = 50
	// DefaultSortBy orders results by popularity
	DefaultSortBy = "stars"
	// DefaultPopularLimit is the page size used for the popular listing
	DefaultPopularLimit = 100

	maxResponseBytes = 10 << 20
)

var (
	// ErrInvalidURL is returned when the configured base URL cannot be used
	ErrInvalidURL = errors.New("invalid catalog URL")
	// ErrInvalidResponse is returned for non-200 statuses and malformed bodies
	ErrInvalidResponse = errors.New("invalid response from catalog API")

	// DefaultPopularQueries are the queries merged into the popular listing
	DefaultPopularQueries = []string{"ai"}
)

// Query describes one search request
type Query struct {
	Q      string
	Page   int
	Limit  int
	SortBy string
}

func (q Query) withDefaults() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = DefaultSortBy
	}
	return q
}

// Client searches the remote catalog. It caches the popular listing after
// the first successful fetch until ClearCache is called.
type Client struct {
	baseURL        string
	apiKey         string
	httpClient     *http.Client
	retry          RetryConfig
	popularQueries []string
	popularLimit   int

	popularFlight singleflight.Group

	mu         sync.Mutex
	cached     []skilltypes.SkillRecord
	hasFetched bool
	generation uint64
}

// Option is a function that configures a Client
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithRetryConfig opts in to retrying transport errors and 429/5xx
func WithRetryConfig(r RetryConfig) Option {
	return func(cl *Client) {
		cl.retry = r.withDefaults()
	}
}

// WithPopularQueries sets the queries merged into the popular listing
func WithPopularQueries(limit int, queries ...string) Option {
	return func(cl *Client) {
		if limit > 0 {
			cl.popularLimit = limit
		}
		if len(queries) > 0 {
			cl.popularQueries = queries
		}
	}
}

// NewClient creates a catalog client for baseURL authenticated with apiKey
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:        baseURL,
		apiKey:         apiKey,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		retry:          DefaultRetryConfig,
		popularQueries: DefaultPopularQueries,
		popularLimit:   DefaultPopularLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Success bool        `json:"success"`
	Data    *searchData `json:"data"`
}

type searchData struct {
	Skills []remoteSkill `json:"skills"`
}

type remoteSkill struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Stars       *int64  `json:"stars"`
	GitHubURL   *string `json:"githubUrl"`
	UpdatedAt   int64   `json:"updatedAt"`
}

func (s remoteSkill) toRecord() skilltypes.SkillRecord {
	r := skilltypes.SkillRecord{
		ID:        s.ID,
		Name:      s.Name,
		UpdatedAt: s.UpdatedAt,
		Source:    skilltypes.SourceRemote,
	}
	if s.Description != nil {
		r.Description = *s.Description
	}
	if s.Stars != nil && *s.Stars > 0 {
		r.Stars = *s.Stars
	}
	if s.GitHubURL != nil {
		r.GitHubURL = *s.GitHubURL
	}
	return r
}

// statusError carries a non-200 HTTP status out of the retry loop
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("catalog returned status %d", e.code)
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.retryable()
	}
	if errors.Is(err, ErrInvalidResponse) || errors.Is(err, ErrInvalidURL) {
		return false
	}
	// transport failures
	return true
}

func (c *Client) searchURL(q Query) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", errors.Wrapf(ErrInvalidURL, "%q", c.baseURL)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/search"
	values := url.Values{}
	values.Set("q", q.Q)
	values.Set("page", strconv.Itoa(q.Page))
	values.Set("limit", strconv.Itoa(q.Limit))
	values.Set("sortBy", q.SortBy)
	u.RawQuery = values.Encode()
	return u.String(), nil
}

// Search runs one catalog query. Missing descriptions map to "", missing or
// null stars to 0, and items without an id are dropped.
func (c *Client) Search(ctx context.Context, query Query) ([]skilltypes.SkillRecord, error) {
	query = query.withDefaults()
	fullURL, err := c.searchURL(query)
	if err != nil {
		return nil, err
	}

	log := logger.G(ctx).WithField("query", query.Q).WithField("page", query.Page)
	var body []byte
	err = retry.Do(
		func() error {
			var reqErr error
			body, reqErr = c.get(ctx, fullURL)
			return reqErr
		},
		retry.RetryIf(isRetryableError),
		retry.Attempts(uint(c.retry.Attempts)),
		retry.Delay(time.Duration(c.retry.InitialDelay)*time.Millisecond),
		retry.MaxDelay(time.Duration(c.retry.MaxDelay)*time.Millisecond),
		retry.DelayType(c.retry.delayType()),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.WithError(err).WithField("attempt", n+1).WithField("max_attempts", c.retry.Attempts).Warn("retrying catalog search")
		}),
	)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			return nil, errors.Wrapf(ErrInvalidResponse, "status %d", se.code)
		}
		return nil, errors.Wrap(err, "catalog search failed")
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrapf(ErrInvalidResponse, "malformed body: %v", err)
	}
	if resp.Data == nil {
		return []skilltypes.SkillRecord{}, nil
	}

	records := make([]skilltypes.SkillRecord, 0, len(resp.Data.Skills))
	for _, item := range resp.Data.Skills {
		if item.ID == "" {
			log.WithField("name", item.Name).Debug("dropping catalog item without id")
			continue
		}
		records = append(records, item.toRecord())
	}
	log.WithField("count", len(records)).Debug("catalog search completed")
	return records, nil
}

func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidURL, "%v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read catalog response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}
	return body, nil
}

// Popular returns the merged results of the popular queries, deduplicated
// by id and sorted by stars. Failed queries are logged and skipped. The
// result is cached after the first call. Concurrent callers share one
// fetch, and the cache lock is not held while it runs.
func (c *Client) Popular(ctx context.Context) ([]skilltypes.SkillRecord, error) {
	c.mu.Lock()
	if c.hasFetched {
		cached := c.cached
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	v, err, _ := c.popularFlight.Do("popular", func() (interface{}, error) {
		return c.fetchPopular(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]skilltypes.SkillRecord), nil
}

func (c *Client) fetchPopular(ctx context.Context) ([]skilltypes.SkillRecord, error) {
	c.mu.Lock()
	if c.hasFetched {
		cached := c.cached
		c.mu.Unlock()
		return cached, nil
	}
	generation := c.generation
	c.mu.Unlock()

	log := logger.G(ctx)
	log.Debug("fetching popular skills")

	byID := make(map[string]skilltypes.SkillRecord)
	for _, q := range c.popularQueries {
		records, err := c.Search(ctx, Query{Q: q, Limit: c.popularLimit})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.WithError(err).WithField("query", q).Warn("popular query failed")
			continue
		}
		for _, r := range records {
			byID[r.ID] = r
		}
	}

	merged := make([]skilltypes.SkillRecord, 0, len(byID))
	for _, r := range byID {
		merged = append(merged, r)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Stars == merged[j].Stars {
			return merged[i].ID < merged[j].ID
		}
		return merged[i].Stars > merged[j].Stars
	})

	c.mu.Lock()
	// a ClearCache during the fetch wins; the result is returned uncached
	if c.generation == generation {
		c.cached = merged
		c.hasFetched = true
	}
	c.mu.Unlock()
	log.WithField("count", len(merged)).Info("loaded popular skills")

	return merged, nil
}

// Browse lists popular skills for an empty query and searches otherwise
func (c *Client) Browse(ctx context.Context, query string) ([]skilltypes.SkillRecord, error) {
	if strings.TrimSpace(query) == "" {
		return c.Popular(ctx)
	}
	return c.Search(ctx, Query{Q: query})
}

// Cached returns the popular listing fetched so far, if any
func (c *Client) Cached() []skilltypes.SkillRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cached
}

// ClearCache forgets the popular listing so the next call refetches it
func (c *Client) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = nil
	c.hasFetched = false
	c.generation++
}
