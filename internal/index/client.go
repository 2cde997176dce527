package index

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"meusensia.com.br/sensia-web/internal/listing"
	"meusensia.com.br/sensia-web/internal/observability"
)

const (
	// DefaultPageSize is the page size the index endpoints serve.
	DefaultPageSize = 500

	maxParallelPages = 8
)

// Page is one response of a paginated query index.
type Page struct {
	Total  int              `json:"total"`
	Offset int              `json:"offset"`
	Limit  int              `json:"limit"`
	Data   []listing.Record `json:"data"`
}

// Client fetches paginated query indexes and memoises the full record set
// per index URL. Callers always receive their own copy.
type Client struct {
	baseURL  string
	http     *http.Client
	pageSize int
	logger   *zap.Logger
	tracer   trace.Tracer
	meter    metric.Meter

	latency          metric.Float64Histogram
	latencyEnabled   bool
	cacheHits        metric.Int64Counter
	cacheHitsEnabled bool

	mu    sync.RWMutex
	cache map[string][]listing.Record
	group singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithPageSize overrides the page size used for offset arithmetic.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithLogger sets the logger used to report degraded pages.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = observability.OrNop(l) }
}

// WithMeter injects the meter for the fetch metrics.
func WithMeter(m metric.Meter) Option {
	return func(c *Client) {
		if m != nil {
			c.meter = m
		}
	}
}

// NewClient returns a Client resolving index paths against baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:     &http.Client{Timeout: 5 * time.Second},
		pageSize: DefaultPageSize,
		logger:   zap.NewNop(),
		tracer:   observability.Tracer("index"),
		meter:    observability.Meter("index"),
		cache:    map[string][]listing.Record{},
	}
	for _, opt := range opts {
		opt(c)
	}

	var err error
	c.latency, err = c.meter.Float64Histogram(
		"index.page.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("Latency in milliseconds of query index page requests"),
	)
	if err != nil {
		c.logger.Warn("index: unable to register latency metric", zap.Error(err))
	}
	c.latencyEnabled = err == nil
	c.cacheHits, err = c.meter.Int64Counter(
		"index.fetch.cache_hits",
		metric.WithDescription("Count of index fetches served from memory"),
	)
	if err != nil {
		c.logger.Warn("index: unable to register cache hit metric", zap.Error(err))
	}
	c.cacheHitsEnabled = err == nil
	return c
}

// Fetch returns every record of the index at indexPath. The first page
// reports the total; the remaining pages are requested concurrently and
// stitched back in page order. A page that fails contributes nothing. The
// only error returned is ctx's, when it ends before the records are ready.
func (c *Client) Fetch(ctx context.Context, indexPath string) ([]listing.Record, error) {
	endpoint := c.endpoint(indexPath)

	c.mu.RLock()
	recs, ok := c.cache[endpoint]
	c.mu.RUnlock()
	if ok {
		c.recordCacheHit(ctx, endpoint)
		return listing.CloneAll(recs), nil
	}

	// The shared load outlives a single caller's cancellation so concurrent
	// waiters still get the result.
	ch := c.group.DoChan(endpoint, func() (any, error) {
		c.mu.RLock()
		recs, ok := c.cache[endpoint]
		c.mu.RUnlock()
		if ok {
			return recs, nil
		}
		recs, complete := c.fetchAll(context.WithoutCancel(ctx), endpoint)
		if complete {
			c.mu.Lock()
			c.cache[endpoint] = recs
			c.mu.Unlock()
		}
		return recs, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		recs, _ := res.Val.([]listing.Record)
		return listing.CloneAll(recs), nil
	}
}

// fetchAll reports complete=false when the first page could not be read, in
// which case the empty result is not memoised.
func (c *Client) fetchAll(ctx context.Context, endpoint string) ([]listing.Record, bool) {
	ctx, span := c.tracer.Start(ctx, "index.Fetch", trace.WithAttributes(attribute.String("index.url", endpoint)))
	defer span.End()

	first, err := c.fetchPage(ctx, endpoint, 0)
	if err != nil {
		c.logger.Warn("index: first page unavailable", zap.String("url", endpoint), zap.Error(err))
		span.SetStatus(codes.Error, err.Error())
		return []listing.Record{}, false
	}
	if first.Total <= 0 {
		return []listing.Record{}, true
	}

	pages := (first.Total + c.pageSize - 1) / c.pageSize
	buckets := make([][]listing.Record, pages)
	buckets[0] = first.Data

	// Plain Group: one failed page must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(maxParallelPages)
	for i := 1; i < pages; i++ {
		i := i
		g.Go(func() error {
			page, err := c.fetchPage(ctx, endpoint, i*c.pageSize)
			if err != nil {
				c.logger.Warn("index: page unavailable",
					zap.String("url", endpoint),
					zap.Int("offset", i*c.pageSize),
					zap.Error(err))
				return nil
			}
			buckets[i] = page.Data
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for _, b := range buckets {
		n += len(b)
	}
	out := make([]listing.Record, 0, n)
	for _, b := range buckets {
		out = append(out, b...)
	}
	span.SetAttributes(attribute.Int("index.total", first.Total), attribute.Int("index.records", len(out)))
	c.logger.Debug("index: fetched",
		zap.String("url", endpoint),
		zap.Int("total", first.Total),
		zap.Int("records", len(out)),
		zap.Int("pages", pages))
	return out, true
}

func (c *Client) fetchPage(ctx context.Context, endpoint string, offset int) (Page, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return Page{}, err
	}
	q := u.Query()
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(c.pageSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Page{}, err
	}
	req.Header.Set("Accept", "application/json")
	start := time.Now()
	resp, err := c.http.Do(req)
	c.recordLatency(ctx, time.Since(start), endpoint, err)
	if err != nil {
		return Page{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Page{}, fmt.Errorf("index: status %d", resp.StatusCode)
	}
	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return Page{}, fmt.Errorf("index: decode: %w", err)
	}
	return page, nil
}

func (c *Client) recordLatency(ctx context.Context, d time.Duration, endpoint string, err error) {
	if !c.latencyEnabled {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("index.url", endpoint)}
	if err != nil {
		attrs = append(attrs, attribute.String("error", err.Error()))
	}
	c.latency.Record(ctx, float64(d)/float64(time.Millisecond), metric.WithAttributes(attrs...))
}

func (c *Client) recordCacheHit(ctx context.Context, endpoint string) {
	if !c.cacheHitsEnabled {
		return
	}
	c.cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("index.url", endpoint)))
}

func (c *Client) endpoint(indexPath string) string {
	indexPath = strings.TrimSpace(indexPath)
	if strings.HasPrefix(indexPath, "http://") || strings.HasPrefix(indexPath, "https://") {
		return indexPath
	}
	if !strings.HasPrefix(indexPath, "/") {
		indexPath = "/" + indexPath
	}
	return c.baseURL + indexPath
}
