// Package site scopes the fetched index and taxonomy data to a session.
package site

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"meusensia.com.br/sensia-web/internal/filter"
	"meusensia.com.br/sensia-web/internal/index"
	"meusensia.com.br/sensia-web/internal/listing"
	"meusensia.com.br/sensia-web/internal/observability"
	"meusensia.com.br/sensia-web/internal/taxonomy"
)

// Options configures the data sources of a session.
type Options struct {
	BaseURL       string
	ListingsIndex string
	StoresIndex   string
	TaxonomyPath  string
	IndexPageSize int
	HTTPClient    *http.Client
	Logger        *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.ListingsIndex == "" {
		o.ListingsIndex = "/imovel/query-index.json"
	}
	if o.StoresIndex == "" {
		o.StoresIndex = "/query-index.json"
	}
	if o.TaxonomyPath == "" {
		o.TaxonomyPath = "/taxonomy.json"
	}
	if o.IndexPageSize <= 0 {
		o.IndexPageSize = index.DefaultPageSize
	}
	o.Logger = observability.OrNop(o.Logger)
	return o
}

// Session owns the index client, the taxonomy loader and the filter memo for
// one data lifetime. Nothing is refreshed inside a session; a new session
// starts from scratch.
type Session struct {
	ID      string
	Created time.Time

	opts     Options
	index    *index.Client
	taxonomy *taxonomy.Loader
	engine   *filter.Engine

	mu       sync.Mutex
	listings []listing.Record
	stores   []listing.Record
}

// NewSession returns a session with nothing loaded yet.
func NewSession(id string, opts Options) *Session {
	opts = opts.withDefaults()
	idx := []index.Option{index.WithPageSize(opts.IndexPageSize), index.WithLogger(opts.Logger)}
	if opts.HTTPClient != nil {
		idx = append(idx, index.WithHTTPClient(opts.HTTPClient))
	}
	return &Session{
		ID:       id,
		Created:  time.Now(),
		opts:     opts,
		index:    index.NewClient(opts.BaseURL, idx...),
		taxonomy: taxonomy.NewLoader(resolve(opts.BaseURL, opts.TaxonomyPath), opts.HTTPClient, opts.Logger),
		engine:   filter.NewEngine(),
	}
}

func resolve(base, path string) string {
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// Data is what a listing page needs.
type Data struct {
	Listings []listing.Record
	Taxonomy *taxonomy.Map
}

// Listings loads the property records and the taxonomy in parallel. The
// returned slice is shared by every caller of the session and must be
// treated as read-only; it is what the filter memo keys on.
func (s *Session) Listings(ctx context.Context) (Data, error) {
	var (
		recs []listing.Record
		tax  *taxonomy.Map
	)
	s.mu.Lock()
	recs = s.listings
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	if recs == nil {
		g.Go(func() error {
			all, err := s.index.Fetch(gctx, s.opts.ListingsIndex)
			if err != nil {
				return err
			}
			recs = listing.WithTemplate(all, listing.TemplateListing)
			return nil
		})
	}
	g.Go(func() error {
		m, err := s.taxonomy.Load(gctx)
		tax = m
		return err
	})
	if err := g.Wait(); err != nil {
		return Data{}, err
	}
	return Data{Listings: s.keepListings(recs), Taxonomy: tax}, nil
}

// keepListings stores recs unless another caller got there first. An empty
// set is not kept so a failed index is retried.
func (s *Session) keepListings(recs []listing.Record) []listing.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listings != nil {
		return s.listings
	}
	if len(recs) > 0 {
		s.listings = recs
	}
	return recs
}

// Stores loads the main site index, which holds the store pages.
func (s *Session) Stores(ctx context.Context) ([]listing.Record, error) {
	s.mu.Lock()
	recs := s.stores
	s.mu.Unlock()
	if recs != nil {
		return recs, nil
	}
	recs, err := s.index.Fetch(ctx, s.opts.StoresIndex)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stores == nil && len(recs) > 0 {
		s.stores = recs
	}
	if s.stores != nil {
		return s.stores, nil
	}
	return recs, nil
}

// Taxonomy returns the session taxonomy.
func (s *Session) Taxonomy(ctx context.Context) (*taxonomy.Map, error) {
	return s.taxonomy.Load(ctx)
}

// Filter narrows records for the page at u, memoised per session.
func (s *Session) Filter(records []listing.Record, u *url.URL) []listing.Record {
	return s.engine.FilterURL(records, u)
}

// Lookup finds the property at path. Author URLs are accepted.
func (s *Session) Lookup(ctx context.Context, path string) (listing.Record, *taxonomy.Map, bool, error) {
	data, err := s.Listings(ctx)
	if err != nil {
		return listing.Record{}, nil, false, err
	}
	want := strings.ToLower(filter.NormalizePath(path))
	for _, r := range data.Listings {
		if strings.ToLower(filter.NormalizePath(r.Path)) == want {
			return r.Clone(), data.Taxonomy, true, nil
		}
	}
	return listing.Record{}, data.Taxonomy, false, nil
}
