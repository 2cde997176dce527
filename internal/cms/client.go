package cms

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"meusensia.com.br/sensia-web/internal/observability"
)

// ErrNotFound is returned when a CMS resource cannot be located.
var ErrNotFound = errors.New("cms: not found")

const (
	defaultContentDir = "content"
	defaultCacheTTL   = 5 * time.Minute
)

// Client provides read-only access to institutional content, from the remote
// CMS when configured and from local markdown otherwise.
type Client struct {
	baseURL    string
	http       *http.Client
	contentDir string
	logger     *zap.Logger
	ttl        time.Duration
	now        func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	page    Page
	expires time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithContentDir sets the local markdown directory.
func WithContentDir(dir string) Option {
	return func(c *Client) {
		if dir = strings.TrimSpace(dir); dir != "" {
			c.contentDir = dir
		}
	}
}

// WithLogger sets the logger used when the remote CMS misbehaves.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = observability.OrNop(l) }
}

// WithCacheTTL overrides how long pages stay cached.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// NewClient constructs a Client with the provided base URL. An empty base
// URL reads local markdown only.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:       &http.Client{Timeout: 5 * time.Second},
		contentDir: defaultContentDir,
		logger:     zap.NewNop(),
		ttl:        defaultCacheTTL,
		now:        time.Now,
		cache:      map[string]cacheEntry{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ContentDir returns the configured fallback directory.
func (c *Client) ContentDir() string { return c.contentDir }

func (c *Client) cached(key string) (Page, bool) {
	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expires) {
		return Page{}, false
	}
	return entry.page.clone(), true
}

func (c *Client) store(key string, p Page) {
	c.mu.Lock()
	c.cache[key] = cacheEntry{page: p.clone(), expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func normalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if lang == "" {
		return "pt"
	}
	return lang
}
