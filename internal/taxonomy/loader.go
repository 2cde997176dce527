package taxonomy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"meusensia.com.br/sensia-web/internal/observability"
)

var errUnavailable = errors.New("taxonomy: unavailable")

// Loader fetches the taxonomy document once and memoises the resulting Map.
type Loader struct {
	url    string
	http   *http.Client
	logger *zap.Logger
	tracer trace.Tracer

	mu     sync.RWMutex
	cached *Map
	group  singleflight.Group
}

// NewLoader returns a Loader for the taxonomy document at url.
func NewLoader(url string, hc *http.Client, logger *zap.Logger) *Loader {
	if hc == nil {
		hc = &http.Client{Timeout: 5 * time.Second}
	}
	return &Loader{
		url:    url,
		http:   hc,
		logger: observability.OrNop(logger),
		tracer: observability.Tracer("taxonomy"),
	}
}

// Load returns the taxonomy. Transport failures and non-2xx responses yield
// an empty Map that is not memoised, so a later call retries. A document with
// an unrecognised shape is memoised as empty. The only error returned is
// ctx's.
func (l *Loader) Load(ctx context.Context) (*Map, error) {
	l.mu.RLock()
	m := l.cached
	l.mu.RUnlock()
	if m != nil {
		return m, nil
	}

	ch := l.group.DoChan("taxonomy", func() (any, error) {
		l.mu.RLock()
		m := l.cached
		l.mu.RUnlock()
		if m != nil {
			return m, nil
		}
		m, err := l.fetch(context.WithoutCancel(ctx))
		if err != nil {
			if errors.Is(err, errUnavailable) {
				l.logger.Warn("taxonomy: not found", zap.String("url", l.url), zap.Error(err))
				return Empty(), nil
			}
			l.logger.Warn("taxonomy: structure not recognized", zap.String("url", l.url), zap.Error(err))
			m = Empty()
		}
		l.mu.Lock()
		l.cached = m
		l.mu.Unlock()
		return m, nil
	})

	select {
	case <-ctx.Done():
		return Empty(), ctx.Err()
	case res := <-ch:
		m, _ := res.Val.(*Map)
		if m == nil {
			m = Empty()
		}
		return m, nil
	}
}

func (l *Loader) fetch(ctx context.Context) (*Map, error) {
	ctx, span := l.tracer.Start(ctx, "taxonomy.Load", trace.WithAttributes(attribute.String("taxonomy.url", l.url)))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", errUnavailable, resp.StatusCode)
	}

	var doc struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("taxonomy: decode: %w", err)
	}
	var entries []Entry
	if len(doc.Data) == 0 || doc.Data[0] != '[' {
		return nil, errors.New("taxonomy: data is not a list")
	}
	if err := json.Unmarshal(doc.Data, &entries); err != nil {
		return nil, fmt.Errorf("taxonomy: decode entries: %w", err)
	}
	span.SetAttributes(attribute.Int("taxonomy.entries", len(entries)))
	return NewMap(entries), nil
}
