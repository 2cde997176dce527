package site

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSite struct {
	srv  *httptest.Server
	hits sync.Map
}

func (f *fakeSite) count(path string) int32 {
	v, ok := f.hits.Load(path)
	if !ok {
		return 0
	}
	return atomic.LoadInt32(v.(*int32))
}

func newFakeSite(t *testing.T) *fakeSite {
	t.Helper()
	f := &fakeSite{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, _ := f.hits.LoadOrStore(r.URL.Path, new(int32))
		atomic.AddInt32(v.(*int32), 1)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/imovel/query-index.json":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"total": 3, "offset": 0, "limit": 500,
				"data": []map[string]any{
					{"path": "/imovel/alto-da-serra", "template": "imovel-default", "locationState": []string{"MG"},
						"locationCard": []string{"sensia:locations-for-cards/sudeste---belo-horizonte---mg"}},
					{"path": "/imovel/mar-azul", "template": "imovel-default", "locationState": []string{"CE"},
						"locationCard": []string{"sensia:locations-for-cards/nordeste---fortaleza---ce"}},
					{"path": "/imovel/rascunho", "template": "page"},
				},
			})
		case "/query-index.json":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"total": 1, "offset": 0, "limit": 500,
				"data": []map[string]any{{"path": "/lojas/mg/belo-horizonte/savassi", "template": "loja"}},
			})
		case "/taxonomy.json":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]string{{"tag": "sensia:status/pronto", "title": "Pronto"}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func TestSessionListings(t *testing.T) {
	f := newFakeSite(t)
	s := NewSession("s1", Options{BaseURL: f.srv.URL})

	data, err := s.Listings(context.Background())
	require.NoError(t, err)
	require.Len(t, data.Listings, 2)
	assert.Equal(t, "Pronto", data.Taxonomy.TitleOr("sensia:status/pronto"))

	again, err := s.Listings(context.Background())
	require.NoError(t, err)
	assert.Same(t, &data.Listings[0], &again.Listings[0])
	assert.Equal(t, int32(1), f.count("/imovel/query-index.json"))
	assert.Equal(t, int32(1), f.count("/taxonomy.json"))
}

func TestSessionFilterMemoAcrossRequests(t *testing.T) {
	f := newFakeSite(t)
	s := NewSession("s1", Options{BaseURL: f.srv.URL})
	u, _ := url.Parse("/imoveis/mg")

	data, err := s.Listings(context.Background())
	require.NoError(t, err)
	first := s.Filter(data.Listings, u)
	require.Len(t, first, 1)

	data, err = s.Listings(context.Background())
	require.NoError(t, err)
	second := s.Filter(data.Listings, u)
	assert.Same(t, &first[0], &second[0])
}

func TestSessionLookup(t *testing.T) {
	f := newFakeSite(t)
	s := NewSession("s1", Options{BaseURL: f.srv.URL})

	rec, _, ok, err := s.Lookup(context.Background(), "/content/meusensia/imovel/mar-azul.html")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/imovel/mar-azul", rec.Path)

	_, _, ok, err = s.Lookup(context.Background(), "/imovel/rascunho")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionStores(t *testing.T) {
	f := newFakeSite(t)
	s := NewSession("s1", Options{BaseURL: f.srv.URL})

	recs, err := s.Stores(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	_, err = s.Stores(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.count("/query-index.json"))
}

func TestSessionCancelled(t *testing.T) {
	f := newFakeSite(t)
	s := NewSession("s1", Options{BaseURL: f.srv.URL})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Listings(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestManagerRotatesExpiredSessions(t *testing.T) {
	f := newFakeSite(t)
	m := NewManager(Options{BaseURL: f.srv.URL}, time.Minute)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	first := m.Current()
	assert.Same(t, first, m.Current())

	_, err := first.Listings(context.Background())
	require.NoError(t, err)

	now = now.Add(time.Minute)
	second := m.Current()
	assert.NotSame(t, first, second)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = second.Listings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.count("/imovel/query-index.json"), "a new session refetches")
}

func TestManagerMiddleware(t *testing.T) {
	m := NewManager(Options{BaseURL: "http://unused.invalid"}, 0)
	var got *Session
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, got)
	assert.Same(t, m.Current(), got)
	assert.Nil(t, FromContext(context.Background()))
}
