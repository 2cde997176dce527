package taxonomy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const taxonomyDoc = `{
  "total": 3,
  "data": [
    {"tag": "sensia:status/lancamento", "title": "Lançamento"},
    {"tag": "sensia:lazer/piscina", "title": "Piscina", "jcr:description": "Piscina **aquecida** <script>alert(1)</script>"},
    {"tag": "sensia:locations-for-cards/sudeste---belo-horizonte---mg", "title": "Belo Horizonte - MG"}
  ]
}`

func serve(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestLoadBuildsMapAndMemoises(t *testing.T) {
	t.Parallel()

	srv, hits := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(taxonomyDoc))
	})
	l := NewLoader(srv.URL+"/taxonomy.json", nil, nil)

	m, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, "Lançamento", m.TitleOr("sensia:status/lancamento"))
	assert.Equal(t, "sensia:status/pronto", m.TitleOr("sensia:status/pronto"))

	again, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, m, again)
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))
}

func TestLoadNotFoundIsEmptyAndRetried(t *testing.T) {
	t.Parallel()

	var ok atomic.Bool
	srv, hits := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if !ok.Load() {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(taxonomyDoc))
	})
	l := NewLoader(srv.URL, nil, nil)

	m, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())

	ok.Store(true)
	m, err = l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())
	assert.EqualValues(t, 2, atomic.LoadInt32(hits))
}

func TestLoadUnrecognisedShapeIsEmptyAndMemoised(t *testing.T) {
	t.Parallel()

	srv, hits := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"tag": "x"}}`))
	})
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoader(srv.URL, nil, zap.New(core))

	for i := 0; i < 2; i++ {
		m, err := l.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, m.Len())
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))

	entries := logs.FilterMessage("taxonomy: structure not recognized").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestFirstTitle(t *testing.T) {
	t.Parallel()

	m := NewMap([]Entry{{Tag: "a:b", Title: "B"}})
	assert.Equal(t, "B", m.FirstTitle([]string{"a:b", "a:c"}))
	assert.Equal(t, "a:c", m.FirstTitle([]string{"a:c"}))
	assert.Equal(t, "", m.FirstTitle(nil))
}

func TestDescriptionHTMLIsSanitised(t *testing.T) {
	t.Parallel()

	var m *Map
	assert.Equal(t, 0, m.Len())

	m = NewMap([]Entry{{Tag: "sensia:lazer/piscina", Title: "Piscina", Description: "Piscina **aquecida** <script>alert(1)</script>"}})
	html := string(m.DescriptionHTML("sensia:lazer/piscina"))
	assert.Contains(t, html, "<strong>aquecida</strong>")
	assert.NotContains(t, html, "<script>")
	assert.Empty(t, m.DescriptionHTML("sensia:lazer/academia"))
}

func TestMetaResolve(t *testing.T) {
	t.Parallel()

	tax := NewMap([]Entry{
		{Tag: "sensia:status/lancamento", Title: "Lançamento"},
		{Tag: "sensia:lazer/piscina", Title: "Piscina"},
		{Tag: "sensia:lazer/academia", Title: "Academia"},
	})
	meta := NewMeta(map[string]string{
		MetaStatus:       "sensia:status/lancamento",
		MetaAmenities:    "sensia:lazer/piscina, sensia:lazer/sauna ,sensia:lazer/academia",
		MetaLocationCard: "sensia:locations-for-cards/unknown",
		"title":          "Residencial",
	})
	assert.False(t, meta.Resolved())

	meta.Resolve(tax)
	assert.True(t, meta.Resolved())
	assert.Equal(t, "Lançamento", meta.Get(MetaStatus))
	assert.Equal(t, "Piscina, Academia", meta.Get(MetaAmenities))
	assert.Equal(t, "sensia:locations-for-cards/unknown", meta.Get(MetaLocationCard))
}

func TestWaitForUpdateReturnsWhenResolved(t *testing.T) {
	t.Parallel()

	meta := NewMeta(map[string]string{MetaStatus: "sensia:status/lancamento"})
	go func() {
		time.Sleep(20 * time.Millisecond)
		meta.Set(MetaStatus, "Lançamento")
	}()

	start := time.Now()
	ok := WaitForUpdateWithin(context.Background(), meta, 5*time.Millisecond, time.Second)
	assert.True(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}

func TestWaitForUpdateTimesOut(t *testing.T) {
	t.Parallel()

	meta := NewMeta(map[string]string{MetaStatus: "sensia:status/lancamento"})
	start := time.Now()
	ok := WaitForUpdateWithin(context.Background(), meta, 5*time.Millisecond, 30*time.Millisecond)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestWaitForUpdateImmediate(t *testing.T) {
	t.Parallel()

	meta := NewMeta(map[string]string{MetaAmenities: "Piscina"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.True(t, WaitForUpdate(ctx, meta))
	assert.False(t, WaitForUpdate(ctx, NewMeta(nil)))
}
