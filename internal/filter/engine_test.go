package filter

import (
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meusensia.com.br/sensia-web/internal/listing"
)

func loc(region, city, state string) string {
	return "sensia:locations-for-cards/" + region + "---" + city + "---" + state
}

func fixture() []listing.Record {
	return []listing.Record{
		{
			Path:          "/imoveis/mg/belo-horizonte/alto",
			LocationState: listing.Tags{"MG"},
			LocationCard:  listing.Tags{loc("sudeste", "belo-horizonte", "mg")},
			Availability:  listing.Tags{"sensia:status/lancamento"},
			Amenities:     listing.Tags{"sensia:lazer/piscina-aquecida, sensia:lazer/academia"},
			DormsMin:      listing.Int(2),
			DormsMax:      listing.Int(3),
			PriceMin:      listing.Int(500000),
			PriceMax:      listing.Int(800000),
		},
		{
			Path:          "/imoveis/mg/nova-lima/vale",
			LocationState: listing.Tags{"mg"},
			LocationCard:  listing.Tags{loc("sudeste", "nova-lima", "mg")},
			Availability:  listing.Tags{"sensia:status/Em Obras"},
			Amenities:     listing.Tags{"sensia:lazer/salao-de-festas"},
			DormsMin:      listing.Int(3),
			PriceMax:      listing.Int(1200000),
		},
		{
			Path:          "/imoveis/ce/fortaleza/mar",
			LocationState: listing.Tags{"CE"},
			LocationCard:  listing.Tags{loc("nordeste", "fortaleza", "ce")},
			Availability:  listing.Tags{"sensia:status/pronto"},
			DormsMax:      listing.Int(2),
		},
		{
			Path:          "/imoveis/sp/sao-paulo/jardins",
			LocationState: listing.Tags{"SP"},
			LocationCard:  listing.Tags{loc("sudeste", "sao-paulo", "sp")},
			Availability:  listing.Tags{"sensia:status/breve-lancamento"},
			PriceMin:      listing.Int(1500000),
		},
	}
}

func paths(recs []listing.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Path
	}
	return out
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestResultsFilters(t *testing.T) {
	t.Parallel()

	recs := fixture()
	cases := []struct {
		name  string
		query string
		want  []string
	}{
		{"no params", "", paths(recs)},
		{"state", "s=mg", []string{"/imoveis/mg/belo-horizonte/alto", "/imoveis/mg/nova-lima/vale"}},
		{"state and city", "s=MG%2Bnova-lima", []string{"/imoveis/mg/nova-lima/vale"}},
		{"status", "status=lancamento%2Bpronto", []string{"/imoveis/mg/belo-horizonte/alto", "/imoveis/ce/fortaleza/mar"}},
		{"status with spaces", "status=em-obras", []string{"/imoveis/mg/nova-lima/vale"}},
		{"status is exact", "status=lanca", nil},
		{"amenity prefix", "lazer=piscina", []string{"/imoveis/mg/belo-horizonte/alto"}},
		{"amenity any", "lazer=academia%2Bsalao-de-festas", []string{"/imoveis/mg/belo-horizonte/alto", "/imoveis/mg/nova-lima/vale"}},
		{"tipologia in range", "tipologia=2", []string{"/imoveis/mg/belo-horizonte/alto", "/imoveis/ce/fortaleza/mar"}},
		{"tipologia min only", "tipologia=4", []string{"/imoveis/mg/nova-lima/vale"}},
		{"tipologia malformed", "tipologia=abc", paths(recs)},
		{"price band", "minPrice=700000&maxPrice=900000", []string{"/imoveis/mg/belo-horizonte/alto", "/imoveis/mg/nova-lima/vale"}},
		{"price min only", "minPrice=1000000", []string{"/imoveis/mg/nova-lima/vale", "/imoveis/sp/sao-paulo/jardins"}},
		{"price max only", "maxPrice=450000", []string{"/imoveis/mg/nova-lima/vale"}},
		{"price malformed", "maxPrice=barato", paths(recs)},
		{"combined", "s=mg&status=lancamento&tipologia=3&minPrice=450000", []string{"/imoveis/mg/belo-horizonte/alto"}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Apply(recs, ParseParams(mustURL(t, "/resultados?"+tc.query)))
			if tc.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, paths(got))
		})
	}
}

func TestAddingPredicateNeverGrowsResult(t *testing.T) {
	t.Parallel()

	recs := fixture()
	base := ParseParams(mustURL(t, "/resultados?s=mg"))
	narrowed := base
	narrowed.Statuses = []string{"lancamento"}

	wide := Apply(recs, base)
	narrow := Apply(recs, narrowed)
	assert.LessOrEqual(t, len(narrow), len(wide))
	for _, r := range narrow {
		assert.Contains(t, paths(wide), r.Path)
	}
}

func TestPathBranches(t *testing.T) {
	t.Parallel()

	recs := fixture()
	got := Apply(recs, ParseParams(mustURL(t, "/imoveis/mg/belo-horizonte")))
	assert.Equal(t, []string{"/imoveis/mg/belo-horizonte/alto"}, paths(got))

	got = Apply(recs, ParseParams(mustURL(t, "/imoveis/MG.html")))
	assert.Len(t, got, 2)

	got = Apply(recs, ParseParams(mustURL(t, "/content/meusensia/imoveis/ce/fortaleza.html")))
	assert.Equal(t, []string{"/imoveis/ce/fortaleza/mar"}, paths(got))

	got = Apply(recs, ParseParams(mustURL(t, "/lojas")))
	assert.Equal(t, paths(recs), paths(got))
}

func TestStateCityTakesPrecedenceAndIgnoresQuery(t *testing.T) {
	t.Parallel()

	recs := fixture()
	direct := Apply(recs, ParseParams(mustURL(t, "/imoveis/mg/nova-lima")))
	withQuery := Apply(recs, ParseParams(mustURL(t, "/imoveis/mg/nova-lima?status=pronto&s=ce")))
	assert.Equal(t, paths(direct), paths(withQuery))

	branch, p := Resolve(ParseParams(mustURL(t, "/imoveis/mg/nova-lima")))
	assert.Equal(t, BranchStateCity, branch)
	assert.Equal(t, "nova-lima", p.City)
}

func TestLocationConsistency(t *testing.T) {
	t.Parallel()

	for _, r := range Apply(fixture(), ParseParams(mustURL(t, "/imoveis/mg/belo-horizonte"))) {
		found := false
		for _, l := range listing.Locations(r.LocationCard) {
			if l.State == "mg" && l.City == "belo-horizonte" {
				found = true
			}
		}
		assert.True(t, found, r.Path)
	}
}

func TestPriceOverlap(t *testing.T) {
	t.Parallel()

	rec := listing.Record{PriceMin: listing.Int(500000), PriceMax: listing.Int(700000)}
	assert.True(t, matchesPrice(rec, listing.Int(600000), listing.Int(900000)))
	assert.False(t, matchesPrice(rec, listing.Int(800000), listing.Int(900000)))
	assert.False(t, matchesPrice(listing.Record{}, listing.Int(1), listing.Number{}))

	onlyMin := listing.Record{PriceMin: listing.Int(500000)}
	assert.True(t, matchesPrice(onlyMin, listing.Int(900000), listing.Number{}))
	assert.False(t, matchesPrice(onlyMin, listing.Number{}, listing.Int(400000)))
}

func TestParseParamsDecodesTwice(t *testing.T) {
	t.Parallel()

	p := ParseParams(mustURL(t, "/resultados/?s=MG%252Bbelo-horizonte&status=em-obras%2BPronto&minPrice=450000"))
	assert.Equal(t, ResultsPath, p.Path)
	assert.Equal(t, "mg", p.State)
	assert.Equal(t, "belo-horizonte", p.City)
	assert.Equal(t, []string{"em-obras", "pronto"}, p.Statuses)
	assert.Equal(t, listing.Int(450000), p.MinPrice)
	assert.False(t, p.MaxPrice.Valid)
}

func TestKeyIgnoresSelectionOrder(t *testing.T) {
	t.Parallel()

	a := ParseParams(mustURL(t, "/resultados?status=pronto%2Blancamento"))
	b := ParseParams(mustURL(t, "/resultados?status=lancamento%2Bpronto"))
	assert.Equal(t, a.Key(), b.Key())
}

func TestEngineMemoReturnsSameSlice(t *testing.T) {
	t.Parallel()

	recs := fixture()
	e := NewEngine()
	u := mustURL(t, "/resultados?s=mg")
	first := e.FilterURL(recs, u)
	second := e.FilterURL(recs, mustURL(t, "/resultados?s=mg"))
	require.NotEmpty(t, first)
	assert.Same(t, &first[0], &second[0])

	other := e.FilterURL(recs, mustURL(t, "/resultados?s=ce"))
	assert.Equal(t, []string{"/imoveis/ce/fortaleza/mar"}, paths(other))

	// a different record slice with the same key is recomputed
	copyRecs := listing.CloneAll(recs)
	third := e.FilterURL(copyRecs, mustURL(t, "/resultados?s=ce"))
	assert.NotSame(t, &other[0], &third[0])
}

func TestEngineIsIdempotent(t *testing.T) {
	t.Parallel()

	recs := fixture()
	e := NewEngine()
	u := mustURL(t, "/imoveis/mg")
	first := paths(e.FilterURL(recs, u))
	e.Reset()
	assert.Equal(t, first, paths(e.FilterURL(recs, u)))
}

func TestFilteringOwnResultIsStable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		url  string
	}{
		{"results with every predicate", "/resultados?s=mg%2Bbelo-horizonte&status=lancamento&lazer=piscina&tipologia=2&minPrice=450000&maxPrice=900000"},
		{"state and city", "/imoveis/mg/belo-horizonte"},
		{"state", "/imoveis/mg"},
		{"all", "/"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := NewEngine()
			u := mustURL(t, tc.url)
			once := e.FilterURL(fixture(), u)
			require.NotEmpty(t, once)

			twice := e.FilterURL(once, u)
			assert.Equal(t, paths(once), paths(twice))
			assert.Equal(t, paths(once), paths(Apply(once, ParseParams(u))))
			// and again from the memo
			assert.Equal(t, paths(once), paths(e.FilterURL(twice, u)))
		})
	}
}

func TestEngineConcurrentUse(t *testing.T) {
	t.Parallel()

	recs := fixture()
	e := NewEngine()
	queries := []string{"/resultados?s=mg", "/resultados?s=ce", "/imoveis/sp", "/"}
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(q string) {
			defer wg.Done()
			want := paths(Apply(recs, ParseParams(mustURL(t, q))))
			assert.Equal(t, want, paths(e.FilterURL(recs, mustURL(t, q))))
		}(queries[i%len(queries)])
	}
	wg.Wait()
}
