package filter

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"meusensia.com.br/sensia-web/internal/listing"
)

// Query parameter names understood on the results page.
const (
	ParamSearch    = "s"
	ParamStatus    = "status"
	ParamAmenities = "lazer"
	ParamTipologia = "tipologia"
	ParamMinPrice  = "minPrice"
	ParamMaxPrice  = "maxPrice"
)

// ResultsPath is the path whose query string carries the filter.
const ResultsPath = "/resultados"

const authorPrefix = "/content/meusensia"

// Params is the parsed form of a listing URL. Empty fields mean the
// dimension is not filtered.
type Params struct {
	Path      string
	State     string
	City      string
	Statuses  []string
	Amenities []string
	Bedrooms  []int
	MinPrice  listing.Number
	MaxPrice  listing.Number
}

// Key is the comparable form of Params used for memoisation. Multi-valued
// fields are sorted so that equivalent selections compare equal.
type Key struct {
	Path      string
	State     string
	City      string
	Statuses  string
	Amenities string
	Bedrooms  string
	MinPrice  listing.Number
	MaxPrice  listing.Number
}

// Key returns the memoisation key of p.
func (p Params) Key() Key {
	bedrooms := make([]string, len(p.Bedrooms))
	for i, b := range p.Bedrooms {
		bedrooms[i] = strconv.Itoa(b)
	}
	return Key{
		Path:      p.Path,
		State:     p.State,
		City:      p.City,
		Statuses:  sortedJoin(p.Statuses),
		Amenities: sortedJoin(p.Amenities),
		Bedrooms:  sortedJoin(bedrooms),
		MinPrice:  p.MinPrice,
		MaxPrice:  p.MaxPrice,
	}
}

func sortedJoin(values []string) string {
	if len(values) == 0 {
		return ""
	}
	cp := append([]string(nil), values...)
	sort.Strings(cp)
	return strings.Join(cp, "+")
}

// ParseParams reads the filter out of u. Multi-valued parameters are
// percent-decoded once more and split on a literal "+". Values that cannot be
// parsed are dropped.
func ParseParams(u *url.URL) Params {
	if u == nil {
		return Params{Path: "/"}
	}
	q := u.Query()
	p := Params{Path: NormalizePath(u.Path)}

	if search := splitParam(q.Get(ParamSearch)); len(search) > 0 {
		p.State = strings.ToLower(search[0])
		if len(search) > 1 {
			p.City = strings.ToLower(search[1])
		}
	}
	p.Statuses = lowerAll(splitParam(q.Get(ParamStatus)))
	p.Amenities = lowerAll(splitParam(q.Get(ParamAmenities)))
	for _, v := range splitParam(q.Get(ParamTipologia)) {
		if n, ok := listing.ParseInt(v); ok {
			p.Bedrooms = append(p.Bedrooms, n)
		}
	}
	if n, ok := listing.ParseInt(q.Get(ParamMinPrice)); ok {
		p.MinPrice = listing.Int(n)
	}
	if n, ok := listing.ParseInt(q.Get(ParamMaxPrice)); ok {
		p.MaxPrice = listing.Int(n)
	}
	return p
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		decoded = raw
	}
	var out []string
	for _, part := range strings.Split(decoded, "+") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func lowerAll(values []string) []string {
	for i, v := range values {
		values[i] = strings.ToLower(v)
	}
	return values
}

// NormalizePath maps authoring URLs ("/content/meusensia/imoveis/mg.html")
// and trailing ".html" or "/" onto the public path ("/imoveis/mg").
func NormalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if strings.Contains(p, authorPrefix+"/") {
		p = strings.Replace(p, authorPrefix, "", 1)
	}
	p = strings.TrimSuffix(p, ".html")
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		p = "/"
	}
	return p
}
