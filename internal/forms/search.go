package forms

import (
	"net/url"
	"strings"

	"meusensia.com.br/sensia-web/internal/filter"
	"meusensia.com.br/sensia-web/internal/listing"
)

// Redirect roots of the location forms.
const (
	ListingsRoot = "/imoveis"
	StoresRoot   = "/lojas"
)

// RedirectURL builds root/{state}[/{city}] from a location form. It returns
// "" when no state was chosen.
func RedirectURL(root, state, city string) string {
	state = strings.ToLower(strings.TrimSpace(state))
	if state == "" {
		return ""
	}
	out := root + "/" + url.PathEscape(state)
	if city = listing.CityToHyphenated(city); city != "" {
		out += "/" + url.PathEscape(city)
	}
	return out
}

// Search is a submitted results filter.
type Search struct {
	State      string
	City       string
	Statuses   []string
	Amenities  []string
	Tipologias []string
	MinPrice   string
	MaxPrice   string
}

// SearchFromForm reads a submitted filter modal. Checkbox groups repeat
// their field name.
func SearchFromForm(form url.Values) Search {
	return Search{
		State:      strings.TrimSpace(form.Get("state")),
		City:       strings.TrimSpace(form.Get("city")),
		Statuses:   nonEmpty(form["status"]),
		Amenities:  nonEmpty(form["lazer"]),
		Tipologias: nonEmpty(form["tipologia"]),
		MinPrice:   strings.TrimSpace(form.Get("minPrice")),
		MaxPrice:   strings.TrimSpace(form.Get("maxPrice")),
	}
}

// URL encodes s as a results page URL. Multi-valued fields are joined by an
// encoded "+", the form the results page splits on.
func (s Search) URL() string {
	var params []string
	if state := strings.ToLower(s.State); state != "" {
		v := escape(state)
		if city := listing.CityToHyphenated(s.City); city != "" {
			v += "%2B" + escape(city)
		}
		params = append(params, filter.ParamSearch+"="+v)
	}
	if len(s.Statuses) > 0 {
		params = append(params, filter.ParamStatus+"="+joinEscaped(s.Statuses))
	}
	if len(s.Amenities) > 0 {
		params = append(params, filter.ParamAmenities+"="+joinEscaped(s.Amenities))
	}
	if len(s.Tipologias) > 0 {
		params = append(params, filter.ParamTipologia+"="+joinEscaped(s.Tipologias))
	}
	if s.MinPrice != "" {
		params = append(params, filter.ParamMinPrice+"="+escape(s.MinPrice))
	}
	if s.MaxPrice != "" {
		params = append(params, filter.ParamMaxPrice+"="+escape(s.MaxPrice))
	}
	return filter.ResultsPath + "?" + strings.Join(params, "&")
}

func escape(v string) string { return url.QueryEscape(v) }

func joinEscaped(values []string) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = escape(v)
	}
	return strings.Join(out, "%2B")
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
