package forms

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"meusensia.com.br/sensia-web/internal/listing"
	"meusensia.com.br/sensia-web/internal/taxonomy"
)

// Option is one entry of a select element.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

const storesRoot = "lojas"

// StateOptions lists the states that have listings, by UF code. Labels come
// from the state table, then the taxonomy.
func StateOptions(records []listing.Record, tax *taxonomy.Map, selected string) []Option {
	seen := map[string]struct{}{}
	for _, r := range records {
		for _, s := range r.LocationState {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				seen[s] = struct{}{}
			}
		}
	}
	return stateOptions(seen, tax, selected)
}

// CityOptions lists the cities of state that have listings. Values are URL
// segments; labels are the proper-cased segments.
func CityOptions(records []listing.Record, state, selected string) []Option {
	state = strings.ToLower(strings.TrimSpace(state))
	if state == "" {
		return nil
	}
	seen := map[string]struct{}{}
	for _, r := range records {
		if !hasState(r, state) {
			continue
		}
		for _, loc := range listing.Locations(r.LocationCard) {
			if strings.ToLower(loc.State) == state && loc.City != "" {
				seen[listing.CityToHyphenated(loc.City)] = struct{}{}
			}
		}
	}
	return cityOptions(seen, selected)
}

// StoreStateOptions lists the states found under /lojas/{state} in the site
// index.
func StoreStateOptions(records []listing.Record, tax *taxonomy.Map, selected string) []Option {
	seen := map[string]struct{}{}
	for _, r := range records {
		parts := pathParts(r.Path)
		if len(parts) >= 2 && parts[0] == storesRoot {
			seen[strings.ToLower(parts[1])] = struct{}{}
		}
	}
	return stateOptions(seen, tax, selected)
}

// StoreCityOptions lists the cities found under /lojas/{state}/{city} for
// store pages.
func StoreCityOptions(records []listing.Record, state, selected string) []Option {
	state = strings.ToLower(strings.TrimSpace(state))
	if state == "" {
		return nil
	}
	seen := map[string]struct{}{}
	for _, r := range records {
		if r.Template != listing.TemplateStore {
			continue
		}
		parts := pathParts(r.Path)
		if len(parts) >= 3 && parts[0] == storesRoot && strings.ToLower(parts[1]) == state {
			seen[strings.ToLower(parts[2])] = struct{}{}
		}
	}
	return cityOptions(seen, selected)
}

// StoresIn returns the store pages under /lojas/{state}[/{city}].
func StoresIn(records []listing.Record, state, city string) []listing.Record {
	prefix := "/" + storesRoot + "/"
	if state != "" {
		prefix += strings.ToLower(state) + "/"
		if city != "" {
			prefix += listing.CityToHyphenated(city) + "/"
		}
	}
	out := make([]listing.Record, 0)
	for _, r := range records {
		if r.Template == listing.TemplateStore && strings.HasPrefix(strings.ToLower(r.Path)+"/", prefix) {
			out = append(out, r)
		}
	}
	return out
}

func hasState(r listing.Record, state string) bool {
	for _, s := range r.LocationState {
		if strings.ToLower(strings.TrimSpace(s)) == state {
			return true
		}
	}
	return false
}

func pathParts(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func stateOptions(codes map[string]struct{}, tax *taxonomy.Map, selected string) []Option {
	selected = strings.ToLower(strings.TrimSpace(selected))
	out := make([]Option, 0, len(codes))
	for code := range codes {
		label, ok := listing.StateName(code)
		if !ok {
			label = tax.TitleOr(code)
		}
		out = append(out, Option{Value: code, Label: label, Selected: code == selected})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

func cityOptions(slugs map[string]struct{}, selected string) []Option {
	selected = listing.CityToHyphenated(selected)
	out := make([]Option, 0, len(slugs))
	for slug := range slugs {
		label := listing.HyphenatedToProperCity(slug)
		out = append(out, Option{Value: slug, Label: label, Selected: slug == selected})
	}
	c := collate.New(language.BrazilianPortuguese)
	sort.Slice(out, func(i, j int) bool { return c.CompareString(out[i].Label, out[j].Label) < 0 })
	return out
}
