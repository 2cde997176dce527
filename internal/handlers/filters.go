package handlers

import (
	"strconv"

	"meusensia.com.br/sensia-web/internal/filter"
	"meusensia.com.br/sensia-web/internal/forms"
)

// BuildFilters pre-checks the filter modal from the current results filter.
func BuildFilters(c forms.Catalog, p filter.Params) *FiltersView {
	bedrooms := make([]string, len(p.Bedrooms))
	for i, b := range p.Bedrooms {
		bedrooms[i] = strconv.Itoa(b)
	}
	minPrice := numberString(p.MinPrice.Get())
	return &FiltersView{
		Statuses:   forms.Checked(c.Statuses, p.Statuses),
		Amenities:  forms.Checked(c.Amenities, p.Amenities),
		Tipologias: forms.Checked(c.Tipologias, bedrooms),
		MinPrices:  c.MinPriceOptions(minPrice),
		MaxPrices:  c.MaxPriceOptions(minPrice, numberString(p.MaxPrice.Get())),
	}
}

func numberString(v int, ok bool) string {
	if !ok {
		return ""
	}
	return strconv.Itoa(v)
}
