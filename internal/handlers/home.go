package handlers

import (
	"meusensia.com.br/sensia-web/internal/cards"
	"meusensia.com.br/sensia-web/internal/forms"
	"meusensia.com.br/sensia-web/internal/seo"
)

// ListingsView is the payload of the listing pages and the results page.
type ListingsView struct {
	Heading string
	Cards   *cards.List
	MoreURL string
	States  []forms.Option
	Cities  []forms.Option
	Filters *FiltersView
}

// FiltersView is the filter modal of the results page.
type FiltersView struct {
	Statuses   []forms.CheckedChoice
	Amenities  []forms.CheckedChoice
	Tipologias []forms.CheckedChoice
	MinPrices  []forms.Option
	MaxPrices  []forms.Option
}

// BuildHomeData constructs the view model of the landing page, which lists
// every property.
func BuildHomeData(lang string, analytics Analytics, view ListingsView) PageData {
	p := NewPageData(lang, "/", "Sensia", "Com a Sensia, incorporadora premium da MRV&CO, seu apartamento é único!", analytics)
	p.Listings = view
	p.AddJSONLD(seo.WebPage("/", p.SEO.Title, p.SEO.Description, ""))
	return p
}
