package main

import (
	"context"
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"meusensia.com.br/sensia-web/internal/cards"
	"meusensia.com.br/sensia-web/internal/filter"
	"meusensia.com.br/sensia-web/internal/format"
	"meusensia.com.br/sensia-web/internal/listing"
	mw "meusensia.com.br/sensia-web/internal/middleware"
	"meusensia.com.br/sensia-web/internal/observability"
	"meusensia.com.br/sensia-web/internal/seo"
	"meusensia.com.br/sensia-web/internal/taxonomy"
)

// PropertyView is the property detail payload.
type PropertyView struct {
	Name        string
	Description string
	Image       cards.Picture
	Location    string
	Status      string
	Bedrooms    string
	Area        string
	Highlight   string
	PriceFrom   string
	Resolved    bool
	Features    []Feature
	BackURL     string
}

// Feature is one amenity of the "ficha técnica".
type Feature struct {
	Title       string
	Description template.HTML
}

// PropertyHandler renders /imovel/{slug}. Authoring URLs resolve to the same
// record.
func (a *app) PropertyHandler(w http.ResponseWriter, r *http.Request) {
	path := filter.NormalizePath(r.URL.Path)
	rec, tax, found, err := a.session(r).Lookup(r.Context(), path)
	if err != nil {
		a.dataError(w, r, err)
		return
	}
	if !found {
		a.NotFoundHandler(w, r)
		return
	}

	meta := propertyMeta(rec)
	resolveCtx, cancel := context.WithCancel(r.Context())
	go func() {
		defer cancel()
		meta.Resolve(tax)
	}()
	resolved := taxonomy.WaitForUpdate(resolveCtx, meta)
	cancel()
	if !resolved {
		observability.FromContext(r.Context()).Debug("property tags left unresolved", zap.String("path", path))
	}

	card := cards.Build(rec, tax)
	view := PropertyView{
		Name:        firstNonEmpty(rec.ListingName, rec.Title),
		Description: rec.Description,
		Image:       card.Image,
		Location:    meta.Get(taxonomy.MetaLocationCard),
		Status:      firstNonEmpty(card.Availability, meta.Get(taxonomy.MetaStatus)),
		Bedrooms:    meta.Get(taxonomy.MetaCardQuartos),
		Area:        card.Area,
		Highlight:   card.Highlight,
		Resolved:    resolved,
		BackURL:     firstNonEmpty(mw.GetSession(r).LastSearch, "/imoveis"),
	}
	if v, ok := rec.PriceMin.Get(); ok && v > 0 {
		view.PriceFrom = format.Price(v)
	}
	for _, tag := range rec.Amenities.Split() {
		view.Features = append(view.Features, Feature{
			Title:       tax.TitleOr(tag),
			Description: tax.DescriptionHTML(tag),
		})
	}

	vm := a.pageData(r, path, view.Name, rec.Description)
	vm.SEO.Meta = seo.NewMeta(view.Name, rec.Description, seo.SiteOrigin+path, card.Image.Fallback)
	vm.Property = view
	locality, region := "", ""
	if locs := listing.Locations(rec.LocationCard); len(locs) > 0 {
		locality = listing.HyphenatedToProperCity(locs[0].City)
		region = strings.ToUpper(locs[0].State)
	}
	vm.AddJSONLD(seo.Residence(view.Name, rec.Description, seo.SiteOrigin+path, card.Image.Fallback, locality, region))
	vm.WithBreadcrumbSchema(seo.SiteOrigin + path)
	renderPage(w, r, "imovel", vm)
}

// propertyMeta seeds the page metadata with the raw tag ids of rec.
func propertyMeta(rec listing.Record) *taxonomy.Meta {
	return taxonomy.NewMeta(map[string]string{
		taxonomy.MetaLocationCard: strings.Join(rec.LocationCard, ","),
		taxonomy.MetaStatus:       strings.Join(rec.Availability, ","),
		taxonomy.MetaAmenities:    strings.Join(rec.Amenities, ","),
		taxonomy.MetaCardQuartos:  strings.Join(rec.CardQuartos, ","),
	})
}
