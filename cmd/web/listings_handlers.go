package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"meusensia.com.br/sensia-web/internal/cards"
	"meusensia.com.br/sensia-web/internal/filter"
	"meusensia.com.br/sensia-web/internal/forms"
	handlersPkg "meusensia.com.br/sensia-web/internal/handlers"
	"meusensia.com.br/sensia-web/internal/listing"
	mw "meusensia.com.br/sensia-web/internal/middleware"
	"meusensia.com.br/sensia-web/internal/observability"
	"meusensia.com.br/sensia-web/internal/seo"
	"meusensia.com.br/sensia-web/internal/site"
)

// HomeHandler renders the landing page with every property.
func (a *app) HomeHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	view, ok := a.listingsView(w, r, r.URL)
	if !ok {
		return
	}
	view.Heading = i18nOrDefault(lang, "search.title", "Encontre seu imóvel")
	vm := handlersPkg.BuildHomeData(lang, a.analytics, view)
	vm.CSRFToken = mw.CSRFToken(r)
	renderPage(w, r, "home", vm)
}

// ListingsHandler renders /imoveis, /imoveis/{state} and /imoveis/{state}/{city}.
func (a *app) ListingsHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	view, ok := a.listingsView(w, r, r.URL)
	if !ok {
		return
	}
	_, p := filter.Resolve(filter.ParseParams(r.URL))
	title := listingsTitle(lang, p.State, p.City)
	view.Heading = title

	path := filter.NormalizePath(r.URL.Path)
	vm := a.pageData(r, path, title, i18nOrDefault(lang, "site.tagline", ""))
	vm.Listings = view
	vm.AddJSONLD(seo.CollectionPage(path))
	vm.WithBreadcrumbSchema(seo.SiteOrigin + path)
	renderPage(w, r, "listings", vm)
}

// ResultsHandler renders /resultados with the filter modal pre-filled from the
// query string. The search is remembered in the session.
func (a *app) ResultsHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	view, ok := a.listingsView(w, r, r.URL)
	if !ok {
		return
	}
	view.Heading = i18nOrDefault(lang, "results.title", "Resultados da busca")
	view.Filters = handlersPkg.BuildFilters(a.catalog, filter.ParseParams(r.URL))
	mw.GetSession(r).RememberSearch(r.URL.RequestURI())

	vm := a.pageData(r, filter.ResultsPath, view.Heading, "")
	vm.SEO.Robots = "noindex, follow"
	vm.Listings = view
	renderPage(w, r, "results", vm)
}

// cardsMoreView is the payload of the load more fragment.
type cardsMoreView struct {
	Lang    string
	Items   []template.HTML
	Cards   *cards.List
	MoreURL string
}

// CardsMoreFrag appends the next page of cards for the listing page in the
// "from" parameter. "shown" is the number of cards already on the page.
func (a *app) CardsMoreFrag(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := url.Parse(q.Get("from"))
	if err != nil || from.IsAbs() || from.Host != "" || !strings.HasPrefix(from.Path, "/") {
		mw.WriteError(w, r, http.StatusBadRequest, "invalid listing page")
		return
	}
	shown, err := strconv.Atoi(q.Get("shown"))
	if err != nil || shown < 0 {
		mw.WriteError(w, r, http.StatusBadRequest, "invalid card count")
		return
	}
	data, recs, err := a.listingsFor(r, from)
	if err != nil {
		a.dataError(w, r, err)
		return
	}
	set, err := templates()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	list := cards.NewList(a.cardsPage)
	list.Displayed = shown
	items, err := cards.NewRenderer(set.root, data.Taxonomy).LoadMore(r.Context(), list, recs)
	if err != nil {
		a.dataError(w, r, err)
		return
	}
	renderTemplate(w, r, "frag_cards_more", cardsMoreView{
		Lang:    mw.Lang(r),
		Items:   items,
		Cards:   list,
		MoreURL: moreURL(from, list.Displayed),
	})
}

// optionsView feeds the <option> fragments.
type optionsView struct {
	Lang        string
	Placeholder string
	Options     []forms.Option
}

// CityOptionsFrag lists the cities of the selected state for the search form.
func (a *app) CityOptionsFrag(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	data, err := a.session(r).Listings(r.Context())
	if err != nil {
		a.dataError(w, r, err)
		return
	}
	q := r.URL.Query()
	renderTemplate(w, r, "frag_options", optionsView{
		Lang:        lang,
		Placeholder: i18nOrDefault(lang, "search.select_city", "Selecione a cidade"),
		Options:     forms.CityOptions(data.Listings, q.Get("state"), q.Get("city")),
	})
}

// MaxPriceOptionsFrag refreshes the max price select once a min price is chosen.
func (a *app) MaxPriceOptionsFrag(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	renderTemplate(w, r, "frag_options", optionsView{
		Lang:    mw.Lang(r),
		Options: a.catalog.MaxPriceOptions(q.Get("minPrice"), q.Get("maxPrice")),
	})
}

// SearchSubmitHandler redirects the header search to /imoveis/{state}[/{city}].
func (a *app) SearchSubmitHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	target := forms.RedirectURL(forms.ListingsRoot, r.PostFormValue("state"), r.PostFormValue("city"))
	if target == "" {
		target = forms.ListingsRoot
	}
	mw.Redirect(w, r, target)
}

// FiltersSubmitHandler turns the filter modal into a /resultados URL.
func (a *app) FiltersSubmitHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	target := forms.SearchFromForm(r.PostForm).URL()
	mw.GetSession(r).RememberSearch(target)
	mw.Redirect(w, r, target)
}

// listingsView loads, filters and renders the first page of cards for u. It
// writes the error response itself and reports false on failure.
func (a *app) listingsView(w http.ResponseWriter, r *http.Request, u *url.URL) (handlersPkg.ListingsView, bool) {
	data, recs, err := a.listingsFor(r, u)
	if err != nil {
		a.dataError(w, r, err)
		return handlersPkg.ListingsView{}, false
	}
	set, err := templates()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return handlersPkg.ListingsView{}, false
	}
	list := cards.NewList(a.cardsPage)
	if err := cards.NewRenderer(set.root, data.Taxonomy).RenderPage(r.Context(), list, recs); err != nil {
		a.dataError(w, r, err)
		return handlersPkg.ListingsView{}, false
	}
	_, p := filter.Resolve(filter.ParseParams(u))
	return handlersPkg.ListingsView{
		Cards:   list,
		MoreURL: moreURL(u, list.Displayed),
		States:  forms.StateOptions(data.Listings, data.Taxonomy, p.State),
		Cities:  forms.CityOptions(data.Listings, p.State, p.City),
	}, true
}

// listingsFor returns the session data and the records selected by u.
func (a *app) listingsFor(r *http.Request, u *url.URL) (site.Data, []listing.Record, error) {
	sess := a.session(r)
	data, err := sess.Listings(r.Context())
	if err != nil {
		return site.Data{}, nil, err
	}
	return data, sess.Filter(data.Listings, u), nil
}

func (a *app) session(r *http.Request) *site.Session {
	if s := site.FromContext(r.Context()); s != nil {
		return s
	}
	return a.sites.Current()
}

// dataError answers a failed data load. A request the client abandoned gets
// no body.
func (a *app) dataError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	observability.FromContext(r.Context()).Warn("listing data unavailable", zap.Error(err))
	mw.WriteError(w, r, http.StatusServiceUnavailable, "listings unavailable")
}

// pageData fills the layout fields shared by every page.
func (a *app) pageData(r *http.Request, path, title, description string) handlersPkg.PageData {
	vm := handlersPkg.NewPageData(mw.Lang(r), path, title, description, a.analytics)
	vm.CSRFToken = mw.CSRFToken(r)
	return vm
}

func moreURL(from *url.URL, shown int) string {
	q := url.Values{}
	q.Set("from", from.RequestURI())
	q.Set("shown", strconv.Itoa(shown))
	return "/cards/more?" + q.Encode()
}

// listingsTitle is "Imóveis", "Imóveis em Minas Gerais" or
// "Imóveis em Belo Horizonte, MG".
func listingsTitle(lang, state, city string) string {
	base := i18nOrDefault(lang, "nav.imoveis", "Imóveis")
	if state == "" {
		return base
	}
	where := strings.ToUpper(state)
	if name, ok := listing.StateName(state); ok {
		where = name
	}
	if city != "" {
		where = listing.HyphenatedToProperCity(city) + ", " + strings.ToUpper(state)
	}
	return fmt.Sprintf(i18nOrDefault(lang, "listings.in", "Imóveis em %s"), where)
}
