package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"meusensia.com.br/sensia-web/internal/forms"
	"meusensia.com.br/sensia-web/internal/listing"
	mw "meusensia.com.br/sensia-web/internal/middleware"
	"meusensia.com.br/sensia-web/internal/seo"
)

// StoresView is the store locator payload.
type StoresView struct {
	Heading string
	State   string
	City    string
	States  []forms.Option
	Cities  []forms.Option
	Stores  []StoreCard
}

// StoreCard is one store in the locator list.
type StoreCard struct {
	Path        string
	Title       string
	Description string
	Image       string
}

// StoresHandler renders /lojas, /lojas/{state} and /lojas/{state}/{city}.
func (a *app) StoresHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	state := strings.ToLower(chi.URLParam(r, "state"))
	city := strings.ToLower(chi.URLParam(r, "city"))

	sess := a.session(r)
	recs, err := sess.Stores(r.Context())
	if err != nil {
		a.dataError(w, r, err)
		return
	}
	tax, err := sess.Taxonomy(r.Context())
	if err != nil {
		a.dataError(w, r, err)
		return
	}

	view := StoresView{
		Heading: storesTitle(lang, state, city),
		State:   state,
		City:    city,
		States:  forms.StoreStateOptions(recs, tax, state),
		Cities:  forms.StoreCityOptions(recs, state, city),
	}
	for _, rec := range forms.StoresIn(recs, state, city) {
		view.Stores = append(view.Stores, StoreCard{
			Path:        rec.Path,
			Title:       firstNonEmpty(rec.Title, rec.ListingName, rec.Path),
			Description: rec.Description,
			Image:       rec.Image,
		})
	}

	path := r.URL.Path
	vm := a.pageData(r, path, view.Heading, "")
	vm.Stores = view
	vm.WithBreadcrumbSchema(seo.SiteOrigin + path)
	renderPage(w, r, "lojas", vm)
}

// StoreCityOptionsFrag lists the store cities of the selected state.
func (a *app) StoreCityOptionsFrag(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	sess := a.session(r)
	recs, err := sess.Stores(r.Context())
	if err != nil {
		a.dataError(w, r, err)
		return
	}
	renderTemplate(w, r, "frag_options", optionsView{
		Lang:        lang,
		Placeholder: i18nOrDefault(lang, "search.select_city", "Selecione a cidade"),
		Options:     forms.StoreCityOptions(recs, r.URL.Query().Get("state"), ""),
	})
}

// StoreSearchSubmitHandler redirects the locator form to /lojas/{state}[/{city}].
func (a *app) StoreSearchSubmitHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	target := forms.RedirectURL(forms.StoresRoot, r.PostFormValue("state"), r.PostFormValue("city"))
	if target == "" {
		target = forms.StoresRoot
	}
	mw.Redirect(w, r, target)
}

func storesTitle(lang, state, city string) string {
	base := i18nOrDefault(lang, "lojas.title", "Nossas lojas")
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
	return fmt.Sprintf(i18nOrDefault(lang, "lojas.in", "Lojas em %s"), where)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
