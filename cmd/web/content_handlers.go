package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"meusensia.com.br/sensia-web/internal/cms"
	mw "meusensia.com.br/sensia-web/internal/middleware"
	"meusensia.com.br/sensia-web/internal/observability"
)

// ContentHandler renders institutional pages from the CMS. The page ETag and
// update time answer conditional requests with 304.
func (a *app) ContentHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	page, err := a.cms.GetPage(r.Context(), chi.URLParam(r, "slug"), lang)
	if errors.Is(err, cms.ErrNotFound) {
		a.NotFoundHandler(w, r)
		return
	}
	if err != nil {
		observability.FromContext(r.Context()).Error("cms page", zap.Error(err))
		mw.WriteError(w, r, http.StatusBadGateway, "content unavailable")
		return
	}

	w.Header().Set("Cache-Control", "private, no-cache")
	w.Header().Set("ETag", page.ETag)
	if !page.UpdatedAt.IsZero() {
		w.Header().Set("Last-Modified", page.UpdatedAt.UTC().Format(http.TimeFormat))
	}
	if notModified(r, page.ETag, page.UpdatedAt) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	vm := a.pageData(r, r.URL.Path, page.Title, firstNonEmpty(page.Description, page.Summary))
	vm.Content = page
	vm.WithBreadcrumbSchema(vm.SEO.Canonical)
	renderPage(w, r, "content", vm)
}

// notModified applies If-None-Match first and If-Modified-Since only when no
// entity tag was sent.
func notModified(r *http.Request, etag string, updated time.Time) bool {
	if inm := r.Header.Get("If-None-Match"); inm != "" {
		for _, candidate := range strings.Split(inm, ",") {
			candidate = strings.TrimSpace(candidate)
			if candidate == "*" || candidate == etag || strings.TrimPrefix(candidate, "W/") == etag {
				return true
			}
		}
		return false
	}
	if ims := r.Header.Get("If-Modified-Since"); ims != "" && !updated.IsZero() {
		if t, err := http.ParseTime(ims); err == nil {
			return !updated.Truncate(time.Second).After(t)
		}
	}
	return false
}

// NotFoundHandler renders the 404 page.
func (a *app) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	msg := i18nOrDefault(lang, "error.not_found", "Página não encontrada")
	if mw.IsHTMX(r.Context()) {
		mw.WriteError(w, r, http.StatusNotFound, msg)
		return
	}
	vm := a.pageData(r, r.URL.Path, msg, "")
	vm.SEO.Robots = "noindex"
	vm.Breadcrumbs = nil
	renderPageStatus(w, r, http.StatusNotFound, "not_found", vm)
}
