package main

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"meusensia.com.br/sensia-web/internal/contact"
	"meusensia.com.br/sensia-web/internal/forms"
	mw "meusensia.com.br/sensia-web/internal/middleware"
	"meusensia.com.br/sensia-web/internal/observability"
)

const privacyPolicyPath = "/institucional/politica-privacidade"

// ContactView is the contact form payload.
type ContactView struct {
	Lang       string
	CSRFToken  string
	Form       contact.Form
	Errors     contact.FieldErrors
	BannerTone string // "success" or "error"
	BannerText string
	States     []forms.Option
	Cities     []forms.Option
	PrivacyURL string
}

// ContactHandler renders the empty contact form.
func (a *app) ContactHandler(w http.ResponseWriter, r *http.Request) {
	view, ok := a.contactView(w, r, contact.Form{})
	if !ok {
		return
	}
	a.renderContact(w, r, http.StatusOK, view)
}

// ContactSubmitHandler validates and delivers the form. htmx posts get the
// form fragment back; plain posts get the whole page.
func (a *app) ContactSubmitHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	lang := mw.Lang(r)
	form := contact.FormFromValues(r.PostForm)
	view, ok := a.contactView(w, r, form)
	if !ok {
		return
	}

	sub, fieldErrs, err := a.contact.Submit(r.Context(), mw.ClientIP(r), lang, form)
	status := http.StatusOK
	switch {
	case errors.Is(err, contact.ErrInvalid):
		status = http.StatusUnprocessableEntity
		view.Errors = fieldErrs
		view.BannerTone, view.BannerText = "error", contact.MsgInvalidForm
	case errors.Is(err, contact.ErrRateLimited):
		status = http.StatusTooManyRequests
		view.BannerTone, view.BannerText = "error", contact.MsgRateLimited
	case err != nil:
		status = http.StatusBadGateway
		view.BannerTone, view.BannerText = "error", contact.MsgSubmitFailed
	default:
		observability.FromContext(r.Context()).Info("contact submitted", zap.String("id", sub.ID))
		view.Form = contact.Form{}
		view.Cities = nil
		view.BannerTone, view.BannerText = "success", contact.MsgSuccess
	}
	a.renderContact(w, r, status, view)
}

func (a *app) contactView(w http.ResponseWriter, r *http.Request, form contact.Form) (ContactView, bool) {
	data, err := a.session(r).Listings(r.Context())
	if err != nil {
		a.dataError(w, r, err)
		return ContactView{}, false
	}
	return ContactView{
		Lang:       mw.Lang(r),
		CSRFToken:  mw.CSRFToken(r),
		Form:       form,
		States:     forms.StateOptions(data.Listings, data.Taxonomy, form.State),
		Cities:     forms.CityOptions(data.Listings, form.State, form.City),
		PrivacyURL: privacyPolicyPath,
	}, true
}

func (a *app) renderContact(w http.ResponseWriter, r *http.Request, status int, view ContactView) {
	if mw.IsHTMX(r.Context()) {
		renderTemplateStatus(w, r, status, "frag_contact_form", view)
		return
	}
	title := i18nOrDefault(view.Lang, "contato.title", "Fale com a Sensia")
	vm := a.pageData(r, "/contato", title, "")
	vm.Contact = view
	vm.WithBreadcrumbSchema(vm.SEO.Canonical)
	renderPageStatus(w, r, status, "contato", vm)
}
