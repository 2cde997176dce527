package handlers

import (
	"html/template"

	"meusensia.com.br/sensia-web/internal/nav"
	"meusensia.com.br/sensia-web/internal/seo"
)

// PageData is the view model every page hands to the shared layout.
type PageData struct {
	Title     string
	Lang      string
	SEO       SEOData
	Analytics Analytics
	CSRFToken string

	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb

	// Optional per-page view model payloads
	Listings any
	Stores   any
	Property any
	Contact  any
	Content  any
}

// SEOData is the head metadata of a page.
type SEOData struct {
	seo.Meta
	Robots string
	JSONLD []template.JS
}

// NewPageData fills the layout fields shared by all pages.
func NewPageData(lang, path, title, description string, analytics Analytics) PageData {
	return PageData{
		Title:       title,
		Lang:        lang,
		Analytics:   analytics,
		Path:        path,
		Nav:         nav.Build(path),
		Breadcrumbs: nav.Breadcrumbs(path),
		SEO: SEOData{
			Meta:   seo.NewMeta(title, description, seo.SiteOrigin+path, ""),
			JSONLD: []template.JS{seo.Script(seo.RealEstateAgent(seo.SiteOrigin))},
		},
	}
}

// AddJSONLD appends structured data blocks.
func (p *PageData) AddJSONLD(docs ...map[string]any) {
	for _, d := range docs {
		p.SEO.JSONLD = append(p.SEO.JSONLD, seo.Script(d))
	}
}

// WithBreadcrumbSchema adds the BreadcrumbList mirroring p.Breadcrumbs.
func (p *PageData) WithBreadcrumbSchema(pageURL string) {
	if len(p.Breadcrumbs) == 0 {
		return
	}
	p.AddJSONLD(seo.BreadcrumbList(seo.BreadcrumbItems(seo.SiteOrigin, p.Breadcrumbs, pageURL)))
}
