package seo

import (
	"encoding/json"
	"html/template"
	"strings"

	"meusensia.com.br/sensia-web/internal/nav"
)

// SiteOrigin is the public origin used in @id values.
const SiteOrigin = "https://meusensia.com.br"

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Script renders v as the body of a <script type="application/ld+json">.
func Script(v any) template.JS {
	return template.JS(JSON(v))
}

// RealEstateAgent describes the company.
func RealEstateAgent(origin string) map[string]any {
	return map[string]any{
		"@context":    "https://schema.org",
		"@type":       "RealEstateAgent",
		"name":        "Sensia Incorporadora",
		"description": "Com a Sensia, incorporadora premium da MRV&CO, seu apartamento é único! Venha conhecer e personalize o seu apartamento do seu jeito!",
		"url":         origin,
		"telephone":   "0900-728-9000",
		"address": map[string]any{
			"@type":           "PostalAddress",
			"streetAddress":   "Av. Raja Gabaglia, 2378 - Estoril",
			"addressLocality": "Belo Horizonte",
			"addressRegion":   "MG",
			"postalCode":      "30494-170",
			"addressCountry":  "BR",
		},
		"founder":            map[string]any{"@type": "Person", "name": "Rubens Menin Teixeira de Souza"},
		"foundingDate":       "1979-10-01",
		"parentOrganization": map[string]any{"@type": "Organization", "name": "MRV"},
		"sameAs": []string{
			"https://www.facebook.com/meusensia",
			"https://www.instagram.com/meusensia",
			"https://www.youtube.com/meusensia",
		},
	}
}

// WebPage describes the current page with the site search action.
func WebPage(path, title, description, image string) map[string]any {
	page := map[string]any{
		"@type":      "WebPage",
		"@id":        SiteOrigin + path,
		"url":        SiteOrigin + path,
		"name":       title,
		"inLanguage": "pt-BR",
		"isPartOf":   map[string]any{"@id": SiteOrigin + "/#website"},
		"potentialAction": map[string]any{
			"@type":       "SearchAction",
			"target":      SiteOrigin + "/resultados?s={search_term_string}",
			"query-input": "required name=search_term_string",
		},
		"publisher": map[string]any{"@id": SiteOrigin + "/#organization"},
	}
	if description != "" {
		page["description"] = description
	}
	if image != "" {
		page["image"] = image
	}
	return map[string]any{"@context": "https://schema.org", "@graph": []any{page}}
}

// CollectionPage marks listing pages.
func CollectionPage(path string) map[string]any {
	return map[string]any{
		"@context": "https://schema.org",
		"@graph": []any{map[string]any{
			"@type": "CollectionPage",
			"@id":   SiteOrigin + path,
			"url":   SiteOrigin + path,
		}},
	}
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// BreadcrumbItems maps crumbs onto absolute URLs. The last item points at
// the full page URL, query included.
func BreadcrumbItems(origin string, crumbs []nav.Crumb, pageURL string) []BreadcrumbItem {
	origin = strings.TrimRight(origin, "/")
	items := make([]BreadcrumbItem, 0, len(crumbs))
	for i, c := range crumbs {
		item := origin + c.Href
		if i == len(crumbs)-1 && i > 0 && pageURL != "" {
			item = pageURL
		}
		items = append(items, BreadcrumbItem{Name: c.Label, Item: item})
	}
	return items
}

// Residence describes a property detail page.
func Residence(name, description, url, image, locality, region string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "ApartmentComplex",
		"name":     name,
	}
	if description != "" {
		m["description"] = description
	}
	if url != "" {
		m["url"] = url
	}
	if image != "" {
		m["image"] = image
	}
	if locality != "" || region != "" {
		m["address"] = map[string]any{
			"@type":           "PostalAddress",
			"addressLocality": locality,
			"addressRegion":   region,
			"addressCountry":  "BR",
		}
	}
	return m
}
