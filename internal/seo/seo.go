package seo

import "strings"

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
}

type Twitter struct {
	Card  string
	Site  string
	Image string
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	OG          OpenGraph
	Twitter     Twitter
}

// PageTitle suffixes title with the brand unless it already carries it.
func PageTitle(title string) string {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return "Sensia"
	case strings.Contains(title, "Sensia"):
		return title
	default:
		return title + " | Sensia"
	}
}

// NewMeta fills the social cards from the page basics.
func NewMeta(title, description, canonical, image string) Meta {
	title = PageTitle(title)
	m := Meta{
		Title:       title,
		Description: description,
		Canonical:   canonical,
		OG:          OpenGraph{Title: title, Description: description, Image: image, Type: "website"},
		Twitter:     Twitter{Card: "summary", Site: "@meusensia", Image: image},
	}
	if image != "" {
		m.Twitter.Card = "summary_large_image"
	}
	return m
}
