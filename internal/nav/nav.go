package nav

import (
	"path"
	"strings"
)

// HomeLabel is the first breadcrumb of every page.
const HomeLabel = "Sensia"

// Item represents a top-level navigation item.
type Item struct {
	Path     string // e.g. "/imoveis"
	LabelKey string // i18n key, e.g. "nav.imoveis"
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
}

// Crumb is a breadcrumb entry. The last crumb has no link.
type Crumb struct {
	Href   string
	Label  string
	Active bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Path: "/imoveis", LabelKey: "nav.imoveis"},
	{Path: "/lojas", LabelKey: "nav.lojas"},
	{Path: "/contato", LabelKey: "nav.contato"},
}

// Build renders navigation items with active state given the current path.
func Build(currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:     it.Path,
			LabelKey: it.LabelKey,
			Active:   isActive(it.Path, currentPath),
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	// "/imoveis" matches "/imoveis" and "/imoveis/..."
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs builds the trail for currentPath: "Sensia", then one crumb per
// path segment. Intermediate crumbs link to their prefix. The results page
// has no trail and returns nil.
func Breadcrumbs(currentPath string) []Crumb {
	if currentPath == "/resultados" {
		return nil
	}
	if currentPath == "" {
		currentPath = "/"
	}
	clean := path.Clean("/" + strings.TrimPrefix(currentPath, "/"))
	crumbs := []Crumb{{Href: "/", Label: HomeLabel, Active: clean == "/"}}
	if clean == "/" {
		return crumbs
	}
	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	href := ""
	for i, part := range parts {
		href += "/" + part
		crumbs = append(crumbs, Crumb{Href: href, Label: FormatSegment(part), Active: i == len(parts)-1})
	}
	return crumbs
}

// FormatSegment turns a path segment into a crumb label: two letter state
// codes are upper-cased, "imoveis" gets its accent back, and anything else
// is title cased word by word on hyphens.
func FormatSegment(seg string) string {
	switch {
	case seg == "":
		return seg
	case len([]rune(seg)) == 2:
		return strings.ToUpper(seg)
	case strings.EqualFold(seg, "imoveis"):
		return "Imóveis"
	}
	words := strings.Split(seg, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(strings.ToLower(w))
		words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return strings.Join(words, " ")
}
