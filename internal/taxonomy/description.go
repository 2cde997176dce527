package taxonomy

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	descriptionMarkdown = goldmark.New()
	descriptionPolicy   = bluemonday.UGCPolicy()
)

// DescriptionHTML renders the markdown description of tag as sanitised HTML.
// Tags without a description render empty.
func (m *Map) DescriptionHTML(tag string) template.HTML {
	e, ok := m.Lookup(tag)
	if !ok || strings.TrimSpace(e.Description) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := descriptionMarkdown.Convert([]byte(e.Description), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(e.Description))
	}
	return template.HTML(descriptionPolicy.SanitizeBytes(buf.Bytes()))
}
