package cms

import (
	"bytes"
	"html/template"
	"strconv"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	policy   = bluemonday.UGCPolicy()
)

// Render fills HTML, TOC and ETag from Body. Markdown is converted first;
// either way the result is sanitized, and h2/h3 headings get stable ids.
func (p *Page) Render() error {
	raw := p.Body
	if !strings.EqualFold(p.Format, "html") {
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(p.Body), &buf); err != nil {
			return err
		}
		raw = buf.String()
	}
	clean := policy.Sanitize(raw)
	out, toc, err := annotateHeadings(clean)
	if err != nil {
		return err
	}
	p.HTML = template.HTML(out)
	p.TOC = toc
	p.ETag = etag(out)
	return nil
}

func annotateHeadings(fragment string) (string, []Heading, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return "", nil, err
	}
	var (
		toc  []Heading
		used = map[string]int{}
		walk func(*html.Node)
	)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.H2 || n.DataAtom == atom.H3) {
			text := strings.TrimSpace(textContent(n))
			id := slugify(text)
			if id == "" {
				id = "secao"
			}
			if k := used[id]; k > 0 {
				used[id] = k + 1
				id += "-" + strconv.Itoa(k)
			} else {
				used[id] = 1
			}
			setAttr(n, "id", id)
			level := 2
			if n.DataAtom == atom.H3 {
				level = 3
			}
			toc = append(toc, Heading{ID: id, Text: text, Level: level})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	var buf bytes.Buffer
	for _, n := range nodes {
		walk(n)
		if err := html.Render(&buf, n); err != nil {
			return "", nil, err
		}
	}
	return buf.String(), toc, nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// slugify folds accents and joins words with hyphens: "Política de
// Privacidade" => "politica-de-privacidade".
func slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
