package cards

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"golang.org/x/sync/errgroup"

	"meusensia.com.br/sensia-web/internal/listing"
	"meusensia.com.br/sensia-web/internal/taxonomy"
)

// DefaultPageSize is the number of cards shown before "load more".
const DefaultPageSize = 6

// TemplateName is the template executed for each card.
const TemplateName = "card_imovel"

const defaultCardTemplate = `{{define "card_imovel"}}<li class="card-imovel-li"><a href="{{.Path}}">
<div class="cards-card-image"><picture>
{{- if .Image.WebP}}<source type="image/webp" srcset="{{.Image.WebP}}">{{end -}}
<img loading="lazy" alt="{{.Image.Alt}}" src="{{.Image.Fallback}}"></picture></div>
<div class="cards-card-body">
{{- with .Availability}}<p class="availability-title" data-id="{{.}}">{{.}}</p>{{end -}}
{{- with .ListingName}}<p class="listing-name"><strong>{{.}}</strong></p>{{end -}}
{{- with .Location}}<p><span class="icon icon-endereco"><img data-icon-name="endereco" src="/icons/endereco.svg" alt="endereco" loading="lazy"></span>{{.}}</p>{{end -}}
<hr>
{{- with .Bedrooms}}<p><span class="icon icon-dormitorios"><img data-icon-name="dormitorios" src="/icons/dormitorios.svg" alt="dormitorios" loading="lazy"></span>{{.}}</p>{{end -}}
{{- with .Area}}<p><span class="icon icon-area"><img data-icon-name="area" src="/icons/area.svg" alt="area" loading="lazy"></span>{{.}}</p>{{end -}}
{{- with .Highlight}}<p><span class="icon icon-estrela"><img data-icon-name="estrela" src="/icons/estrela.svg" alt="estrela" loading="lazy"></span>{{.}}</p>{{end -}}
</div></a></li>{{end}}`

var defaultTemplate = template.Must(template.New("cards").Parse(defaultCardTemplate))

// Renderer turns records into card markup.
type Renderer struct {
	tmpl *template.Template
	tax  *taxonomy.Map
}

// NewRenderer returns a Renderer executing TemplateName from t, or the
// built-in card markup when t is nil or does not define it.
func NewRenderer(t *template.Template, tax *taxonomy.Map) *Renderer {
	if t == nil || t.Lookup(TemplateName) == nil {
		t = defaultTemplate
	}
	return &Renderer{tmpl: t, tax: tax}
}

// Render builds every card concurrently and returns the markup in input
// order.
func (r *Renderer) Render(ctx context.Context, records []listing.Record) ([]template.HTML, error) {
	out := make([]template.HTML, len(records))
	g, ctx := errgroup.WithContext(ctx)
	for i := range records {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := r.tmpl.ExecuteTemplate(&buf, TemplateName, Build(records[i], r.tax)); err != nil {
				return fmt.Errorf("cards: render %s: %w", records[i].Path, err)
			}
			out[i] = template.HTML(buf.String())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// RenderPage renders the first page of records into l, replacing any
// previous items. A count already displayed on l is kept, so re-filtering a
// list does not collapse cards the visitor loaded.
func (r *Renderer) RenderPage(ctx context.Context, l *List, records []listing.Record) error {
	l.Items = nil
	l.Total = len(records)
	if l.Total == 0 {
		return nil
	}
	if l.Displayed <= 0 {
		l.Displayed = l.pageLen(l.Total)
	}
	n := min(l.Displayed, l.Total)
	items, err := r.Render(ctx, records[:n])
	if err != nil {
		return err
	}
	l.Items = items
	return nil
}

// LoadMore renders the next page of records, appends it to l and returns the
// new items only.
func (r *Renderer) LoadMore(ctx context.Context, l *List, records []listing.Record) ([]template.HTML, error) {
	l.Total = len(records)
	from := min(l.Displayed, l.Total)
	to := min(from+l.pageLen(l.Total), l.Total)
	if from >= to {
		return nil, nil
	}
	items, err := r.Render(ctx, records[from:to])
	if err != nil {
		return nil, err
	}
	l.Items = append(l.Items, items...)
	l.Displayed = to
	return items, nil
}

// List is the state of one rendered card container.
type List struct {
	// PageSize is the number of cards added per page; zero shows everything.
	PageSize  int
	Displayed int
	Total     int
	Items     []template.HTML
}

// NewList returns a List with the given page size. Negative sizes fall back
// to DefaultPageSize.
func NewList(pageSize int) *List {
	if pageSize < 0 {
		pageSize = DefaultPageSize
	}
	return &List{PageSize: pageSize}
}

// HasMore reports whether a "load more" control should be shown.
func (l *List) HasMore() bool {
	return l.PageSize != 0 && l.Displayed < l.Total
}

// Remaining is the number of records not displayed yet.
func (l *List) Remaining() int {
	return max(l.Total-l.Displayed, 0)
}

func (l *List) pageLen(total int) int {
	if l.PageSize == 0 {
		return total
	}
	return l.PageSize
}
