package forms

import (
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"meusensia.com.br/sensia-web/internal/format"
)

// Choice is a checkbox of the filter modal.
type Choice struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// Catalog holds the fixed choices of the filter modal.
type Catalog struct {
	Statuses   []Choice `yaml:"status"`
	Amenities  []Choice `yaml:"lazer"`
	Tipologias []Choice `yaml:"tipologia"`
	MinPrices  []int    `yaml:"min_prices"`
	MaxPrices  []int    `yaml:"max_prices"`
}

// DefaultCatalog returns the choices offered by the site.
func DefaultCatalog() Catalog {
	c := Catalog{
		Statuses: []Choice{
			{Value: "breve-lancamento", Label: "Breve Lançamento"},
			{Value: "em-obras", Label: "Em Obras"},
			{Value: "lancamento", Label: "Lançamento"},
			{Value: "pronto", Label: "Pronto"},
		},
		Amenities: []Choice{
			{Value: "piscina", Label: "Piscina"},
			{Value: "salao-de-festas", Label: "Salão de Festas"},
			{Value: "academia", Label: "Academia"},
		},
		Tipologias: []Choice{
			{Value: "1", Label: "1 quarto"},
			{Value: "2", Label: "2 quartos"},
			{Value: "3", Label: "3 quartos"},
		},
		MaxPrices: []int{700000, 800000, 900000, 1000000, 1500000, 2000000, 2500000},
	}
	for v := 450000; v <= 1000000; v += 50000 {
		c.MinPrices = append(c.MinPrices, v)
	}
	return c
}

// LoadCatalog decodes a YAML catalog. Sections missing from the document
// keep their defaults.
func LoadCatalog(r io.Reader) (Catalog, error) {
	var doc Catalog
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return Catalog{}, fmt.Errorf("forms: decode catalog: %w", err)
	}
	c := DefaultCatalog()
	if len(doc.Statuses) > 0 {
		c.Statuses = doc.Statuses
	}
	if len(doc.Amenities) > 0 {
		c.Amenities = doc.Amenities
	}
	if len(doc.Tipologias) > 0 {
		c.Tipologias = doc.Tipologias
	}
	if len(doc.MinPrices) > 0 {
		c.MinPrices = doc.MinPrices
	}
	if len(doc.MaxPrices) > 0 {
		c.MaxPrices = doc.MaxPrices
	}
	return c, nil
}

// MinPriceOptions lists the minimum price select, with a leading empty
// option.
func (c Catalog) MinPriceOptions(selected string) []Option {
	return priceOptions(c.MinPrices, selected, 0, false)
}

// MaxPriceOptions lists the maximum price select. When min parses, only
// values above it are offered.
func (c Catalog) MaxPriceOptions(min, selected string) []Option {
	lo, err := strconv.Atoi(min)
	return priceOptions(c.MaxPrices, selected, lo, err == nil)
}

func priceOptions(values []int, selected string, floor int, useFloor bool) []Option {
	out := []Option{{Value: "", Label: "Selecione", Selected: selected == ""}}
	for _, v := range values {
		if useFloor && v <= floor {
			continue
		}
		s := strconv.Itoa(v)
		out = append(out, Option{Value: s, Label: format.Price(v), Selected: s == selected})
	}
	return out
}

// Checked pairs each choice with whether it is in selected.
func Checked(choices []Choice, selected []string) []CheckedChoice {
	set := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		set[s] = struct{}{}
	}
	out := make([]CheckedChoice, len(choices))
	for i, c := range choices {
		_, ok := set[c.Value]
		out[i] = CheckedChoice{Choice: c, Checked: ok}
	}
	return out
}

// CheckedChoice is a Choice with its checked state.
type CheckedChoice struct {
	Choice
	Checked bool
}
