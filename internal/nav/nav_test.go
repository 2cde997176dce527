package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreadcrumbs(t *testing.T) {
	crumbs := Breadcrumbs("/imoveis/mg/belo-horizonte")
	require.Len(t, crumbs, 4)
	assert.Equal(t, Crumb{Href: "/", Label: "Sensia"}, crumbs[0])
	assert.Equal(t, Crumb{Href: "/imoveis", Label: "Imóveis"}, crumbs[1])
	assert.Equal(t, Crumb{Href: "/imoveis/mg", Label: "MG"}, crumbs[2])
	assert.Equal(t, "Belo Horizonte", crumbs[3].Label)
	assert.True(t, crumbs[3].Active)
}

func TestBreadcrumbsEdges(t *testing.T) {
	assert.Nil(t, Breadcrumbs("/resultados"))

	home := Breadcrumbs("/")
	require.Len(t, home, 1)
	assert.True(t, home[0].Active)

	one := Breadcrumbs("/lojas/")
	require.Len(t, one, 2)
	assert.Equal(t, "Lojas", one[1].Label)
}

func TestFormatSegment(t *testing.T) {
	assert.Equal(t, "SP", FormatSegment("sp"))
	assert.Equal(t, "Imóveis", FormatSegment("IMOVEIS"))
	assert.Equal(t, "Sao Jose Dos Campos", FormatSegment("sao-JOSE-dos-campos"))
}

func TestBuildMarksActive(t *testing.T) {
	items := Build("/imoveis/mg")
	require.Len(t, items, len(Main))
	assert.True(t, items[0].Active)
	assert.False(t, items[1].Active)
}
