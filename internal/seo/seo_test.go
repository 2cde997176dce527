package seo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meusensia.com.br/sensia-web/internal/nav"
)

func TestBreadcrumbListFromCrumbs(t *testing.T) {
	crumbs := nav.Breadcrumbs("/imoveis/mg/belo-horizonte")
	items := BreadcrumbItems("https://meusensia.com.br/", crumbs, "https://meusensia.com.br/imoveis/mg/belo-horizonte?x=1")
	require.Len(t, items, 4)
	assert.Equal(t, BreadcrumbItem{Name: "Sensia", Item: "https://meusensia.com.br/"}, items[0])
	assert.Equal(t, "https://meusensia.com.br/imoveis/mg", items[2].Item)
	assert.Equal(t, "https://meusensia.com.br/imoveis/mg/belo-horizonte?x=1", items[3].Item)

	var doc struct {
		Type  string `json:"@type"`
		Items []struct {
			Position int    `json:"position"`
			Name     string `json:"name"`
		} `json:"itemListElement"`
	}
	require.NoError(t, json.Unmarshal([]byte(JSON(BreadcrumbList(items))), &doc))
	assert.Equal(t, "BreadcrumbList", doc.Type)
	assert.Equal(t, 4, doc.Items[3].Position)
	assert.Equal(t, "Belo Horizonte", doc.Items[3].Name)
}

func TestWebPageCarriesSearchAction(t *testing.T) {
	out := JSON(WebPage("/imoveis", "Imóveis", "", ""))
	assert.Contains(t, out, `"@type":"SearchAction"`)
	assert.Contains(t, out, `"@id":"https://meusensia.com.br/imoveis"`)
	assert.NotContains(t, out, `"description"`)
}

func TestRealEstateAgent(t *testing.T) {
	out := JSON(RealEstateAgent("https://meusensia.com.br"))
	assert.Contains(t, out, `"@type":"RealEstateAgent"`)
	assert.Contains(t, out, `"addressRegion":"MG"`)
}

func TestPageTitle(t *testing.T) {
	assert.Equal(t, "Sensia", PageTitle(" "))
	assert.Equal(t, "Imóveis | Sensia", PageTitle("Imóveis"))
	assert.Equal(t, "Sensia Savassi", PageTitle("Sensia Savassi"))
	assert.Equal(t, "summary_large_image", NewMeta("x", "", "", "/a.jpg").Twitter.Card)
}
