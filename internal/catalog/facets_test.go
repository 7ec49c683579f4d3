package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hamono/internal/domain/model"
)

func TestComputeFacets_CountsAndOrder(t *testing.T) {
	products := []model.Product{
		{ID: 1, Brand: "貝印"},
		{ID: 2, Brand: "藤次郎"},
		{ID: 3, Brand: "貝印"},
		{ID: 4}, //brand未設定はカウントしない
	}

	f := ComputeFacets(products)

	assert.Len(t, f.Brands, 2)
	assert.Equal(t, Option{Label: "貝印", Value: "貝印", Count: 2}, f.Brands[0])
	assert.Equal(t, Option{Label: "藤次郎", Value: "藤次郎", Count: 1}, f.Brands[1])
}

func TestComputeFacets_TieBreaksByFirstOccurrence(t *testing.T) {
	products := []model.Product{
		{ID: 1, Material: model.MaterialCarbon},
		{ID: 2, Material: model.MaterialStainless},
	}

	f := ComputeFacets(products)

	assert.Equal(t, string(model.MaterialCarbon), f.Materials[0].Value)
	assert.Equal(t, string(model.MaterialStainless), f.Materials[1].Value)
}

func TestComputeFacets_TranslatesEnumeratedLabels(t *testing.T) {
	products := []model.Product{
		{ID: 1, Material: model.MaterialDamascus, ProductType: model.ProductTypeSantoku, HandleType: model.HandleTypeFolding},
	}

	f := ComputeFacets(products)

	assert.Equal(t, "ダマスカス鋼", f.Materials[0].Label)
	assert.Equal(t, "三徳包丁", f.ProductTypes[0].Label)
	assert.Equal(t, "折りたたみ式", f.HandleTypes[0].Label)
}

func TestComputeFacets_UnknownTokenFallsBackToRawValue(t *testing.T) {
	products := []model.Product{
		{ID: 1, Material: model.Material("obsidian")},
	}

	f := ComputeFacets(products)

	assert.Equal(t, "obsidian", f.Materials[0].Label)
}

func TestComputeFacets_EmptyInput(t *testing.T) {
	f := ComputeFacets(nil)

	assert.Empty(t, f.Brands)
	assert.Empty(t, f.Materials)
	assert.Empty(t, f.ProductTypes)
	assert.Empty(t, f.HandleTypes)
}

// ある次元のcountの合計 ＝ その次元に値を持つ商品数
func TestComputeFacets_CountConservation(t *testing.T) {
	products := []model.Product{
		{ID: 1, Material: model.MaterialCarbon},
		{ID: 2, Material: model.MaterialCarbon},
		{ID: 3, Material: model.MaterialCeramic},
		{ID: 4},
		{ID: 5, Material: model.MaterialTitanium},
	}

	f := ComputeFacets(products)

	sum := 0
	for _, opt := range f.Materials {
		sum += opt.Count
	}

	withValue := 0
	for _, p := range products {
		if p.Material != "" {
			withValue++
		}
	}

	assert.Equal(t, withValue, sum)
}

func TestDefaultFacets_NotEmpty(t *testing.T) {
	f := DefaultFacets()

	assert.NotEmpty(t, f.Brands)
	assert.NotEmpty(t, f.Materials)
	assert.NotEmpty(t, f.ProductTypes)
	assert.NotEmpty(t, f.HandleTypes)
}
