package catalog

import (
	"sort"

	"hamono/internal/domain/model"
)

// ファセットの選択肢。Countはその値を持つ商品数。
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Count int    `json:"count"`
}

type Facets struct {
	Brands       []Option `json:"brands"`
	Materials    []Option `json:"materials"`
	ProductTypes []Option `json:"product_types"`
	HandleTypes  []Option `json:"handle_types"`
}

//表示ラベル。brandは自由入力なのでそのまま表示する。

var materialLabels = map[string]string{
	string(model.MaterialStainless): "ステンレス鋼",
	string(model.MaterialCarbon):    "炭素鋼",
	string(model.MaterialDamascus):  "ダマスカス鋼",
	string(model.MaterialCeramic):   "セラミック",
	string(model.MaterialTitanium):  "チタン",
}

var productTypeLabels = map[string]string{
	string(model.ProductTypeChefKnife):    "牛刀",
	string(model.ProductTypePettyKnife):   "ペティナイフ",
	string(model.ProductTypeSantoku):      "三徳包丁",
	string(model.ProductTypeOutdoorKnife): "アウトドアナイフ",
	string(model.ProductTypePocketKnife):  "ポケットナイフ",
	string(model.ProductTypeSharpener):    "シャープナー",
	string(model.ProductTypeCuttingBoard): "まな板",
	string(model.ProductTypeAccessory):    "アクセサリー",
}

var handleTypeLabels = map[string]string{
	string(model.HandleTypeFixed):     "固定式",
	string(model.HandleTypeFolding):   "折りたたみ式",
	string(model.HandleTypeMultiTool): "マルチツール",
}

// ComputeFacetsは商品列から選択可能なファセットを集計する。
// 各次元とも出現数の多い順、同数なら初出順。空の入力なら空のリスト。
func ComputeFacets(products []model.Product) Facets {
	brands := newCounter(nil)
	materials := newCounter(materialLabels)
	productTypes := newCounter(productTypeLabels)
	handleTypes := newCounter(handleTypeLabels)

	for _, p := range products {
		brands.add(p.Brand)
		materials.add(string(p.Material))
		productTypes.add(string(p.ProductType))
		handleTypes.add(string(p.HandleType))
	}

	return Facets{
		Brands:       brands.options(),
		Materials:    materials.options(),
		ProductTypes: productTypes.options(),
		HandleTypes:  handleTypes.options(),
	}
}

// DefaultFacetsはカタログ取得に失敗したときのフォールバック。
// エラー画面にせず、最低限の選択肢で絞り込みUIを出し続けるためのもの。
func DefaultFacets() Facets {
	return Facets{
		Brands: []Option{
			{Label: "貝印", Value: "貝印"},
			{Label: "藤次郎", Value: "藤次郎"},
			{Label: "Victorinox", Value: "Victorinox"},
		},
		Materials: []Option{
			{Label: materialLabels[string(model.MaterialStainless)], Value: string(model.MaterialStainless)},
			{Label: materialLabels[string(model.MaterialCarbon)], Value: string(model.MaterialCarbon)},
			{Label: materialLabels[string(model.MaterialDamascus)], Value: string(model.MaterialDamascus)},
		},
		ProductTypes: []Option{
			{Label: productTypeLabels[string(model.ProductTypeChefKnife)], Value: string(model.ProductTypeChefKnife)},
			{Label: productTypeLabels[string(model.ProductTypeSantoku)], Value: string(model.ProductTypeSantoku)},
			{Label: productTypeLabels[string(model.ProductTypePettyKnife)], Value: string(model.ProductTypePettyKnife)},
		},
		HandleTypes: []Option{
			{Label: handleTypeLabels[string(model.HandleTypeFixed)], Value: string(model.HandleTypeFixed)},
			{Label: handleTypeLabels[string(model.HandleTypeFolding)], Value: string(model.HandleTypeFolding)},
			{Label: handleTypeLabels[string(model.HandleTypeMultiTool)], Value: string(model.HandleTypeMultiTool)},
		},
	}
}

// 出現数の集計。初出順を覚えておいて同数のときのタイブレークに使う。
type counter struct {
	counts map[string]int
	order  []string
	labels map[string]string
}

func newCounter(labels map[string]string) *counter {
	return &counter{counts: map[string]int{}, labels: labels}
}

func (c *counter) add(value string) {
	if value == "" {
		return
	}
	if _, ok := c.counts[value]; !ok {
		c.order = append(c.order, value)
	}
	c.counts[value]++
}

func (c *counter) options() []Option {
	out := make([]Option, 0, len(c.order))
	for _, v := range c.order {
		out = append(out, Option{
			Label: c.label(v),
			Value: v,
			Count: c.counts[v],
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

func (c *counter) label(value string) string {
	if c.labels == nil {
		return value
	}
	if l, ok := c.labels[value]; ok {
		return l
	}
	return value
}
