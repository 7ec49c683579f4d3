package catalog

import "sort"

// ファセット1次元分の選択値の集合。
// 変更は必ずコピーを返す（レンダリング中に共有しても安全にするため）。
type StringSet map[string]struct{}

func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		s[v] = struct{}{}
	}
	return s
}

func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s StringSet) Len() int {
	return len(s)
}

// 選択のON/OFFを切り替えた新しい集合を返す。元の集合は変更しない。
func (s StringSet) WithToggled(v string) StringSet {
	if v == "" {
		return s
	}
	out := make(StringSet, len(s)+1)
	for k := range s {
		out[k] = struct{}{}
	}
	if _, ok := out[v]; ok {
		delete(out, v)
	} else {
		out[v] = struct{}{}
	}
	return out
}

// 昇順で返す（集合自体に順序はないので、出力を決定的にするため）
func (s StringSet) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (s StringSet) Equal(other StringSet) bool {
	if len(s) != len(other) {
		return false
	}
	for v := range s {
		if !other.Has(v) {
			return false
		}
	}
	return true
}

// 絞り込み条件。全フィールドに「無条件」を表すゼロ値がある。
// priceの境界はnilまたは0以下で「未設定」扱い。
type Criteria struct {
	Query      string
	CategoryID int64
	PriceFrom  *int64
	PriceTo    *int64

	Brands       StringSet
	Materials    StringSet
	ProductTypes StringSet
	HandleTypes  StringSet
}

// ファセットの次元名（クエリパラメータ名と同じ）
type Facet string

const (
	FacetBrands       Facet = "brands"
	FacetMaterials    Facet = "materials"
	FacetProductTypes Facet = "productTypes"
	FacetHandleTypes  Facet = "handleTypes"
)

func (c Criteria) facetSet(f Facet) StringSet {
	switch f {
	case FacetBrands:
		return c.Brands
	case FacetMaterials:
		return c.Materials
	case FacetProductTypes:
		return c.ProductTypes
	case FacetHandleTypes:
		return c.HandleTypes
	default:
		return nil
	}
}

// 指定ファセットの値をトグルした新しいCriteriaを返す。
func (c Criteria) WithToggled(f Facet, value string) Criteria {
	switch f {
	case FacetBrands:
		c.Brands = c.Brands.WithToggled(value)
	case FacetMaterials:
		c.Materials = c.Materials.WithToggled(value)
	case FacetProductTypes:
		c.ProductTypes = c.ProductTypes.WithToggled(value)
	case FacetHandleTypes:
		c.HandleTypes = c.HandleTypes.WithToggled(value)
	}
	return c
}

// 価格帯を設定した新しいCriteriaを返す。nilは「未設定」。
func (c Criteria) WithPriceRange(from, to *int64) Criteria {
	c.PriceFrom = from
	c.PriceTo = to
	return c
}

func (c Criteria) WithCategory(categoryID int64) Criteria {
	c.CategoryID = categoryID
	return c
}

func (c Criteria) WithQuery(q string) Criteria {
	c.Query = q
	return c
}

// 全条件をクリア。
func (c Criteria) Reset() Criteria {
	return Criteria{}
}

// 何も絞り込んでいないか。
func (c Criteria) IsEmpty() bool {
	return c.Query == "" &&
		c.CategoryID == 0 &&
		!boundSet(c.PriceFrom) &&
		!boundSet(c.PriceTo) &&
		c.Brands.Len() == 0 &&
		c.Materials.Len() == 0 &&
		c.ProductTypes.Len() == 0 &&
		c.HandleTypes.Len() == 0
}

func (c Criteria) Equal(other Criteria) bool {
	return c.Query == other.Query &&
		c.CategoryID == other.CategoryID &&
		boundEqual(c.PriceFrom, other.PriceFrom) &&
		boundEqual(c.PriceTo, other.PriceTo) &&
		c.Brands.Equal(other.Brands) &&
		c.Materials.Equal(other.Materials) &&
		c.ProductTypes.Equal(other.ProductTypes) &&
		c.HandleTypes.Equal(other.HandleTypes)
}

// 0以下は「未設定」と同じ扱い（数値の下限ではなく仕様上の簡略化）
func boundSet(b *int64) bool {
	return b != nil && *b > 0
}

func boundEqual(a, b *int64) bool {
	if !boundSet(a) && !boundSet(b) {
		return true
	}
	if !boundSet(a) || !boundSet(b) {
		return false
	}
	return *a == *b
}
