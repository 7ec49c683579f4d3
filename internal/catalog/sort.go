package catalog

import (
	"sort"

	"hamono/internal/domain/model"
)

type SortField string

const (
	SortByPrice SortField = "price"
	SortByName  SortField = "name"
	SortByBrand SortField = "brand"

	//デフォルトは新着順のキーになる作成日時
	SortByCreatedAt SortField = "created_at"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

func ParseSortField(s string) SortField {
	switch SortField(s) {
	case SortByPrice, SortByName, SortByBrand, SortByCreatedAt:
		return SortField(s)
	default:
		return SortByCreatedAt
	}
}

func ParseDirection(s string) Direction {
	if Direction(s) == Descending {
		return Descending
	}
	return Ascending
}

// SortProductsは指定フィールドと向きで並べた新しい列を返す。入力は変更しない。
// 安定ソートなので、キーが等しい要素は元の相対順序を保つ。
func SortProducts(products []model.Product, field SortField, dir Direction) []model.Product {
	out := make([]model.Product, len(products))
	copy(out, products)

	less := lessFunc(field)
	sort.SliceStable(out, func(i, j int) bool {
		if dir == Descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func lessFunc(field SortField) func(a, b model.Product) bool {
	switch field {
	case SortByPrice:
		return func(a, b model.Product) bool { return a.Price < b.Price }
	case SortByName:
		return func(a, b model.Product) bool { return a.Name < b.Name }
	case SortByBrand:
		//brand未設定は空文字として比較する（全商品を並べられるように）
		return func(a, b model.Product) bool { return a.Brand < b.Brand }
	default:
		return func(a, b model.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}
