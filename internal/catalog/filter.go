package catalog

import (
	"strings"

	"hamono/internal/domain/model"
)

// Applyは商品列にcriteriaを適用した部分列を返す。
// 条件は全てANDで結合し、入力の相対順序を保つ。入力は変更しない。
// categoryOverrideが0以外ならcriteria.CategoryIDより優先する。
func Apply(products []model.Product, c Criteria, categoryOverride int64) []model.Product {
	categoryID := c.CategoryID
	if categoryOverride != 0 {
		categoryID = categoryOverride
	}

	query := strings.ToLower(strings.TrimSpace(c.Query))

	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if categoryID != 0 && p.CategoryID != categoryID {
			continue
		}
		if boundSet(c.PriceFrom) && p.Price < *c.PriceFrom {
			continue
		}
		if boundSet(c.PriceTo) && p.Price > *c.PriceTo {
			continue
		}
		if !matchesSet(c.Brands, p.Brand) {
			continue
		}
		if !matchesSet(c.Materials, string(p.Material)) {
			continue
		}
		if !matchesSet(c.ProductTypes, string(p.ProductType)) {
			continue
		}
		if !matchesSet(c.HandleTypes, string(p.HandleType)) {
			continue
		}
		if query != "" && !matchesQuery(p, query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// 集合が空なら無条件。空でなければ「値があり、かつ集合に含まれる」こと。
func matchesSet(set StringSet, value string) bool {
	if set.Len() == 0 {
		return true
	}
	if value == "" {
		return false
	}
	return set.Has(value)
}

// name/description/SKUへの部分一致（大文字小文字を区別しない）
func matchesQuery(p model.Product, query string) bool {
	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Description), query) ||
		strings.Contains(strings.ToLower(p.SKU), query)
}
