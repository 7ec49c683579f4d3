package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/schema"
)

//クエリパラメータ名はフロントと共有しているので変えないこと。

const (
	paramQuery        = "q"
	paramCategoryID   = "categoryId"
	paramPriceFrom    = "priceFrom"
	paramPriceTo      = "priceTo"
	paramBrands       = "brands"
	paramMaterials    = "materials"
	paramProductTypes = "productTypes"
	paramHandleTypes  = "handleTypes"
)

// schemaデコード用の中間形。集合はコンマ区切りなので別で処理する。
type queryForm struct {
	Query      string `schema:"q"`
	CategoryID int64  `schema:"categoryId"`
	PriceFrom  *int64 `schema:"priceFrom"`
	PriceTo    *int64 `schema:"priceTo"`
}

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// DecodeQueryはクエリ文字列をCriteriaに復元する。
// 数値が壊れていたら「未設定」に落とすだけで、エラーにはしない。
func DecodeQuery(values url.Values) Criteria {
	sanitized := url.Values{}
	for k, vs := range values {
		sanitized[k] = vs
	}
	dropMalformedInt(sanitized, paramCategoryID)
	dropMalformedInt(sanitized, paramPriceFrom)
	dropMalformedInt(sanitized, paramPriceTo)

	var form queryForm
	_ = queryDecoder.Decode(&form, sanitized)

	return Criteria{
		Query:        form.Query,
		CategoryID:   form.CategoryID,
		PriceFrom:    form.PriceFrom,
		PriceTo:      form.PriceTo,
		Brands:       splitSet(values.Get(paramBrands)),
		Materials:    splitSet(values.Get(paramMaterials)),
		ProductTypes: splitSet(values.Get(paramProductTypes)),
		HandleTypes:  splitSet(values.Get(paramHandleTypes)),
	}
}

// EncodeQueryはCriteriaをクエリパラメータにする。
// 未設定のフィールドはパラメータ自体を出さない（空文字のパラメータは作らない）。
func EncodeQuery(c Criteria) url.Values {
	values := url.Values{}

	if q := strings.TrimSpace(c.Query); q != "" {
		values.Set(paramQuery, q)
	}
	if c.CategoryID != 0 {
		values.Set(paramCategoryID, strconv.FormatInt(c.CategoryID, 10))
	}
	if boundSet(c.PriceFrom) {
		values.Set(paramPriceFrom, strconv.FormatInt(*c.PriceFrom, 10))
	}
	if boundSet(c.PriceTo) {
		values.Set(paramPriceTo, strconv.FormatInt(*c.PriceTo, 10))
	}
	setJoined(values, paramBrands, c.Brands)
	setJoined(values, paramMaterials, c.Materials)
	setJoined(values, paramProductTypes, c.ProductTypes)
	setJoined(values, paramHandleTypes, c.HandleTypes)

	return values
}

// 条件が空なら空文字列（`?`を付けない素のパス用）。
func EncodeQueryString(c Criteria) string {
	return EncodeQuery(c).Encode()
}

func splitSet(raw string) StringSet {
	if raw == "" {
		return StringSet{}
	}
	s := StringSet{}
	for _, v := range strings.Split(raw, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		s[v] = struct{}{}
	}
	return s
}

func setJoined(values url.Values, key string, s StringSet) {
	if s.Len() == 0 {
		return
	}
	values.Set(key, strings.Join(s.Values(), ","))
}

func dropMalformedInt(values url.Values, key string) {
	v := values.Get(key)
	if v == "" {
		values.Del(key)
		return
	}
	if _, err := strconv.ParseInt(v, 10, 64); err != nil {
		values.Del(key)
	}
}
