package catalog

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeQuery_OmitsUnsetParams(t *testing.T) {
	c := Criteria{
		Brands:    NewStringSet("A", "B"),
		PriceFrom: i64(100),
	}

	values := EncodeQuery(c)

	assert.Equal(t, "A,B", values.Get("brands"))
	assert.Equal(t, "100", values.Get("priceFrom"))

	//未設定のパラメータは出さない
	for _, key := range []string{"materials", "productTypes", "handleTypes", "categoryId", "priceTo", "q"} {
		_, ok := values[key]
		assert.False(t, ok, key)
	}
}

func TestEncodeQueryString_EmptyCriteria(t *testing.T) {
	assert.Equal(t, "", EncodeQueryString(Criteria{}))
}

func TestDecodeQuery_RoundTrip(t *testing.T) {
	c := Criteria{
		Query:        "三徳",
		CategoryID:   3,
		PriceFrom:    i64(1500),
		PriceTo:      i64(12000),
		Brands:       NewStringSet("貝印", "藤次郎"),
		Materials:    NewStringSet("damascus_steel"),
		ProductTypes: NewStringSet("santoku", "chef_knife"),
		HandleTypes:  NewStringSet("fixed"),
	}

	got := DecodeQuery(EncodeQuery(c))

	assert.True(t, c.Equal(got))
}

func TestDecodeQuery_RoundTripEmpty(t *testing.T) {
	got := DecodeQuery(EncodeQuery(Criteria{}))

	assert.True(t, got.IsEmpty())
}

func TestDecodeQuery_MalformedNumbersBecomeUnset(t *testing.T) {
	values, err := url.ParseQuery("priceFrom=abc&priceTo=12x&categoryId=banana&brands=A")
	assert.NoError(t, err)

	c := DecodeQuery(values)

	assert.Nil(t, c.PriceFrom)
	assert.Nil(t, c.PriceTo)
	assert.Zero(t, c.CategoryID)
	assert.True(t, c.Brands.Has("A"))
}

func TestDecodeQuery_AbsentSetParamIsEmptySet(t *testing.T) {
	c := DecodeQuery(url.Values{})

	assert.Zero(t, c.Brands.Len())
	assert.Zero(t, c.Materials.Len())
}

func TestDecodeQuery_CommaSplitSkipsEmptyTokens(t *testing.T) {
	values, _ := url.ParseQuery("materials=carbon_steel,,%20,ceramic")

	c := DecodeQuery(values)

	assert.Equal(t, 2, c.Materials.Len())
	assert.True(t, c.Materials.Has("carbon_steel"))
	assert.True(t, c.Materials.Has("ceramic"))
}

func TestDecodeQuery_IgnoresUnknownKeys(t *testing.T) {
	values, _ := url.ParseQuery("utm_source=mail&q=knife")

	c := DecodeQuery(values)

	assert.Equal(t, "knife", c.Query)
}

func TestCriteria_WithToggledCopiesSet(t *testing.T) {
	base := Criteria{Brands: NewStringSet("A")}

	toggled := base.WithToggled(FacetBrands, "B")

	assert.True(t, toggled.Brands.Has("B"))
	assert.False(t, base.Brands.Has("B"))
}

func TestCriteria_ToggleTwiceRemoves(t *testing.T) {
	c := Criteria{}.WithToggled(FacetMaterials, "ceramic").WithToggled(FacetMaterials, "ceramic")

	assert.Zero(t, c.Materials.Len())
}

func TestCriteria_Reset(t *testing.T) {
	c := Criteria{Query: "knife", Brands: NewStringSet("A"), PriceFrom: i64(100)}

	assert.True(t, c.Reset().IsEmpty())
}
