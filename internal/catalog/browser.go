package catalog

import (
	"context"
	"net/url"

	"hamono/internal/domain/model"
)

// Browserは「絞り込み中のカタログ閲覧」1つ分の状態。
// キャッシュ・条件・並び順を持ち、UI（ハンドラ）にはここ経由で公開する。
// シングルトンにせず、使う側が組み立てて注入する。
type Browser struct {
	cache *Cache

	criteria Criteria
	sortBy   SortField
	sortDir  Direction
}

func NewBrowser(cache *Cache) *Browser {
	return &Browser{
		cache:   cache,
		sortBy:  SortByCreatedAt,
		sortDir: Descending,
	}
}

// Productsは現在の条件で絞り込み・並び替えた商品列を返す。
// キャッシュが空（取得失敗を含む）なら空列とエラーを返す。
func (b *Browser) Products(ctx context.Context) ([]model.Product, error) {
	snapshot, err := b.cache.Snapshot(ctx)
	filtered := Apply(snapshot, b.criteria, 0)
	return SortProducts(filtered, b.sortBy, b.sortDir), err
}

// Facetsは現在のスナップショットから選択肢を集計する。
// 取得に失敗しているときは固定のデフォルトに落とす（エラー画面にしない）。
func (b *Browser) Facets(ctx context.Context) Facets {
	snapshot, err := b.cache.Snapshot(ctx)
	if err != nil {
		return DefaultFacets()
	}
	return ComputeFacets(snapshot)
}

func (b *Browser) Criteria() Criteria {
	return b.criteria
}

func (b *Browser) Toggle(f Facet, value string) {
	b.criteria = b.criteria.WithToggled(f, value)
}

func (b *Browser) SetPriceRange(from, to *int64) {
	b.criteria = b.criteria.WithPriceRange(from, to)
}

func (b *Browser) SetCategory(categoryID int64) {
	b.criteria = b.criteria.WithCategory(categoryID)
}

func (b *Browser) SetQuery(q string) {
	b.criteria = b.criteria.WithQuery(q)
}

func (b *Browser) ClearAll() {
	b.criteria = b.criteria.Reset()
}

func (b *Browser) SetSort(field SortField, dir Direction) {
	b.sortBy = field
	b.sortDir = dir
}

// Queryは現在の条件の共有可能なクエリ表現。
func (b *Browser) Query() url.Values {
	return EncodeQuery(b.criteria)
}

// ApplyQueryはクエリ文字列から条件を復元する（画面ロード時）。
func (b *Browser) ApplyQuery(values url.Values) {
	b.criteria = DecodeQuery(values)
}

// Refreshはカタログを取り直す（手動リトライ用）。
func (b *Browser) Refresh(ctx context.Context) error {
	return b.cache.Refresh(ctx)
}
