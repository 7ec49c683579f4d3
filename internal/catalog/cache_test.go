package catalog

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"hamono/internal/domain/model"
)

// テスト用のSource。呼び出しごとに次の応答を返す。
type fakeSource struct {
	mu      sync.Mutex
	results [][]model.Product
	errs    []error
	calls   int
}

func (s *fakeSource) FetchAll(ctx context.Context, categoryID int64, limit int) ([]model.Product, int64, error) {
	s.mu.Lock()
	call := s.calls
	s.calls++
	s.mu.Unlock()

	var err error
	if call < len(s.errs) {
		err = s.errs[call]
	}
	var products []model.Product
	if call < len(s.results) {
		products = s.results[call]
	}
	if err != nil {
		return nil, 0, err
	}
	return products, int64(len(products)), nil
}

func (s *fakeSource) Brands(ctx context.Context) ([]string, error) {
	return nil, nil
}

func TestCache_SnapshotFetchesOnce(t *testing.T) {
	src := &fakeSource{results: [][]model.Product{{{ID: 1}}}}
	c := NewCache(src, 10, nil)

	first, err := c.Snapshot(context.Background())
	assert.NoError(t, err)
	second, err := c.Snapshot(context.Background())
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.calls)
}

func TestCache_FetchFailureYieldsEmptyAndError(t *testing.T) {
	src := &fakeSource{errs: []error{errors.New("boom")}}
	c := NewCache(src, 10, nil)

	products, err := c.Snapshot(context.Background())

	assert.Error(t, err)
	assert.Empty(t, products)

	//エンジン側は空入力で普通に動く
	assert.Empty(t, Apply(products, Criteria{Brands: NewStringSet("A")}, 0))
	assert.Empty(t, ComputeFacets(products).Brands)
}

func TestCache_RefreshReplacesWholesale(t *testing.T) {
	src := &fakeSource{results: [][]model.Product{
		{{ID: 1}},
		{{ID: 2}, {ID: 3}},
	}}
	c := NewCache(src, 10, nil)

	_, _ = c.Snapshot(context.Background())
	assert.NoError(t, c.Refresh(context.Background()))

	products, err := c.Snapshot(context.Background())
	assert.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestCache_RecoversAfterFailedFetch(t *testing.T) {
	src := &fakeSource{
		results: [][]model.Product{nil, {{ID: 7}}},
		errs:    []error{errors.New("boom"), nil},
	}
	c := NewCache(src, 10, nil)

	_, err := c.Snapshot(context.Background())
	assert.Error(t, err)

	assert.NoError(t, c.Refresh(context.Background()))
	products, err := c.Snapshot(context.Background())
	assert.NoError(t, err)
	assert.Len(t, products, 1)
	assert.NoError(t, c.Err())
}

// 遅い1回目の応答が、先に終わった2回目の結果を上書きしないこと。
func TestCache_StaleFetchDoesNotOverwriteNewer(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	src := &sequencedSource{started: started, release: release}
	c := NewCache(src, 10, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = c.Refresh(context.Background()) //1回目（遅い）
	}()

	<-started //1回目がfetch中になるのを待つ
	assert.NoError(t, c.Refresh(context.Background())) //2回目（速い）

	close(release)
	wg.Wait()

	products, err := c.Snapshot(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(2), products[0].ID)
}

// 1回目の呼び出しだけreleaseまでブロックするSource。
type sequencedSource struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
}

func (s *sequencedSource) FetchAll(ctx context.Context, categoryID int64, limit int) ([]model.Product, int64, error) {
	s.mu.Lock()
	call := s.calls
	s.calls++
	s.mu.Unlock()

	if call == 0 {
		close(s.started)
		<-s.release
		return []model.Product{{ID: 1}}, 1, nil
	}
	return []model.Product{{ID: 2}}, 1, nil
}

func (s *sequencedSource) Brands(ctx context.Context) ([]string, error) {
	return nil, nil
}

func TestCache_InvalidateForcesRefetch(t *testing.T) {
	src := &fakeSource{results: [][]model.Product{{{ID: 1}}, {{ID: 2}}}}
	c := NewCache(src, 10, nil)

	_, _ = c.Snapshot(context.Background())
	c.Invalidate()
	products, _ := c.Snapshot(context.Background())

	assert.Equal(t, 2, src.calls)
	assert.Equal(t, int64(2), products[0].ID)
}

func TestBrowser_FacetsFallBackOnFetchFailure(t *testing.T) {
	src := &fakeSource{errs: []error{errors.New("boom")}}
	b := NewBrowser(NewCache(src, 10, nil))

	f := b.Facets(context.Background())

	assert.Equal(t, DefaultFacets(), f)
}

func TestBrowser_FilterSortThroughQuery(t *testing.T) {
	src := &fakeSource{results: [][]model.Product{{
		{ID: 1, Price: 100, Brand: "A"},
		{ID: 2, Price: 200, Brand: "B"},
		{ID: 3, Price: 300, Brand: "A"},
	}}}
	b := NewBrowser(NewCache(src, 10, nil))

	values, _ := url.ParseQuery("brands=A")
	b.ApplyQuery(values)
	b.SetSort(SortByPrice, Descending)

	products, err := b.Products(context.Background())
	assert.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, int64(300), products[0].Price)
	assert.Equal(t, int64(100), products[1].Price)

	//アドレスバーに反映するクエリ
	assert.Equal(t, "brands=A", b.Query().Encode())

	b.ClearAll()
	products, _ = b.Products(context.Background())
	assert.Len(t, products, 3)
}
