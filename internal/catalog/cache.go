package catalog

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"hamono/internal/domain/model"
)

// カタログの取得元（DBやリモートのカタログサービス）。
// categoryID=0なら全カテゴリ。limitは1回で取る上限件数。
type Source interface {
	FetchAll(ctx context.Context, categoryID int64, limit int) ([]model.Product, int64, error)
	Brands(ctx context.Context) ([]string, error)
}

// 全商品スナップショットのインメモリキャッシュ。
// スナップショットは丸ごと差し替えるだけで、置いたスライスは以後変更しない。
// グローバルには置かず、必ずコンストラクタで組んで依存として渡すこと。
type Cache struct {
	source Source
	limit  int
	logger *zap.Logger

	mu       sync.Mutex
	products []model.Product
	loaded   bool
	fetchErr error

	//遅い古いレスポンスが新しい結果を上書きしないようにする連番
	nextSeq uint64
}

func NewCache(source Source, limit int, logger *zap.Logger) *Cache {
	if limit <= 0 {
		limit = DefaultFetchLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{source: source, limit: limit, logger: logger}
}

// 1回で取得する件数の上限。設定で上書きできる。
const DefaultFetchLimit = 1000

// Refreshはスナップショットを取り直して丸ごと差し替える。
// 取得に失敗したら空のスナップショット＋エラーを持つ（UI側で再試行を出す）。
// 並行して呼ばれた場合、後から始まった取得の結果だけが残る。
func (c *Cache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.nextSeq++
	seq := c.nextSeq
	c.mu.Unlock()

	products, total, err := c.source.FetchAll(ctx, 0, c.limit)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq < c.nextSeq {
		//この取得中にもっと新しい取得が始まっている。結果は捨てる。
		c.logger.Debug("discarding stale catalog fetch", zap.Uint64("seq", seq))
		return c.fetchErr
	}

	if err != nil {
		c.logger.Warn("catalog fetch failed", zap.Error(err))
		c.products = nil
		c.loaded = true
		c.fetchErr = err
		return err
	}

	if total > int64(len(products)) {
		c.logger.Warn("catalog snapshot truncated",
			zap.Int("fetched", len(products)),
			zap.Int64("total", total),
			zap.Int("limit", c.limit))
	}

	c.products = products
	c.loaded = true
	c.fetchErr = nil
	return nil
}

// Snapshotは現在のスナップショットを返す。未取得なら一度だけ取得する。
// エラー時は空のスナップショットとエラーフラグを返す（呼び出し側は空入力で動くこと）。
func (c *Cache) Snapshot(ctx context.Context) ([]model.Product, error) {
	c.mu.Lock()
	if c.loaded {
		products, err := c.products, c.fetchErr
		c.mu.Unlock()
		return products, err
	}
	c.mu.Unlock()

	_ = c.Refresh(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.products, c.fetchErr
}

// Invalidateは次のSnapshotで取り直させる（商品をadminが更新したときなど）。
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
}

// 直近の取得が失敗していたか。
func (c *Cache) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchErr
}
