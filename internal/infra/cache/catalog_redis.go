package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hamono/internal/catalog"
	"hamono/internal/domain/model"
)

const (
	snapshotKeyPrefix = "catalog:snapshot:v:"
	versionKey        = "catalog:version"
)

// redisに置くスナップショットの形。totalも一緒に保存する。
type snapshotPayload struct {
	Products []model.Product `json:"products"`
	Total    int64           `json:"total"`
}

// カタログ取得元（DB）の手前に挟むredisキャッシュ。catalog.Sourceを実装する。
// キーにバージョンを含め、adminが商品を書き換えたらバージョンを上げて無効化する。
type CatalogRedisSource struct {
	inner  catalog.Source
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCatalogRedisSource(inner catalog.Source, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CatalogRedisSource {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogRedisSource{inner: inner, redis: client, ttl: ttl, logger: logger}
}

// redisにあればそれを返し、無ければDBから取ってredisに置く。
// redisが落ちていてもDBにフォールバックするだけで、エラーにはしない。
func (s *CatalogRedisSource) FetchAll(ctx context.Context, categoryID int64, limit int) ([]model.Product, int64, error) {
	version, err := s.version(ctx)
	if err != nil {
		s.logger.Warn("catalog cache version unavailable, falling back to db", zap.Error(err))
		return s.inner.FetchAll(ctx, categoryID, limit)
	}

	key := fmt.Sprintf("%s%d:c:%d:l:%d", snapshotKeyPrefix, version, categoryID, limit)

	if raw, err := s.redis.Get(ctx, key).Result(); err == nil {
		var payload snapshotPayload
		if err := json.Unmarshal([]byte(raw), &payload); err == nil {
			return payload.Products, payload.Total, nil
		}
		s.logger.Warn("broken catalog snapshot in redis, refetching", zap.String("key", key))
	}

	products, total, err := s.inner.FetchAll(ctx, categoryID, limit)
	if err != nil {
		return nil, 0, err
	}

	raw, err := json.Marshal(snapshotPayload{Products: products, Total: total})
	if err == nil {
		if err := s.redis.Set(ctx, key, raw, s.ttl).Err(); err != nil {
			s.logger.Warn("failed to cache catalog snapshot", zap.Error(err))
		}
	}

	return products, total, nil
}

// ブランド一覧はキャッシュしない（件数が小さく、取得も軽い）
func (s *CatalogRedisSource) Brands(ctx context.Context) ([]string, error) {
	return s.inner.Brands(ctx)
}

// Invalidateはバージョンを上げて既存スナップショットを全て無効にする。
// adminが商品を書き換えたときに呼ぶ。
func (s *CatalogRedisSource) Invalidate(ctx context.Context) {
	if _, err := s.redis.Incr(ctx, versionKey).Result(); err != nil {
		s.logger.Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}

func (s *CatalogRedisSource) version(ctx context.Context) (int64, error) {
	ver, err := s.redis.Get(ctx, versionKey).Int64()
	if err == nil && ver > 0 {
		return ver, nil
	}
	if err == redis.Nil {
		if err := s.redis.Set(ctx, versionKey, 1, 0).Err(); err == nil {
			return 1, nil
		}
	}
	return 0, fmt.Errorf("catalog cache version: %w", err)
}
