package redis

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/portfoliotracker/internal/asset/domain"
	"github.com/wyfcoding/portfoliotracker/pkg/cache"
	"github.com/wyfcoding/portfoliotracker/pkg/logger"
)

const priceKeyPrefix = "asset_price:"

// PriceCache 基于 Redis 的现价缓存，按 symbol 缓存最新收盘价
type PriceCache struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

var _ domain.PriceCache = (*PriceCache)(nil)

func NewPriceCache(c *cache.RedisCache, ttl time.Duration) *PriceCache {
	return &PriceCache{cache: c, ttl: ttl}
}

// GetPrice 返回缓存价格；损坏的缓存值按未命中处理并删除
func (p *PriceCache) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, bool, error) {
	key := priceKeyPrefix + symbol
	val, err := p.cache.Get(ctx, key)
	if err != nil {
		return decimal.Zero, false, err
	}
	if val == "" {
		return decimal.Zero, false, nil
	}

	price, err := decimal.NewFromString(val)
	if err != nil {
		logger.Warn(ctx, "corrupt cached price dropped", "symbol", symbol, "value", val)
		_ = p.cache.Delete(ctx, key)
		return decimal.Zero, false, nil
	}
	return price, true, nil
}

func (p *PriceCache) SetPrice(ctx context.Context, symbol string, price decimal.Decimal) error {
	return p.cache.Set(ctx, priceKeyPrefix+symbol, price.String(), p.ttl)
}
