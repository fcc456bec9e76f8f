package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// PriceCache caches computed product price breakdowns. Misses and backend
// failures are both treated as cache misses: pricing always works without
// Redis, just slower.
type PriceCache interface {
	Get(ctx context.Context, productID uuid.UUID) ([]byte, bool)
	Set(ctx context.Context, productID uuid.UUID, payload []byte)
	Invalidate(ctx context.Context, productID uuid.UUID)
	InvalidateAll(ctx context.Context)
}

const priceCacheTTL = 60 * time.Second

type redisPriceCache struct {
	rdb *redis.Client
}

func NewPriceCache(rdb *redis.Client) PriceCache {
	return &redisPriceCache{rdb: rdb}
}

func priceKey(productID uuid.UUID) string {
	return "price:" + productID.String()
}

func (c *redisPriceCache) Get(ctx context.Context, productID uuid.UUID) ([]byte, bool) {
	payload, err := c.rdb.Get(ctx, priceKey(productID)).Bytes()
	if err != nil {
		return nil, false
	}
	return payload, true
}

func (c *redisPriceCache) Set(ctx context.Context, productID uuid.UUID, payload []byte) {
	if err := c.rdb.Set(ctx, priceKey(productID), payload, priceCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("product_id", productID.String()).Msg("price cache set failed")
	}
}

func (c *redisPriceCache) Invalidate(ctx context.Context, productID uuid.UUID) {
	if err := c.rdb.Del(ctx, priceKey(productID)).Err(); err != nil {
		log.Warn().Err(err).Msg("price cache invalidate failed")
	}
}

// InvalidateAll drops every cached price. Material price changes and product
// edits affect derived products, so scoped invalidation is not worth the
// bookkeeping at catalog sizes this system handles.
func (c *redisPriceCache) InvalidateAll(ctx context.Context) {
	iter := c.rdb.Scan(ctx, 0, "price:*", 200).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Warn().Err(err).Msg("price cache scan failed")
		return
	}
	if len(keys) > 0 {
		if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
			log.Warn().Err(err).Msg("price cache flush failed")
		}
	}
}
