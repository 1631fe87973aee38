package redis

import (
	"context"
	"fmt"
	"strconv"

	"ourlog/internal/domain"

	"github.com/go-redis/redis/v8"
)

type RedisTradeStateCache struct {
	client *redis.Client
}

func NewTradeStateCache(client *redis.Client) *RedisTradeStateCache {
	return &RedisTradeStateCache{client: client}
}

func (r *RedisTradeStateCache) SetTradeStatus(ctx context.Context, tradeID int64, status domain.TradeStatus) error {
	key := fmt.Sprintf("trade:%d:status", tradeID)
	return r.client.Set(ctx, key, int(status), 0).Err()
}

// GetTradeStatus reports whether a status is cached at all; callers fall
// back to the database on a miss.
func (r *RedisTradeStateCache) GetTradeStatus(ctx context.Context, tradeID int64) (domain.TradeStatus, bool, error) {
	key := fmt.Sprintf("trade:%d:status", tradeID)

	result, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return domain.TradeOpen, false, nil
		}
		return domain.TradeOpen, false, err
	}

	status, err := strconv.Atoi(result)
	if err != nil {
		return domain.TradeOpen, false, err
	}

	return domain.TradeStatus(status), true, nil
}
