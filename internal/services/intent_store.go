package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"checkout-service/internal/domain"

	"github.com/go-redis/redis/v8"
)

type IntentStoreInterface interface {
	Put(ctx context.Context, intent domain.PaymentIntent) error
	// Get returns nil without error once the intent has expired.
	Get(ctx context.Context, orderID uint64) (*domain.PaymentIntent, error)
}

// RedisIntentStore keeps the expected-payment tuple for each pending order
// under a TTL. Expiry bounds the manual-external payment window; the order
// row itself stays pending for later webhook or manual reconciliation.
type RedisIntentStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisIntentStore(rdb *redis.Client, ttl time.Duration) *RedisIntentStore {
	return &RedisIntentStore{rdb: rdb, ttl: ttl}
}

func intentKey(orderID uint64) string {
	return fmt.Sprintf("payment:intent:%d", orderID)
}

func (s *RedisIntentStore) Put(ctx context.Context, intent domain.PaymentIntent) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, intentKey(intent.OrderID), data, s.ttl).Err()
}

func (s *RedisIntentStore) Get(ctx context.Context, orderID uint64) (*domain.PaymentIntent, error) {
	data, err := s.rdb.Get(ctx, intentKey(orderID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var intent domain.PaymentIntent
	if err := json.Unmarshal([]byte(data), &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

var _ IntentStoreInterface = (*RedisIntentStore)(nil)
