package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses redisURL and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return client, nil
}

// RedisCartStore keeps each list in a hash of lineKey -> JSON. Every write
// refreshes the TTL of the keys it touches; a zero TTL disables expiry.
type RedisCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{client: client, ttl: ttl}
}

func (s *RedisCartStore) listKey(userID string, list List) string {
	return fmt.Sprintf("cart:user:%s:%s", userID, list)
}

func (s *RedisCartStore) recentKey(userID string) string {
	return fmt.Sprintf("cart:user:%s:recent", userID)
}

func (s *RedisCartStore) promoKey(userID string) string {
	return fmt.Sprintf("cart:user:%s:promo", userID)
}

func (s *RedisCartStore) expire(ctx context.Context, pipe redis.Pipeliner, keys ...string) {
	if s.ttl <= 0 {
		return
	}
	for _, k := range keys {
		pipe.Expire(ctx, k, s.ttl)
	}
}

func (s *RedisCartStore) GetItems(ctx context.Context, userID string, list List) ([]LineItem, error) {
	if !list.Valid() {
		return nil, ErrUnknownList
	}
	values, err := s.client.HGetAll(ctx, s.listKey(userID, list)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "read %s items", list)
	}
	items := make([]LineItem, 0, len(values))
	for _, v := range values {
		var item LineItem
		if err := json.Unmarshal([]byte(v), &item); err != nil {
			return nil, errors.Wrap(err, "decode cart line")
		}
		items = append(items, item)
	}
	SortItems(items)
	return items, nil
}

func (s *RedisCartStore) PutItem(ctx context.Context, userID string, list List, item LineItem) error {
	if !list.Valid() {
		return ErrUnknownList
	}
	data, err := json.Marshal(item)
	if err != nil {
		return errors.Wrap(err, "encode cart line")
	}
	key := s.listKey(userID, list)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, item.Key, data)
		s.expire(ctx, pipe, key)
		return nil
	})
	return errors.Wrap(err, "put cart line")
}

func (s *RedisCartStore) DeleteItem(ctx context.Context, userID string, list List, key string) error {
	if !list.Valid() {
		return ErrUnknownList
	}
	return errors.Wrap(s.client.HDel(ctx, s.listKey(userID, list), key).Err(), "delete cart line")
}

func (s *RedisCartStore) ClearCart(ctx context.Context, userID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.listKey(userID, ListCart))
		pipe.Del(ctx, s.promoKey(userID))
		return nil
	})
	return errors.Wrap(err, "clear cart")
}

func (s *RedisCartStore) MoveItem(ctx context.Context, userID string, from, to List, item LineItem) error {
	if !from.Valid() || !to.Valid() {
		return ErrUnknownList
	}
	data, err := json.Marshal(item)
	if err != nil {
		return errors.Wrap(err, "encode cart line")
	}
	toKey := s.listKey(userID, to)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, s.listKey(userID, from), item.Key)
		pipe.HSet(ctx, toKey, item.Key, data)
		s.expire(ctx, pipe, toKey)
		return nil
	})
	return errors.Wrap(err, "move cart line")
}

func (s *RedisCartStore) GetRecentlyViewed(ctx context.Context, userID string) ([]string, error) {
	data, err := s.client.Get(ctx, s.recentKey(userID)).Bytes()
	if err == redis.Nil {
		return []string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read recently viewed")
	}
	ids := []string{}
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, errors.Wrap(err, "decode recently viewed")
	}
	return ids, nil
}

func (s *RedisCartStore) SetRecentlyViewed(ctx context.Context, userID string, productIDs []string) error {
	data, err := json.Marshal(productIDs)
	if err != nil {
		return errors.Wrap(err, "encode recently viewed")
	}
	return errors.Wrap(s.client.Set(ctx, s.recentKey(userID), data, s.ttl).Err(), "write recently viewed")
}

func (s *RedisCartStore) GetAppliedPromo(ctx context.Context, userID string) (*AppliedPromo, error) {
	data, err := s.client.Get(ctx, s.promoKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read applied promo")
	}
	var p AppliedPromo
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "decode applied promo")
	}
	return &p, nil
}

func (s *RedisCartStore) SetAppliedPromo(ctx context.Context, userID string, promo *AppliedPromo) error {
	if promo == nil {
		return errors.Wrap(s.client.Del(ctx, s.promoKey(userID)).Err(), "clear applied promo")
	}
	data, err := json.Marshal(promo)
	if err != nil {
		return errors.Wrap(err, "encode applied promo")
	}
	return errors.Wrap(s.client.Set(ctx, s.promoKey(userID), data, s.ttl).Err(), "write applied promo")
}

func (s *RedisCartStore) Close() error {
	return s.client.Close()
}
