package cartsync

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultRedisChannel = "cart:updated"

// RedisBroadcaster fans notifications out over Redis pub/sub.
type RedisBroadcaster struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger

	subs []*redis.PubSub
}

func NewRedisBroadcaster(client *redis.Client, channel string, logger *zap.Logger) *RedisBroadcaster {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisBroadcaster{client: client, channel: channel, logger: logger}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, n Notification) error {
	data, err := encode(n)
	if err != nil {
		return errors.Wrap(err, "encode notification")
	}
	return errors.Wrap(b.client.Publish(ctx, b.channel, data).Err(), "publish notification")
}

// Subscribe returns once the subscription is confirmed and delivers on a
// background goroutine.
func (b *RedisBroadcaster) Subscribe(ctx context.Context, handler Handler) error {
	sub := b.client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return errors.Wrap(err, "subscribe")
	}
	b.subs = append(b.subs, sub)

	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				n, err := decode([]byte(msg.Payload))
				if err != nil {
					b.logger.Warn("dropping malformed cart notification", zap.Error(err))
					continue
				}
				handler(ctx, n)
			}
		}
	}()
	return nil
}

func (b *RedisBroadcaster) Close() error {
	var firstErr error
	for _, sub := range b.subs {
		if err := sub.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	b.subs = nil
	return firstErr
}
