package cartsync

import (
	"context"
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/example/ec-storefront/internal/infrastructure/kafka"
)

const EventCartUpdated = "CartUpdated"

var ErrAlreadySubscribed = errors.New("kafka broadcaster supports a single subscriber")

type kafkaProducer interface {
	Publish(ctx context.Context, key, eventType string, event any) error
}

type kafkaConsumer interface {
	Consume(ctx context.Context, handler kafka.MessageHandler) error
	Close() error
}

// KafkaBroadcaster publishes notifications keyed by user id. Every API
// instance should consume with its own group id so each one sees every
// notification.
type KafkaBroadcaster struct {
	producer kafkaProducer
	consumer kafkaConsumer
	logger   *zap.Logger

	mu         sync.Mutex
	subscribed bool
	wg         sync.WaitGroup
}

func NewKafkaBroadcaster(producer kafkaProducer, consumer kafkaConsumer, logger *zap.Logger) *KafkaBroadcaster {
	return &KafkaBroadcaster{producer: producer, consumer: consumer, logger: logger}
}

func (b *KafkaBroadcaster) Publish(ctx context.Context, n Notification) error {
	return b.producer.Publish(ctx, n.UserID, EventCartUpdated, n)
}

func (b *KafkaBroadcaster) Subscribe(ctx context.Context, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subscribed {
		return ErrAlreadySubscribed
	}
	b.subscribed = true

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		err := b.consumer.Consume(ctx, func(ctx context.Context, msg kafka.Message) error {
			if msg.EventType != "" && msg.EventType != EventCartUpdated {
				return nil
			}
			n, err := decode(msg.Value)
			if err != nil {
				return err
			}
			handler(ctx, n)
			return nil
		})
		if err != nil && ctx.Err() == nil {
			b.logger.Error("cart sync consumer stopped", zap.Error(err))
		}
	}()
	return nil
}

// Close stops the consumer, waits for the delivery goroutine and closes the
// producer when it can be closed.
func (b *KafkaBroadcaster) Close() error {
	err := b.consumer.Close()
	b.wg.Wait()
	if c, ok := b.producer.(io.Closer); ok {
		err = errors.Join(err, c.Close())
	}
	return err
}
