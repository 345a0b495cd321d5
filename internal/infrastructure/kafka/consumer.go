package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Message is the part of a Kafka record handlers see.
type Message struct {
	Key       []byte
	Value     []byte
	EventType string
}

type MessageHandler func(ctx context.Context, msg Message) error

type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	// FromLatest skips history when the group has no committed offset.
	FromLatest bool
}

type Consumer struct {
	reader *kafka.Reader
	logger *zap.Logger
}

func NewConsumer(cfg ConsumerConfig, logger *zap.Logger) *Consumer {
	startOffset := kafka.FirstOffset
	if cfg.FromLatest {
		startOffset = kafka.LastOffset
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
		StartOffset: startOffset,
	})
	return &Consumer{
		reader: reader,
		logger: logger.With(zap.String("topic", cfg.Topic), zap.String("group", cfg.GroupID)),
	}
}

// Consume reads until ctx is cancelled. Handler errors are logged and the
// message is skipped; there is no redelivery.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("error reading message", zap.Error(err))
			continue
		}

		if err := handler(ctx, toMessage(msg)); err != nil {
			c.logger.Error("error handling message",
				zap.ByteString("key", msg.Key),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
		}
	}
}

func toMessage(msg kafka.Message) Message {
	m := Message{Key: msg.Key, Value: msg.Value}
	for _, h := range msg.Headers {
		if h.Key == HeaderEventType {
			m.EventType = string(h.Value)
		}
	}
	return m
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
