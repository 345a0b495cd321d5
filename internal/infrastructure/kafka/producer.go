package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

// HeaderEventType carries the event name so consumers can filter without
// decoding the payload.
const HeaderEventType = "event-type"

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{writer: writer}
}

// Publish JSON-encodes event under key. Messages with the same key land on
// the same partition, so per-shopper order is preserved.
func (p *Producer) Publish(ctx context.Context, key, eventType string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrapf(err, "encode %s", eventType)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   data,
		Time:    time.Now(),
		Headers: []kafka.Header{{Key: HeaderEventType, Value: []byte(eventType)}},
	})
	return errors.Wrapf(err, "write %s to %s", eventType, p.writer.Topic)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
