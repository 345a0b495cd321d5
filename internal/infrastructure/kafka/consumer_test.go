package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestToMessage_ReadsEventTypeHeader(t *testing.T) {
	msg := toMessage(kafka.Message{
		Key:   []byte("user-1"),
		Value: []byte(`{}`),
		Headers: []kafka.Header{
			{Key: "trace-id", Value: []byte("abc")},
			{Key: HeaderEventType, Value: []byte("OrderPlaced")},
		},
	})

	assert.Equal(t, Message{Key: []byte("user-1"), Value: []byte(`{}`), EventType: "OrderPlaced"}, msg)
}

func TestToMessage_NoHeader(t *testing.T) {
	msg := toMessage(kafka.Message{Key: []byte("k")})
	assert.Empty(t, msg.EventType)
}
