package kinesis

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"

	"github.com/example/ec-storefront/internal/infrastructure/kafka"
)

// Envelope frames an event on Kinesis, which has no record headers to carry
// the event type.
type Envelope struct {
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
}

// NewEnvelope encodes event for a Kinesis PutRecord call.
func NewEnvelope(eventType string, event any) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", eventType, err)
	}
	return json.Marshal(Envelope{EventType: eventType, Data: data})
}

// ToMessage converts a Kinesis record into the message shape the Kafka
// handlers consume. The partition key becomes the message key.
func ToMessage(record events.KinesisEventRecord) (kafka.Message, error) {
	var env Envelope
	if err := json.Unmarshal(record.Kinesis.Data, &env); err != nil {
		return kafka.Message{}, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	if env.EventType == "" {
		return kafka.Message{}, fmt.Errorf("envelope has no event_type")
	}
	return kafka.Message{
		Key:       []byte(record.Kinesis.PartitionKey),
		Value:     env.Data,
		EventType: env.EventType,
	}, nil
}

// Batch converts every record of a Kinesis event. Records that cannot be
// converted are returned as batch item failures, keyed by sequence number.
func Batch(kinesisEvent events.KinesisEvent) ([]Record, []events.KinesisBatchItemFailure) {
	var records []Record
	var failures []events.KinesisBatchItemFailure
	for _, r := range kinesisEvent.Records {
		msg, err := ToMessage(r)
		if err != nil {
			failures = append(failures, events.KinesisBatchItemFailure{ItemIdentifier: r.Kinesis.SequenceNumber})
			continue
		}
		records = append(records, Record{SequenceNumber: r.Kinesis.SequenceNumber, Message: msg})
	}
	return records, failures
}

// Record is a converted message with the sequence number to report on failure.
type Record struct {
	SequenceNumber string
	Message        kafka.Message
}
