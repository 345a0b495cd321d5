package kinesis

import (
	"encoding/json"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(seq, key string, data []byte) events.KinesisEventRecord {
	return events.KinesisEventRecord{
		EventID: "shardId-000000000000:" + seq,
		Kinesis: events.KinesisRecord{
			SequenceNumber: seq,
			PartitionKey:   key,
			Data:           data,
		},
	}
}

func TestNewEnvelope_RoundTrip(t *testing.T) {
	data, err := NewEnvelope("OrderPlaced", map[string]any{"order_id": "ORD-1"})
	require.NoError(t, err)

	msg, err := ToMessage(record("1", "ORD-1", data))

	require.NoError(t, err)
	assert.Equal(t, "OrderPlaced", msg.EventType)
	assert.Equal(t, []byte("ORD-1"), msg.Key)
	assert.JSONEq(t, `{"order_id":"ORD-1"}`, string(msg.Value))
}

func TestToMessage_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"not json", []byte("not-json")},
		{"missing event type", []byte(`{"data":{"order_id":"ORD-1"}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToMessage(record("1", "ORD-1", tt.data))
			assert.Error(t, err)
		})
	}
}

func TestBatch(t *testing.T) {
	good, err := json.Marshal(Envelope{EventType: "OrderPlaced", Data: json.RawMessage(`{}`)})
	require.NoError(t, err)

	records, failures := Batch(events.KinesisEvent{Records: []events.KinesisEventRecord{
		record("100", "ORD-1", good),
		record("101", "ORD-2", []byte("{")),
		record("102", "ORD-3", good),
	}})

	require.Len(t, records, 2)
	assert.Equal(t, "100", records[0].SequenceNumber)
	assert.Equal(t, "102", records[1].SequenceNumber)
	assert.Equal(t, []events.KinesisBatchItemFailure{{ItemIdentifier: "101"}}, failures)
}
