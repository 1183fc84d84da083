package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/poi-address-fetch/internal/domain"
)

// Writer produces messages to a Kafka topic. It implements both
// pipeline.BatchLoader (candidate messages) and merge.Submitter (mutations).
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes multiple output events in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, events []domain.OutputEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i, e := range events {
		msgs[i] = outputToMessage(e)
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

// Submit queues one mutation, keyed by target so all updates for a place stay
// ordered on one partition.
func (w *Writer) Submit(ctx context.Context, m domain.Mutation) error {
	msg, err := serializeMutation(m)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write mutation: %w", err)
	}
	w.logger.Debug("mutation submitted", "target_id", m.TargetID, "kind", m.Kind)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func outputToMessage(e domain.OutputEvent) kafkago.Message {
	msg := kafkago.Message{Key: e.Key, Value: e.Value}
	for k, v := range e.Headers {
		msg.Headers = append(msg.Headers, kafkago.Header{Key: k, Value: []byte(v)})
	}
	return msg
}

// serializeMutation marshals a Mutation into a Kafka message.
func serializeMutation(m domain.Mutation) (kafkago.Message, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize mutation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(m.TargetID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "mutation_kind", Value: []byte(m.Kind)},
			{Key: "created_at", Value: []byte(m.CreatedAt.Format(time.RFC3339))},
		},
	}, nil
}
