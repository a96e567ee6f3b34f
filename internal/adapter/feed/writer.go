// Package feed publishes refreshed datasets to a Kafka topic for
// downstream consumers (reporting, alerting).
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/hydroatlas/hydroatlas/internal/config"
	"github.com/hydroatlas/hydroatlas/internal/domain"
)

// Writer produces the dataset feed to a Kafka topic.
// It implements engine.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured feed topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaFeedTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishDataset serializes and publishes a refreshed dataset in a single
// WriteMessages call.
func (w *Writer) PublishDataset(ctx context.Context, objects []domain.WaterObject, refreshedAt time.Time) error {
	if len(objects) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(objects))
	for i := range objects {
		msg, err := serializeToMessage(objects[i], refreshedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a WaterObject into a Kafka message keyed by
// object id, so consumers can compact per object.
func serializeToMessage(obj domain.WaterObject, refreshedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize water object: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(obj.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source_kind", Value: []byte(obj.SourceKind)},
			{Key: "refreshed_at", Value: []byte(refreshedAt.Format(time.RFC3339))},
		},
	}, nil
}
