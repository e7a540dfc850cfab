package kafka

import (
	"context"
	"log/slog"
	"time"

	"github.com/GNSkier/MoonRabbit/internal/config"
	"github.com/GNSkier/MoonRabbit/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces observations to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes a single observation to the sink topic. The payload is
// forwarded as received from the upstream API, keyed by station so each
// station's observations land on one partition in order.
func (w *Writer) Publish(ctx context.Context, obs domain.Observation) error {
	return w.writer.WriteMessages(ctx, observationMessage(obs))
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// observationMessage maps an Observation onto a Kafka message.
func observationMessage(obs domain.Observation) kafkago.Message {
	return kafkago.Message{
		Key:   []byte(obs.StationID),
		Value: obs.Payload,
		Headers: []kafkago.Header{
			{Key: "station_id", Value: []byte(obs.StationID)},
			{Key: "retrieved_at", Value: []byte(obs.RetrievedAt.Format(time.RFC3339))},
		},
	}
}
