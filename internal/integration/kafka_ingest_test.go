//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/GNSkier/MoonRabbit/internal/adapter/kafka"
	"github.com/GNSkier/MoonRabbit/internal/config"
	"github.com/GNSkier/MoonRabbit/internal/domain"
	"github.com/GNSkier/MoonRabbit/internal/observability"
	"github.com/GNSkier/MoonRabbit/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testSinkTopic = "nws-observations-test"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka launches a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err, "get broker addresses")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "find controller")

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func sinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

func readObservation(ctx context.Context, t *testing.T, consumer *kafkago.Reader) (kafkago.Message, map[string]string) {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return msg, headers
}

// --- stubs standing in for the NWS API ---

type fixedResolver struct {
	stations map[string]domain.Station
}

func (r *fixedResolver) NearestStation(_ context.Context, lat, lon float64) (domain.Station, error) {
	return r.stations[fmt.Sprintf("%v,%v", lat, lon)], nil
}

type fixedFetcher struct{}

func (f *fixedFetcher) LatestObservation(_ context.Context, stationID string) (domain.Observation, error) {
	payload := fmt.Sprintf(`{"properties":{"station":%q,"temperature":{"value":20.5}}}`, stationID)
	return domain.NewObservation(stationID, json.RawMessage(payload)), nil
}

// TestWriterPublishesObservation verifies the Kafka adapter round-trips an
// observation: raw payload as the value, station key, and both headers.
func TestWriterPublishesObservation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	retrieved := time.Date(2025, 6, 12, 15, 10, 0, 0, time.UTC)
	obs := domain.Observation{
		StationID:   "KDSM",
		Payload:     json.RawMessage(`{"properties":{"temperature":{"value":21.7}}}`),
		RetrievedAt: retrieved,
	}
	require.NoError(t, writer.Publish(ctx, obs))

	msg, headers := readObservation(ctx, t, sinkConsumer(t, broker))

	assert.Equal(t, "KDSM", string(msg.Key))
	assert.JSONEq(t, string(obs.Payload), string(msg.Value))
	assert.Equal(t, "KDSM", headers["station_id"])
	assert.Equal(t, retrieved.Format(time.RFC3339), headers["retrieved_at"])
}

// TestPipelinePublishesToKafka wires the pipeline with stubbed station and
// observation sources against real Kafka and verifies every discovered
// station's observation lands on the sink topic.
func TestPipelinePublishesToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	index := domain.RegionIndex{
		"IA": {{Lon: -94.471059, Lat: 41.330756}},
		"MN": {{Lon: -93.3654, Lat: 46.4418}},
	}
	resolver := &fixedResolver{stations: map[string]domain.Station{
		"41.330756,-94.471059": {ID: "KCIN"},
		"46.4418,-93.3654":     {ID: "KAIT"},
	}}

	p := pipeline.New(index, resolver, &fixedFetcher{}, writer,
		discardLogger(), observability.NewMetricsForTesting(), 0, time.Minute)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)

	seen := map[string]json.RawMessage{}
	for len(seen) < 2 {
		msg, headers := readObservation(ctx, t, consumer)
		seen[string(msg.Key)] = msg.Value

		assert.Equal(t, string(msg.Key), headers["station_id"])
		_, err := time.Parse(time.RFC3339, headers["retrieved_at"])
		assert.NoError(t, err, "retrieved_at should be valid RFC3339")
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	require.Contains(t, seen, "KCIN")
	require.Contains(t, seen, "KAIT")
	assert.JSONEq(t, `{"properties":{"station":"KCIN","temperature":{"value":20.5}}}`, string(seen["KCIN"]))
}
