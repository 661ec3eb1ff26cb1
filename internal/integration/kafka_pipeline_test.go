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

	"github.com/couchcryptid/groundwater-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/groundwater-dashboard/internal/config"
	"github.com/couchcryptid/groundwater-dashboard/internal/domain"
	"github.com/couchcryptid/groundwater-dashboard/internal/mockdata"
	"github.com/couchcryptid/groundwater-dashboard/internal/observability"
	"github.com/couchcryptid/groundwater-dashboard/internal/pipeline"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testRechargeTopic = "test-recharge-events"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node KRaft broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("gwdash-test"))
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start kafka container")

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     3,
		ReplicationFactor: 1,
	}))
}

type publishedEvent struct {
	Event   domain.RechargeEvent
	Key     string
	Headers map[string]string
}

func readEvent(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedEvent {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from recharge topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var ev domain.RechargeEvent
	require.NoError(t, json.Unmarshal(msg.Value, &ev), "unmarshal recharge event")
	return publishedEvent{Event: ev, Key: string(msg.Key), Headers: headers}
}

// TestPipelinePublishesRechargeEvents loads the seeded mock network, detects
// recharge events and verifies every one reaches Kafka with its headers.
func TestPipelinePublishesRechargeEvents(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testRechargeTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaRechargeTopic: testRechargeTopic,
	}

	clock := clockwork.NewFakeClockAt(time.Date(2024, time.August, 31, 6, 0, 0, 0, time.UTC))
	domain.SetClock(clock)
	t.Cleanup(func() { domain.SetClock(clockwork.NewRealClock()) })

	loader := mockdata.NewLoader(mockdata.DefaultSeed, mockdata.DefaultStations, clock)
	stations, err := loader.LoadStations(ctx)
	require.NoError(t, err)
	expected := domain.DetectAllRechargeEvents(stations)
	require.NotEmpty(t, expected, "seeded network should contain recharge events")

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(loader, nil, writer, discardLogger(), metrics, pipeline.Options{SourceName: "mock", BatchSize: 10})
	require.NoError(t, p.Run(ctx))
	require.True(t, p.Ready())

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testRechargeTopic,
		GroupID:     fmt.Sprintf("test-recharge-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	byID := make(map[string]domain.RechargeEvent, len(expected))
	for _, ev := range expected {
		byID[ev.ID] = ev
	}

	for range expected {
		pe := readEvent(ctx, t, consumer)
		want, ok := byID[pe.Key]
		require.True(t, ok, "unexpected event key %s", pe.Key)
		delete(byID, pe.Key)

		assert.Equal(t, want.StationID, pe.Headers["station_id"])
		detectedAt, err := time.Parse(time.RFC3339, pe.Headers["detected_at"])
		require.NoError(t, err)
		assert.True(t, detectedAt.Equal(clock.Now()))

		assert.Equal(t, want.StationID, pe.Event.StationID)
		assert.Equal(t, want.Date, pe.Event.Date)
		assert.InDelta(t, want.LevelRiseM, pe.Event.LevelRiseM, 1e-9)
		assert.InDelta(t, want.EfficiencyPct, pe.Event.EfficiencyPct, 1e-9)
		assert.Equal(t, want.ResponseTime, pe.Event.ResponseTime)
	}
	assert.Empty(t, byID, "every detected event should be published")
}
