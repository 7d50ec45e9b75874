//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	id "usersearch/pkg/domain"
	audit "usersearch/pkg/platform/audit"
	"usersearch/pkg/platform/audit/store/kafka"
	"usersearch/pkg/testutil/containers"
)

func TestSinkProducesEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	broker := containers.GetManager().GetRedpanda(t).Broker
	topic := "audit-" + uuid.NewString()

	sink, err := kafka.New([]string{broker}, topic)
	require.NoError(t, err)
	defer sink.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, sink.Ping(ctx))

	event := audit.Event{
		ID:        uuid.New(),
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Action:    audit.ActionIPSearch,
		Requester: id.UID("1"),
		Subject:   "10.0.0.1",
		Matches:   3,
	}
	require.NoError(t, sink.Append(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err0())
	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "ip_search", string(records[0].Key))

	var got map[string]any
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, event.ID.String(), got["id"])
	assert.Equal(t, "1", got["requester"])
	assert.Equal(t, "10.0.0.1", got["subject"])
	assert.EqualValues(t, 3, got["matches"])
}
