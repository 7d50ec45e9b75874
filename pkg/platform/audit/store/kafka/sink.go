// Package kafka mirrors audit batches onto a Kafka topic for downstream
// consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "usersearch/pkg/platform/audit"
)

const DefaultTopic = "usersearch.audit"

// message is the record value. Field names are part of the topic contract.
type message struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Action    string `json:"action"`
	Requester string `json:"requester,omitempty"`
	Subject   string `json:"subject"`
	Matches   int    `json:"matches"`
	IP        string `json:"ip,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Sink produces one record per event, keyed by action so lookups of one kind
// stay ordered within a partition.
type Sink struct {
	client *kgo.Client
	topic  string
}

// New connects to brokers. The topic is created on first produce when the
// cluster allows it.
func New(brokers []string, topic string) (*Sink, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID("usersearch-audit"),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
		kgo.RecordDeliveryTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Sink{client: client, topic: topic}, nil
}

func (s *Sink) Append(ctx context.Context, events ...audit.Event) error {
	if len(events) == 0 {
		return nil
	}
	records := make([]*kgo.Record, 0, len(events))
	for _, e := range events {
		value, err := json.Marshal(message{
			ID:        e.ID.String(),
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
			Action:    string(e.Action),
			Requester: e.Requester.String(),
			Subject:   e.Subject,
			Matches:   e.Matches,
			IP:        e.IP,
			RequestID: e.RequestID,
		})
		if err != nil {
			return fmt.Errorf("marshal audit event: %w", err)
		}
		records = append(records, &kgo.Record{Key: []byte(e.Action), Value: value})
	}
	if err := s.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce audit events: %w", err)
	}
	return nil
}

// Ping checks that a broker is reachable.
func (s *Sink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *Sink) Close() error {
	s.client.Close()
	return nil
}
