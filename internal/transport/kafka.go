// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package transport

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaConfig configures the Kafka transport.
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Kafka produces each batch as one record keyed by batch ID. Delivery is
// acknowledged when the leader accepts the record.
type Kafka struct {
	client producer
	topic  string
}

// NewKafka creates a producer client. Brokers are contacted lazily on the
// first Send.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: topic is required")
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "analytics-agent"
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(clientID),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProducerLinger(5*time.Millisecond),
		kgo.RequiredAcks(kgo.LeaderAck()),
		kgo.DisableIdempotentWrite(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return &Kafka{client: client, topic: cfg.Topic}, nil
}

// Send implements Transport.
func (k *Kafka) Send(ctx context.Context, b Batch) error {
	rec := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(b.ID),
		Value: b.Body,
		Headers: []kgo.RecordHeader{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "trigger", Value: []byte(b.Trigger)},
			{Key: "records", Value: []byte(strconv.Itoa(b.Records))},
		},
	}
	if err := k.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("failed to produce batch: %w", err)
	}
	return nil
}

// Close releases the client.
func (k *Kafka) Close() error {
	k.client.Close()
	return nil
}
