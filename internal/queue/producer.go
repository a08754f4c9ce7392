// Package queue publishes computed billing records to Kafka.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"

	"github.com/Shopify/sarama"
	"github.com/rs/zerolog"
)

// BillingProducer writes one message per billing record, keyed by session id so that
// recalculations of a session land on the same partition.
type BillingProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewBillingProducer(brokers []string, topic string) (*BillingProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Timeout = 10 * time.Second
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1

	p, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return NewBillingProducerWith(p, topic), nil
}

func NewBillingProducerWith(p sarama.SyncProducer, topic string) *BillingProducer {
	return &BillingProducer{producer: p, topic: topic}
}

func (b *BillingProducer) Publish(ctx context.Context, rec models.BillingRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	partition, offset, err := b.producer.SendMessage(&sarama.ProducerMessage{
		Topic:     b.topic,
		Key:       sarama.StringEncoder(rec.SessionId),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: rec.CalculatedAt,
	})
	if err != nil {
		return fmt.Errorf("publish billing record %s: %w", rec.SessionId, err)
	}
	zerolog.Ctx(ctx).Debug().
		Str("session_id", rec.SessionId).
		Str("topic", b.topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("billing record published")
	return nil
}

func (b *BillingProducer) Close() error {
	return b.producer.Close()
}
