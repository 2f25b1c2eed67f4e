package repository

import (
	"context"

	"SentinelConsole/internal/domain/models"
	domrepo "SentinelConsole/internal/domain/repository"
	pkgkafka "SentinelConsole/pkg/kafka"
)

// KafkaPublisher implements SnapshotPublisher for Kafka. Snapshots are keyed by
// view name so each view stays ordered within its partition.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

var _ domrepo.SnapshotPublisher = (*KafkaPublisher)(nil)

func (p *KafkaPublisher) PublishSnapshot(ctx context.Context, s *models.Snapshot) error {
	return p.producer.Publish(ctx, p.topic, []byte(s.View), s)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopPublisher drops snapshots; used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishSnapshot(context.Context, *models.Snapshot) error { return nil }
