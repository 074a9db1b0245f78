package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/amaturano/event-management/config"
	"github.com/segmentio/kafka-go"
)

// EventPublisher writes JSON events keyed by a string.
type EventPublisher interface {
	Publish(ctx context.Context, key string, payload interface{}) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

// NewEventPublisher returns a Kafka-backed publisher, or a no-op one when no brokers are set.
func NewEventPublisher(cfg *config.Config) EventPublisher {
	if len(cfg.KafkaBrokers) == 0 {
		log.Println("ℹ️ KAFKA_BROKERS not set, notification events are not published")
		return noopPublisher{}
	}
	log.Printf("✅ Kafka publisher for topic %s on %v", cfg.KafkaNotificationTopic, cfg.KafkaBrokers)
	return &kafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaNotificationTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}}
}

func (p *kafkaPublisher) Publish(ctx context.Context, key string, payload interface{}) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value})
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (noopPublisher) Close() error                                     { return nil }
