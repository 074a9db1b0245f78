package utils

import (
	"context"
	"testing"

	"github.com/amaturano/event-management/config"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventPublisherWithoutBrokersIsNoop(t *testing.T) {
	p := NewEventPublisher(&config.Config{})
	_, ok := p.(noopPublisher)
	assert.True(t, ok)
	assert.NoError(t, p.Publish(context.Background(), "k", map[string]string{"a": "b"}))
	assert.NoError(t, p.Close())
}

func TestEventPublisherWithBrokers(t *testing.T) {
	p := NewEventPublisher(&config.Config{KafkaBrokers: []string{"kafka:9092"}, KafkaNotificationTopic: "event-notifications"})
	kp, ok := p.(*kafkaPublisher)
	require.True(t, ok)
	assert.Equal(t, "event-notifications", kp.writer.Topic)
	assert.Equal(t, kafka.TCP("kafka:9092").String(), kp.writer.Addr.String())
}
