package bus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// flushTimeoutMs bounds how long Close waits for in-flight messages.
const flushTimeoutMs = 5000

// KafkaSink produces updates to a Kafka topic, keyed by session so one
// session's updates stay ordered within a partition.
type KafkaSink struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaSink connects a producer to brokers (comma separated).
func NewKafkaSink(brokers, topic string) (*KafkaSink, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
	})
	if err != nil {
		return nil, fmt.Errorf("bus: create kafka producer: %w", err)
	}
	s := &KafkaSink{producer: producer, topic: topic}
	go s.deliveryReports()
	slog.Info("kafka producer initialized", "brokers", brokers, "topic", topic)
	return s, nil
}

// deliveryReports logs failed deliveries until the producer is closed.
func (s *KafkaSink) deliveryReports() {
	for e := range s.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				slog.Warn("kafka delivery failed", "topic", s.topic, "error", ev.TopicPartition.Error)
			}
		case kafka.Error:
			slog.Error("kafka producer error", "error", ev)
		}
	}
}

// Send enqueues the message; delivery is reported asynchronously.
func (s *KafkaSink) Send(_ context.Context, key string, payload []byte) error {
	topic := s.topic
	err := s.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          payload,
	}, nil)
	if err != nil {
		return fmt.Errorf("bus: kafka produce %s: %w", s.topic, err)
	}
	return nil
}

// Close flushes pending messages and shuts the producer down.
func (s *KafkaSink) Close() {
	if left := s.producer.Flush(flushTimeoutMs); left > 0 {
		slog.Warn("kafka messages not flushed", "count", left)
	}
	s.producer.Close()
	slog.Info("kafka producer closed")
}
