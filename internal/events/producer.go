package events

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// Producer publishes audit events to a Kafka topic.
type Producer struct {
	producer *kafka.Producer
	topic    string
	logger   *slog.Logger
}

// NewProducer creates a Kafka producer for the audit topic.
func NewProducer(brokers, topic string, logger *slog.Logger) (*Producer, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  brokers,
		"enable.idempotence": true,
		"acks":               "all",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	producer := &Producer{producer: p, topic: topic, logger: logger}
	go producer.handleDeliveryReports()

	logger.Info("audit event producer initialized", "brokers", brokers, "topic", topic)
	return producer, nil
}

// Publish enqueues an event. Delivery failures are logged, not surfaced;
// audit events never fail the originating request.
func (p *Producer) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal audit event", "type", event.Type, "error", err)
		return
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &p.topic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(event.Email),
		Value: data,
	}
	if err := p.producer.Produce(msg, nil); err != nil {
		p.logger.Error("failed to enqueue audit event", "type", event.Type, "error", err)
	}
}

// Close flushes pending events and shuts the producer down.
func (p *Producer) Close() {
	p.producer.Flush(5000)
	p.producer.Close()
}

func (p *Producer) handleDeliveryReports() {
	for e := range p.producer.Events() {
		if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			p.logger.Error("audit event delivery failed",
				"topic", *m.TopicPartition.Topic,
				"error", m.TopicPartition.Error)
		}
	}
}
