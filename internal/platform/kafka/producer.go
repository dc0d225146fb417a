package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher sends events to a topic.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, evt CloudEvent) error
	Close() error
}

// Producer publishes CloudEvents to Kafka. Topic names are prefixed with the
// configured prefix.
type Producer struct {
	writer      *kafkago.Writer
	topicPrefix string
	logger      *zap.Logger
}

// NewProducer creates a Producer for brokers.
func NewProducer(brokers []string, topicPrefix string, logger *zap.Logger) *Producer {
	return &Producer{
		writer: &kafkago.Writer{
			Addr:                   kafkago.TCP(brokers...),
			Balancer:               &kafkago.Hash{},
			RequiredAcks:           kafkago.RequireOne,
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		},
		topicPrefix: topicPrefix,
		logger:      logger,
	}
}

// Topic returns the fully qualified topic name.
func (p *Producer) Topic(name string) string { return p.topicPrefix + name }

// PublishEvent writes evt keyed by its subject.
func (p *Producer) PublishEvent(ctx context.Context, topic string, evt CloudEvent) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal cloud event: %w", err)
	}

	msg := kafkago.Message{
		Topic: p.Topic(topic),
		Key:   []byte(evt.Subject),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "ce_type", Value: []byte(evt.Type)},
			{Key: "ce_id", Value: []byte(evt.ID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message to %s: %w", msg.Topic, err)
	}

	p.logger.Debug("event published",
		zap.String("topic", msg.Topic),
		zap.String("type", evt.Type),
		zap.String("subject", evt.Subject),
	)
	return nil
}

// Close flushes and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishEvent(context.Context, string, CloudEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
