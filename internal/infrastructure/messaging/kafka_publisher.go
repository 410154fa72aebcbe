// Package messaging implements the message-bus boundary: the outbound topic
// publisher and the inbound risk.update consumer.
package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/application"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/config"
	apperrors "github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/errors"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/logger"
)

// KafkaPublisher sends JSON payloads to downstream topics, one lazily
// created writer per topic. Fire-and-forget from the caller's perspective;
// kafka-go provides the delivery guarantee.
type KafkaPublisher struct {
	cfg    config.KafkaConfig
	logger logger.Logger

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

var _ application.Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher for the configured brokers.
func NewKafkaPublisher(cfg config.KafkaConfig, log logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		cfg:     cfg,
		logger:  log.WithComponent("KafkaPublisher"),
		writers: make(map[string]*kafka.Writer),
	}
}

// Publish marshals the payload and writes it to the topic.
func (p *KafkaPublisher) Publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return apperrors.ErrPublish.WithCause(err)
	}

	if err := p.writer(topic).WriteMessages(ctx, kafka.Message{Value: data}); err != nil {
		p.logger.Error(ctx, "failed to publish message", err, logger.String("topic", topic))
		return apperrors.ErrPublish.WithCause(err)
	}

	p.logger.Debug(ctx, "published message", logger.String("topic", topic))
	return nil
}

func (p *KafkaPublisher) writer(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(p.cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    p.cfg.BatchSize,
		BatchTimeout: time.Duration(p.cfg.BatchTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(p.cfg.WriteTimeout) * time.Second,
		ReadTimeout:  time.Duration(p.cfg.ReadTimeout) * time.Second,
		RequiredAcks: kafka.RequiredAcks(p.cfg.RequiredAcks),
	}
	p.writers[topic] = w
	return w
}

// Close closes all topic writers.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, topic)
	}
	return firstErr
}
