package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/scram"
	platformlogger "github.com/zynerotech/ioteventarchive/logger"
)

// MessageWriter is the subset of *kafka.Writer used by KafkaProducer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducer struct {
	writer MessageWriter
	mu     sync.RWMutex
	closed bool
}

// NewProducer создает нового KafkaProducer на основе предоставленной конфигурации.
func NewProducer(cfg Config) (*KafkaProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}

	sharedTransport := &kafka.Transport{}
	if cfg.SASL.Enabled {
		algo := scram.SHA512
		if cfg.SASL.Mechanism == "SCRAM-SHA-256" {
			algo = scram.SHA256
		}
		mechanism, err := scram.Mechanism(algo, cfg.SASL.Username, cfg.SASL.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to create SASL mechanism: %w", err)
		}
		sharedTransport.SASL = mechanism
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		Transport:    sharedTransport,
		BatchSize:    cfg.Producer.BatchSize,
		BatchTimeout: cfg.Producer.BatchTimeout,
		WriteTimeout: cfg.Producer.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.Producer.RequiredAcks),
		Compression:  cfg.Producer.GetCompressionCodec(),
		// Retries belong to the trigger, not to the forwarder.
		MaxAttempts: 1,
	}

	return NewProducerWithWriter(writer), nil
}

// NewProducerWithWriter оборачивает готовый writer.
func NewProducerWithWriter(w MessageWriter) *KafkaProducer {
	return &KafkaProducer{writer: w}
}

func (p *KafkaProducer) Publish(ctx context.Context, topic, key string, value []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return errors.New("producer is closed")
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
}

// Close выполняет graceful shutdown producer
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	platformlogger.Component("kafka").Info().Msg("Closing Kafka producer...")

	// Закрываем writer, это дождется отправки всех буферизованных сообщений
	if err := p.writer.Close(); err != nil {
		platformlogger.Component("kafka").Error().Err(err).Msg("Error closing Kafka writer")
		return fmt.Errorf("failed to close writer: %w", err)
	}

	p.closed = true
	return nil
}
