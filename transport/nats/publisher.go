// Package nats publishes envelopes to a NATS subject named after the
// envelope's EventBusName.
package nats

import (
	"context"
	"fmt"
	"sync"
	"time"

	json "github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	platformlogger "github.com/zynerotech/ioteventarchive/logger"
	"github.com/zynerotech/ioteventarchive/transport"
)

// Config holds NATS connection configuration.
type Config struct {
	// URL is the NATS server URL (e.g., "nats://localhost:4222").
	URL           string        `mapstructure:"url"`
	Name          string        `mapstructure:"name"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Token         string        `mapstructure:"token"`
	Username      string        `mapstructure:"username"`
	Password      string        `mapstructure:"password"`
	FlushTimeout  time.Duration `mapstructure:"flush_timeout"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		Name:          "iot-ingestion",
		Timeout:       5 * time.Second,
		FlushTimeout:  2 * time.Second,
		MaxReconnects: 5,
	}
}

// Conn is the subset of *nats.Conn used by Publisher.
type Conn interface {
	PublishMsg(msg *nats.Msg) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// Connect dials the NATS server.
func Connect(cfg Config) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.Timeout(cfg.Timeout),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				platformlogger.Component("nats").Warn().Err(err).Msg("NATS disconnected")
			}
		}),
	}
	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}

// Publisher реализует transport.EventPublisher поверх NATS.
type Publisher struct {
	conn         Conn
	flushTimeout time.Duration
	metrics      transport.Metrics
	mu           sync.RWMutex
}

// NewPublisher создает Publisher поверх установленного соединения.
func NewPublisher(conn Conn, flushTimeout time.Duration) *Publisher {
	return &Publisher{
		conn:         conn,
		flushTimeout: flushTimeout,
		metrics:      &transport.NoOpMetrics{},
	}
}

// SetMetrics устанавливает интерфейс метрик
func (p *Publisher) SetMetrics(metrics transport.Metrics) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.metrics = metrics
	p.metrics.SetActiveProducers(1)
}

// Publish sends the envelope and flushes so that a server-side rejection
// surfaces within this call. The generated ID is set as Nats-Msg-Id.
func (p *Publisher) Publish(ctx context.Context, envelope transport.Envelope) (string, error) {
	start := time.Now()

	p.mu.RLock()
	metrics := p.metrics
	p.mu.RUnlock()

	subject := envelope.EventBusName
	defer func() {
		metrics.RecordPublishTime(subject, time.Since(start))
	}()

	data, err := json.Marshal(envelope)
	if err != nil {
		metrics.IncMessagesSent(subject, "error")
		return "", transport.NewSerializationError(err)
	}

	eventID := uuid.NewString()
	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, eventID)

	if err := p.conn.PublishMsg(msg); err != nil {
		metrics.IncMessagesSent(subject, "error")
		return "", transport.NewPublishError(subject, err)
	}

	if p.flushTimeout > 0 {
		flushCtx, cancel := context.WithTimeout(ctx, p.flushTimeout)
		defer cancel()
		if err := p.conn.FlushWithContext(flushCtx); err != nil {
			metrics.IncMessagesSent(subject, "error")
			return "", transport.NewPublishError(subject, err)
		}
	}

	metrics.IncMessagesSent(subject, "success")
	return eventID, nil
}

// Close drains the connection.
func (p *Publisher) Close() error {
	p.mu.RLock()
	metrics := p.metrics
	p.mu.RUnlock()

	metrics.SetActiveProducers(0)
	return p.conn.Drain()
}
