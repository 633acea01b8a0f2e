package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	platformlogger "github.com/zynerotech/ioteventarchive/logger"
	platformmetrics "github.com/zynerotech/ioteventarchive/metrics"
	"github.com/zynerotech/ioteventarchive/transport"
	"github.com/zynerotech/ioteventarchive/transport/eventbridge"
	"github.com/zynerotech/ioteventarchive/transport/kafka"
	"github.com/zynerotech/ioteventarchive/transport/nats"
)

// App contains the initialized components shared by every invocation.
type App struct {
	Config    *Config
	Logger    *platformlogger.Logger
	Metrics   *platformmetrics.Metrics
	Publisher transport.EventPublisher
}

// metricsSetter is implemented by every publisher backend.
type metricsSetter interface {
	SetMetrics(metrics transport.Metrics)
}

// AppBuilder provides a fluent interface for building App instances
type AppBuilder struct {
	config    *Config
	logger    *platformlogger.Logger
	metrics   *platformmetrics.Metrics
	publisher transport.EventPublisher
	errors    []error
}

// NewBuilder creates a new AppBuilder with the given configuration
func NewBuilder(cfg *Config) *AppBuilder {
	return &AppBuilder{
		config: cfg,
		errors: make([]error, 0),
	}
}

// WithLogger initializes the global logger (required component)
func (b *AppBuilder) WithLogger() *AppBuilder {
	if b.logger != nil {
		return b
	}

	if err := platformlogger.InitGlobal(b.config.LoggerConfig()); err != nil {
		b.errors = append(b.errors, fmt.Errorf("init logger: %w", err))
		return b
	}

	b.logger = platformlogger.GetGlobal()
	platformlogger.Debug().Msg("Logger initialized")
	return b
}

// WithMetrics initializes publish metrics
func (b *AppBuilder) WithMetrics() *AppBuilder {
	if b.metrics != nil {
		return b
	}

	m, err := platformmetrics.New(b.config.Metrics)
	if err != nil {
		b.errors = append(b.errors, fmt.Errorf("init metrics: %w", err))
		return b
	}

	b.metrics = m
	platformlogger.Debug().Bool("endpoint", b.config.Metrics.Enabled).Msg("Metrics initialized")
	return b
}

// WithEventPublisher uses an already constructed publisher instead of the
// configured backend.
func (b *AppBuilder) WithEventPublisher(p transport.EventPublisher) *AppBuilder {
	b.publisher = p
	return b
}

// WithPublisher initializes the publisher for the configured backend.
func (b *AppBuilder) WithPublisher(ctx context.Context) *AppBuilder {
	if b.publisher != nil {
		return b
	}

	publisher, err := newPublisher(ctx, b.config)
	if err != nil {
		b.errors = append(b.errors, fmt.Errorf("init %s publisher: %w", b.config.Publisher.Backend, err))
		return b
	}

	b.publisher = publisher
	platformlogger.Info().
		Str("backend", b.config.Publisher.Backend).
		Str("destination", b.config.EventBusARN).
		Msg("Event publisher initialized")
	return b
}

func newPublisher(ctx context.Context, cfg *Config) (transport.EventPublisher, error) {
	switch cfg.Publisher.Backend {
	case BackendEventBridge:
		client, err := eventbridge.NewClient(ctx, cfg.EventBridge)
		if err != nil {
			return nil, err
		}
		return eventbridge.NewPublisher(client), nil
	case BackendKafka:
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return nil, err
		}
		return kafka.NewKafkaEventPublisher(producer), nil
	case BackendNATS:
		conn, err := nats.Connect(cfg.NATS)
		if err != nil {
			return nil, err
		}
		return nats.NewPublisher(conn, cfg.NATS.FlushTimeout), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Publisher.Backend)
	}
}

// WithAll initializes all components based on configuration
func (b *AppBuilder) WithAll(ctx context.Context) *AppBuilder {
	return b.WithLogger().
		WithMetrics().
		WithPublisher(ctx)
}

// Build creates the App instance and returns any errors that occurred during initialization
func (b *AppBuilder) Build() (*App, error) {
	// Logger is required
	if b.logger == nil {
		b.WithLogger()
	}

	if b.publisher == nil && len(b.errors) == 0 {
		b.errors = append(b.errors, errors.New("event publisher is not initialized"))
	}

	if len(b.errors) > 0 {
		return nil, fmt.Errorf("failed to build app: %w", errors.Join(b.errors...))
	}

	if setter, ok := b.publisher.(metricsSetter); ok && b.metrics != nil {
		setter.SetMetrics(b.metrics)
	}

	return &App{
		Config:    b.config,
		Logger:    b.logger,
		Metrics:   b.metrics,
		Publisher: b.publisher,
	}, nil
}

// New initializes all components for cfg.
func New(ctx context.Context, cfg *Config) (*App, error) {
	return NewBuilder(cfg).WithAll(ctx).Build()
}

// Close releases the publisher connection and stops the metrics endpoint.
func (a *App) Close() error {
	if a == nil {
		return nil
	}

	var errs []error
	if closer, ok := a.Publisher.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			platformlogger.Error().Err(err).Msg("Failed to close event publisher")
			errs = append(errs, err)
		}
	}

	if a.Metrics != nil {
		if err := a.Metrics.Stop(); err != nil {
			platformlogger.Error().Err(err).Msg("Failed to stop metrics")
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
