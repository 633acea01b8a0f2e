package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zynerotech/ioteventarchive/config"
	platformlogger "github.com/zynerotech/ioteventarchive/logger"
	"github.com/zynerotech/ioteventarchive/transport"
	"github.com/zynerotech/ioteventarchive/transport/eventbridge"
	"github.com/zynerotech/ioteventarchive/transport/kafka"
)

type stubPublisher struct {
	metrics transport.Metrics
	closed  bool
}

func (p *stubPublisher) Publish(context.Context, transport.Envelope) (string, error) {
	return "evt-1", nil
}

func (p *stubPublisher) SetMetrics(m transport.Metrics) { p.metrics = m }

func (p *stubPublisher) Close() error {
	p.closed = true
	return nil
}

var lambdaEnv = []string{
	"EVENT_BUS_ARN", "POWERTOOLS_SERVICE_NAME", "POWERTOOLS_LOG_LEVEL", "LOG_LEVEL",
	"POWERTOOLS_LOGGER_LOG_EVENT", "AWS_LAMBDA_FUNCTION_VERSION", "AWS_REGION",
	"AWS_ENDPOINT_URL_EVENTS", "APP_ENV", "CONFIG_PATH", "APP_PUBLISHER_BACKEND",
	"APP_KAFKA_BROKERS", "APP_NATS_TOKEN", "APP_NATS_USERNAME", "APP_NATS_PASSWORD",
	"APP_KAFKA_SASL_ENABLED", "APP_KAFKA_SASL_MECHANISM", "APP_KAFKA_SASL_USERNAME",
	"APP_KAFKA_SASL_PASSWORD",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range lambdaEnv {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func keepGlobalLogger(t *testing.T) {
	t.Helper()
	original := platformlogger.GetGlobal()
	t.Cleanup(func() { platformlogger.SetGlobal(original) })
}

func TestLoadConfig_FromLambdaEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("EVENT_BUS_ARN", "arn:aws:events:eu-west-1:123456789012:event-bus/iot")
	t.Setenv("POWERTOOLS_SERVICE_NAME", "scan-ingestion")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("POWERTOOLS_LOGGER_LOG_EVENT", "true")
	t.Setenv("AWS_REGION", "eu-west-1")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "arn:aws:events:eu-west-1:123456789012:event-bus/iot", cfg.EventBusARN)
	assert.Equal(t, "scan-ingestion", cfg.Service.Name)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, cfg.Logger.LogEvent)
	assert.Equal(t, BackendEventBridge, cfg.Publisher.Backend)
	assert.Equal(t, "eu-west-1", cfg.EventBridge.Region)
	assert.Equal(t, "scan-ingestion", cfg.Metrics.ServiceName)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("EVENT_BUS_ARN", "bus")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "iot-ingestion", cfg.Service.Name)
	assert.Equal(t, config.DefaultEnv, cfg.Service.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.False(t, cfg.Logger.LogEvent)
	assert.Equal(t, kafka.DefaultProducerConfig(), cfg.Kafka.Producer)
	assert.Equal(t, 2*time.Second, cfg.NATS.FlushTimeout)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadConfig_CredentialsFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("EVENT_BUS_ARN", "iot.scan")
	t.Setenv("APP_PUBLISHER_BACKEND", "nats")
	t.Setenv("APP_NATS_TOKEN", "s3cret")
	t.Setenv("APP_NATS_USERNAME", "ingest")
	t.Setenv("APP_NATS_PASSWORD", "pa55")
	t.Setenv("APP_KAFKA_SASL_ENABLED", "true")
	t.Setenv("APP_KAFKA_SASL_MECHANISM", "SCRAM-SHA-512")
	t.Setenv("APP_KAFKA_SASL_USERNAME", "producer")
	t.Setenv("APP_KAFKA_SASL_PASSWORD", "hunter2")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, BackendNATS, cfg.Publisher.Backend)
	assert.Equal(t, "s3cret", cfg.NATS.Token)
	assert.Equal(t, "ingest", cfg.NATS.Username)
	assert.Equal(t, "pa55", cfg.NATS.Password)
	assert.Equal(t, kafka.SASLConfig{
		Enabled:   true,
		Mechanism: "SCRAM-SHA-512",
		Username:  "producer",
		Password:  "hunter2",
	}, cfg.Kafka.SASL)
}

func TestLoadConfig_FromFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "ingestion.yaml")
	content := `
event_bus_arn: iot-scan-events
publisher:
  backend: kafka
kafka:
  brokers: ["kafka-1:9092", "kafka-2:9092"]
  producer:
    compression: zstd
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "iot-scan-events", cfg.EventBusARN)
	assert.Equal(t, BackendKafka, cfg.Publisher.Backend)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "zstd", cfg.Kafka.Producer.Compression)
	assert.Equal(t, 1, cfg.Kafka.Producer.BatchSize)
}

func TestLoadConfig_MissingEventBus(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("")

	require.Error(t, err)
	assert.Nil(t, cfg)

	var cfgErr *config.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "EVENT_BUS_ARN", cfgErr.Key)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantKey string
	}{
		{
			name: "eventbridge",
			cfg:  Config{EventBusARN: "bus", Publisher: PublisherConfig{Backend: BackendEventBridge}},
		},
		{
			name: "nats",
			cfg:  Config{EventBusARN: "iot.scan", Publisher: PublisherConfig{Backend: BackendNATS}},
		},
		{
			name:    "missing destination",
			cfg:     Config{Publisher: PublisherConfig{Backend: BackendEventBridge}},
			wantKey: "EVENT_BUS_ARN",
		},
		{
			name:    "kafka without brokers",
			cfg:     Config{EventBusARN: "topic", Publisher: PublisherConfig{Backend: BackendKafka}},
			wantKey: "kafka.brokers",
		},
		{
			name:    "unknown backend",
			cfg:     Config{EventBusARN: "bus", Publisher: PublisherConfig{Backend: "sqs"}},
			wantKey: "publisher.backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantKey == "" {
				assert.NoError(t, err)
				return
			}

			var cfgErr *config.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.wantKey, cfgErr.Key)
		})
	}
}

func TestBuilder_WithInjectedPublisher(t *testing.T) {
	keepGlobalLogger(t)
	pub := &stubPublisher{}
	cfg := &Config{
		EventBusARN: "bus",
		Service:     platformlogger.ApplicationInfo{Name: "iot-ingestion"},
		Publisher:   PublisherConfig{Backend: BackendEventBridge},
	}

	application, err := NewBuilder(cfg).
		WithEventPublisher(pub).
		WithAll(context.Background()).
		Build()
	require.NoError(t, err)

	assert.NotNil(t, application.Logger)
	assert.NotNil(t, application.Metrics)
	assert.Same(t, pub, application.Publisher)
	assert.Same(t, application.Metrics, pub.metrics)

	require.NoError(t, application.Close())
	assert.True(t, pub.closed)
}

func TestBuilder_EventBridgeBackend(t *testing.T) {
	keepGlobalLogger(t)
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	cfg := &Config{
		EventBusARN: "bus",
		Publisher:   PublisherConfig{Backend: BackendEventBridge},
		EventBridge: eventbridge.Config{Region: "eu-west-1", Endpoint: "http://localhost:4566"},
	}

	application, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer application.Close()

	assert.IsType(t, &eventbridge.Publisher{}, application.Publisher)
}

func TestBuilder_KafkaBackend(t *testing.T) {
	keepGlobalLogger(t)
	cfg := &Config{
		EventBusARN: "iot-scan-events",
		Publisher:   PublisherConfig{Backend: BackendKafka},
		Kafka: kafka.Config{
			Brokers:  []string{"localhost:9092"},
			Producer: kafka.DefaultProducerConfig(),
		},
	}

	application, err := New(context.Background(), cfg)
	require.NoError(t, err)

	assert.IsType(t, &kafka.KafkaEventPublisher{}, application.Publisher)
	assert.NoError(t, application.Close())
}

func TestBuilder_Errors(t *testing.T) {
	keepGlobalLogger(t)

	t.Run("unknown backend", func(t *testing.T) {
		cfg := &Config{EventBusARN: "bus", Publisher: PublisherConfig{Backend: "sqs"}}
		_, err := New(context.Background(), cfg)

		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown backend "sqs"`)
	})

	t.Run("publisher never initialized", func(t *testing.T) {
		cfg := &Config{EventBusARN: "bus"}
		_, err := NewBuilder(cfg).WithLogger().Build()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "event publisher is not initialized")
	})
}

func TestApp_CloseNil(t *testing.T) {
	var a *App
	assert.NoError(t, a.Close())
}
