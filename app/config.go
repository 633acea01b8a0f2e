package app

import (
	"fmt"

	"github.com/zynerotech/ioteventarchive/config"
	platformlogger "github.com/zynerotech/ioteventarchive/logger"
	platformmetrics "github.com/zynerotech/ioteventarchive/metrics"
	"github.com/zynerotech/ioteventarchive/transport/eventbridge"
	"github.com/zynerotech/ioteventarchive/transport/kafka"
	"github.com/zynerotech/ioteventarchive/transport/nats"
)

// Supported publisher backends.
const (
	BackendEventBridge = "eventbridge"
	BackendKafka       = "kafka"
	BackendNATS        = "nats"
)

// Config is the complete configuration of the ingestion function.
type Config struct {
	// EventBusARN is the destination identifier. For Kafka and NATS it is
	// the topic or subject.
	EventBusARN string                         `mapstructure:"event_bus_arn"`
	Service     platformlogger.ApplicationInfo `mapstructure:"service"`
	Logger      platformlogger.Config          `mapstructure:"logger"`
	Publisher   PublisherConfig                `mapstructure:"publisher"`
	EventBridge eventbridge.Config             `mapstructure:"eventbridge"`
	Kafka       kafka.Config                   `mapstructure:"kafka"`
	NATS        nats.Config                    `mapstructure:"nats"`
	Metrics     platformmetrics.Config         `mapstructure:"metrics"`
}

// PublisherConfig selects the destination backend.
type PublisherConfig struct {
	Backend string `mapstructure:"backend"`
}

// Validate реализует config.Configurable
func (c *Config) Validate() error {
	if c.EventBusARN == "" {
		return config.Required("EVENT_BUS_ARN")
	}

	switch c.Publisher.Backend {
	case BackendEventBridge, BackendNATS:
	case BackendKafka:
		if len(c.Kafka.Brokers) == 0 {
			return config.Required("kafka.brokers")
		}
	default:
		return &config.ConfigurationError{
			Key:    "publisher.backend",
			Reason: fmt.Sprintf("unknown backend %q", c.Publisher.Backend),
		}
	}
	return nil
}

// LoggerConfig возвращает конфигурацию логгера
func (c *Config) LoggerConfig() platformlogger.GlobalConfig {
	return platformlogger.GlobalConfig{
		Logger:      c.Logger,
		Application: c.Service,
	}
}

// LoadConfig reads the optional config file at path and the environment.
// The Lambda environment variable names used by the deployment are bound
// explicitly; everything else is reachable as APP_<KEY>.
func LoadConfig(path string) (*Config, error) {
	loader := config.NewLoader(path)

	loader.SetDefault("event_bus_arn", "")
	loader.SetDefault("service.name", "iot-ingestion")
	loader.SetDefault("service.version", "")
	loader.SetDefault("service.environment", config.GetEnv())
	loader.SetDefault("logger.level", "info")
	loader.SetDefault("logger.format", "json")
	loader.SetDefault("logger.output", "stdout")
	loader.SetDefault("logger.log_event", false)
	loader.SetDefault("publisher.backend", BackendEventBridge)
	loader.SetDefault("eventbridge.region", "")
	loader.SetDefault("eventbridge.endpoint", "")
	loader.SetDefault("eventbridge.max_attempts", 0)

	producer := kafka.DefaultProducerConfig()
	loader.SetDefault("kafka.brokers", []string{})
	loader.SetDefault("kafka.sasl.enabled", false)
	loader.SetDefault("kafka.sasl.mechanism", "")
	loader.SetDefault("kafka.sasl.username", "")
	loader.SetDefault("kafka.sasl.password", "")
	loader.SetDefault("kafka.producer.compression", producer.Compression)
	loader.SetDefault("kafka.producer.batch_size", producer.BatchSize)
	loader.SetDefault("kafka.producer.batch_timeout", producer.BatchTimeout)
	loader.SetDefault("kafka.producer.required_acks", producer.RequiredAcks)
	loader.SetDefault("kafka.producer.write_timeout", producer.WriteTimeout)

	natsDefaults := nats.DefaultConfig()
	loader.SetDefault("nats.url", natsDefaults.URL)
	loader.SetDefault("nats.name", natsDefaults.Name)
	loader.SetDefault("nats.timeout", natsDefaults.Timeout)
	loader.SetDefault("nats.token", natsDefaults.Token)
	loader.SetDefault("nats.username", natsDefaults.Username)
	loader.SetDefault("nats.password", natsDefaults.Password)
	loader.SetDefault("nats.flush_timeout", natsDefaults.FlushTimeout)
	loader.SetDefault("nats.max_reconnects", natsDefaults.MaxReconnects)

	loader.SetDefault("metrics.enabled", false)
	loader.SetDefault("metrics.path", "/metrics")
	loader.SetDefault("metrics.port", 9100)
	loader.SetDefault("metrics.service_name", "")

	loader.BindEnv("event_bus_arn", "EVENT_BUS_ARN")
	loader.BindEnv("service.name", "POWERTOOLS_SERVICE_NAME")
	loader.BindEnv("service.version", "AWS_LAMBDA_FUNCTION_VERSION")
	loader.BindEnv("logger.level", "POWERTOOLS_LOG_LEVEL", "LOG_LEVEL")
	loader.BindEnv("logger.log_event", "POWERTOOLS_LOGGER_LOG_EVENT")
	loader.BindEnv("eventbridge.region", "AWS_REGION")
	loader.BindEnv("eventbridge.endpoint", "AWS_ENDPOINT_URL_EVENTS")

	cfg := &Config{}
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = cfg.Service.Name
	}
	return cfg, nil
}
