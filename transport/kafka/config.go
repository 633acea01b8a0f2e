package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"
)

// Config contains parameters for connecting to Kafka.
type Config struct {
	Brokers  []string       `mapstructure:"brokers"`
	SASL     SASLConfig     `mapstructure:"sasl"`
	Producer ProducerConfig `mapstructure:"producer"`
}

// SASLConfig describes SASL/SCRAM authentication settings.
type SASLConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Mechanism string `mapstructure:"mechanism"` // SCRAM-SHA-256 or SCRAM-SHA-512
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
}

// ProducerConfig holds producer related settings.
type ProducerConfig struct {
	Compression  string        `mapstructure:"compression"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	RequiredAcks int           `mapstructure:"required_acks"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DefaultProducerConfig returns producer settings suited to one message per
// call. BatchSize 1 flushes immediately instead of waiting on the batch timer.
func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		Compression:  "none",
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: int(kafka.RequireAll),
		WriteTimeout: 10 * time.Second,
	}
}

// GetCompressionCodec converts the configured compression string to kafka.Compression.
func (pc *ProducerConfig) GetCompressionCodec() kafka.Compression {
	switch pc.Compression {
	case "gzip":
		return kafka.Gzip
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return 0 // без сжатия
	}
}
