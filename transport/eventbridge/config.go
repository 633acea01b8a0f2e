package eventbridge

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
)

// Config contains parameters for the EventBridge client. Credentials are
// resolved by the SDK default chain.
type Config struct {
	Region string `mapstructure:"region"`
	// Endpoint overrides the service endpoint, e.g. for LocalStack.
	Endpoint string `mapstructure:"endpoint"`
	// MaxAttempts sets the SDK retryer attempts. Zero keeps the SDK default.
	MaxAttempts int `mapstructure:"max_attempts"`
}

// NewClient creates an EventBridge client from the default AWS configuration.
func NewClient(ctx context.Context, cfg Config) (*eventbridge.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.MaxAttempts > 0 {
		opts = append(opts, awsconfig.WithRetryMaxAttempts(cfg.MaxAttempts))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return eventbridge.NewFromConfig(awsCfg, func(o *eventbridge.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}
