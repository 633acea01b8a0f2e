// Command ingestion is the Lambda entry point invoked by the IoT rule. It
// forwards each event to the configured event bus.
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/zynerotech/ioteventarchive/app"
	"github.com/zynerotech/ioteventarchive/forwarder"
	platformlogger "github.com/zynerotech/ioteventarchive/logger"
)

func main() {
	// Cold start: configuration problems stop the process before the first
	// invocation is accepted.
	cfg, err := app.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		platformlogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		platformlogger.Fatal().Err(err).Msg("Failed to initialize application")
	}

	fwd, err := forwarder.New(cfg.EventBusARN, application.Publisher)
	if err != nil {
		_ = application.Close()
		platformlogger.Fatal().Err(err).Msg("Failed to create forwarder")
	}

	// The global logger already carries the service field.
	handler := platformlogger.InjectLambdaContext[forwarder.InboundEvent, forwarder.Result](
		application.Logger,
		platformlogger.LambdaOptions{LogEvent: cfg.Logger.LogEvent},
	)(fwd.Invoke)

	platformlogger.Info().
		Str("destination", fwd.Destination()).
		Str("backend", cfg.Publisher.Backend).
		Msg("IoT ingestion: cold start complete")

	// Publishers are released on container spindown.
	lambda.StartWithOptions(handler, lambda.WithEnableSIGTERM(func() {
		_ = application.Close()
	}))
}
