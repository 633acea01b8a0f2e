package logger

import (
	"context"
	"sync/atomic"

	"github.com/aws/aws-lambda-go/lambdacontext"
)

// HandlerFunc is the shape of a typed Lambda handler.
type HandlerFunc[TIn, TOut any] func(ctx context.Context, in TIn) (TOut, error)

// LambdaOptions configures InjectLambdaContext.
type LambdaOptions struct {
	// Service is added as the "service" field.
	Service string
	// LogEvent logs the raw inbound event. Off by default.
	LogEvent bool
}

// InjectLambdaContext wraps a handler so that every invocation gets a fresh
// logger carrying the Lambda context fields. The logger is stored in ctx and
// can be retrieved with Ctx. Handler errors are logged and returned as is.
func InjectLambdaContext[TIn, TOut any](base *Logger, opts LambdaOptions) func(HandlerFunc[TIn, TOut]) HandlerFunc[TIn, TOut] {
	if base == nil {
		base = GetGlobal()
	}
	var invoked atomic.Bool

	return func(next HandlerFunc[TIn, TOut]) HandlerFunc[TIn, TOut] {
		return func(ctx context.Context, in TIn) (TOut, error) {
			coldStart := !invoked.Swap(true)

			fields := base.With().
				Bool("cold_start", coldStart).
				Str("function_name", lambdacontext.FunctionName).
				Str("function_version", lambdacontext.FunctionVersion).
				Int("function_memory_size", lambdacontext.MemoryLimitInMB)
			if opts.Service != "" {
				fields = fields.Str("service", opts.Service)
			}
			if lc, ok := lambdacontext.FromContext(ctx); ok {
				fields = fields.
					Str("function_arn", lc.InvokedFunctionArn).
					Str("function_request_id", lc.AwsRequestID)
			}

			invocationLogger := FromZerolog(fields.Logger())
			ctx = invocationLogger.WithContext(ctx)

			if opts.LogEvent {
				invocationLogger.Info().Interface("event", in).Msg("Received event")
			}

			out, err := next(ctx, in)
			if err != nil {
				invocationLogger.Error().Err(err).Msg("Invocation failed")
			}
			return out, err
		}
	}
}
