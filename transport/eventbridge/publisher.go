// Package eventbridge publishes envelopes to an Amazon EventBridge bus with
// one PutEvents entry per call.
package eventbridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/aws/smithy-go"
	"github.com/zynerotech/ioteventarchive/transport"
)

// PutEventsAPI is the subset of the EventBridge client used by Publisher.
type PutEventsAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// Entry error codes EventBridge documents as transient.
var transientEntryCodes = map[string]bool{
	"InternalFailure":     true,
	"ThrottlingException": true,
}

// Publisher реализует transport.EventPublisher поверх EventBridge PutEvents.
type Publisher struct {
	client  PutEventsAPI
	metrics transport.Metrics
	mu      sync.RWMutex
}

// NewPublisher создает новый экземпляр Publisher.
func NewPublisher(client PutEventsAPI) *Publisher {
	return &Publisher{
		client:  client,
		metrics: &transport.NoOpMetrics{},
	}
}

// SetMetrics устанавливает интерфейс метрик
func (p *Publisher) SetMetrics(metrics transport.Metrics) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.metrics = metrics
}

// Publish sends the envelope as a single-entry PutEvents request. Both a
// failed request and a rejected entry are reported as *transport.PublishError.
func (p *Publisher) Publish(ctx context.Context, envelope transport.Envelope) (string, error) {
	start := time.Now()

	p.mu.RLock()
	metrics := p.metrics
	p.mu.RUnlock()

	destination := envelope.EventBusName
	defer func() {
		metrics.RecordPublishTime(destination, time.Since(start))
	}()

	out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{{
			Detail:       aws.String(envelope.Detail),
			DetailType:   aws.String(envelope.DetailType),
			Source:       aws.String(envelope.Source),
			EventBusName: aws.String(envelope.EventBusName),
		}},
	})
	if err != nil {
		metrics.IncMessagesSent(destination, "error")
		return "", requestError(destination, err)
	}

	if out.FailedEntryCount > 0 || len(out.Entries) != 1 {
		metrics.IncMessagesSent(destination, "error")
		return "", entryError(destination, out.Entries)
	}

	metrics.IncMessagesSent(destination, "success")
	return aws.ToString(out.Entries[0].EventId), nil
}

func requestError(destination string, err error) error {
	pubErr := &transport.PublishError{Destination: destination, Err: err}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		pubErr.Code = apiErr.ErrorCode()
		pubErr.Retryable = apiErr.ErrorFault() == smithy.FaultServer
	}
	return pubErr
}

func entryError(destination string, entries []types.PutEventsResultEntry) error {
	if len(entries) != 1 {
		return transport.NewPublishError(destination,
			fmt.Errorf("expected 1 result entry, got %d", len(entries)))
	}

	code := aws.ToString(entries[0].ErrorCode)
	return &transport.PublishError{
		Destination: destination,
		Code:        code,
		Err:         errors.New(aws.ToString(entries[0].ErrorMessage)),
		Retryable:   transientEntryCodes[code],
	}
}
