// Package forwarder republishes one inbound IoT event per invocation onto the
// configured event bus, wrapped in a fixed envelope.
package forwarder

import (
	"context"
	"errors"

	"github.com/bytedance/sonic"
	"github.com/zynerotech/ioteventarchive/config"
	"github.com/zynerotech/ioteventarchive/transport"
)

const (
	// DetailType identifies the event category on the bus.
	DetailType = "scan-event"
	// Source identifies the originating system on the bus.
	Source = "iot.ingestion"
)

// InboundEvent is the record delivered by the IoT rule. No schema is enforced.
type InboundEvent map[string]any

// Result is returned for every successful invocation.
type Result struct {
	EventID     string `json:"event_id"`
	Destination string `json:"destination"`
}

// Forwarder holds the immutable destination and the publisher. It keeps no
// per-invocation state and is safe for concurrent use.
type Forwarder struct {
	destination string
	publisher   transport.EventPublisher
	codec       sonic.API
}

// New creates a Forwarder for destination. An empty destination is a
// configuration error.
func New(destination string, publisher transport.EventPublisher) (*Forwarder, error) {
	if destination == "" {
		return nil, config.Required("EVENT_BUS_ARN")
	}
	if publisher == nil {
		return nil, &config.ConfigurationError{Key: "publisher", Reason: "not configured"}
	}

	return &Forwarder{
		destination: destination,
		publisher:   publisher,
		codec:       sonic.ConfigStd,
	}, nil
}

// Destination returns the configured event bus identifier.
func (f *Forwarder) Destination() string {
	return f.destination
}

// Invoke serializes record, wraps it in one envelope and publishes it once.
// Errors are *transport.SerializationError or *transport.PublishError and are
// never retried here.
func (f *Forwarder) Invoke(ctx context.Context, record InboundEvent) (Result, error) {
	detail, err := f.codec.Marshal(record)
	if err != nil {
		return Result{}, transport.NewSerializationError(err)
	}

	envelope := transport.Envelope{
		Detail:       string(detail),
		DetailType:   DetailType,
		Source:       Source,
		EventBusName: f.destination,
	}

	eventID, err := f.publisher.Publish(ctx, envelope)
	if err != nil {
		return Result{}, asPublishError(f.destination, err)
	}

	return Result{EventID: eventID, Destination: f.destination}, nil
}

// asPublishError keeps typed errors from the publisher and wraps anything
// else, so callers can always match on the taxonomy.
func asPublishError(destination string, err error) error {
	var pubErr *transport.PublishError
	var serErr *transport.SerializationError
	if errors.As(err, &pubErr) || errors.As(err, &serErr) {
		return err
	}
	return transport.NewPublishError(destination, err)
}
