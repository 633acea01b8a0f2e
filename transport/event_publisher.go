package transport

import (
	"context"
)

// EventPublisher sends exactly one envelope per Publish call and returns
// the identifier the destination assigned to it.
type EventPublisher interface {
	Publish(ctx context.Context, envelope Envelope) (string, error)
}
