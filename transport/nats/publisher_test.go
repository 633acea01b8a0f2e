package nats

import (
	"context"
	"errors"
	"testing"
	"time"

	json "github.com/bytedance/sonic"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zynerotech/ioteventarchive/transport"
)

type fakeConn struct {
	msgs       []*nats.Msg
	publishErr error
	flushErr   error
	flushes    int
	drained    bool
}

func (c *fakeConn) PublishMsg(msg *nats.Msg) error {
	c.msgs = append(c.msgs, msg)
	return c.publishErr
}

func (c *fakeConn) FlushWithContext(ctx context.Context) error {
	c.flushes++
	return c.flushErr
}

func (c *fakeConn) Drain() error {
	c.drained = true
	return nil
}

var demoEnvelope = transport.Envelope{
	Detail:       `{"device":"sensor-1","temp":21.5}`,
	DetailType:   "scan-event",
	Source:       "iot.ingestion",
	EventBusName: "iot.scan-events",
}

func TestPublisher_Publish(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn, time.Second)

	id, err := p.Publish(context.Background(), demoEnvelope)

	require.NoError(t, err)
	require.Len(t, conn.msgs, 1)
	assert.Equal(t, 1, conn.flushes)

	msg := conn.msgs[0]
	assert.Equal(t, "iot.scan-events", msg.Subject)
	assert.Equal(t, id, msg.Header.Get(nats.MsgIdHdr))

	var got transport.Envelope
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, demoEnvelope, got)
}

func TestPublisher_PublishErrors(t *testing.T) {
	tests := []struct {
		name    string
		conn    *fakeConn
		wantErr error
		flushes int
	}{
		{
			name:    "publish rejected",
			conn:    &fakeConn{publishErr: nats.ErrConnectionClosed},
			wantErr: nats.ErrConnectionClosed,
			flushes: 0,
		},
		{
			name:    "flush timeout",
			conn:    &fakeConn{flushErr: context.DeadlineExceeded},
			wantErr: context.DeadlineExceeded,
			flushes: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPublisher(tt.conn, time.Second)

			id, err := p.Publish(context.Background(), demoEnvelope)

			assert.Empty(t, id)
			assert.ErrorIs(t, err, tt.wantErr)

			var pubErr *transport.PublishError
			require.True(t, errors.As(err, &pubErr))
			assert.Equal(t, "iot.scan-events", pubErr.Destination)
			assert.Len(t, tt.conn.msgs, 1, "publisher must not retry")
			assert.Equal(t, tt.flushes, tt.conn.flushes)
		})
	}
}

func TestPublisher_NoFlush(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn, 0)

	_, err := p.Publish(context.Background(), demoEnvelope)

	require.NoError(t, err)
	assert.Zero(t, conn.flushes)
}

func TestPublisher_Close(t *testing.T) {
	conn := &fakeConn{}
	require.NoError(t, NewPublisher(conn, 0).Close())
	assert.True(t, conn.drained)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, nats.DefaultURL, cfg.URL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}
