// Package broker wraps a NATS connection with the subject-based subscribe
// surface the bridge needs: connect with retry, subscribe a handler per
// subject (wildcards included), and a clean close.
package broker

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/teranos/skg-bridge/errors"
	"github.com/teranos/skg-bridge/logger"
)

// Message is a delivered broker message, decoupled from the nats.go type so
// callers never import nats.go directly.
type Message struct {
	Subject string
	Data    []byte
}

// Handler processes one delivered message. It must not block for long: the
// broker invokes it on its own delivery goroutine per subscription.
type Handler func(Message)

// Client is a connected broker client.
type Client struct {
	conn *nats.Conn
	subs []*nats.Subscription
}

// Connect dials url, retrying with linear backoff up to maxRetries times
// before returning an ErrConnect-wrapped failure.
func Connect(ctx context.Context, url string, maxRetries int, retryDelay time.Duration) (*Client, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		conn, err := nats.Connect(url, nats.NoReconnect())
		if err == nil {
			logger.Infow("connected to broker", logger.FieldAddress, url)
			return &Client{conn: conn}, nil
		}
		lastErr = err
		logger.Warnw("broker connect attempt failed", logger.FieldAddress, url, "attempt", attempt+1, logger.FieldError, err)

		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "broker connect cancelled")
		case <-time.After(retryDelay * time.Duration(attempt+1)):
		}
	}
	return nil, errors.Wrapf(errors.ErrConnect, "connecting to broker at %s after %d attempts: %v", url, maxRetries, lastErr)
}

// Subscribe registers handler for subject, which may contain NATS wildcards
// (e.g. "all_tracks.*").
func (c *Client) Subscribe(subject string, handler Handler) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(Message{Subject: msg.Subject, Data: msg.Data})
	})
	if err != nil {
		return errors.Wrapf(err, "subscribing to %s", subject)
	}
	c.subs = append(c.subs, sub)
	return nil
}

// IsClosed reports whether the underlying connection has been closed.
func (c *Client) IsClosed() bool {
	return c.conn == nil || c.conn.IsClosed()
}

// Close unsubscribes everything and closes the connection.
func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
