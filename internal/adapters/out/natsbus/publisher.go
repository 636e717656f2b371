// Package natsbus implements the EventPublisher port on top of NATS.
// Every order publishes to its own subject under the configured topic, so
// NATS preserves the per-order ordering of location events.
package natsbus

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tracker/internal/core/domain/model/tracking"
	"tracker/internal/pkg/errs"

	"github.com/nats-io/nats.go"
)

// Connect establishes a NATS connection with reconnect handling.
// Connection events are logged; an async error handler turns publish
// failures into log records instead of panics.
func Connect(url string, logger *slog.Logger) (*nats.Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "nats")

	return nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			log.Error("async error", "subject", subject, "error", err)
		}),
	)
}

// Publisher publishes location events to the message bus.
type Publisher struct {
	conn  *nats.Conn
	topic string
}

// NewPublisher creates a Publisher for the given topic.
func NewPublisher(conn *nats.Conn, topic string) (*Publisher, error) {
	if conn == nil {
		return nil, errs.NewValueIsRequiredError("conn")
	}
	if topic == "" {
		topic = tracking.Topic
	}

	return &Publisher{
		conn:  conn,
		topic: topic,
	}, nil
}

// Publish sends the encoded event to the order's subject.
func (p *Publisher) Publish(event tracking.LocationEvent) error {
	if event.OrderID == "" {
		return errs.NewValueIsRequiredError("orderId")
	}

	subject := fmt.Sprintf("%s.%s", p.topic, subjectToken(event.OrderID))
	if err := p.conn.Publish(subject, []byte(event.Encode())); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}

	return nil
}

// Close flushes pending messages and drains the connection.
func (p *Publisher) Close() error {
	return p.conn.Drain()
}

// subjectToken makes an order identifier safe for use as a NATS subject
// token. Decoding on the relay side uses the payload, not the subject, so
// the replacement is lossless for consumers.
func subjectToken(orderID string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ':
			return '_'
		}
		return r
	}, orderID)
}
