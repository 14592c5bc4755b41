package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	ferrors "git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
	"git.home.luguber.info/inful/hotbundle/internal/logfields"
	"git.home.luguber.info/inful/hotbundle/internal/retry"
)

// NATSSink publishes every broadcast to a NATS subject.
type NATSSink struct {
	conn    *nats.Conn
	subject string
}

// NewNATSSink connects to url and publishes on subject. Failed initial
// connects are retried according to policy.
func NewNATSSink(ctx context.Context, url, subject string, policy retry.Policy, logger *slog.Logger) (*NATSSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var conn *nats.Conn
	err := policy.Do(ctx, func(attempt int) error {
		if attempt > 0 {
			logger.Debug("Retrying NATS connect", logfields.URL(url), logfields.Attempt(attempt))
		}
		c, err := nats.Connect(url,
			nats.Name("hotbundle"),
			nats.Timeout(5*time.Second),
			nats.MaxReconnects(-1),
		)
		if err != nil {
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, ferrors.DeliveryError("failed to connect to NATS").
			WithCause(err).WithContext("url", url).Build()
	}
	logger.Info("NATS update sink connected", logfields.URL(url), logfields.Subject(subject))
	return &NATSSink{conn: conn, subject: subject}, nil
}

// Publish sends the encoded message.
func (s *NATSSink) Publish(msg Message) error {
	data, err := msg.Encode()
	if err != nil {
		return err
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", s.subject, err)
	}
	return nil
}

// Close drains and closes the connection.
func (s *NATSSink) Close() {
	if err := s.conn.Drain(); err != nil {
		s.conn.Close()
	}
}
