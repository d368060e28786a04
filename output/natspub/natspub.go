// Package natspub publishes derived events to NATS, one subject per event
// kind under a configurable prefix. It implements tracker.Subscriber so it
// plugs straight into the fan-out.
package natspub

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360/semhome/errors"
	"github.com/c360/semhome/event"
)

const subscriberName = "natspub"

// Config for the publisher.
type Config struct {
	// URL of the NATS server, e.g. "nats://localhost:4222".
	URL string

	// SubjectPrefix for published events; the event kind is appended, so
	// "semhome.events" yields "semhome.events.FireAlarmTriggered".
	SubjectPrefix string

	MaxReconnects int
	ReconnectWait time.Duration

	Logger *slog.Logger
}

// Publisher forwards events onto NATS subjects.
type Publisher struct {
	conn   *nats.Conn
	prefix string
	logger *slog.Logger
}

// New connects to NATS and returns a publisher. Connection failure is
// transient; callers may retry or run without the publisher.
func New(cfg Config) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "natspub", "New", "nats url is empty")
	}
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = "semhome.events"
	}
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 2 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(cfg.URL,
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, errors.WrapTransient(err, "natspub", "New", "connecting to nats")
	}

	return &Publisher{conn: conn, prefix: cfg.SubjectPrefix, logger: logger}, nil
}

// Name implements tracker.Subscriber.
func (p *Publisher) Name() string { return subscriberName }

// HandleEvent publishes the event as JSON on its kind subject.
func (p *Publisher) HandleEvent(evt event.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return errors.WrapInvalid(err, "natspub", "HandleEvent", "encoding event")
	}
	subject := fmt.Sprintf("%s.%s", p.prefix, evt.Kind)
	if err := p.conn.Publish(subject, data); err != nil {
		return errors.WrapTransient(err, "natspub", "HandleEvent", "publishing event")
	}
	return nil
}

// Close drains the connection.
func (p *Publisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("nats drain failed", "error", err)
	}
}
