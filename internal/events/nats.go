package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const defaultPublishTimeout = 5 * time.Second

// NATSConfig captures the runtime parameters for the JetStream publisher.
type NATSConfig struct {
	URL            string
	Stream         string
	SubjectRoot    string
	PublishTimeout time.Duration
}

// Validate ensures required fields are populated and durations are sane.
func (c NATSConfig) Validate() error {
	if c.URL == "" {
		return errors.New("NATS URL is required")
	}
	if c.Stream == "" {
		return errors.New("NATS stream is required")
	}
	if c.SubjectRoot == "" {
		return errors.New("subject root cannot be empty")
	}
	if c.PublishTimeout < 0 {
		return errors.New("publish timeout must not be negative")
	}
	return nil
}

// NATSPublisher publishes events to a JetStream stream under
// <SubjectRoot>.<kind>.
type NATSPublisher struct {
	cfg  NATSConfig
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewNATSPublisher connects to NATS and binds a JetStream context.
func NewNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.PublishTimeout == 0 {
		cfg.PublishTimeout = defaultPublishTimeout
	}

	conn, err := nats.Connect(cfg.URL, nats.Name("lplockd"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}
	return &NATSPublisher{cfg: cfg, conn: conn, js: js}, nil
}

// Subject returns the subject an event kind is published on.
func (p *NATSPublisher) Subject(k Kind) string {
	return p.cfg.SubjectRoot + "." + string(k)
}

func (p *NATSPublisher) Publish(ctx context.Context, ev Event) error {
	data, err := ev.Encode()
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := &nats.Msg{Subject: p.Subject(ev.Kind), Data: data}
	msg.Header = nats.Header{}
	if ev.TxID != "" {
		msg.Header.Set("Nats-Msg-Id", ev.MsgID())
	}
	msg.Header.Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(ctx, p.cfg.PublishTimeout)
	defer cancel()

	// PublishMsg waits for the stream's ack, so a rejected message is an error.
	if _, err := p.js.PublishMsg(msg, nats.Context(ctx), nats.ExpectStream(p.cfg.Stream)); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	err := p.conn.Drain()
	p.conn = nil
	return err
}
