// Package events publishes broken-link findings to NATS JetStream so that
// downstream automation (issue creation, dashboards) can react to them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/docscheck/internal/config"
	"git.home.luguber.info/inful/docscheck/internal/logfields"
	"git.home.luguber.info/inful/docscheck/internal/validate"
)

// BrokenLinkEvent is the wire format for one broken-link finding.
type BrokenLinkEvent struct {
	RunID      string    `json:"run_id"`
	Root       string    `json:"root"`
	Source     string    `json:"source"`
	Target     string    `json:"target"`
	AnchorText string    `json:"anchor_text,omitempty"`
	External   bool      `json:"external"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher sends broken-link events over a JetStream subject.
type Publisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewPublisher connects to NATS and prepares the JetStream context.
func NewPublisher(cfg config.EventsConfig) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("event publishing is disabled")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("events.url is required when event publishing is enabled")
	}

	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	slog.Info("Connected to NATS for broken link events",
		logfields.URL(cfg.URL), slog.String("subject", cfg.Subject))

	return &Publisher{conn: conn, js: js, subject: cfg.Subject}, nil
}

// PublishReport emits one event per broken link in the report, internal and
// external alike. The first publish failure aborts the batch.
func (p *Publisher) PublishReport(ctx context.Context, report *validate.Report) error {
	for _, bl := range report.BrokenLinks {
		if err := p.publish(ctx, eventFor(report, bl, false)); err != nil {
			return err
		}
	}
	for _, bl := range report.BrokenExternal {
		if err := p.publish(ctx, eventFor(report, bl, true)); err != nil {
			return err
		}
	}
	return nil
}

func eventFor(report *validate.Report, bl validate.BrokenLink, external bool) *BrokenLinkEvent {
	return &BrokenLinkEvent{
		RunID:      report.RunID,
		Root:       report.Root,
		Source:     bl.Source,
		Target:     bl.Target,
		AnchorText: bl.AnchorText,
		External:   external,
		Timestamp:  time.Now(),
	}
}

func (p *Publisher) publish(ctx context.Context, event *BrokenLinkEvent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.js.Publish(ctx, p.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	slog.Debug("Published broken link event",
		logfields.Source(event.Source), logfields.Target(event.Target))
	return nil
}

// Close drains the NATS connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
