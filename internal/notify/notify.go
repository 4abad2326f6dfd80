// Package notify publishes run events to NATS JetStream.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/staticbuilder/internal/export"
	"git.home.luguber.info/inful/staticbuilder/internal/logfields"
	"git.home.luguber.info/inful/staticbuilder/internal/retry"
)

// StreamName is the JetStream stream run events are stored in.
const StreamName = "STATICBUILDER_RUNS"

// RunEvent summarizes a finished run.
type RunEvent struct {
	RunID      string         `json:"run_id"`
	Mode       string         `json:"mode"`
	Target     string         `json:"target"`
	Outcome    string         `json:"outcome"`
	Counts     map[string]int `json:"counts"`
	Started    time.Time      `json:"started"`
	Finished   time.Time      `json:"finished"`
	DurationMS int64          `json:"duration_ms"`
	InFlight   string         `json:"in_flight,omitempty"`
}

// NewRunEvent builds the event of res.
func NewRunEvent(res *export.Result) RunEvent {
	counts := map[string]int{}
	for _, e := range res.Entries {
		counts[string(e.Status)]++
	}
	ev := RunEvent{
		RunID:      res.RunID,
		Mode:       res.Mode(),
		Target:     res.Target,
		Outcome:    res.Outcome(),
		Counts:     counts,
		Started:    res.Start,
		Finished:   res.End,
		DurationMS: res.End.Sub(res.Start).Milliseconds(),
	}
	if res.Fatal != nil {
		ev.InFlight = res.Fatal.InFlight
	}
	return ev
}

// Publisher delivers run events.
type Publisher interface {
	Publish(ctx context.Context, ev RunEvent) error
	Close() error
}

// Noop drops events.
type Noop struct{}

func (Noop) Publish(context.Context, RunEvent) error { return nil }
func (Noop) Close() error                             { return nil }

// streamPublisher is the subset of jetstream.JetStream used for publishing.
type streamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// NATSPublisher publishes events as JSON to a JetStream subject.
type NATSPublisher struct {
	conn    *nats.Conn
	js      streamPublisher
	subject string
	timeout time.Duration
	policy  retry.Policy
}

// NewNATSPublisher connects to url and makes sure a stream captures subject.
func NewNATSPublisher(ctx context.Context, url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("staticbuilder"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := js.CreateOrUpdateStream(sctx, jetstream.StreamConfig{
		Name:        StreamName,
		Description: "Static export run events",
		Subjects:    []string{subject},
		MaxAge:      30 * 24 * time.Hour,
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ensure stream: %w", err)
	}

	slog.Info("NATS publisher initialized", slog.String("url", url), slog.String("subject", subject))
	return &NATSPublisher{conn: conn, js: js, subject: subject, timeout: 5 * time.Second, policy: retry.DefaultPolicy()}, nil
}

// WithRetry replaces the retry policy used for publishing.
func (p *NATSPublisher) WithRetry(policy retry.Policy) *NATSPublisher {
	p.policy = policy
	return p
}

// Publish sends ev and waits for the JetStream acknowledgement. Failed
// attempts are retried; the run id as message id lets the server drop
// duplicates.
func (p *NATSPublisher) Publish(ctx context.Context, ev RunEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	err = p.policy.Do(ctx, func(ctx context.Context) error {
		pctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		_, err := p.js.Publish(pctx, p.subject, data, jetstream.WithMsgID(ev.RunID))
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	slog.Debug("Published run event", logfields.RunID(ev.RunID), slog.String("outcome", ev.Outcome))
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
