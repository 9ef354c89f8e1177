// Package notify publishes build events to NATS so other systems (deploy hooks,
// cache purgers, chat bots) can react to finished builds.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/retry"
)

const publishTimeout = 5 * time.Second

// BuildEvent is published after every build.
type BuildEvent struct {
	ID          string    `json:"id"`
	Outcome     string    `json:"outcome"`
	Documents   int       `json:"documents"`
	Pages       int       `json:"pages"`
	DurationMS  int64     `json:"duration_ms"`
	Revision    string    `json:"revision,omitempty"`
	CacheBuster string    `json:"cache_buster,omitempty"`
	OutputDir   string    `json:"output_dir"`
	Errors      []string  `json:"errors,omitempty"`
	Warnings    []string  `json:"warnings,omitempty"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Publisher delivers build events.
type Publisher interface {
	Publish(ctx context.Context, event BuildEvent) error
	Close()
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, BuildEvent) error { return nil }
func (NopPublisher) Close()                                     {}

// New returns a NATS publisher when cfg names a server and a NopPublisher otherwise.
func New(cfg config.NotifyConfig, logger *slog.Logger) (Publisher, error) {
	if cfg.NATSURL == "" {
		return NopPublisher{}, nil
	}
	subject := cfg.Subject
	if subject == "" {
		subject = config.DefaultSubject
	}
	p, err := NewNATSPublisher(cfg.NATSURL, subject, logger)
	if err != nil {
		return nil, err
	}
	p.policy = PolicyFromConfig(cfg.Retry)
	p.logger.Info("NATS build notifications enabled", logfields.Subject(subject))
	return p, nil
}

// PolicyFromConfig builds the publish retry policy. Values are expected to be validated.
func PolicyFromConfig(cfg config.RetryConfig) retry.Policy {
	initial, _ := time.ParseDuration(cfg.Initial)
	maxDelay, _ := time.ParseDuration(cfg.Max)
	maxRetries := -1
	if cfg.MaxRetries != nil {
		maxRetries = *cfg.MaxRetries
	}
	return retry.NewPolicy(retry.Mode(cfg.Backoff), initial, maxDelay, maxRetries)
}

// conn is the subset of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// NATSPublisher publishes JSON build events on a subject.
type NATSPublisher struct {
	conn    conn
	subject string
	policy  retry.Policy
	logger  *slog.Logger
}

// NewNATSPublisher connects to url.
func NewNATSPublisher(url, subject string, logger *slog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("blogbuilder"),
		nats.Timeout(publishTimeout),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNotify, "failed to connect to NATS").
			WithContext("url", url).
			Build()
	}
	return newNATSPublisher(nc, subject, logger), nil
}

func newNATSPublisher(c conn, subject string, logger *slog.Logger) *NATSPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NATSPublisher{conn: c, subject: subject, policy: retry.DefaultPolicy(), logger: logger}
}

// Publish sends event and waits for the server to acknowledge the flush,
// retrying transient failures according to the publisher's policy.
func (p *NATSPublisher) Publish(ctx context.Context, event BuildEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal build event").Build()
	}
	err = p.policy.Do(ctx, func(ctx context.Context) error {
		return p.publishOnce(ctx, data)
	}, func(attempt int, err error) {
		p.logger.Warn("Retrying build event publish",
			logfields.Subject(p.subject),
			logfields.Attempt(attempt),
			logfields.Error(err))
	})
	if err != nil {
		return err
	}
	p.logger.Debug("Published build event", logfields.Subject(p.subject), logfields.Outcome(event.Outcome))
	return nil
}

func (p *NATSPublisher) publishOnce(ctx context.Context, data []byte) error {
	if err := p.conn.Publish(p.subject, data); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNotify, "failed to publish build event").
			Warning().
			Retryable().
			WithContext("subject", p.subject).
			Build()
	}
	timeout := publishTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	if err := p.conn.FlushTimeout(timeout); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNotify, "failed to flush build event").
			Warning().
			Retryable().
			WithContext("subject", p.subject).
			Build()
	}
	return nil
}

// Close closes the connection.
func (p *NATSPublisher) Close() {
	p.conn.Close()
}
