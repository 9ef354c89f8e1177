package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/retry"
)

type fakeConn struct {
	subject    string
	data       []byte
	publishErr error
	flushErr   error
	failures   int // flushes that fail before flushErr is cleared; 0 fails forever
	flushes    int
	flushed    time.Duration
	closed     bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subject, f.data = subject, data
	return f.publishErr
}

func (f *fakeConn) FlushTimeout(d time.Duration) error {
	f.flushed = d
	f.flushes++
	if f.failures > 0 && f.flushes > f.failures {
		return nil
	}
	return f.flushErr
}

func fastRetry(retries int) retry.Policy {
	return retry.NewPolicy(retry.ModeFixed, time.Millisecond, time.Millisecond, retries)
}

func (f *fakeConn) Close() { f.closed = true }

func TestNATSPublisher_Publish(t *testing.T) {
	fc := &fakeConn{}
	p := newNATSPublisher(fc, "blog.builds", nil)
	finished := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	err := p.Publish(context.Background(), BuildEvent{
		ID: "b1", Outcome: "success", Documents: 7, Pages: 2, DurationMS: 42,
		Revision: "abc", OutputDir: "public", FinishedAt: finished,
	})
	require.NoError(t, err)
	assert.Equal(t, "blog.builds", fc.subject)
	assert.Equal(t, publishTimeout, fc.flushed)

	var got map[string]any
	require.NoError(t, json.Unmarshal(fc.data, &got))
	assert.Equal(t, "success", got["outcome"])
	assert.InDelta(t, 7, got["documents"], 0)
	assert.Equal(t, "abc", got["revision"])
	assert.Equal(t, "2024-01-02T03:04:05Z", got["finished_at"])
	assert.NotContains(t, got, "errors")

	p.Close()
	assert.True(t, fc.closed)
}

func TestNATSPublisher_ContextDeadlineBoundsFlush(t *testing.T) {
	fc := &fakeConn{}
	p := newNATSPublisher(fc, "s", nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, p.Publish(ctx, BuildEvent{}))
	assert.LessOrEqual(t, fc.flushed, time.Second)
}

func TestNATSPublisher_Errors(t *testing.T) {
	for name, fc := range map[string]*fakeConn{
		"publish": {publishErr: errors.New("connection closed")},
		"flush":   {flushErr: errors.New("timeout")},
	} {
		t.Run(name, func(t *testing.T) {
			p := newNATSPublisher(fc, "s", nil)
			p.policy = fastRetry(2)
			err := p.Publish(context.Background(), BuildEvent{})
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotify))
			assert.True(t, ferrors.HasSeverity(err, ferrors.SeverityWarning))
		})
	}
}

func TestNATSPublisher_RetriesTransientFlush(t *testing.T) {
	fc := &fakeConn{flushErr: errors.New("timeout"), failures: 2}
	p := newNATSPublisher(fc, "s", nil)
	p.policy = fastRetry(2)

	require.NoError(t, p.Publish(context.Background(), BuildEvent{}))
	assert.Equal(t, 3, fc.flushes)
}

func TestNATSPublisher_GivesUpAfterMaxRetries(t *testing.T) {
	fc := &fakeConn{flushErr: errors.New("timeout")}
	p := newNATSPublisher(fc, "s", nil)
	p.policy = fastRetry(1)

	require.Error(t, p.Publish(context.Background(), BuildEvent{}))
	assert.Equal(t, 2, fc.flushes)
}

func TestPolicyFromConfig(t *testing.T) {
	zero := 0
	p := PolicyFromConfig(config.RetryConfig{Backoff: "exponential", Initial: "50ms", Max: "1s", MaxRetries: &zero})
	assert.Equal(t, retry.ModeExponential, p.Mode)
	assert.Equal(t, 50*time.Millisecond, p.Initial)
	assert.Equal(t, time.Second, p.Max)
	assert.Equal(t, 0, p.MaxRetries)

	assert.Equal(t, retry.DefaultPolicy(), PolicyFromConfig(config.RetryConfig{}))
}

func TestNewNATSPublisher_Unreachable(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1", "s", nil)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotify))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), BuildEvent{}))
	p.Close()
}

func TestNew_DisabledWithoutURL(t *testing.T) {
	p, err := New(config.NotifyConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, NopPublisher{}, p)
}
