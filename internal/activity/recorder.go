package activity

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/studiowebux/s1dash/internal/logging"
	"github.com/studiowebux/s1dash/internal/store"
)

// Recorder is the sink an instrumented opener writes to
type Recorder interface {
	Record(entry Entry) error
}

// Opener wraps a store opener so every session it opens is logged
type Opener struct {
	next     store.Opener
	recorder Recorder
	log      zerolog.Logger
	now      func() time.Time
}

// NewOpener instruments next. Recording failures are logged and never
// fail the store operation.
func NewOpener(next store.Opener, recorder Recorder) *Opener {
	return &Opener{
		next:     next,
		recorder: recorder,
		log:      logging.With("activity"),
		now:      time.Now,
	}
}

// Open implements store.Opener
func (o *Opener) Open(ctx context.Context, credential, baseURL string) (store.Client, error) {
	client, err := o.next.Open(ctx, credential, baseURL)
	if err != nil {
		return nil, err
	}
	return &recordingClient{next: client, opener: o, endpoint: baseURL}, nil
}

func (o *Opener) record(endpoint string, op Op, key string, size int, start time.Time, err error) {
	entry := Entry{
		Timestamp:  start,
		Endpoint:   endpoint,
		Op:         op,
		Key:        key,
		Size:       int64(size),
		DurationMs: o.now().Sub(start).Milliseconds(),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if recErr := o.recorder.Record(entry); recErr != nil {
		o.log.Warn().Err(recErr).Str("op", string(op)).Msg("Failed to record activity")
	}
}

type recordingClient struct {
	next     store.Client
	opener   *Opener
	endpoint string
}

func (c *recordingClient) ListKeys(ctx context.Context) ([]string, error) {
	start := c.opener.now()
	keys, err := c.next.ListKeys(ctx)
	c.opener.record(c.endpoint, OpList, "", 0, start, err)
	return keys, err
}

func (c *recordingClient) ReadRaw(ctx context.Context, key string) (string, error) {
	start := c.opener.now()
	raw, err := c.next.ReadRaw(ctx, key)
	c.opener.record(c.endpoint, OpRead, key, len(raw), start, err)
	return raw, err
}

func (c *recordingClient) WriteRaw(ctx context.Context, key, raw string) error {
	start := c.opener.now()
	err := c.next.WriteRaw(ctx, key, raw)
	c.opener.record(c.endpoint, OpWrite, key, len(raw), start, err)
	return err
}

func (c *recordingClient) DeleteKey(ctx context.Context, key string) error {
	start := c.opener.now()
	err := c.next.DeleteKey(ctx, key)
	c.opener.record(c.endpoint, OpDelete, key, 0, start, err)
	return err
}

// Close closes the wrapped client
func (c *recordingClient) Close() error {
	return store.Close(c.next)
}
