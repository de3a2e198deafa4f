// SPDX-License-Identifier: MIT
package console

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/muesli/termenv"

	"github.com/skaphos/gitsync/internal/termstyle"
)

// DefaultBuffer is the number of batches queued before Enqueue blocks.
const DefaultBuffer = 64

// ErrChannelClosed is returned when enqueueing after Close.
var ErrChannelClosed = errors.New("console channel closed")

type item struct {
	batch   Batch
	flushed chan struct{}
}

// Channel serializes batches from many producers onto one writer.
type Channel struct {
	out     io.Writer
	profile termenv.Profile

	mu     sync.RWMutex
	closed bool
	queue  chan item

	closeOnce sync.Once
	done      chan struct{}

	errMu sync.Mutex
	err   error
}

// Option configures a Channel.
type Option func(*channelOptions)

type channelOptions struct {
	buffer int
}

// WithBuffer sets how many batches may wait for the consumer.
func WithBuffer(n int) Option {
	return func(o *channelOptions) {
		if n > 0 {
			o.buffer = n
		}
	}
}

// New starts a Channel that renders onto out using profile. Use
// termenv.Ascii to write plain text.
func New(out io.Writer, profile termenv.Profile, opts ...Option) *Channel {
	o := channelOptions{buffer: DefaultBuffer}
	for _, opt := range opts {
		opt(&o)
	}
	c := &Channel{
		out:     out,
		profile: profile,
		queue:   make(chan item, o.buffer),
		done:    make(chan struct{}),
	}
	go c.consume()
	return c
}

// Enqueue queues a copy of b for rendering. It is safe for concurrent use
// and blocks only while the buffer is full. Empty batches are dropped.
func (c *Channel) Enqueue(b Batch) error {
	if len(b) == 0 {
		c.mu.RLock()
		defer c.mu.RUnlock()
		if c.closed {
			return ErrChannelClosed
		}
		return nil
	}
	return c.send(item{batch: b.Clone()})
}

// EnqueueError queues err in red, prefixed by message when set.
func (c *Channel) EnqueueError(err error, message string) error {
	if err == nil {
		return nil
	}
	var b Batch
	if message != "" {
		b.Text(message + ": ")
	}
	b.Color(err.Error()+"\n", termstyle.ColorRed)
	return c.Enqueue(b)
}

// Flush blocks until every batch enqueued before the call has been written,
// or ctx is done.
func (c *Channel) Flush(ctx context.Context) error {
	marker := make(chan struct{})
	if err := c.send(item{flushed: marker}); err != nil {
		if errors.Is(err, ErrChannelClosed) {
			return c.wait(ctx)
		}
		return err
	}
	select {
	case <-marker:
		return c.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops intake, drains pending batches and waits for the consumer. It
// is idempotent and returns the first write error seen.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.queue)
		c.mu.Unlock()
	})
	<-c.done
	return c.Err()
}

// Err returns the first write error, if any.
func (c *Channel) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

func (c *Channel) send(it item) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrChannelClosed
	}
	c.queue <- it
	return nil
}

func (c *Channel) wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Channel) consume() {
	defer close(c.done)
	for it := range c.queue {
		if it.flushed != nil {
			close(it.flushed)
			continue
		}
		c.render(it.batch)
	}
}

// render writes a batch with a single Write call so it stays contiguous
// even if other code shares the writer.
func (c *Channel) render(b Batch) {
	var sb strings.Builder
	for _, f := range b {
		sb.WriteString(termstyle.Style(c.profile, f.Text, f.Fg, f.Bg))
	}
	if _, err := io.WriteString(c.out, sb.String()); err != nil {
		c.errMu.Lock()
		if c.err == nil {
			c.err = err
		}
		c.errMu.Unlock()
	}
}
