// Package transport moves frames between the driver and its caller.
//
// The inbound side is a Queue: a reader goroutine splits a byte stream into
// frames and buffers them, and the driver's main loop takes them with
// TryPop without ever blocking. The stream is stdin by default, or a single
// WebSocket connection.
package transport

import (
	"context"
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/zelixir/scenic-driver-gg/wire"
)

// DefaultCapacity is the number of frames a Queue buffers before the reader
// stops reading.
const DefaultCapacity = 1024

// Option configures a Queue or a Listener.
type Option func(*options)

type options struct {
	maxFrame int
	capacity int
	logger   *zap.Logger
}

func newOptions(opts []Option) options {
	o := options{maxFrame: wire.DefaultMaxFrame, capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// WithMaxFrame bounds the accepted payload size.
func WithMaxFrame(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxFrame = n
		}
	}
}

// WithCapacity sets how many frames are buffered.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithLogger sets the logger for transport diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Queue buffers frames read from a stream.
type Queue struct {
	frames chan []byte

	mu  sync.Mutex
	err error
}

// Start reads frames from r on a new goroutine until r fails, a frame is
// malformed or ctx is done. The queue is then closed and Err reports why.
// A clean end of stream reports io.EOF.
func Start(ctx context.Context, r io.Reader, opts ...Option) *Queue {
	o := newOptions(opts)
	q := &Queue{frames: make(chan []byte, o.capacity)}
	go q.run(ctx, r, o)
	return q
}

func (q *Queue) run(ctx context.Context, r io.Reader, o options) {
	defer close(q.frames)
	for {
		if err := ctx.Err(); err != nil {
			q.setErr(err)
			return
		}
		frame, err := wire.ReadFrame(r, o.maxFrame)
		if err != nil {
			q.setErr(err)
			if errors.Is(err, io.EOF) {
				o.logger.Info("inbound stream closed")
			} else {
				o.logger.Error("inbound stream failed", zap.Error(err))
			}
			return
		}
		select {
		case q.frames <- frame:
		case <-ctx.Done():
			q.setErr(ctx.Err())
			return
		}
	}
}

func (q *Queue) setErr(err error) {
	q.mu.Lock()
	q.err = err
	q.mu.Unlock()
}

// TryPop returns the oldest buffered frame. When none is buffered it
// returns ok false, and closed true once the reader has stopped for good.
func (q *Queue) TryPop() (frame []byte, ok, closed bool) {
	select {
	case f, open := <-q.frames:
		if !open {
			return nil, false, true
		}
		return f, true, false
	default:
		return nil, false, false
	}
}

// Pop waits for the next frame. It returns false when the queue is closed
// and empty, or ctx is done.
func (q *Queue) Pop(ctx context.Context) ([]byte, bool) {
	select {
	case f, open := <-q.frames:
		return f, open
	case <-ctx.Done():
		return nil, false
	}
}

// Len returns the number of buffered frames.
func (q *Queue) Len() int { return len(q.frames) }

// Err returns why the reader stopped, or nil while it is running.
func (q *Queue) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.err
}
