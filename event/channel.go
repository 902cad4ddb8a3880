package event

import (
	"io"
	"sync"

	"github.com/zelixir/scenic-driver-gg/wire"
)

// Emitter accepts outbound events. Every component that reports to the
// caller depends on this rather than on a concrete channel.
type Emitter interface {
	Emit(ev Event) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ev Event) error

// Emit calls f(ev).
func (f EmitterFunc) Emit(ev Event) error { return f(ev) }

// Flusher is implemented by writers that buffer, such as *bufio.Writer.
type Flusher interface {
	Flush() error
}

// Channel frames events and writes them to an io.Writer.
//
// Each frame (length prefix and payload) goes out in a single Write under a
// mutex, so concurrent callers never interleave partial frames. If the
// writer implements Flusher it is flushed after every frame.
type Channel struct {
	mu      sync.Mutex
	w       io.Writer
	buf     []byte
	observe func(Kind)
}

// ChannelOption configures a Channel.
type ChannelOption func(*Channel)

// WithObserver registers fn to be called with the kind of every event that
// was written successfully.
func WithObserver(fn func(Kind)) ChannelOption {
	return func(c *Channel) {
		c.observe = fn
	}
}

// NewChannel returns a Channel writing to w.
func NewChannel(w io.Writer, opts ...ChannelOption) *Channel {
	c := &Channel{w: w, buf: make([]byte, 0, 256)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Emit writes ev as one frame and flushes.
func (c *Channel) Emit(ev Event) error {
	payload := Encode(ev)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.buf = wire.AppendFrame(c.buf[:0], payload)
	if _, err := c.w.Write(c.buf); err != nil {
		return err
	}
	if f, ok := c.w.(Flusher); ok {
		if err := f.Flush(); err != nil {
			return err
		}
	}
	if c.observe != nil {
		c.observe(ev.Kind())
	}
	return nil
}

var _ Emitter = (*Channel)(nil)

// Collector is an Emitter that keeps every event in memory.
type Collector struct {
	mu     sync.Mutex
	events []Event
}

// Emit records ev.
func (c *Collector) Emit(ev Event) error {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
	return nil
}

// Events returns a copy of the recorded events.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

// OfKind returns the recorded events of kind k.
func (c *Collector) OfKind(k Kind) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Event
	for _, ev := range c.events {
		if ev.Kind() == k {
			out = append(out, ev)
		}
	}
	return out
}

// Reset forgets every recorded event.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.events = nil
	c.mu.Unlock()
}

var _ Emitter = (*Collector)(nil)
