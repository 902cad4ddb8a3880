package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zelixir/scenic-driver-gg/wire"
)

// Path is where a Listener accepts the caller.
const Path = "/driver"

// ErrBusy is the reason a second caller is turned away.
var ErrBusy = errors.New("transport: caller already connected")

// ErrListenerClosed is returned by Accept after Close.
var ErrListenerClosed = errors.New("transport: listener closed")

// Conn adapts a WebSocket connection to a byte stream. Frames keep their
// length prefix inside binary messages; each Write sends one message.
type Conn struct {
	ws *websocket.Conn
	r  io.Reader

	wmu sync.Mutex
}

// Read reads the payloads of successive binary messages as one stream.
// Text messages are skipped. A normal close reads as io.EOF.
func (c *Conn) Read(p []byte) (int, error) {
	for {
		if c.r == nil {
			mt, r, err := c.ws.NextReader()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return 0, io.EOF
				}
				return 0, err
			}
			if mt != websocket.BinaryMessage {
				continue
			}
			c.r = r
		}
		n, err := c.r.Read(p)
		if errors.Is(err, io.EOF) {
			c.r = nil
			if n == 0 {
				continue
			}
			err = nil
		}
		return n, err
	}
}

// Write sends p as one binary message.
func (c *Conn) Write(p []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.ws.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close sends a close message and closes the connection.
func (c *Conn) Close() error {
	c.wmu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	c.wmu.Unlock()
	return c.ws.Close()
}

// Listener accepts exactly one caller over WebSocket. Later callers are
// refused with 409 Conflict.
type Listener struct {
	ln       net.Listener
	srv      *http.Server
	upgrader websocket.Upgrader
	conns    chan *Conn
	done     chan struct{}
	log      *zap.Logger
	maxFrame int

	mu    sync.Mutex
	taken bool
	once  sync.Once
}

// Listen starts serving on addr.
func Listen(addr string, opts ...Option) (*Listener, error) {
	o := newOptions(opts)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	l := &Listener{
		ln: ln,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 << 10,
			WriteBufferSize: 64 << 10,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns:    make(chan *Conn, 1),
		done:     make(chan struct{}),
		log:      o.logger,
		maxFrame: o.maxFrame,
	}
	l.srv = &http.Server{Handler: l.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.log.Error("websocket listener failed", zap.Error(err))
		}
	}()
	l.log.Info("waiting for caller", zap.Stringer("addr", ln.Addr()))
	return l, nil
}

// Handler returns the router that upgrades the caller's request.
func (l *Listener) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get(Path, l.upgrade)
	return r
}

func (l *Listener) upgrade(w http.ResponseWriter, r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.taken {
		l.log.Warn("refusing second caller", zap.String("remote", r.RemoteAddr))
		http.Error(w, ErrBusy.Error(), http.StatusConflict)
		return
	}
	ws, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	ws.SetReadLimit(int64(l.maxFrame + wire.HeaderSize))
	l.taken = true
	l.log.Info("caller connected", zap.String("remote", r.RemoteAddr))
	l.conns <- &Conn{ws: ws}
}

// Addr returns the listening address.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Accept waits for the caller to connect.
func (l *Listener) Accept(ctx context.Context) (*Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case <-l.done:
		return nil, ErrListenerClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops listening. An accepted Conn stays open.
func (l *Listener) Close() error {
	var err error
	l.once.Do(func() {
		close(l.done)
		err = l.srv.Close()
	})
	return err
}

// WebSocket waits on addr for one caller and returns its connection.
func WebSocket(ctx context.Context, addr string, opts ...Option) (*Conn, error) {
	l, err := Listen(addr, opts...)
	if err != nil {
		return nil, err
	}
	defer l.Close()
	return l.Accept(ctx)
}
