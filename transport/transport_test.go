package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zelixir/scenic-driver-gg/wire"
)

func framed(payloads ...string) []byte {
	var out []byte
	for _, p := range payloads {
		out = wire.AppendFrame(out, []byte(p))
	}
	return out
}

// popAll collects frames until the queue closes.
func popAll(t *testing.T, q *Queue) []string {
	t.Helper()
	var got []string
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		f, ok, closed := q.TryPop()
		if ok {
			got = append(got, string(f))
			continue
		}
		if closed {
			return got
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("queue did not close")
	return nil
}

func TestQueueDeliversInOrder(t *testing.T) {
	q := Start(context.Background(), bytes.NewReader(framed("a", "bb", "", "ccc")))
	got := popAll(t, q)
	want := []string{"a", "bb", "", "ccc"}
	if len(got) != len(want) {
		t.Fatalf("frames = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if !errors.Is(q.Err(), io.EOF) {
		t.Errorf("Err() = %v, want io.EOF", q.Err())
	}
}

func TestQueueErrors(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		opts []Option
		want error
	}{
		{"truncated payload", framed("hello")[:6], nil, io.ErrUnexpectedEOF},
		{"truncated header", []byte{0, 0}, nil, io.ErrUnexpectedEOF},
		{"too large", framed("0123456789"), []Option{WithMaxFrame(4)}, wire.ErrFrameTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Start(context.Background(), bytes.NewReader(tt.in), tt.opts...)
			if got := popAll(t, q); len(got) != 0 {
				t.Errorf("frames = %q, want none", got)
			}
			if !errors.Is(q.Err(), tt.want) {
				t.Errorf("Err() = %v, want %v", q.Err(), tt.want)
			}
		})
	}
}

func TestQueueCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := Start(ctx, bytes.NewReader(framed("a", "b", "c")), WithCapacity(1))

	// The reader blocks on the second frame until the first is taken.
	time.Sleep(10 * time.Millisecond)
	cancel()
	popAll(t, q)
	if !errors.Is(q.Err(), context.Canceled) {
		t.Errorf("Err() = %v, want context.Canceled", q.Err())
	}
}

func TestQueuePop(t *testing.T) {
	q := Start(context.Background(), bytes.NewReader(framed("x")))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	f, ok := q.Pop(ctx)
	if !ok || string(f) != "x" {
		t.Errorf("Pop() = %q, %v, want \"x\", true", f, ok)
	}
	if _, ok := q.Pop(ctx); ok {
		t.Error("Pop() on closed queue = true")
	}
}

func TestTryPopEmpty(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	q := Start(context.Background(), r)
	if _, ok, closed := q.TryPop(); ok || closed {
		t.Errorf("TryPop() = ok %v, closed %v, want false, false", ok, closed)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestWebSocket(t *testing.T) {
	l, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer l.Close()

	url := "ws://" + l.Addr().String() + Path
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := l.Accept(ctx)
	if err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	defer conn.Close()

	t.Run("second caller refused", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		if err == nil {
			t.Fatal("second Dial() succeeded")
		}
		if resp == nil || resp.StatusCode != http.StatusConflict {
			t.Errorf("second Dial() response = %v, want 409", resp)
		}
	})

	t.Run("inbound frames span messages", func(t *testing.T) {
		data := framed("one", "two")
		// Split across messages, with a text message in between.
		if err := client.WriteMessage(websocket.BinaryMessage, data[:5]); err != nil {
			t.Fatal(err)
		}
		if err := client.WriteMessage(websocket.TextMessage, []byte("ignored")); err != nil {
			t.Fatal(err)
		}
		if err := client.WriteMessage(websocket.BinaryMessage, data[5:]); err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"one", "two"} {
			got, err := wire.ReadFrame(conn, 0)
			if err != nil {
				t.Fatalf("ReadFrame() error = %v", err)
			}
			if string(got) != want {
				t.Errorf("ReadFrame() = %q, want %q", got, want)
			}
		}
	})

	t.Run("outbound write is one message", func(t *testing.T) {
		if err := wire.WriteFrame(conn, []byte("event")); err != nil {
			t.Fatalf("WriteFrame() error = %v", err)
		}
		mt, msg, err := client.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage() error = %v", err)
		}
		if mt != websocket.BinaryMessage || !bytes.Equal(msg, framed("event")) {
			t.Errorf("ReadMessage() = %d, %v, want binary %v", mt, msg, framed("event"))
		}
	})

	t.Run("close reads as EOF", func(t *testing.T) {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := client.WriteMessage(websocket.CloseMessage, msg); err != nil {
			t.Fatal(err)
		}
		if _, err := conn.Read(make([]byte, 8)); !errors.Is(err, io.EOF) {
			t.Errorf("Read() error = %v, want io.EOF", err)
		}
	})
}

func TestAcceptAfterClose(t *testing.T) {
	l, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	l.Close()
	if _, err := l.Accept(context.Background()); !errors.Is(err, ErrListenerClosed) {
		t.Errorf("Accept() error = %v, want ErrListenerClosed", err)
	}
}
