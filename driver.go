package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/zelixir/scenic-driver-gg/backend"
	"github.com/zelixir/scenic-driver-gg/event"
	"github.com/zelixir/scenic-driver-gg/internal/metrics"
	"github.com/zelixir/scenic-driver-gg/script"
	"github.com/zelixir/scenic-driver-gg/store"
	"github.com/zelixir/scenic-driver-gg/wire"
)

const tracerName = "github.com/zelixir/scenic-driver-gg"

// Source yields inbound frames without blocking.
type Source interface {
	// TryPop returns the next queued frame. When nothing is queued, ok is
	// false and closed reports that no more frames will ever arrive.
	TryPop() (frame []byte, ok, closed bool)
	// Len returns the number of queued frames.
	Len() int
	// Err explains why the source closed.
	Err() error
}

// Option configures a Driver.
type Option func(*options)

type options struct {
	source   Source
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	exit     func(code int)
	maxDepth int
	logger   *zap.Logger
}

// WithSource sets the inbound frame queue that Drain consumes.
func WithSource(src Source) Option {
	return func(o *options) { o.source = src }
}

// WithMetrics records driver activity in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracer sets the tracer for render and drain spans. The default is
// the global otel tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithExit replaces os.Exit as the action of the crash command.
func WithExit(fn func(code int)) Option {
	return func(o *options) { o.exit = fn }
}

// WithMaxDepth bounds nested script invocations.
func WithMaxDepth(n int) Option {
	return func(o *options) { o.maxDepth = n }
}

// WithLogger sets the diagnostic logger. The default is Logger().
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Driver owns the state shared by the dispatcher, the interpreter and the
// render pass. All methods must be called from one goroutine.
type Driver struct {
	window   Window
	backend  backend.Backend
	scripts  *store.Scripts
	textures *store.Textures
	em       event.Emitter
	interp   *script.Interpreter
	src      Source
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	exit     func(int)
	log      *zap.Logger

	root      int32
	inputMask InputMask
	running   bool
	redraw    bool
}

// New returns a driver that draws with b, controls win and reports to em.
func New(win Window, b backend.Backend, em event.Emitter, opts ...Option) *Driver {
	o := options{exit: os.Exit}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	if o.logger == nil {
		o.logger = Logger()
	}

	d := &Driver{
		window:    win,
		backend:   b,
		scripts:   store.NewScripts(),
		textures:  store.NewTextures(),
		em:        em,
		src:       o.source,
		metrics:   o.metrics,
		tracer:    o.tracer,
		exit:      o.exit,
		log:       o.logger,
		inputMask: InputAll,
		running:   true,
	}
	d.interp = &script.Interpreter{
		Backend:  b,
		Scripts:  d.scripts,
		Textures: d.textures,
		Emitter:  event.EmitterFunc(d.emit),
		MaxDepth: o.maxDepth,
		Logger:   o.logger.Named("script"),
		Metrics:  o.metrics,
	}
	return d
}

// Ready announces the driver to the caller.
func (d *Driver) Ready() error {
	d.log.Info("driver ready", zap.String("backend", d.backend.Name()))
	return d.emit(event.Ready{Root: 0})
}

// Running reports whether the main loop should keep going.
func (d *Driver) Running() bool { return d.running }

// RedrawPending reports whether a render pass has been requested since the
// last one.
func (d *Driver) RedrawPending() bool { return d.redraw }

// RequestRedraw marks the frame dirty.
func (d *Driver) RequestRedraw() { d.redraw = true }

// Root returns the id of the script drawn by Render.
func (d *Driver) Root() int32 { return d.root }

// InputMask returns the input categories currently forwarded.
func (d *Driver) InputMask() InputMask { return d.inputMask }

// Backend returns the backend the driver draws with.
func (d *Driver) Backend() backend.Backend { return d.backend }

// Scripts returns the script store.
func (d *Driver) Scripts() *store.Scripts { return d.scripts }

// Textures returns the texture store.
func (d *Driver) Textures() *store.Textures { return d.textures }

// Drain dispatches queued frames in arrival order until the queue is empty
// or budget has elapsed, and reports whether any of them asked for a
// redraw. It never waits for new frames.
func (d *Driver) Drain(ctx context.Context, budget time.Duration) bool {
	if d.src == nil {
		return false
	}
	_, span := d.tracer.Start(ctx, "driver.drain")
	defer span.End()

	start := time.Now()
	frames := 0
	redraw := false
	for d.running && ctx.Err() == nil && time.Since(start) < budget {
		frame, ok, closed := d.src.TryPop()
		if !ok {
			if closed {
				d.log.Info("caller gone, stopping", zap.Error(d.src.Err()))
				d.running = false
			}
			break
		}
		frames++
		if d.Dispatch(frame) == Redraw {
			redraw = true
		}
	}
	if redraw {
		d.redraw = true
	}

	d.metrics.SetQueueDepth(d.src.Len())
	d.metrics.SetResources(d.scripts.Len(), d.textures.Len())
	span.SetAttributes(attribute.Int("frames", frames))
	if frames > 0 {
		d.log.Debug("drained", zap.Int("frames", frames), zap.Bool("redraw", redraw))
	}
	return redraw
}

// Render runs the root script inside one backend frame. A root of zero or
// below, or one that names no stored script, draws nothing. Script failures
// are reported to the caller and also returned.
func (d *Driver) Render(ctx context.Context, width, height int, pixelRatio float64) error {
	_, span := d.tracer.Start(ctx, "driver.render",
		trace.WithAttributes(attribute.Int("root", int(d.root))))
	defer span.End()
	start := time.Now()
	d.redraw = false

	d.backend.BeginFrame(width, height, pixelRatio)
	var err error
	if d.root > 0 {
		if rerr := d.interp.Run(uint32(d.root)); rerr != nil {
			e := classify("render", rerr)
			d.report(e)
			err = e
		}
	}
	if ferr := d.backend.EndFrame(); ferr != nil {
		err = errors.Join(err, ferr)
	}

	d.metrics.ObserveRender(time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
	}
	return err
}

// Dispatch decodes and executes one inbound frame.
func (d *Driver) Dispatch(frame []byte) Outcome {
	dec := wire.NewDecoder(frame)
	raw, err := dec.Uint32()
	if err != nil {
		d.metrics.DecodeError("command")
		d.report(&Error{Kind: KindDecode, Op: "frame", Err: err})
		return Continue
	}
	cmd := Command(raw)
	d.drainBackend("starting error: ")

	if _, known := commandNames[cmd]; !known {
		d.metrics.UnknownCommand()
		d.notify(&Error{Kind: KindUnknownCommand, Op: "dispatch", Detail: cmd.String()},
			fmt.Sprintf("unknown command: 0x%X", raw))
		return Continue
	}
	d.metrics.Command(cmd.String())
	d.log.Debug("dispatch", zap.Stringer("cmd", cmd), zap.Int("len", len(frame)))

	out, err := d.handle(cmd, dec)
	if err != nil {
		e := classify(cmd.String(), err)
		if e.Kind == KindDecode {
			d.metrics.DecodeError("command")
		}
		d.report(e)
		return Continue
	}
	if dec.Remaining() > 0 {
		d.trailing(cmd, dec.Rest())
	}
	return out
}

func (d *Driver) handle(cmd Command, dec *wire.Decoder) (Outcome, error) {
	switch cmd {
	case CmdQuit:
		d.log.Info("quit requested")
		d.running = false
		d.window.Wake()
		return Terminate, nil

	case CmdRenderScript:
		id, err := dec.Uint32()
		if err != nil {
			return Continue, err
		}
		d.scripts.Put(id, dec.Rest())
		d.emit(event.DrawReady{ID: id})
		d.window.Wake()
		return Redraw, nil

	case CmdClearScript:
		id, err := dec.Uint32()
		if err != nil {
			return Continue, err
		}
		d.scripts.Delete(id)
		return Redraw, nil

	case CmdSetRoot:
		id, err := dec.Int32()
		if err != nil {
			return Continue, err
		}
		d.root = id
		d.window.Wake()
		return Redraw, nil

	case CmdClearColor:
		c, err := dec.Color()
		if err != nil {
			return Continue, err
		}
		d.backend.SetClearColor(backend.ColorFromWire(c))
		return Redraw, nil

	case CmdInputFlags:
		mask, err := dec.Uint32()
		if err != nil {
			return Continue, err
		}
		d.inputMask = InputMask(mask)

	case CmdQueryStats:
		x, y := d.window.Position()
		w, h := d.window.Size()
		d.emit(event.Stats{
			InputFlags: uint32(d.inputMask),
			X:          int32(x),
			Y:          int32(y),
			Width:      int32(w),
			Height:     int32(h),
			Focused:    d.window.Focused(),
			Resizable:  d.window.Resizable(),
			Iconified:  d.window.Iconified(),
			Maximized:  d.window.Maximized(),
			Visible:    d.window.Visible(),
		})

	case CmdReshape, CmdReposition:
		a, err := dec.Int32()
		if err != nil {
			return Continue, err
		}
		b, err := dec.Int32()
		if err != nil {
			return Continue, err
		}
		if cmd == CmdReshape {
			d.window.SetSize(int(a), int(b))
		} else {
			d.window.SetPosition(int(a), int(b))
		}

	case CmdFocus:
		d.window.Focus()
	case CmdIconify:
		d.window.Iconify()
	case CmdMaximize:
		d.window.Maximize()
	case CmdRestore:
		d.window.Restore()
	case CmdShow:
		d.window.Show()
	case CmdHide:
		d.window.Hide()

	case CmdFreeTexture:
		key, err := dec.LenString()
		if err != nil {
			return Continue, err
		}
		if img, ok := d.textures.Delete(key); ok {
			d.backend.DeleteImage(img)
		}

	case CmdPutTextureBlob:
		key, data, err := namedBlob(dec)
		if err != nil {
			return Continue, err
		}
		img, err := d.backend.CreateImageMem(data)
		if err != nil {
			return Continue, &Error{Kind: KindBackend, Op: cmd.String(), Detail: key, Err: err}
		}
		if prev, replaced := d.textures.Put(key, img); replaced && prev != img {
			d.backend.DeleteImage(prev)
		}
		return Redraw, nil

	case CmdLoadFontFile, CmdLoadFontBlob:
		return d.loadFont(cmd, dec)

	case CmdCrash:
		d.notify(&Error{Kind: KindFatalRequest, Op: cmd.String(), Detail: "exiting"}, "receive_crash - exit")
		d.running = false
		d.exit(1)
		return Terminate, nil
	}
	return Continue, nil
}

// loadFont loads a font unless one is already registered under its name.
func (d *Driver) loadFont(cmd Command, dec *wire.Decoder) (Outcome, error) {
	nameLen, err := dec.Uint32()
	if err != nil {
		return Continue, err
	}
	dataLen, err := dec.Uint32()
	if err != nil {
		return Continue, err
	}
	name, err := dec.String(int(nameLen))
	if err != nil {
		return Continue, err
	}

	if cmd == CmdLoadFontFile {
		path, err := dec.String(int(dataLen))
		if err != nil {
			return Continue, err
		}
		if _, ok := d.backend.FindFont(name); ok {
			return Redraw, nil
		}
		if _, err := d.backend.CreateFont(name, path); err != nil {
			return Continue, &Error{Kind: KindBackend, Op: cmd.String(), Detail: name, Err: err}
		}
		return Redraw, nil
	}

	data, err := dec.Bytes(int(dataLen))
	if err != nil {
		return Continue, err
	}
	if _, ok := d.backend.FindFont(name); ok {
		return Redraw, nil
	}
	if _, err := d.backend.CreateFontMem(name, data); err != nil {
		return Continue, &Error{Kind: KindBackend, Op: cmd.String(), Detail: name, Err: err}
	}
	return Redraw, nil
}

// namedBlob reads name_len u32, data_len u32, name, data.
func namedBlob(dec *wire.Decoder) (string, []byte, error) {
	nameLen, err := dec.Uint32()
	if err != nil {
		return "", nil, err
	}
	dataLen, err := dec.Uint32()
	if err != nil {
		return "", nil, err
	}
	name, err := dec.String(int(nameLen))
	if err != nil {
		return "", nil, err
	}
	data, err := dec.Bytes(int(dataLen))
	if err != nil {
		return "", nil, err
	}
	return name, data, nil
}

// drainBackend reports every queued backend error as one log event.
func (d *Driver) drainBackend(prefix string) int {
	errs := d.backend.DrainErrors()
	for _, err := range errs {
		d.log.Warn("backend error", zap.String("context", strings.TrimSpace(prefix)), zap.Error(err))
		d.emit(event.Log{Text: prefix + err.Error()})
	}
	return len(errs)
}

// trailing reports bytes a command left undecoded. Queued backend errors
// are reported with the bytes as their prefix; with none queued, one line
// still describes the bytes.
func (d *Driver) trailing(cmd Command, rest []byte) {
	text := strings.ToValidUTF8(string(rest), "�")
	if d.drainBackend(text+" ") > 0 {
		return
	}
	d.log.Warn("trailing bytes", zap.Stringer("cmd", cmd), zap.Int("n", len(rest)))
	d.emit(event.Logf("%s: %d trailing bytes: %q", cmd, len(rest), text))
}

// report surfaces a non-fatal error as one log event.
func (d *Driver) report(e *Error) {
	d.notify(e, e.Error())
}

// notify logs e and sends text to the caller as one log event.
func (d *Driver) notify(e *Error, text string) {
	d.log.Warn("command failed",
		zap.String("kind", string(e.Kind)),
		zap.String("op", e.Op),
		zap.String("detail", e.Detail),
		zap.Error(e.Err))
	d.emit(event.Log{Text: text})
}

// emit writes ev to the caller. A write failure means the caller is gone,
// so the driver stops.
func (d *Driver) emit(ev event.Event) error {
	if err := d.em.Emit(ev); err != nil {
		if d.running {
			d.log.Error("cannot reach caller, stopping", zap.Stringer("kind", ev.Kind()), zap.Error(err))
		}
		d.running = false
		return fmt.Errorf("driver: emit %s: %w", ev.Kind(), err)
	}
	d.metrics.Event(ev.Kind().String())
	return nil
}
