package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	driver "github.com/zelixir/scenic-driver-gg"
	"github.com/zelixir/scenic-driver-gg/backend"
	"github.com/zelixir/scenic-driver-gg/event"
	"github.com/zelixir/scenic-driver-gg/integration/ebitenwin"
	"github.com/zelixir/scenic-driver-gg/internal/config"
	"github.com/zelixir/scenic-driver-gg/internal/metrics"
	"github.com/zelixir/scenic-driver-gg/transport"
)

// newLogger builds a logger that writes to stderr only; stdout carries the
// protocol.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	zc.Encoding = "console"
	zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

func run(ctx context.Context, cfg config.Config) error {
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	driver.SetLogger(log)

	b, err := backend.New(cfg.Backend)
	if err != nil {
		return err
	}
	defer b.Close()

	topts := []transport.Option{
		transport.WithMaxFrame(cfg.MaxFrame),
		transport.WithLogger(log.Named("transport")),
	}
	var (
		in  io.Reader
		out io.Writer
	)
	if cfg.Listen != "" {
		conn, err := transport.WebSocket(ctx, cfg.Listen, topts...)
		if err != nil {
			return fmt.Errorf("accepting caller: %w", err)
		}
		defer conn.Close()
		in, out = conn, conn
	} else {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			log.Warn("stdin is a terminal; expecting a command stream from the Scenic driver library")
		}
		in, out = transport.Stdio(cfg.BlockSize)
	}
	queue := transport.Start(ctx, in, topts...)

	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		m = metrics.New()
		addr, errc, err := m.Serve(ctx, cfg.MetricsAddr)
		if err != nil {
			return fmt.Errorf("serving metrics: %w", err)
		}
		log.Info("serving metrics", zap.Stringer("addr", addr))
		go func() {
			for err := range errc {
				log.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	ch := event.NewChannel(out, event.WithObserver(func(k event.Kind) {
		if ce := log.Check(zap.DebugLevel, "event sent"); ce != nil {
			ce.Write(zap.Stringer("kind", k))
		}
	}))

	var win driver.Window
	if cfg.Headless {
		win = driver.NewHeadlessWindow(cfg.Width, cfg.Height, cfg.Resizable)
	} else {
		win = ebitenwin.NewWindow(cfg.Title, cfg.Width, cfg.Height, cfg.Resizable)
	}
	drv := driver.New(win, b, ch,
		driver.WithSource(queue),
		driver.WithMetrics(m),
		driver.WithMaxDepth(cfg.MaxDepth),
		driver.WithLogger(log),
	)
	if err := drv.Ready(); err != nil {
		return err
	}

	if cfg.Headless {
		return runHeadless(ctx, drv, win, cfg)
	}
	return ebitenwin.Run(ebitenwin.NewGame(ctx, drv, ebitenwin.Options{
		DrawInterval: cfg.DrawInterval(),
		DrainBudget:  cfg.DrainBudget,
		Logger:       log.Named("window"),
	}))
}

// runHeadless drives the loop on a ticker instead of a window.
func runHeadless(ctx context.Context, drv *driver.Driver, win driver.Window, cfg config.Config) error {
	ticker := time.NewTicker(cfg.DrawInterval())
	defer ticker.Stop()

	for drv.Running() {
		drv.Drain(ctx, cfg.DrainBudget)
		if drv.RedrawPending() {
			w, h := win.Size()
			// Failures are reported to the caller by the driver.
			_ = drv.Render(ctx, w, h, 1)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}
