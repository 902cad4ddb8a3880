package main

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"

	"github.com/spf13/cobra"

	driver "github.com/zelixir/scenic-driver-gg"
	"github.com/zelixir/scenic-driver-gg/backend"
	"github.com/zelixir/scenic-driver-gg/event"
	"github.com/zelixir/scenic-driver-gg/integration/ebitenwin"
	"github.com/zelixir/scenic-driver-gg/transport"
)

func replayCmd() *cobra.Command {
	var (
		width, height int
		output        string
		backendName   string
	)

	cmd := &cobra.Command{
		Use:   "replay <capture>",
		Short: "Replay a captured command stream and save the last frame",
		Long: `Replay dispatches every frame of a captured inbound stream against a
headless driver, renders once, and writes the result as PNG.

A capture is the raw bytes the caller sent: length-prefixed frames
back to back.

Examples:
  scenic-driver replay session.bin
  scenic-driver replay --output frame.png --width 1024 --height 768 session.bin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return replay(cmd.Context(), args[0], output, backendName, width, height, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&width, "width", 800, "frame width")
	cmd.Flags().IntVar(&height, "height", 600, "frame height")
	cmd.Flags().StringVarP(&output, "output", "o", "replay.png", "output file")
	cmd.Flags().StringVar(&backendName, "backend", "raster", "drawing backend")

	return cmd
}

func replay(ctx context.Context, input, output, backendName string, width, height int, stdout io.Writer) error {
	f, err := os.Open(input)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := backend.New(backendName)
	if err != nil {
		return err
	}
	defer b.Close()

	events := map[event.Kind]int{}
	em := event.EmitterFunc(func(ev event.Event) error {
		events[ev.Kind()]++
		if l, ok := ev.(event.Log); ok {
			fmt.Fprintln(stdout, "log:", l.Text)
		}
		return nil
	})
	win := driver.NewHeadlessWindow(width, height, false)
	drv := driver.New(win, b, em, driver.WithExit(func(int) {}))

	queue := transport.Start(ctx, f)
	frames := 0
	for drv.Running() {
		frame, ok := queue.Pop(ctx)
		if !ok {
			break
		}
		frames++
		drv.Dispatch(frame)
	}
	if err := queue.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading %s: %w", input, err)
	}

	w, h := win.Size()
	if err := drv.Render(ctx, w, h, 1); err != nil {
		fmt.Fprintln(stdout, "render:", err)
	}
	fmt.Fprintf(stdout, "replayed %d frames, root %d, %d draw acks\n", frames, drv.Root(), events[event.KindDrawReady])

	framer, ok := b.(ebitenwin.Framer)
	if !ok {
		return nil
	}
	out, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := png.Encode(out, framer.Image()); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "saved %s (%dx%d)\n", output, w, h)
	return nil
}
