// Package driver renders Scenic scene graphs in a native window.
//
// # Overview
//
// A driver process is owned by a caller (the Scenic view port) that talks to
// it over a pair of byte streams. Inbound frames carry commands: store a
// compiled draw script, pick the root script, load a font or a texture,
// move or resize the window. Outbound frames carry events: input the user
// produced, acknowledgements, statistics and log lines.
//
// The Driver type ties the pieces together:
//
//	win := driver.NewHeadlessWindow(800, 600, true)
//	b, _ := backend.New("raster")
//	d := driver.New(win, b, event.NewChannel(os.Stdout),
//		driver.WithSource(queue))
//	d.Ready()
//	for d.Running() {
//		d.Drain(ctx, 32*time.Millisecond)
//		if d.RedrawPending() {
//			d.Render(ctx, 800, 600, 1)
//		}
//	}
//
// # Architecture
//
// The module is organized into:
//   - wire: framing and the field codec shared by both directions
//   - event: outbound events and the channel that writes them
//   - store: script and texture tables keyed by the caller's ids
//   - script: the draw-script interpreter
//   - backend: the drawing capability set, with raster and record
//     implementations
//   - transport: inbound frame queues over stdio or a WebSocket
//
// # Error Handling
//
// Nothing the caller sends can stop the driver except quit and crash.
// Malformed frames, unknown commands and backend failures are reported as
// one log event each and processing continues with the next frame. See
// Error for the categories.
//
// # Logging
//
// Diagnostics go to a zap logger, silent by default. See SetLogger.
package driver

// Version is the driver version reported in diagnostics.
const Version = "0.3.0"
