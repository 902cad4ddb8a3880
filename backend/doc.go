// Package backend defines the vector graphics capability set the script
// interpreter drives.
//
// The interface follows a stateful, immediate-mode model: style and transform
// calls mutate the current state, path calls build the current path, and
// Fill or Stroke commit it with the current fill or stroke style. Save and
// Restore bracket state changes.
//
// # Backend Registration
//
// Implementations register themselves in init(), following the database/sql
// driver pattern:
//
//	import _ "github.com/zelixir/scenic-driver-gg/backend/raster"
//
//	b, err := backend.New("raster")
//
// Two implementations ship with the driver:
//
//   - raster renders into a pixel buffer with gg
//   - record captures every call for tests and headless runs
//
// # Paints
//
// Gradients and image patterns are described by the sealed [Paint] sum type.
// A paint is a value; backends resolve it against the transform that is
// current when it is installed with SetFillPaint or SetStrokePaint.
//
// # Errors
//
// Drawing calls do not return errors. Failures a backend detects while
// drawing are queued and collected with DrainErrors, the way a GPU API
// exposes an error flag.
package backend
