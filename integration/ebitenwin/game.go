package ebitenwin

import (
	"context"
	"errors"
	"image"
	"io/fs"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	driver "github.com/zelixir/scenic-driver-gg"
)

// Framer is implemented by backends that render into memory, such as the
// raster backend. Frames from other backends are not presented.
type Framer interface {
	Image() *image.RGBA
}

// Options configures a Game.
type Options struct {
	// DrawInterval is the minimum time between render passes.
	DrawInterval time.Duration
	// DrainBudget bounds the time spent dispatching frames per tick.
	DrainBudget time.Duration
	Logger      *zap.Logger
}

// Game runs the driver inside ebiten's loop. Every tick it forwards input,
// detects resizes, drains inbound frames and renders when a redraw is
// pending and the draw interval has elapsed.
type Game struct {
	ctx    context.Context
	drv    *driver.Driver
	framer Framer
	canvas Canvas
	opts   Options

	lastDraw      time.Time
	width, height int
	cx, cy        int
	inside        bool
	held          map[ebiten.Key]bool
	keys          []ebiten.Key
	chars         []rune
}

var _ ebiten.Game = (*Game)(nil)

// NewGame wraps drv. The first tick renders once so the clear color shows
// before any script arrives.
func NewGame(ctx context.Context, drv *driver.Driver, opts Options) *Game {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	g := &Game{
		ctx:  ctx,
		drv:  drv,
		opts: opts,
		held: make(map[ebiten.Key]bool),
	}
	g.framer, _ = drv.Backend().(Framer)
	g.width, g.height = ebiten.WindowSize()
	drv.RequestRedraw()
	return g
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if ebiten.IsWindowBeingClosed() {
		g.drv.Close()
	}
	g.pollInput()

	if w, h := ebiten.WindowSize(); w != g.width || h != g.height {
		g.width, g.height = w, h
		g.drv.Reshape(w, h)
	}

	g.drv.Drain(g.ctx, g.opts.DrainBudget)
	if !g.drv.Running() || g.ctx.Err() != nil {
		return ebiten.Termination
	}

	if g.drv.RedrawPending() && time.Since(g.lastDraw) >= g.opts.DrawInterval {
		g.render()
	}
	return nil
}

func (g *Game) render() {
	g.lastDraw = time.Now()
	// Render failures are already reported to the caller.
	_ = g.drv.Render(g.ctx, g.width, g.height, 1)
	if g.framer == nil {
		return
	}
	if err := g.canvas.Upload(g.framer.Image()); err != nil {
		g.opts.Logger.Warn("frame upload failed", zap.Error(err))
	}
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	g.canvas.DrawTo(screen)
}

// Layout implements ebiten.Game. One logical pixel is one window unit.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func (g *Game) pollInput() {
	mods := modifierBits(ebiten.IsKeyPressed)

	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		g.held[k] = true
		g.drv.Key(keyCode(k), 0, actionPress, mods)
	}
	g.keys = inpututil.AppendJustReleasedKeys(g.keys[:0])
	for _, k := range g.keys {
		delete(g.held, k)
		g.drv.Key(keyCode(k), 0, actionRelease, mods)
	}
	for k := range g.held {
		if repeats(inpututil.KeyPressDuration(k)) {
			g.drv.Key(keyCode(k), 0, actionRepeat, mods)
		}
	}

	g.chars = ebiten.AppendInputChars(g.chars[:0])
	for _, r := range g.chars {
		g.drv.Codepoint(r, mods)
	}

	x, y := ebiten.CursorPosition()
	if x != g.cx || y != g.cy {
		g.cx, g.cy = x, y
		g.drv.CursorPos(float64(x), float64(y))
	}
	if in := x >= 0 && y >= 0 && x < g.width && y < g.height; in != g.inside {
		g.inside = in
		g.drv.CursorEnter(in)
	}

	for _, b := range []ebiten.MouseButton{ebiten.MouseButtonLeft, ebiten.MouseButtonRight, ebiten.MouseButtonMiddle} {
		if inpututil.IsMouseButtonJustPressed(b) {
			g.drv.MouseButton(mouseButton(b), actionPress, mods)
		}
		if inpututil.IsMouseButtonJustReleased(b) {
			g.drv.MouseButton(mouseButton(b), actionRelease, mods)
		}
	}

	if dx, dy := ebiten.Wheel(); dx != 0 || dy != 0 {
		g.drv.Scroll(dx, dy)
	}

	if files := ebiten.DroppedFiles(); files != nil {
		g.drv.DropPaths(droppedNames(files))
	}
}

// droppedNames lists the top-level entries of a drop. Ebiten exposes dropped
// files as a virtual file system, so names are relative to it.
func droppedNames(files fs.FS) []string {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// Close releases the presented frame.
func (g *Game) Close() {
	g.canvas.Close()
}

// Run opens the window and runs g until the driver stops or ctx is done.
func Run(g *Game) error {
	defer g.Close()
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}
