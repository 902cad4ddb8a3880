// Package ebitenwin runs a driver in a desktop window managed by Ebitengine.
//
// The data flow per tick is:
//
//	input -> Driver -> caller
//	caller -> Queue -> Driver.Drain -> Driver.Render -> raster pixels -> Canvas -> screen
//
// # Usage
//
//	win := ebitenwin.NewWindow(cfg.Title, cfg.Width, cfg.Height, cfg.Resizable)
//	drv := driver.New(win, b, ch, driver.WithSource(queue))
//	drv.Ready()
//	g := ebitenwin.NewGame(ctx, drv, ebitenwin.Options{
//		DrawInterval: cfg.DrawInterval(),
//		DrainBudget:  cfg.DrainBudget,
//	})
//	err := ebitenwin.Run(g)
//
// # Thread Safety
//
// Game and Canvas belong to ebiten's update goroutine. Window methods only
// call ebiten's window API, which may be used from any goroutine.
package ebitenwin
