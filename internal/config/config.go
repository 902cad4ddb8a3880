// Package config holds the driver's launch settings.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap/zapcore"
)

// Usage is printed when the positional launch arguments are malformed.
const Usage = "scenic-driver should be launched via the Scenic driver library"

// Config is everything needed to start a driver.
type Config struct {
	Width     int
	Height    int
	Title     string
	Resizable bool
	// BlockSize sizes the inbound read buffer, in bytes.
	BlockSize int

	Backend     string
	FPS         int
	DrainBudget time.Duration
	MaxFrame    int
	MaxDepth    int
	Listen      string
	MetricsAddr string
	LogLevel    string
	Headless    bool
}

// Default returns the settings used when nothing is specified.
func Default() Config {
	return Config{
		Width:       800,
		Height:      600,
		Title:       "scenic",
		Resizable:   true,
		BlockSize:   64 << 10,
		Backend:     "raster",
		FPS:         60,
		DrainBudget: 32 * time.Millisecond,
		MaxFrame:    64 << 20,
		MaxDepth:    64,
		LogLevel:    "info",
	}
}

// DrawInterval is the minimum time between render passes.
func (c Config) DrawInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// Level parses LogLevel.
func (c Config) Level() (zapcore.Level, error) {
	return zapcore.ParseLevel(c.LogLevel)
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("config: window size %dx%d must be positive", c.Width, c.Height))
	}
	if c.BlockSize <= 0 {
		errs = append(errs, fmt.Errorf("config: block size %d must be positive", c.BlockSize))
	}
	if c.Backend == "" {
		errs = append(errs, errors.New("config: backend name is empty"))
	}
	if c.FPS <= 0 || c.FPS > 1000 {
		errs = append(errs, fmt.Errorf("config: fps %d out of range 1..1000", c.FPS))
	}
	if c.DrainBudget <= 0 {
		errs = append(errs, fmt.Errorf("config: drain budget %v must be positive", c.DrainBudget))
	}
	if c.MaxFrame <= 0 {
		errs = append(errs, fmt.Errorf("config: max frame %d must be positive", c.MaxFrame))
	}
	if c.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("config: max depth %d must be positive", c.MaxDepth))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, fmt.Errorf("config: %w", err))
	}
	return errors.Join(errs...)
}

// FromArgs applies the positional launch contract
//
//	width height title resizable [block_size]
//
// on top of c. Resizable is true only for the literal "true".
func (c Config) FromArgs(args []string) (Config, error) {
	if len(args) != 4 && len(args) != 5 {
		return c, fmt.Errorf("config: want 4 or 5 positional arguments, got %d", len(args))
	}
	w, err := strconv.Atoi(args[0])
	if err != nil {
		return c, fmt.Errorf("config: width: %w", err)
	}
	h, err := strconv.Atoi(args[1])
	if err != nil {
		return c, fmt.Errorf("config: height: %w", err)
	}
	c.Width, c.Height = w, h
	c.Title = args[2]
	c.Resizable = args[3] == "true"
	if len(args) == 5 {
		n, err := strconv.Atoi(args[4])
		if err != nil {
			return c, fmt.Errorf("config: block size: %w", err)
		}
		c.BlockSize = n
	}
	return c, nil
}
