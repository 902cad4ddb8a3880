// Command scenic-driver renders Scenic scene graphs for a supervising
// process that talks to it over stdin and stdout.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	driver "github.com/zelixir/scenic-driver-gg"
	"github.com/zelixir/scenic-driver-gg/internal/config"

	_ "github.com/zelixir/scenic-driver-gg/backend/raster"
	_ "github.com/zelixir/scenic-driver-gg/backend/record"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := rootCmd()
	rootCmd.AddCommand(replayCmd(), versionCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "scenic-driver: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:   "scenic-driver [width height title resizable [block_size]]",
		Short: "Native window driver for Scenic",
		Long: `scenic-driver draws Scenic scripts in a native window.

It reads length-prefixed command frames from stdin (or one WebSocket
caller with --listen) and writes input and status events to stdout.
Diagnostics go to stderr.

The positional arguments are the launch contract used by the Scenic
driver library; flags override the remaining settings.

Examples:
  scenic-driver 800 600 "My App" true
  scenic-driver --headless --backend record 640 480 test false
  scenic-driver --listen 127.0.0.1:4500 --metrics-addr :9100`,
		Args:          cobra.MaximumNArgs(5),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				var err error
				if cfg, err = cfg.FromArgs(args); err != nil {
					fmt.Fprintln(os.Stderr, config.Usage)
					return err
				}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.Backend, "backend", cfg.Backend, "drawing backend (raster, record)")
	f.IntVar(&cfg.FPS, "fps", cfg.FPS, "maximum frames drawn per second")
	f.DurationVar(&cfg.DrainBudget, "drain-budget", cfg.DrainBudget, "time spent dispatching commands per tick")
	f.IntVar(&cfg.MaxFrame, "max-frame", cfg.MaxFrame, "largest accepted command frame, in bytes")
	f.IntVar(&cfg.MaxDepth, "max-depth", cfg.MaxDepth, "deepest nesting of script invocations")
	f.StringVar(&cfg.Listen, "listen", cfg.Listen, "accept the caller over WebSocket on this address instead of stdio")
	f.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "stderr log level (debug, info, warn, error)")
	f.BoolVar(&cfg.Headless, "headless", cfg.Headless, "run without a window")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the driver version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("scenic-driver", driver.Version)
		},
	}
}
