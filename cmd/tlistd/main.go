// Spins up the list server, compatible w/ the Redis protocol.
// With --script_file, replays a YAML scenario against an in-memory registry and exits instead.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/nobletooth/tlist/pkg/config"
	"github.com/nobletooth/tlist/pkg/port"
	"github.com/nobletooth/tlist/pkg/script"
	"github.com/nobletooth/tlist/pkg/utils"
)

var (
	printVersion = flag.Bool("print_version", false, "Print the version and exit.")
	scriptFile   = flag.String("script_file", "", "Run the YAML scenario at this path and exit instead of serving.")
)

// runScript replays the scenario at `path` and writes one rendered reply per step to `out`.
func runScript(path string, out io.Writer) error {
	scenario, err := script.Load(path)
	if err != nil {
		return err
	}
	handler, err := port.NewHandler(port.NewRegistryFromFlags())
	if err != nil {
		return fmt.Errorf("failed to create a handler: %w", err)
	}
	replies, runErr := scenario.Run(handler)
	for _, reply := range replies {
		if _, err := fmt.Fprintln(out, reply.String()); err != nil {
			return fmt.Errorf("failed to write reply: %w", err)
		}
	}
	return runErr
}

func main() {
	config.InitFlags()
	utils.InitLogging()

	if *printVersion {
		slog.Info("Tlist build info.", utils.BuildInfo()...)
		return
	}

	if *scriptFile != "" {
		if err := runScript(*scriptFile, os.Stdout); err != nil {
			slog.Error("Script failed.", "path", *scriptFile, "err", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	go func() { // Listen for OS interrupts in the background.
		sig := <-signals
		slog.Info("Received termination signal, cancelling server context.", "signal", sig)
		cancel()
	}()

	slog.Info("Starting tlist server.", utils.BuildInfo()...)
	if err := port.RunRedisServer(ctx, port.NewRegistryFromFlags()); err != nil {
		slog.Error("Tlist server stopped.", "err", err)
		os.Exit(1)
	}
}
