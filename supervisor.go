package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"
	"github.com/milk9111/desktop-thingies/client"
	"golang.org/x/sync/errgroup"
)

const childStopGrace = 3 * time.Second

// supervise re-runs this binary once per target monitor, each child owning a
// single window. When one child fails the others are stopped.
func supervise(ctx context.Context, logger *log.Logger, targets []client.Target, opts options, configPath string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("supervise: find executable: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		args := childArgs(t.Monitor.ID, configPath, opts.debug)
		g.Go(func() error {
			cmd := exec.CommandContext(gctx, exe, args...)
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
			cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
			cmd.WaitDelay = childStopGrace

			logger.Info("starting display process", "display", t.Monitor.ID, "objects", len(t.Objects))
			if err := cmd.Run(); err != nil && gctx.Err() == nil {
				return fmt.Errorf("supervise: display %s: %w", t.Monitor.ID, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func childArgs(display, configPath string, debug bool) []string {
	args := []string{"-display", display}
	if configPath != "" {
		args = append(args, "-c", configPath)
	}
	if debug {
		args = append(args, "-debug")
	}
	return args
}
