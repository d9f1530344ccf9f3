package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/milk9111/desktop-thingies/client"
	"github.com/milk9111/desktop-thingies/config"
	"github.com/milk9111/desktop-thingies/render"
)

type options struct {
	configPath string
	display    string
	debug      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "c", "", "config file (.yaml, .yml or .tengo); defaults to $XDG_CONFIG_HOME/desktop-thingies/config.*")
	flag.StringVar(&opts.display, "display", "", "only show objects on this display")
	flag.BoolVar(&opts.debug, "debug", false, "draw physics shapes and log debug output")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "desktop-thingies",
	})
	if opts.debug {
		logger.SetLevel(log.DebugLevel)
	}
	if opts.display != "" {
		logger = logger.With("display", opts.display)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		logger.Error("exiting", "err", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logger *log.Logger) error {
	spec, path, err := config.Resolve(opts.configPath)
	if err != nil {
		return err
	}
	if path == "" {
		logger.Warn("no config file found, using the built-in objects")
	} else {
		logger.Debug("loaded config", "path", path)
	}

	cfg, err := spec.ClientConfig()
	if err != nil {
		return err
	}
	if opts.display != "" {
		cfg.Display = opts.display
	}

	tps := cfg.Framerate
	if tps <= 0 {
		tps = client.DefaultFramerate
	}
	b := newBackend(logger, tps, opts.debug)
	monitors, err := b.Monitors()
	if err != nil {
		return err
	}
	targets, err := client.Plan(cfg, monitors)
	if err != nil {
		return err
	}
	switch {
	case len(targets) == 0:
		logger.Warn("no display has objects assigned")
		return nil
	case len(targets) > 1:
		return supervise(ctx, logger, targets, opts, path)
	}

	loader := render.Loader{}
	if path != "" {
		loader.Dir = filepath.Dir(path)
	}
	c, err := client.New(cfg, b, loader, logger)
	if err != nil {
		return err
	}
	if path != "" {
		go follow(ctx, path, opts.display, c, logger)
	}
	return b.Run(ctx, c.Run)
}

// follow reloads the client whenever the config file changes. A config that
// fails to load or validate leaves the running scenes alone.
func follow(ctx context.Context, path, display string, c *client.Client, logger *log.Logger) {
	w, err := config.NewWatcher(path)
	if err != nil {
		logger.Warn("config hot reload disabled", "path", path, "err", err)
		return
	}
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-w.Events:
			if !ok {
				return
			}
			spec, err := config.Load(path)
			if err != nil {
				logger.Error("reload config", "err", err)
				continue
			}
			cfg, err := spec.ClientConfig()
			if err != nil {
				logger.Error("reload config", "err", err)
				continue
			}
			if display != "" {
				cfg.Display = display
			}
			if err := c.Reload(cfg); err != nil {
				logger.Error("reload config, keeping the running scenes", "err", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn("config watcher", "err", err)
		}
	}
}
