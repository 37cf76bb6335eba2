// Package main is the entry point for the toastd daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmylchreest/toastd/internal/config"
	"github.com/jmylchreest/toastd/internal/daemon"
	"github.com/jmylchreest/toastd/internal/tui"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/toastd/toastd.toml)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	noDBus := flag.Bool("no-dbus", false, "Do not serve org.freedesktop.Notifications")
	noWatch := flag.Bool("no-watch", false, "Do not reload the config file when it changes")
	withTUI := flag.Bool("tui", false, "Show live toasts in the terminal")
	logFile := flag.String("log-file", "", "Write logs to this file instead of stderr")
	flag.Parse()

	if *showVersion {
		fmt.Println("toastd version", version)
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "toastd:", err)
		os.Exit(1)
	}

	level := new(slog.LevelVar)
	if l, err := config.ParseLogLevel(cfg.Log.Level); err == nil {
		level.Set(l)
	}

	// The TUI owns the terminal, so logs go elsewhere
	var out io.Writer = os.Stderr
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "toastd:", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		out = f
	} else if *withTUI {
		out = io.Discard
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	opts := daemon.Options{
		ConfigPath:  *configPath,
		DisableDBus: *noDBus,
		NoWatch:     *noWatch,
		Version:     version,
		LogLevel:    level,
		Logger:      logger,
	}
	if *verbose {
		// Pin debug so reloads don't lower it
		level.Set(slog.LevelDebug)
		opts.LogLevel = nil
	}

	if err := run(cfg, opts, *withTUI); err != nil {
		logger.Error("toastd failed", "error", err)
		if out != os.Stderr {
			fmt.Fprintln(os.Stderr, "toastd:", err)
		}
		os.Exit(1)
	}
}

func run(cfg *config.Config, opts daemon.Options, withTUI bool) error {
	logger := opts.Logger

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting toastd", "version", version)
	d := daemon.New(cfg, opts)
	defer d.Close()

	if !withTUI {
		return d.Run(ctx)
	}

	if err := d.Start(ctx); err != nil {
		return err
	}
	d.Notifier().NotifyStartup(version)

	return tui.Run(ctx, tui.RunOptions{
		Config:  d.Config(),
		Manager: d.Manager(),
		Logger:  logger,
	})
}
