package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmylchreest/toastd/internal/config"
	"github.com/jmylchreest/toastd/internal/dbus"
	"github.com/jmylchreest/toastd/internal/toast"
)

// Options controls how a Daemon is assembled.
type Options struct {
	// ConfigPath is watched for changes. Empty uses config.ConfigPath().
	ConfigPath string

	// DisableDBus keeps the notification server off regardless of config.
	DisableDBus bool

	// NoWatch disables config hot-reload.
	NoWatch bool

	// Version is reported over D-Bus and in the startup toast.
	Version string

	// LogLevel, if set, follows log.level across reloads.
	LogLevel *slog.LevelVar

	Logger *slog.Logger
}

// Daemon owns one toast manager and the services that feed it.
type Daemon struct {
	logger *slog.Logger
	opts   Options

	mu  sync.RWMutex
	cfg *config.Config

	manager  *toast.Manager
	server   *dbus.Server
	watcher  *config.Watcher
	notifier *InternalNotifier

	cancel  context.CancelFunc
	running bool
}

// New assembles a daemon from cfg. Nothing runs until Start.
func New(cfg *config.Config, opts Options) *Daemon {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	d := &Daemon{
		logger:   logger,
		opts:     opts,
		cfg:      cfg,
		manager:  toast.NewManager(cfg.Manager.Capacity, logger.With("component", "manager")),
		notifier: NewInternalNotifier(logger.With("component", "notifier")),
	}
	d.notifier.SetNotifyHandler(d.manager.Popup)
	d.notifier.SetPosition(cfg.Defaults.DefaultPosition())

	if cfg.DBus.Enabled && !opts.DisableDBus {
		d.server = dbus.NewServer(d.manager, cfg.Defaults, logger.With("component", "dbus"))
		info := dbus.DefaultServerInfo()
		info.Version = opts.Version
		d.server.SetServerInfo(info)
		d.server.SetReplaceExisting(cfg.DBus.ReplaceExisting)
	}

	d.setLogLevel(cfg.Log.Level)
	return d
}

// Manager returns the daemon's toast manager.
func (d *Daemon) Manager() *toast.Manager {
	return d.manager
}

// Notifier returns the notifier used for internal toasts.
func (d *Daemon) Notifier() *InternalNotifier {
	return d.notifier
}

// Config returns the configuration currently in effect.
func (d *Daemon) Config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// DBusEnabled reports whether the daemon serves org.freedesktop.Notifications.
func (d *Daemon) DBusEnabled() bool {
	return d.dbusServer() != nil
}

func (d *Daemon) dbusServer() *dbus.Server {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.server
}

// Start runs the sweeper, the D-Bus server, and the config watcher.
// A D-Bus failure raises an internal toast and the daemon carries on without
// the bus; a watcher failure is logged and hot-reload is skipped.
// Start may be called again after Stop.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.running = true
	cfg := d.cfg
	d.mu.Unlock()

	d.manager.StartSweeper(ctx, cfg.Manager.SweepInterval.Duration())

	if server := d.dbusServer(); server != nil {
		if err := server.Start(ctx); err != nil {
			d.logger.Error("D-Bus server unavailable, continuing without it", "error", err)
			d.mu.Lock()
			d.server = nil
			d.mu.Unlock()
			d.notifier.NotifyDBusError(err)
		}
	}

	if !d.opts.NoWatch {
		if err := d.startWatcher(ctx, cfg); err != nil {
			d.logger.Warn("config hot-reload disabled", "error", err)
		}
	}

	d.logger.Info("toastd started",
		"version", d.opts.Version,
		"capacity", cfg.Manager.Capacity,
		"dbus", d.DBusEnabled(),
	)
	return nil
}

func (d *Daemon) startWatcher(ctx context.Context, cfg *config.Config) error {
	w, err := config.NewWatcher(d.opts.ConfigPath, cfg, d.logger.With("component", "config"))
	if err != nil {
		return err
	}
	w.SetReloadCallback(func(newCfg *config.Config) {
		d.ApplyConfig(newCfg)
		d.notifier.NotifyConfigReloaded()
	})
	w.SetErrorCallback(func(err error) {
		d.notifier.NotifyConfigError(err)
	})
	if err := w.Start(ctx); err != nil {
		_ = w.Stop()
		return err
	}

	d.mu.Lock()
	d.watcher = w
	d.mu.Unlock()
	return nil
}

// Stop shuts down every service and halts the sweeper. The manager and its
// toasts stay usable, and Start may run the daemon again. It is safe to call twice.
func (d *Daemon) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	cancel := d.cancel
	watcher := d.watcher
	d.watcher = nil
	d.mu.Unlock()

	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			d.logger.Warn("error stopping config watcher", "error", err)
		}
	}
	if server := d.dbusServer(); server != nil {
		if err := server.Stop(); err != nil {
			d.logger.Warn("error stopping D-Bus server", "error", err)
		}
	}
	cancel()
	d.manager.StopSweeper()

	d.logger.Info("toastd stopped")
}

// Close stops the daemon for good and closes the manager's subscriptions.
func (d *Daemon) Close() {
	d.Stop()
	d.manager.Close()
}

// Run starts the daemon and blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	d.notifier.NotifyStartup(d.opts.Version)

	<-ctx.Done()
	d.Stop()
	return nil
}

// ApplyConfig switches the running daemon to cfg.
// dbus.enabled and dbus.replace_existing only take effect on restart.
func (d *Daemon) ApplyConfig(cfg *config.Config) {
	d.mu.Lock()
	old := d.cfg
	d.cfg = cfg
	d.mu.Unlock()

	if cfg.Manager.Capacity != old.Manager.Capacity {
		d.manager.SetCapacity(cfg.Manager.Capacity)
	}
	if cfg.Manager.SweepInterval != old.Manager.SweepInterval {
		d.manager.SetSweepInterval(cfg.Manager.SweepInterval.Duration())
	}
	if server := d.dbusServer(); server != nil {
		server.SetDefaults(cfg.Defaults)
	}
	d.notifier.SetPosition(cfg.Defaults.DefaultPosition())
	d.setLogLevel(cfg.Log.Level)

	if cfg.DBus != old.DBus {
		d.logger.Warn("dbus settings changed, restart toastd to apply")
	}
	d.logger.Debug("config applied",
		"capacity", cfg.Manager.Capacity,
		"sweep_interval", cfg.Manager.SweepInterval.Duration(),
	)
}

func (d *Daemon) setLogLevel(level string) {
	if d.opts.LogLevel == nil {
		return
	}
	l, err := config.ParseLogLevel(level)
	if err != nil {
		d.logger.Warn("ignoring log level", "error", err)
		return
	}
	d.opts.LogLevel.Set(l)
}
