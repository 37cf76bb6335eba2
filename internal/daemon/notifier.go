package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/toastd/internal/model"
)

// NotificationLevel indicates the severity of an internal notification.
type NotificationLevel int

const (
	// NotificationLevelInfo is for informational messages.
	NotificationLevelInfo NotificationLevel = iota
	// NotificationLevelWarning is for recoverable problems.
	NotificationLevelWarning
	// NotificationLevelError is for failures.
	NotificationLevelError
)

// DefaultNotifyHideAfter is how long internal toasts stay up.
const DefaultNotifyHideAfter = 5 * time.Second

// InternalNotifier pops toasts about toastd's own events.
// Repeats of the same key within minInterval are dropped.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger

	// Handler for creating toasts
	notifyHandler func(content model.Content) model.ID

	// Rate limiting
	lastNotifyTime map[string]time.Time
	minInterval    time.Duration
	now            func() time.Time

	position model.Position
	enabled  bool
}

// NewInternalNotifier creates a new InternalNotifier.
func NewInternalNotifier(logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		logger:         logger,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		now:            time.Now,
		position:       model.PositionBottomLeft,
		enabled:        true,
	}
}

// SetNotifyHandler sets the function used to pop toasts, normally Manager.Popup.
func (n *InternalNotifier) SetNotifyHandler(handler func(content model.Content) model.ID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifyHandler = handler
}

// SetEnabled enables or disables internal notifications.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between notifications with the same key.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// SetPosition sets the corner internal toasts appear in.
func (n *InternalNotifier) SetPosition(p model.Position) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.position = p
}

// Notify pops a toast unless one with the same key was shown within minInterval.
// It returns the new toast id, or 0 when nothing was shown.
func (n *InternalNotifier) Notify(key, heading, body string, level NotificationLevel) model.ID {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.enabled {
		return 0
	}

	if n.notifyHandler == nil {
		n.logger.Debug("internal notification skipped: no handler", "heading", heading)
		return 0
	}

	now := n.now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.logger.Debug("internal notification rate-limited", "key", key, "heading", heading)
		return 0
	}
	n.lastNotifyTime[key] = now

	var content model.Content
	switch level {
	case NotificationLevelWarning:
		content = model.Warning(body, heading)
	case NotificationLevelError:
		content = model.Error(body, heading)
	default:
		content = model.Info(body, heading)
	}
	content = content.At(n.position).WithHideAfter(DefaultNotifyHideAfter)

	n.logger.Debug("sending internal notification", "key", key, "heading", heading, "level", level)
	return n.notifyHandler(content)
}

// NotifyConfigReloaded announces a successful config reload.
func (n *InternalNotifier) NotifyConfigReloaded() model.ID {
	return n.Notify(
		"config-reload",
		"Configuration Reloaded",
		"toastd configuration has been successfully reloaded.",
		NotificationLevelInfo,
	)
}

// NotifyConfigError announces a config file that failed to load.
func (n *InternalNotifier) NotifyConfigError(err error) model.ID {
	return n.Notify(
		"config-error",
		"Configuration Error",
		"Failed to reload configuration: "+err.Error(),
		NotificationLevelWarning,
	)
}

// NotifyDBusError announces that the notification server could not start.
func (n *InternalNotifier) NotifyDBusError(err error) model.ID {
	return n.Notify(
		"dbus-error",
		"D-Bus Unavailable",
		"Notification server not started: "+err.Error(),
		NotificationLevelError,
	)
}

// NotifyStartup announces that the daemon is running.
func (n *InternalNotifier) NotifyStartup(version string) model.ID {
	return n.Notify(
		"startup",
		"toastd Started",
		"Toast daemon v"+version+" is now running.",
		NotificationLevelInfo,
	)
}
