package dbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/toastd/internal/config"
	"github.com/jmylchreest/toastd/internal/model"
	"github.com/jmylchreest/toastd/internal/toast"
)

const (
	// DBusInterface is the notification interface name.
	DBusInterface = "org.freedesktop.Notifications"
	// DBusPath is the notification object path.
	DBusPath = "/org/freedesktop/Notifications"
	// DBusBusName is the bus name to claim.
	DBusBusName = "org.freedesktop.Notifications"

	// ControlInterface is the toastd control interface name.
	ControlInterface = "io.github.jmylchreest.Toastd"
	// ControlPath is the control object path.
	ControlPath = "/io/github/jmylchreest/Toastd"
	// ControlBusName is the bus name claimed for the control interface.
	ControlBusName = "io.github.jmylchreest.Toastd"
)

// Toaster is the part of a toast manager the server drives.
type Toaster interface {
	Popup(content model.Content) model.ID
	Remove(id model.ID) bool
	Clear() int
	Snapshot() []model.Record
	SubscribeWithBuffer(size int) <-chan toast.ChangeEvent
	Unsubscribe(ch <-chan toast.ChangeEvent)
}

// eventBuffer sizes the server's subscription. Each Notify against a full
// manager yields two events, and every removal must reach NotificationClosed.
const eventBuffer = 4096

// Server implements the org.freedesktop.Notifications D-Bus interface on top of a Toaster.
type Server struct {
	conn    *dbus.Conn
	logger  *slog.Logger
	toaster Toaster

	mu              sync.Mutex
	defaults        config.DefaultsConfig
	serverInfo      ServerInfo
	replaceExisting bool

	// Removals this server caused itself, keyed by id.
	closing  map[model.ID]struct{}
	replaced map[model.ID]struct{}

	// emit sends NotificationClosed; replaced in tests.
	emit func(id uint32, reason CloseReason) error

	events  <-chan toast.ChangeEvent
	doneCh  chan struct{}
	running bool
}

// NewServer creates a server that pops toasts on toaster.
func NewServer(toaster Toaster, defaults config.DefaultsConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		logger:          logger,
		toaster:         toaster,
		defaults:        defaults,
		serverInfo:      DefaultServerInfo(),
		replaceExisting: true,
		closing:         make(map[model.ID]struct{}),
		replaced:        make(map[model.ID]struct{}),
	}
	s.emit = s.EmitNotificationClosed
	return s
}

// SetDefaults replaces the defaults applied to incoming notifications.
func (s *Server) SetDefaults(defaults config.DefaultsConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults = defaults
}

// SetServerInfo sets the server information returned by GetServerInformation.
func (s *Server) SetServerInfo(info ServerInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serverInfo = info
}

// SetReplaceExisting controls whether Start takes the bus name from another daemon.
func (s *Server) SetReplaceExisting(replace bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceExisting = replace
}

// Start connects to the session bus, exports both interfaces, and begins
// emitting NotificationClosed for toasts that leave the manager.
// Signals stop when ctx is cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	replace := s.replaceExisting
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := export(conn); err != nil {
		return err
	}
	if err := conn.Export(s, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}
	if err := conn.Export(&control{s: s}, ControlPath, ControlInterface); err != nil {
		return fmt.Errorf("failed to export control object: %w", err)
	}

	flags := dbus.NameFlagDoNotQueue
	if replace {
		flags |= dbus.NameFlagReplaceExisting
	}
	for _, name := range []string{DBusBusName, ControlBusName} {
		reply, err := conn.RequestName(name, flags)
		if err != nil {
			return fmt.Errorf("failed to request bus name %s: %w", name, err)
		}
		if reply != dbus.RequestNameReplyPrimaryOwner {
			return fmt.Errorf("bus name %s already taken", name)
		}
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	s.startForwarding(ctx)

	s.logger.Info("D-Bus notification server started", "interface", DBusInterface, "path", DBusPath)
	return nil
}

// export publishes introspection data for both objects.
func export(conn *dbus.Conn) error {
	nodes := map[dbus.ObjectPath]*introspect.Node{
		DBusPath: {
			Name: DBusPath,
			Interfaces: []introspect.Interface{
				introspect.IntrospectData,
				{Name: DBusInterface, Methods: notificationMethods(), Signals: notificationSignals()},
			},
		},
		ControlPath: {
			Name: ControlPath,
			Interfaces: []introspect.Interface{
				introspect.IntrospectData,
				{Name: ControlInterface, Methods: controlMethods()},
			},
		},
	}
	for path, node := range nodes {
		if err := conn.Export(introspect.NewIntrospectable(node), path,
			"org.freedesktop.DBus.Introspectable"); err != nil {
			return fmt.Errorf("failed to export introspectable: %w", err)
		}
	}
	return nil
}

// startForwarding subscribes to the toaster and translates removals into signals.
func (s *Server) startForwarding(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = s.toaster.SubscribeWithBuffer(eventBuffer)
	s.doneCh = make(chan struct{})
	s.running = true

	go s.forwardLoop(ctx, s.events, s.doneCh)
}

func (s *Server) forwardLoop(ctx context.Context, events <-chan toast.ChangeEvent, doneCh chan struct{}) {
	defer close(doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.forward(ev)
		}
	}
}

// forward emits NotificationClosed for every toast a removal event names.
func (s *Server) forward(ev toast.ChangeEvent) {
	if ev.Type != toast.ChangeTypeRemove {
		return
	}
	for _, id := range ev.IDs {
		reason, ok := s.closeReason(id, ev.Reason)
		if !ok {
			continue
		}
		if err := s.emit(uint32(id), reason); err != nil {
			s.logger.Warn("failed to emit NotificationClosed signal", "id", id, "error", err)
		}
	}
}

// closeReason maps a removal onto the freedesktop close reason.
// Replaced toasts get no signal.
func (s *Server) closeReason(id model.ID, reason toast.RemoveReason) (CloseReason, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.replaced[id]; ok {
		delete(s.replaced, id)
		return 0, false
	}
	if _, ok := s.closing[id]; ok {
		delete(s.closing, id)
		return CloseReasonClosed, true
	}

	switch reason {
	case toast.ReasonExpired, toast.ReasonEvicted:
		return CloseReasonExpired, true
	case toast.ReasonDismissed, toast.ReasonCleared:
		return CloseReasonDismissed, true
	default:
		return CloseReasonUndefined, true
	}
}

// Stop releases the bus names and stops signal emission.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	events := s.events
	doneCh := s.doneCh
	conn := s.conn
	s.mu.Unlock()

	s.toaster.Unsubscribe(events)
	<-doneCh

	s.mu.Lock()
	clear(s.closing)
	clear(s.replaced)
	s.mu.Unlock()

	if conn != nil {
		for _, name := range []string{DBusBusName, ControlBusName} {
			if _, err := conn.ReleaseName(name); err != nil {
				s.logger.Warn("failed to release bus name", "name", name, "error", err)
			}
		}
		// Don't close the connection as it's shared (SessionBus)
	}

	s.logger.Info("D-Bus notification server stopped")
	return nil
}

// GetCapabilities returns the list of capabilities supported by this server.
// D-Bus method: GetCapabilities() -> as
func (s *Server) GetCapabilities() ([]string, *dbus.Error) {
	s.logger.Debug("GetCapabilities called")
	return ServerCapabilities, nil
}

// GetServerInformation returns information about the notification server.
// D-Bus method: GetServerInformation() -> (ssss)
func (s *Server) GetServerInformation() (string, string, string, string, *dbus.Error) {
	s.logger.Debug("GetServerInformation called")
	s.mu.Lock()
	info := s.serverInfo
	s.mu.Unlock()
	return info.Name, info.Vendor, info.Version, info.SpecVersion, nil
}

// Notify pops a toast for the notification.
// D-Bus method: Notify(susssasa{sv}i) -> u
func (s *Server) Notify(
	appName string,
	replacesID uint32,
	appIcon string,
	summary string,
	body string,
	actions []string,
	hints map[string]dbus.Variant,
	expireTimeout int32,
) (uint32, *dbus.Error) {
	n := &Notification{
		AppName:       appName,
		ReplacesID:    replacesID,
		AppIcon:       appIcon,
		Summary:       summary,
		Body:          body,
		Actions:       actions,
		Hints:         hints,
		ExpireTimeout: expireTimeout,
	}
	return s.notify(n), nil
}

func (s *Server) notify(n *Notification) uint32 {
	s.mu.Lock()
	content := n.Content(s.defaults)
	s.mu.Unlock()

	if n.ReplacesID > 0 {
		old := model.ID(n.ReplacesID)
		s.mu.Lock()
		s.replaced[old] = struct{}{}
		s.mu.Unlock()
		if !s.toaster.Remove(old) {
			s.forget(old)
		}
	}

	id := s.toaster.Popup(content)

	s.logger.Debug("Notify called",
		"app_name", n.AppName,
		"replaces_id", n.ReplacesID,
		"summary", n.Summary,
		"id", id,
	)
	return uint32(id)
}

// CloseNotification closes a notification by ID.
// D-Bus method: CloseNotification(u) -> nothing
func (s *Server) CloseNotification(id uint32) *dbus.Error {
	s.logger.Debug("CloseNotification called", "id", id)

	tid := model.ID(id)
	s.mu.Lock()
	s.closing[tid] = struct{}{}
	s.mu.Unlock()

	if !s.toaster.Remove(tid) {
		s.forget(tid)
	}
	return nil
}

// forget drops bookkeeping for an id whose removal never happened.
func (s *Server) forget(id model.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.closing, id)
	delete(s.replaced, id)
}

// EmitNotificationClosed emits the NotificationClosed signal.
func (s *Server) EmitNotificationClosed(id uint32, reason CloseReason) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}
	if err := conn.Emit(DBusPath, DBusInterface+".NotificationClosed", id, uint32(reason)); err != nil {
		return fmt.Errorf("failed to emit NotificationClosed signal: %w", err)
	}

	s.logger.Debug("emitted NotificationClosed signal", "id", id, "reason", reason.String())
	return nil
}

// control implements the io.github.jmylchreest.Toastd interface.
type control struct {
	s *Server
}

// List returns the live toasts as a JSON array in insertion order.
// D-Bus method: List() -> s
func (c *control) List() (string, *dbus.Error) {
	records := c.s.toaster.Snapshot()
	if records == nil {
		records = []model.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return string(data), nil
}

// Clear removes every toast and returns how many were removed.
// D-Bus method: Clear() -> u
func (c *control) Clear() (uint32, *dbus.Error) {
	n := c.s.toaster.Clear()
	c.s.logger.Debug("Clear called", "removed", n)
	return uint32(n), nil
}

// notificationMethods returns the D-Bus method introspection data.
func notificationMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "GetCapabilities",
			Args: []introspect.Arg{
				{Name: "capabilities", Type: "as", Direction: "out"},
			},
		},
		{
			Name: "GetServerInformation",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "out"},
				{Name: "vendor", Type: "s", Direction: "out"},
				{Name: "version", Type: "s", Direction: "out"},
				{Name: "spec_version", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Notify",
			Args: []introspect.Arg{
				{Name: "app_name", Type: "s", Direction: "in"},
				{Name: "replaces_id", Type: "u", Direction: "in"},
				{Name: "app_icon", Type: "s", Direction: "in"},
				{Name: "summary", Type: "s", Direction: "in"},
				{Name: "body", Type: "s", Direction: "in"},
				{Name: "actions", Type: "as", Direction: "in"},
				{Name: "hints", Type: "a{sv}", Direction: "in"},
				{Name: "expire_timeout", Type: "i", Direction: "in"},
				{Name: "id", Type: "u", Direction: "out"},
			},
		},
		{
			Name: "CloseNotification",
			Args: []introspect.Arg{
				{Name: "id", Type: "u", Direction: "in"},
			},
		},
	}
}

// notificationSignals returns the D-Bus signal introspection data.
func notificationSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "NotificationClosed",
			Args: []introspect.Arg{
				{Name: "id", Type: "u"},
				{Name: "reason", Type: "u"},
			},
		},
	}
}

// controlMethods returns the control interface introspection data.
func controlMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "List",
			Args: []introspect.Arg{
				{Name: "records", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Clear",
			Args: []introspect.Arg{
				{Name: "removed", Type: "u", Direction: "out"},
			},
		},
	}
}
