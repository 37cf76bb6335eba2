package dbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/toastd/internal/model"
)

// ClosedSignal is a received NotificationClosed signal.
type ClosedSignal struct {
	ID     uint32
	Reason CloseReason
}

// Client talks to a running toastd over the session bus.
type Client struct {
	conn    *dbus.Conn
	notify  dbus.BusObject
	control dbus.BusObject
}

// NewClient opens a private session bus connection.
func NewClient() (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return NewClientWithConn(conn), nil
}

// NewClientWithConn wraps an existing connection.
func NewClientWithConn(conn *dbus.Conn) *Client {
	return &Client{
		conn:    conn,
		notify:  conn.Object(DBusBusName, DBusPath),
		control: conn.Object(ControlBusName, ControlPath),
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Send pops content as a toast and returns its identifier.
// A non-zero replaces removes that toast first.
func (c *Client) Send(ctx context.Context, appName string, replaces uint32, content model.Content) (uint32, error) {
	call := c.notify.CallWithContext(ctx, DBusInterface+".Notify", 0,
		appName,
		replaces,
		"",
		content.Heading,
		content.Body,
		[]string{},
		HintsFor(content),
		ExpireTimeoutFor(content.HideAfter))
	if call.Err != nil {
		return 0, fmt.Errorf("notify: %w", call.Err)
	}
	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("notify: %w", err)
	}
	return id, nil
}

// CloseNotification removes a toast. Unknown ids are ignored by the server.
func (c *Client) CloseNotification(ctx context.Context, id uint32) error {
	if call := c.notify.CallWithContext(ctx, DBusInterface+".CloseNotification", 0, id); call.Err != nil {
		return fmt.Errorf("close notification %d: %w", id, call.Err)
	}
	return nil
}

// ServerInformation returns what the server reports about itself.
func (c *Client) ServerInformation(ctx context.Context) (ServerInfo, error) {
	var info ServerInfo
	call := c.notify.CallWithContext(ctx, DBusInterface+".GetServerInformation", 0)
	if call.Err != nil {
		return info, fmt.Errorf("server information: %w", call.Err)
	}
	if err := call.Store(&info.Name, &info.Vendor, &info.Version, &info.SpecVersion); err != nil {
		return info, fmt.Errorf("server information: %w", err)
	}
	return info, nil
}

// List returns the live toasts in insertion order.
func (c *Client) List(ctx context.Context) ([]model.Record, error) {
	call := c.control.CallWithContext(ctx, ControlInterface+".List", 0)
	if call.Err != nil {
		return nil, fmt.Errorf("list: %w", call.Err)
	}
	var data string
	if err := call.Store(&data); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	var records []model.Record
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return nil, fmt.Errorf("list: decode records: %w", err)
	}
	return records, nil
}

// Clear removes every toast and returns how many were removed.
func (c *Client) Clear(ctx context.Context) (int, error) {
	call := c.control.CallWithContext(ctx, ControlInterface+".Clear", 0)
	if call.Err != nil {
		return 0, fmt.Errorf("clear: %w", call.Err)
	}
	var n uint32
	if err := call.Store(&n); err != nil {
		return 0, fmt.Errorf("clear: %w", err)
	}
	return int(n), nil
}

// WatchClosed calls fn for every NotificationClosed signal until ctx is done.
func (c *Client) WatchClosed(ctx context.Context, fn func(ClosedSignal)) error {
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(DBusPath),
		dbus.WithMatchInterface(DBusInterface),
		dbus.WithMatchMember("NotificationClosed"),
	}
	if err := c.conn.AddMatchSignalContext(ctx, opts...); err != nil {
		return fmt.Errorf("failed to add signal match: %w", err)
	}
	defer func() { _ = c.conn.RemoveMatchSignal(opts...) }()

	signals := make(chan *dbus.Signal, 16)
	c.conn.Signal(signals)
	defer c.conn.RemoveSignal(signals)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig, ok := <-signals:
			if !ok {
				return nil
			}
			if closed, ok := parseClosed(sig); ok {
				fn(closed)
			}
		}
	}
}

func parseClosed(sig *dbus.Signal) (ClosedSignal, bool) {
	if sig == nil || sig.Name != DBusInterface+".NotificationClosed" || len(sig.Body) < 2 {
		return ClosedSignal{}, false
	}
	id, ok := sig.Body[0].(uint32)
	if !ok {
		return ClosedSignal{}, false
	}
	reason, ok := sig.Body[1].(uint32)
	if !ok {
		return ClosedSignal{}, false
	}
	return ClosedSignal{ID: id, Reason: CloseReason(reason)}, true
}
