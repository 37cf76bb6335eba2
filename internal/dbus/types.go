package dbus

import (
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/toastd/internal/config"
	"github.com/jmylchreest/toastd/internal/model"
)

// Urgency levels matching freedesktop spec.
const (
	UrgencyLow      = 0
	UrgencyNormal   = 1
	UrgencyCritical = 2
)

// Hint keys understood in addition to the standard ones.
const (
	HintPosition = "x-toast-position"
	HintIcon     = "x-toast-icon"
	HintClosable = "x-toast-closable"
	HintHeading  = "x-toast-heading"
)

// CloseReason represents the reason for closing a notification.
// These values are defined by the freedesktop.org notification specification.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification expired (timeout reached).
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates the notification was closed via CloseNotification.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is reserved by freedesktop.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// Notification represents an incoming D-Bus Notify call.
type Notification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // Alternating key, label pairs; not rendered
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Urgency extracts the urgency hint from the notification.
// Returns UrgencyNormal if not specified.
func (n *Notification) Urgency() int {
	if v, ok := n.Hints["urgency"]; ok {
		if b, ok := v.Value().(byte); ok {
			return int(b)
		}
	}
	return UrgencyNormal
}

// Position extracts the x-toast-position hint.
func (n *Notification) Position() (model.Position, bool) {
	s, ok := n.stringHint(HintPosition)
	if !ok {
		return 0, false
	}
	p, err := model.ParsePosition(s)
	if err != nil {
		return 0, false
	}
	return p, true
}

// Icon extracts the x-toast-icon hint, falling back to one derived from urgency.
func (n *Notification) Icon() model.Icon {
	if s, ok := n.stringHint(HintIcon); ok {
		if icon, err := model.ParseIcon(s); err == nil {
			return icon
		}
	}
	switch n.Urgency() {
	case UrgencyLow:
		return model.IconInfo
	case UrgencyCritical:
		return model.IconError
	default:
		return model.IconNone
	}
}

// Closable extracts the x-toast-closable hint.
func (n *Notification) Closable() (bool, bool) {
	if v, ok := n.Hints[HintClosable]; ok {
		if b, ok := v.Value().(bool); ok {
			return b, true
		}
	}
	return false, false
}

// Heading returns the toast heading. The x-toast-heading hint wins over
// the summary so a caller can send an empty heading with a summary for logs.
func (n *Notification) Heading() string {
	if s, ok := n.stringHint(HintHeading); ok {
		return s
	}
	return n.Summary
}

// TTL maps expire_timeout onto a toast time-to-live.
// 0 means never expire (nil), -1 and other negatives take the default,
// positive values are milliseconds.
func (n *Notification) TTL(def *time.Duration) *time.Duration {
	switch {
	case n.ExpireTimeout == 0:
		return nil
	case n.ExpireTimeout < 0:
		return def
	default:
		return model.Duration(time.Duration(n.ExpireTimeout) * time.Millisecond)
	}
}

// Content builds toast content from the notification, filling gaps from defaults.
func (n *Notification) Content(defaults config.DefaultsConfig) model.Content {
	c := defaults.Content(n.Body, n.Heading(), n.Icon())
	if p, ok := n.Position(); ok {
		c.Position = p
	}
	if closable, ok := n.Closable(); ok {
		c.Closable = closable
	}
	c.HideAfter = n.TTL(defaults.TTL())
	return c
}

func (n *Notification) stringHint(key string) (string, bool) {
	if v, ok := n.Hints[key]; ok {
		if s, ok := v.Value().(string); ok {
			return s, true
		}
	}
	return "", false
}

// HintsFor builds the hints that carry content fields the Notify call has no
// argument for.
func HintsFor(c model.Content) map[string]dbus.Variant {
	hints := map[string]dbus.Variant{
		HintPosition: dbus.MakeVariant(c.Position.String()),
		HintClosable: dbus.MakeVariant(c.Closable),
		HintHeading:  dbus.MakeVariant(c.Heading),
	}
	if c.Icon != model.IconNone {
		hints[HintIcon] = dbus.MakeVariant(c.Icon.String())
	}
	return hints
}

// ExpireTimeoutFor maps a toast time-to-live onto expire_timeout.
// A zero TTL is sent as 1ms because 0 means never on the wire.
func ExpireTimeoutFor(ttl *time.Duration) int32 {
	if ttl == nil {
		return 0
	}
	ms := ttl.Milliseconds()
	if ms < 1 {
		return 1
	}
	if ms > int64(^uint32(0)>>1) {
		return int32(^uint32(0) >> 1)
	}
	return int32(ms)
}

// ServerCapabilities lists the capabilities advertised by toastd.
var ServerCapabilities = []string{
	"body",        // Support body text
	"body-markup", // Body is passed through to the renderer untouched
	"x-toast-position",
	"x-toast-icon",
}

// ServerInfo contains information about the notification server.
type ServerInfo struct {
	Name        string // "toastd"
	Vendor      string // "toastd"
	Version     string // Build version
	SpecVersion string // "1.2"
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:        "toastd",
		Vendor:      "toastd",
		Version:     "0.0.1",
		SpecVersion: "1.2",
	}
}
