// Package dbus exposes a toast manager on the session bus.
// It implements the org.freedesktop.Notifications interface so ordinary
// desktop applications can pop toasts, adds a small io.github.jmylchreest.Toastd
// control interface for listing and clearing, and provides a client used by
// the toast CLI.
package dbus
