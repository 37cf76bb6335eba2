// Package daemon provides the main orchestration for toastd.
// It coordinates the toast manager, the D-Bus server, and configuration
// hot-reload.
package daemon
