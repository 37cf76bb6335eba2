// Package theme handles terminal color themes and their hot-reload.
// Themes are TOML palettes loaded from ~/.config/toastd/themes/, falling
// back to the bundled themes when no user file of that name exists.
package theme
