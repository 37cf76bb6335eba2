package theme

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Loader resolves themes by name and hot-reloads user themes.
type Loader struct {
	mu          sync.RWMutex
	logger      *slog.Logger
	themesDir   string
	currentName string
	theme       *Theme
	watcher     *Watcher
	onChange    func(t *Theme)
}

// NewLoader creates a theme loader reading user themes from themesDir.
// If themesDir is empty, uses ThemesDir().
func NewLoader(themesDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if themesDir == "" {
		themesDir = ThemesDir()
	}
	return &Loader{
		logger:    logger,
		themesDir: themesDir,
		theme:     Default(),
	}
}

// ThemesDir returns the path to the user's themes directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ThemesDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "toastd", "themes")
}

// source resolves a name to a user file first, then to a bundled theme.
func (l *Loader) source(name string) ([]byte, string, error) {
	if l.themesDir != "" {
		path := filepath.Join(l.themesDir, name+".toml")
		if data, err := os.ReadFile(path); err == nil {
			return data, path, nil
		}
	}
	return embeddedSource(name)
}

// resolve loads name with user themes taking precedence over bundled ones.
func (l *Loader) resolve(name string) (*Theme, error) {
	data, path, err := l.source(name)
	if err != nil {
		return nil, err
	}
	t, err := Parse(name, data, l.source, nil)
	if err != nil {
		return nil, err
	}
	t.Path = path
	t.IsDefault = name == DefaultThemeName && path == ""
	if path != "" {
		if info, err := os.Stat(path); err == nil {
			t.ModTime = info.ModTime()
		}
	}
	return t, nil
}

// LoadTheme loads a theme by name.
// Theme resolution order:
//  1. User themes directory (~/.config/toastd/themes/<name>.toml)
//  2. Bundled themes
//
// A theme that is missing or fails to parse falls back to the bundled
// theme of the same name, then to the default.
func (l *Loader) LoadTheme(name string) error {
	if name == "" {
		name = DefaultThemeName
	}

	t, err := l.resolve(name)
	if err != nil {
		l.logger.Warn("failed to load theme, trying bundled", "theme", name, "error", err)
		t, err = Embedded(name)
	}
	if err != nil {
		l.logger.Warn("theme not found, using default", "theme", name)
		t = Default()
	}

	l.mu.Lock()
	l.theme = t
	l.currentName = t.Name
	l.mu.Unlock()

	if t.Path != "" {
		l.logger.Info("loaded user theme", "name", t.Name, "path", t.Path)
	} else {
		l.logger.Debug("loaded bundled theme", "name", t.Name)
	}
	return nil
}

// Theme returns the currently loaded theme.
func (l *Loader) Theme() *Theme {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.theme
}

// CurrentTheme returns the name of the currently loaded theme.
func (l *Loader) CurrentTheme() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.theme.Name
}

// SetChangeCallback sets the function called after a hot-reload.
func (l *Loader) SetChangeCallback(callback func(t *Theme)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = callback
}

// Reload re-reads the current user theme. A file that no longer parses
// leaves the current theme in place.
func (l *Loader) Reload() error {
	l.mu.RLock()
	name := l.currentName
	onChange := l.onChange
	l.mu.RUnlock()

	t, err := l.resolve(name)
	if err != nil {
		l.logger.Warn("theme reload failed, keeping current", "theme", name, "error", err)
		return err
	}

	l.mu.Lock()
	l.theme = t
	l.mu.Unlock()

	l.logger.Info("hot-reloaded theme", "name", name)
	if onChange != nil {
		onChange(t)
	}
	return nil
}

// StartHotReload watches the current theme's file. Bundled themes have no
// file and are not watched.
func (l *Loader) StartHotReload(ctx context.Context) {
	l.StopHotReload()

	t := l.Theme()
	if t == nil || t.Path == "" {
		l.logger.Debug("not starting hot-reload for bundled theme")
		return
	}

	w, err := NewWatcher(t.Path, l.logger)
	if err != nil {
		l.logger.Warn("failed to create theme watcher", "error", err)
		return
	}
	w.SetChangeCallback(func() {
		_ = l.Reload()
	})
	if err := w.Start(ctx); err != nil {
		l.logger.Warn("failed to start theme watcher", "error", err)
		w.Stop()
		return
	}

	l.mu.Lock()
	l.watcher = w
	l.mu.Unlock()
}

// StopHotReload stops watching the theme for changes.
func (l *Loader) StopHotReload() {
	l.mu.Lock()
	w := l.watcher
	l.watcher = nil
	l.mu.Unlock()

	if w != nil {
		w.Stop()
	}
}

// ListThemes returns bundled and user theme names, with duplicates removed.
func (l *Loader) ListThemes() []string {
	seen := make(map[string]bool)
	var themes []string

	for _, name := range ListEmbeddedThemes() {
		if !seen[name] {
			seen[name] = true
			themes = append(themes, name)
		}
	}

	if l.themesDir != "" {
		entries, err := os.ReadDir(l.themesDir)
		if err != nil {
			l.logger.Debug("failed to read themes directory", "error", err)
			return themes
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || filepath.Ext(name) != ".toml" {
				continue
			}
			themeName := name[:len(name)-len(".toml")]
			if !seen[themeName] {
				seen[themeName] = true
				themes = append(themes, themeName)
			}
		}
	}

	return themes
}
