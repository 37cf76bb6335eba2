package theme

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// EmbeddedThemes contains all bundled theme files.
//
//go:embed themes/*.toml
var EmbeddedThemes embed.FS

// DefaultThemeName is the name of the built-in default theme.
const DefaultThemeName = "default"

// BundledThemes lists all embedded theme names.
var BundledThemes = []string{"catppuccin", "default", "minimal"}

// GetEmbeddedTheme retrieves a bundled theme by name.
// Returns the TOML content and whether it was found.
func GetEmbeddedTheme(name string) ([]byte, bool) {
	data, err := EmbeddedThemes.ReadFile("themes/" + name + ".toml")
	if err != nil {
		return nil, false
	}
	return data, true
}

// ListEmbeddedThemes returns names of all embedded themes.
func ListEmbeddedThemes() []string {
	var themes []string

	entries, err := fs.ReadDir(EmbeddedThemes, "themes")
	if err != nil {
		return BundledThemes
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if ext := filepath.Ext(name); ext == ".toml" {
			themes = append(themes, strings.TrimSuffix(name, ext))
		}
	}

	return themes
}

// IsEmbeddedTheme checks if a theme name is bundled.
func IsEmbeddedTheme(name string) bool {
	_, found := GetEmbeddedTheme(name)
	return found
}

// embeddedSource resolves names against the bundled themes only.
func embeddedSource(name string) ([]byte, string, error) {
	data, ok := GetEmbeddedTheme(name)
	if !ok {
		return nil, "", fmt.Errorf("no bundled theme %q", name)
	}
	return data, "", nil
}

// Embedded parses a bundled theme.
func Embedded(name string) (*Theme, error) {
	data, _, err := embeddedSource(name)
	if err != nil {
		return nil, err
	}
	t, err := Parse(name, data, embeddedSource, nil)
	if err != nil {
		return nil, err
	}
	t.IsDefault = name == DefaultThemeName
	return t, nil
}

// Default returns the bundled default theme.
func Default() *Theme {
	t, err := Embedded(DefaultThemeName)
	if err != nil {
		panic(fmt.Sprintf("bundled default theme: %v", err))
	}
	return t
}
