package theme

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/toastd/internal/model"
)

// Palette holds the colors a toast is drawn with.
// Values are ANSI numbers ("9") or hex ("#f38ba8"); empty uses the terminal default.
type Palette struct {
	Border  string `toml:"border"`
	Heading string `toml:"heading"`
	Body    string `toml:"body"`
	Meta    string `toml:"meta"`
	Close   string `toml:"close"`
	Success string `toml:"success"`
	Warning string `toml:"warning"`
	Error   string `toml:"error"`
	Info    string `toml:"info"`
}

// Merge returns p with every color set in over replacing its own.
func (p Palette) Merge(over Palette) Palette {
	pick := func(base, o string) string {
		if o != "" {
			return o
		}
		return base
	}
	return Palette{
		Border:  pick(p.Border, over.Border),
		Heading: pick(p.Heading, over.Heading),
		Body:    pick(p.Body, over.Body),
		Meta:    pick(p.Meta, over.Meta),
		Close:   pick(p.Close, over.Close),
		Success: pick(p.Success, over.Success),
		Warning: pick(p.Warning, over.Warning),
		Error:   pick(p.Error, over.Error),
		Info:    pick(p.Info, over.Info),
	}
}

// IconColor returns the accent color for icon. IconNone uses the border color.
func (p Palette) IconColor(icon model.Icon) lipgloss.Color {
	switch icon {
	case model.IconSuccess:
		return lipgloss.Color(p.Success)
	case model.IconWarning:
		return lipgloss.Color(p.Warning)
	case model.IconError:
		return lipgloss.Color(p.Error)
	case model.IconInfo:
		return lipgloss.Color(p.Info)
	default:
		return lipgloss.Color(p.Border)
	}
}

// Theme is a resolved palette with its metadata.
type Theme struct {
	Name        string    // Theme name (without .toml extension)
	Path        string    // Full path to the file (empty for bundled)
	BorderStyle string    // rounded, normal, thick, double, hidden
	Palette     Palette   // Fully resolved, inheritance applied
	ModTime     time.Time // Last modification time of Path
	IsDefault   bool      // True for the bundled default theme
}

// Border returns the lipgloss border for the theme's border style.
func (t *Theme) Border() lipgloss.Border {
	switch t.BorderStyle {
	case "normal":
		return lipgloss.NormalBorder()
	case "thick":
		return lipgloss.ThickBorder()
	case "double":
		return lipgloss.DoubleBorder()
	case "hidden":
		return lipgloss.HiddenBorder()
	default:
		return lipgloss.RoundedBorder()
	}
}

// file is the on-disk theme format.
type file struct {
	Inherit     string  `toml:"inherit"`
	BorderStyle string  `toml:"border_style"`
	Colors      Palette `toml:"colors"`
}

var borderStyles = []string{"rounded", "normal", "thick", "double", "hidden"}

// SourceFunc returns the raw TOML for a theme name and the path it came from.
type SourceFunc func(name string) (data []byte, path string, err error)

// Parse decodes a theme and resolves its inherit chain through source.
// The seen map prevents circular inheritance.
func Parse(name string, data []byte, source SourceFunc, seen map[string]bool) (*Theme, error) {
	if seen == nil {
		seen = make(map[string]bool)
	}
	if seen[name] {
		return nil, fmt.Errorf("theme %q: circular inherit", name)
	}
	seen[name] = true

	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("theme %q: %w", name, err)
	}

	t := &Theme{Name: name, BorderStyle: "rounded"}

	if parent := strings.TrimSpace(f.Inherit); parent != "" {
		if source == nil {
			return nil, fmt.Errorf("theme %q: cannot resolve inherit %q", name, parent)
		}
		parentData, _, err := source(parent)
		if err != nil {
			return nil, fmt.Errorf("theme %q: inherit %q: %w", name, parent, err)
		}
		base, err := Parse(parent, parentData, source, seen)
		if err != nil {
			return nil, err
		}
		t.BorderStyle = base.BorderStyle
		t.Palette = base.Palette
	}

	if f.BorderStyle != "" {
		style := strings.ToLower(strings.TrimSpace(f.BorderStyle))
		valid := false
		for _, s := range borderStyles {
			if s == style {
				valid = true
				break
			}
		}
		if !valid {
			return nil, fmt.Errorf("theme %q: invalid border_style %q, must be one of: %v", name, f.BorderStyle, borderStyles)
		}
		t.BorderStyle = style
	}
	t.Palette = t.Palette.Merge(f.Colors)

	return t, nil
}
