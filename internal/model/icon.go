package model

import (
	"fmt"
	"strings"
)

// Icon is an optional presentational tag on a toast.
// The zero value IconNone means no icon.
type Icon int

const (
	IconNone Icon = iota
	IconSuccess
	IconWarning
	IconError
	IconInfo
)

// Icons returns every concrete icon, excluding IconNone.
func Icons() []Icon {
	return []Icon{IconSuccess, IconWarning, IconError, IconInfo}
}

// String returns the icon name, or an empty string for IconNone.
func (i Icon) String() string {
	switch i {
	case IconNone:
		return ""
	case IconSuccess:
		return "success"
	case IconWarning:
		return "warning"
	case IconError:
		return "error"
	case IconInfo:
		return "info"
	default:
		return fmt.Sprintf("icon(%d)", int(i))
	}
}

// Valid reports whether i is IconNone or a known icon.
func (i Icon) Valid() bool {
	return i >= IconNone && i <= IconInfo
}

// ParseIcon parses an icon name. An empty string or "none" yields IconNone.
func ParseIcon(s string) (Icon, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == "" || norm == "none" {
		return IconNone, nil
	}
	for _, i := range Icons() {
		if i.String() == norm {
			return i, nil
		}
	}
	return IconNone, fmt.Errorf("invalid icon %q, must be one of: %v", s, Icons())
}

// MarshalText implements encoding.TextMarshaler.
func (i Icon) MarshalText() ([]byte, error) {
	if !i.Valid() {
		return nil, fmt.Errorf("invalid icon %d", int(i))
	}
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Icon) UnmarshalText(text []byte) error {
	parsed, err := ParseIcon(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
