package output

import (
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toastd/internal/model"
)

// templateData is what custom templates are executed against.
type templateData struct {
	model.Record
	Index    int
	Lifetime string
}

// templateFuncs returns template helper functions.
func templateFuncs(now func() time.Time) template.FuncMap {
	return template.FuncMap{
		"truncate": truncate,
		"reltime": func(t time.Time) string {
			if t.IsZero() {
				return "never"
			}
			return humanize.RelTime(t, now(), "ago", "from now")
		},
		"iconGlyph": func(icon model.Icon) string {
			switch icon {
			case model.IconSuccess:
				return "✔"
			case model.IconWarning:
				return "⚠"
			case model.IconError:
				return "✖"
			case model.IconInfo:
				return "ℹ"
			default:
				return " "
			}
		},
	}
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// lifetime describes when a record goes away relative to now.
func lifetime(r model.Record, now time.Time) string {
	switch {
	case r.Permanent():
		return "permanent"
	case r.Expired(now):
		return "expiring"
	default:
		return "expires " + humanize.RelTime(r.ExpiresAt, now, "ago", "from now")
	}
}
