// Package render draws the live toast set on a terminal.
//
// Each screen corner gets its own column. Toasts carry the close control,
// heading, and body in that order; bodies are passed through untouched so
// callers can embed their own ANSI styling.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toastd/internal/model"
	"github.com/jmylchreest/toastd/internal/theme"
	"github.com/jmylchreest/toastd/internal/toast"
)

// CloseGlyph is the close control drawn on closable toasts.
const CloseGlyph = "×"

// DefaultWidth is the column width used when none is configured.
const DefaultWidth = 40

// ClassFor returns the style class names for an icon, e.g. "has-icon icon-success".
// IconNone has no classes.
func ClassFor(icon model.Icon) string {
	if icon == model.IconNone || !icon.Valid() {
		return ""
	}
	return "has-icon icon-" + icon.String()
}

// Glyph returns the symbol drawn for an icon.
func Glyph(icon model.Icon) string {
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
		return ""
	}
}

// Options configures a Renderer.
type Options struct {
	Width    int          // Column width in cells, borders included
	ShowIDs  bool         // Prefix headings with the toast id
	ShowTime bool         // Show remaining lifetime under the body
	Theme    *theme.Theme // nil uses the bundled default
}

// Renderer turns toasts into terminal text.
type Renderer struct {
	opts    Options
	palette theme.Palette
	border  lipgloss.Border

	headingStyle lipgloss.Style
	bodyStyle    lipgloss.Style
	closeStyle   lipgloss.Style
	metaStyle    lipgloss.Style
}

// NewRenderer creates a renderer. A non-positive width uses DefaultWidth.
func NewRenderer(opts Options) *Renderer {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Theme == nil {
		opts.Theme = theme.Default()
	}
	p := opts.Theme.Palette
	return &Renderer{
		opts:         opts,
		palette:      p,
		border:       opts.Theme.Border(),
		headingStyle: lipgloss.NewStyle().Bold(true),
		bodyStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.Body)),
		closeStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.Close)),
		metaStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.Meta)).Italic(true),
	}
}

// Theme returns the theme the renderer draws with.
func (r *Renderer) Theme() *theme.Theme {
	return r.opts.Theme
}

// headingColor is the icon accent, or the theme heading color without an icon.
func (r *Renderer) headingColor(icon model.Icon) lipgloss.Color {
	if icon == model.IconNone {
		return lipgloss.Color(r.palette.Heading)
	}
	return r.palette.IconColor(icon)
}

// Width returns the column width.
func (r *Renderer) Width() int {
	return r.opts.Width
}

// Toast renders a single toast as a bordered box.
func (r *Renderer) Toast(rec model.Record, now time.Time) string {
	c := rec.Content
	inner := max(r.opts.Width-4, 1) // border + padding

	heading := c.Heading
	if r.opts.ShowIDs {
		heading = strings.TrimSpace(fmt.Sprintf("#%d %s", rec.ID, heading))
	}
	if g := Glyph(c.Icon); g != "" {
		heading = strings.TrimSpace(g + " " + heading)
	}

	var top string
	if heading != "" {
		top = r.headingStyle.Foreground(r.headingColor(c.Icon)).Render(heading)
	}
	if c.Closable {
		gap := max(inner-lipgloss.Width(top)-lipgloss.Width(CloseGlyph), 1)
		top += strings.Repeat(" ", gap) + r.closeStyle.Render(CloseGlyph)
	}

	lines := make([]string, 0, 3)
	if top != "" {
		lines = append(lines, top)
	}
	if c.Body != "" {
		lines = append(lines, r.bodyStyle.Width(inner).Render(c.Body))
	}
	if r.opts.ShowTime {
		lines = append(lines, r.metaStyle.Render(Lifetime(rec, now)))
	}

	box := lipgloss.NewStyle().
		Border(r.border).
		BorderForeground(r.palette.IconColor(c.Icon)).
		Padding(0, 1).
		Width(r.opts.Width - 2)

	return box.Render(strings.Join(lines, "\n"))
}

// Stack renders a bucket top to bottom in insertion order.
func (r *Renderer) Stack(records []model.Record, now time.Time) string {
	boxes := make([]string, 0, len(records))
	for _, rec := range records {
		boxes = append(boxes, r.Toast(rec, now))
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}

// Screen lays the buckets out in the corners of a width x height area.
// When the area is too small for the columns, the buckets are stacked instead.
func (r *Renderer) Screen(b toast.Buckets, width, height int, now time.Time) string {
	if width < 2*r.opts.Width || height <= 0 {
		return r.Stacked(b, now)
	}

	topH := height / 2
	bottomH := height - topH

	column := func(top, bottom []model.Record, align lipgloss.Position) string {
		upper := lipgloss.Place(r.opts.Width, topH, align, lipgloss.Top, r.Stack(top, now))
		lower := lipgloss.Place(r.opts.Width, bottomH, align, lipgloss.Bottom, r.Stack(bottom, now))
		return lipgloss.JoinVertical(align, upper, lower)
	}

	left := column(b.TopLeft, b.BottomLeft, lipgloss.Left)
	right := column(b.TopRight, b.BottomRight, lipgloss.Right)
	middle := lipgloss.Place(width-2*r.opts.Width, height, lipgloss.Left, lipgloss.Top, "")

	return lipgloss.JoinHorizontal(lipgloss.Top, left, middle, right)
}

// Stacked renders every non-empty bucket under a corner label.
func (r *Renderer) Stacked(b toast.Buckets, now time.Time) string {
	var sections []string
	for _, p := range model.Positions() {
		records := b.At(p)
		if len(records) == 0 {
			continue
		}
		label := r.metaStyle.Render(fmt.Sprintf("%s (%d)", p, len(records)))
		sections = append(sections, lipgloss.JoinVertical(lipgloss.Left, label, r.Stack(records, now)))
	}
	return strings.Join(sections, "\n")
}

// Lifetime describes when a toast goes away, e.g. "expires 5 seconds from now".
func Lifetime(rec model.Record, now time.Time) string {
	if rec.Permanent() {
		return "stays until closed"
	}
	if rec.Expired(now) {
		return "expiring"
	}
	return "expires " + humanize.RelTime(rec.ExpiresAt, now, "ago", "from now")
}
