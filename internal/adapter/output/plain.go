package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/jmylchreest/toastd/internal/model"
)

// PlainFormatter formats records as plain text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
// A custom template that fails to parse is an error.
func NewPlainFormatter(opts FormatterOptions) (*PlainFormatter, error) {
	f := &PlainFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs(opts.now)).Parse(opts.Template)
		if err != nil {
			return nil, fmt.Errorf("invalid template: %w", err)
		}
		f.template = tmpl
	}

	return f, nil
}

// Format writes records as plain text.
func (f *PlainFormatter) Format(w io.Writer, records []model.Record) error {
	for i, r := range records {
		if err := f.formatRecord(w, i+1, r); err != nil {
			return err
		}
	}
	return nil
}

// formatRecord formats a single record.
func (f *PlainFormatter) formatRecord(w io.Writer, index int, r model.Record) error {
	now := f.opts.now()

	if f.template != nil {
		data := templateData{Record: r, Index: index, Lifetime: lifetime(r, now)}
		if err := f.template.Execute(w, data); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "[%d]", r.ID)
	if r.Content.Icon != model.IconNone {
		fmt.Fprintf(&sb, " %s", r.Content.Icon)
	}
	if f.opts.ShowPosition {
		fmt.Fprintf(&sb, " <%s>", r.Content.Position)
	}
	if r.Content.Heading != "" {
		sb.WriteString(" " + r.Content.Heading)
	}
	if f.opts.ShowTime {
		fmt.Fprintf(&sb, " (%s)", lifetime(r, now))
	}
	sb.WriteString("\n")

	if r.Content.Body != "" {
		body := r.Content.Body
		if !f.opts.IncludeNewline {
			body = strings.ReplaceAll(body, "\n", " ")
		}
		sb.WriteString("    " + truncate(body, f.opts.BodyMaxLen) + "\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatField outputs a specific field from a record.
func FormatField(r model.Record, field string) string {
	switch strings.ToLower(field) {
	case "id":
		return fmt.Sprint(r.ID)
	case "token":
		return r.Token
	case "heading":
		return r.Content.Heading
	case "body":
		return r.Content.Body
	case "icon":
		return r.Content.Icon.String()
	case "position":
		return r.Content.Position.String()
	case "all", "full":
		return fmt.Sprintf("%s\n%s", r.Content.Heading, r.Content.Body)
	default:
		return r.Content.Body
	}
}
