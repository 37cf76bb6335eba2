// Package output provides output formatters for toast listings.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/jmylchreest/toastd/internal/model"
)

// Formatter formats toast records for output.
type Formatter interface {
	// Format writes formatted records to the writer.
	Format(w io.Writer, records []model.Record) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatIDs   FormatType = "ids"
)

// FormatTypes returns all known format types.
func FormatTypes() []FormatType {
	return []FormatType{FormatPlain, FormatJSON, FormatYAML, FormatIDs}
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) (Formatter, error) {
	switch format {
	case FormatPlain, "":
		return NewPlainFormatter(opts)
	case FormatJSON:
		return NewJSONFormatter(opts), nil
	case FormatYAML:
		return NewYAMLFormatter(opts), nil
	case FormatIDs:
		return NewIDsFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown format %q, must be one of: %v", format, FormatTypes())
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template       string           // Custom template for plain format
	ShowTime       bool             // Show remaining lifetime
	ShowPosition   bool             // Show the screen corner
	BodyMaxLen     int              // Maximum body length (0 = unlimited)
	IncludeNewline bool             // Include newlines in body (default: replace with space)
	Now            func() time.Time // Clock for relative times; nil = time.Now
}

// DefaultFormatterOptions returns sensible defaults for plain output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowTime:     true,
		ShowPosition: true,
		BodyMaxLen:   80,
	}
}

func (o FormatterOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}
