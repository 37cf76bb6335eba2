package input

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jmylchreest/toastd/internal/config"
	"github.com/jmylchreest/toastd/internal/model"
)

// StdinAdapter reads toasts from standard input.
type StdinAdapter struct {
	reader   io.Reader
	defaults config.DefaultsConfig
}

// NewStdinAdapter creates a new StdinAdapter reading from os.Stdin.
func NewStdinAdapter(defaults config.DefaultsConfig) *StdinAdapter {
	return NewStdinAdapterWithReader(os.Stdin, defaults)
}

// NewStdinAdapterWithReader creates a new StdinAdapter with a custom reader.
func NewStdinAdapterWithReader(r io.Reader, defaults config.DefaultsConfig) *StdinAdapter {
	return &StdinAdapter{reader: r, defaults: defaults}
}

// Name returns the adapter identifier.
func (a *StdinAdapter) Name() string {
	return "stdin"
}

// Import reads toasts from standard input.
// Supports two formats:
// 1. JSON array of entries
// 2. One JSON entry per line
func (a *StdinAdapter) Import(ctx context.Context) ([]model.Content, error) {
	scanner := bufio.NewScanner(a.reader)
	const maxSize = 10 * 1024 * 1024 // 10MB max
	scanner.Buffer(make([]byte, 64*1024), maxSize)

	var lines [][]byte
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) > 0 {
			lines = append(lines, append([]byte(nil), line...))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &AdapterError{Source: "stdin", Message: "failed to read stdin", Err: err}
	}
	if len(lines) == 0 {
		return nil, nil
	}

	var entries []Entry
	if lines[0][0] == '[' {
		if err := json.Unmarshal(bytes.Join(lines, []byte("\n")), &entries); err != nil {
			return nil, &AdapterError{Source: "stdin", Message: "failed to parse JSON input", Err: err}
		}
	} else {
		for i, line := range lines {
			var e Entry
			if err := json.Unmarshal(line, &e); err != nil {
				return nil, &AdapterError{
					Source:  "stdin",
					Message: fmt.Sprintf("failed to parse line %d", i+1),
					Err:     err,
				}
			}
			entries = append(entries, e)
		}
	}

	contents := make([]model.Content, 0, len(entries))
	for i, e := range entries {
		c, err := e.Content(a.defaults)
		if err != nil {
			return nil, &AdapterError{
				Source:  "stdin",
				Message: fmt.Sprintf("invalid entry %d", i+1),
				Err:     err,
			}
		}
		contents = append(contents, c)
	}
	return contents, nil
}

// Entry is one toast in the stdin JSON format. Omitted fields take the
// configured defaults.
type Entry struct {
	Heading   string  `json:"heading"`
	Body      string  `json:"body"`
	Icon      string  `json:"icon,omitempty"`
	Position  string  `json:"position,omitempty"`
	Closable  *bool   `json:"closable,omitempty"`
	HideAfter *string `json:"hide_after,omitempty"` // "6s" or milliseconds
	Permanent bool    `json:"permanent,omitempty"`
}

// Content converts the entry, filling gaps from defaults.
func (e Entry) Content(defaults config.DefaultsConfig) (model.Content, error) {
	icon, err := model.ParseIcon(e.Icon)
	if err != nil {
		return model.Content{}, err
	}

	c := defaults.Content(sanitizeString(e.Body), sanitizeString(e.Heading), icon)

	if e.Position != "" {
		p, err := model.ParsePosition(e.Position)
		if err != nil {
			return model.Content{}, err
		}
		c.Position = p
	}
	if e.Closable != nil {
		c.Closable = *e.Closable
	}

	switch {
	case e.Permanent:
		c.HideAfter = nil
	case e.HideAfter != nil:
		var d config.Duration
		if err := d.UnmarshalText([]byte(*e.HideAfter)); err != nil {
			return model.Content{}, err
		}
		if d < 0 {
			return model.Content{}, fmt.Errorf("hide_after must not be negative, got %s", d.Duration())
		}
		c.HideAfter = model.Duration(time.Duration(d))
	}

	return c, nil
}

// sanitizeString drops NUL bytes and invalid UTF-8.
func sanitizeString(s string) string {
	return strings.ToValidUTF8(strings.ReplaceAll(s, "\x00", ""), "")
}
