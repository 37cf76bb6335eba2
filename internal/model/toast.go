// Package model defines the core data structures for toastd.
package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultHideAfter is the lifetime given to toasts built by the convenience constructors.
const DefaultHideAfter = 6 * time.Second

// ID identifies a live toast within one manager.
// It matches the width of freedesktop notification ids.
type ID uint32

// Content is what the caller asks to be shown.
type Content struct {
	Heading  string   `json:"heading,omitempty" yaml:"heading,omitempty"`
	Body     string   `json:"body" yaml:"body"` // Markup, rendered unescaped
	Closable bool     `json:"closable" yaml:"closable"`
	Position Position `json:"position" yaml:"position"`
	Icon     Icon     `json:"icon,omitempty" yaml:"icon,omitempty"`

	// HideAfter is the time-to-live. Nil means the toast never expires;
	// zero means it expires on the next sweep.
	HideAfter *time.Duration `json:"hide_after,omitempty" yaml:"hide_after,omitempty"`
}

func newContent(text, heading string, icon Icon) Content {
	return Content{
		Heading:   heading,
		Body:      text,
		Closable:  true,
		Position:  PositionBottomLeft,
		Icon:      icon,
		HideAfter: Duration(DefaultHideAfter),
	}
}

// Simple returns a plain toast with no heading or icon.
func Simple(text string) Content {
	return newContent(text, "", IconNone)
}

// Success returns a toast tagged with the success icon.
func Success(text, heading string) Content {
	return newContent(text, heading, IconSuccess)
}

// Warning returns a toast tagged with the warning icon.
func Warning(text, heading string) Content {
	return newContent(text, heading, IconWarning)
}

// Info returns a toast tagged with the info icon.
func Info(text, heading string) Content {
	return newContent(text, heading, IconInfo)
}

// Error returns a toast tagged with the error icon.
func Error(text, heading string) Content {
	return newContent(text, heading, IconError)
}

// Duration returns a pointer to d, for use as Content.HideAfter.
func Duration(d time.Duration) *time.Duration {
	return &d
}

// WithHideAfter returns a copy of c that expires d after insertion.
func (c Content) WithHideAfter(d time.Duration) Content {
	c.HideAfter = Duration(d)
	return c
}

// Permanent returns a copy of c that never expires.
func (c Content) Permanent() Content {
	c.HideAfter = nil
	return c
}

// At returns a copy of c anchored to p.
func (c Content) At(p Position) Content {
	c.Position = p
	return c
}

// Record is a stored toast. Records are never mutated after insertion.
type Record struct {
	ID        ID        `json:"id" yaml:"id"`
	Token     string    `json:"token" yaml:"token"` // ULID, unique across restarts
	Content   Content   `json:"content" yaml:"content"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitzero" yaml:"expires_at,omitempty"` // Unset when permanent
}

// NewRecord builds the record for content inserted at now.
func NewRecord(id ID, content Content, now time.Time) Record {
	r := Record{
		ID:        id,
		Token:     newToken(now),
		Content:   content,
		CreatedAt: now,
	}
	if content.HideAfter != nil {
		ttl := max(*content.HideAfter, 0)
		r.ExpiresAt = now.Add(ttl)
	}
	return r
}

// newToken returns a ULID stamped with now, or with the wall clock when now
// falls outside the ULID time range (an injected zero clock, for one).
func newToken(now time.Time) string {
	ms := ulid.Timestamp(now)
	if ms > ulid.MaxTime() {
		ms = ulid.Now()
	}
	return ulid.MustNew(ms, ulid.DefaultEntropy()).String()
}

// Permanent reports whether the record never expires.
// It depends on the content's TTL alone; ExpiresAt may be the zero time.
func (r Record) Permanent() bool {
	return r.Content.HideAfter == nil
}

// Expired reports whether the record has a defined expiry at or before now.
func (r Record) Expired(now time.Time) bool {
	return !r.Permanent() && !now.Before(r.ExpiresAt)
}

// TimeLeft returns the remaining lifetime at now, or -1 for a permanent record.
func (r Record) TimeLeft(now time.Time) time.Duration {
	if r.Permanent() {
		return -1
	}
	return max(r.ExpiresAt.Sub(now), 0)
}
