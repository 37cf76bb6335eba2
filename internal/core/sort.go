package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jmylchreest/toastd/internal/model"
)

// SortField represents a field to sort by.
type SortField string

const (
	SortByCreated  SortField = "created"
	SortByExpires  SortField = "expires"
	SortByPosition SortField = "position"
	SortByIcon     SortField = "icon"
)

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField
	Order SortOrder
}

// DefaultSortOptions returns the manager's own order, oldest first.
func DefaultSortOptions() SortOptions {
	return SortOptions{
		Field: SortByCreated,
		Order: SortAsc,
	}
}

// Sort sorts records in place. The sort is stable, so records that compare
// equal keep their insertion order.
func Sort(records []model.Record, opts SortOptions) {
	if len(records) == 0 {
		return
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]

		var less, greater bool
		switch opts.Field {
		case SortByExpires:
			less, greater = expiresBefore(a, b), expiresBefore(b, a)
		case SortByPosition:
			less, greater = a.Content.Position < b.Content.Position, a.Content.Position > b.Content.Position
		case SortByIcon:
			less, greater = a.Content.Icon < b.Content.Icon, a.Content.Icon > b.Content.Icon
		default:
			less, greater = a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.After(b.CreatedAt)
		}

		if opts.Order == SortDesc {
			return greater
		}
		return less
	})
}

// expiresBefore orders permanent records after every expiring one.
func expiresBefore(a, b model.Record) bool {
	switch {
	case a.Permanent():
		return false
	case b.Permanent():
		return true
	default:
		return a.ExpiresAt.Before(b.ExpiresAt)
	}
}

// ParseSortField parses a sort field string.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "created", "time", "c", "":
		return SortByCreated, nil
	case "expires", "expiry", "e":
		return SortByExpires, nil
	case "position", "pos", "p":
		return SortByPosition, nil
	case "icon", "i":
		return SortByIcon, nil
	default:
		return SortByCreated, fmt.Errorf("invalid sort field %q (use created, expires, position, or icon)", s)
	}
}

// ParseSortOrder parses a sort order string.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "a", "":
		return SortAsc, nil
	case "desc", "descending", "d":
		return SortDesc, nil
	default:
		return SortAsc, fmt.Errorf("invalid sort order %q (use asc or desc)", s)
	}
}
