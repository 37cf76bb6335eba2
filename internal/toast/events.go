package toast

import "github.com/jmylchreest/toastd/internal/model"

// ChangeType indicates the type of store change.
type ChangeType int

const (
	// ChangeTypeAdd indicates a toast was popped up.
	ChangeTypeAdd ChangeType = iota
	// ChangeTypeRemove indicates one or more toasts left the store.
	ChangeTypeRemove
)

// String returns the string representation of ChangeType.
func (c ChangeType) String() string {
	switch c {
	case ChangeTypeAdd:
		return "add"
	case ChangeTypeRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// RemoveReason says why toasts left the store.
type RemoveReason int

const (
	ReasonNone RemoveReason = iota
	// ReasonEvicted means the capacity bound pushed the toast out.
	ReasonEvicted
	// ReasonExpired means the sweeper found the toast past its expiry.
	ReasonExpired
	// ReasonDismissed means Remove was called for the toast.
	ReasonDismissed
	// ReasonCleared means Clear emptied the store.
	ReasonCleared
)

// String returns the string representation of RemoveReason.
func (r RemoveReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonEvicted:
		return "evicted"
	case ReasonExpired:
		return "expired"
	case ReasonDismissed:
		return "dismissed"
	case ReasonCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// ChangeEvent signals store content changes.
type ChangeEvent struct {
	Type   ChangeType
	IDs    []model.ID
	Reason RemoveReason // ReasonNone for additions
}

func recordIDs(records []model.Record) []model.ID {
	ids := make([]model.ID, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}
