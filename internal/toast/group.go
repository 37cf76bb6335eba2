package toast

import "github.com/jmylchreest/toastd/internal/model"

// Buckets partitions toasts by screen corner. Each slice keeps insertion order.
type Buckets struct {
	BottomLeft  []model.Record
	BottomRight []model.Record
	TopLeft     []model.Record
	TopRight    []model.Record
}

// Group splits records into their position buckets.
// Every record lands in exactly one bucket; unknown positions fall back to bottom-left.
func Group(records []model.Record) Buckets {
	var b Buckets
	for _, r := range records {
		switch r.Content.Position {
		case model.PositionBottomRight:
			b.BottomRight = append(b.BottomRight, r)
		case model.PositionTopLeft:
			b.TopLeft = append(b.TopLeft, r)
		case model.PositionTopRight:
			b.TopRight = append(b.TopRight, r)
		default:
			b.BottomLeft = append(b.BottomLeft, r)
		}
	}
	return b
}

// At returns the bucket for p.
func (b Buckets) At(p model.Position) []model.Record {
	switch p {
	case model.PositionBottomRight:
		return b.BottomRight
	case model.PositionTopLeft:
		return b.TopLeft
	case model.PositionTopRight:
		return b.TopRight
	default:
		return b.BottomLeft
	}
}

// Len returns the total number of records across all buckets.
func (b Buckets) Len() int {
	return len(b.BottomLeft) + len(b.BottomRight) + len(b.TopLeft) + len(b.TopRight)
}
