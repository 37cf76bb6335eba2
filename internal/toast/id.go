package toast

import "github.com/jmylchreest/toastd/internal/model"

// IDAllocator hands out identifiers starting at 1.
// The cursor wraps through the full uint32 range instead of failing.
type IDAllocator struct {
	next model.ID
}

// NewIDAllocator creates an allocator whose first identifier is 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: 1}
}

// Next returns the current cursor and advances it, wrapping on overflow.
func (a *IDAllocator) Next() model.ID {
	id := a.next
	a.next++
	return id
}
