package toast

import (
	"cmp"
	"time"

	"github.com/emirpasic/gods/trees/redblacktree"

	"github.com/jmylchreest/toastd/internal/model"
)

// DefaultCapacity is the number of toasts a manager keeps when not configured.
const DefaultCapacity = 6

// Store is a bounded mapping from identifier to record, iterated in insertion order.
//
// Records are kept in a red-black tree keyed by a private insertion sequence,
// so iteration and eviction follow arrival order even after the identifier
// space wraps. Store is not safe for concurrent use; Manager serializes access.
type Store struct {
	tree     *redblacktree.Tree  // seq -> model.Record
	index    map[model.ID]uint64 // id -> seq
	seq      uint64
	capacity int
	ids      *IDAllocator
}

// NewStore creates an empty store. A negative capacity is treated as zero.
func NewStore(capacity int) *Store {
	return &Store{
		tree:     redblacktree.NewWith(seqComparator),
		index:    make(map[model.ID]uint64),
		capacity: max(capacity, 0),
		ids:      NewIDAllocator(),
	}
}

func seqComparator(a, b interface{}) int {
	return cmp.Compare(a.(uint64), b.(uint64))
}

// Insert stores content as a new record and returns its identifier.
// When the store grows past capacity the oldest records are evicted and
// returned; with capacity zero that includes the record just inserted.
func (s *Store) Insert(content model.Content, now time.Time) (model.ID, []model.Record) {
	if !content.Position.Valid() {
		content.Position = model.PositionBottomLeft
	}
	if !content.Icon.Valid() {
		content.Icon = model.IconNone
	}

	id := s.nextFreeID()
	s.seq++
	s.tree.Put(s.seq, model.NewRecord(id, content, now))
	s.index[id] = s.seq

	return id, s.evictOverflow()
}

// nextFreeID skips identifiers still held by a live record after a wraparound.
func (s *Store) nextFreeID() model.ID {
	for {
		id := s.ids.Next()
		if _, live := s.index[id]; !live {
			return id
		}
	}
}

// evictOverflow pops the oldest records until the store fits its capacity.
func (s *Store) evictOverflow() []model.Record {
	var evicted []model.Record
	for s.tree.Size() > s.capacity {
		oldest := s.tree.Left()
		rec := oldest.Value.(model.Record)
		s.tree.Remove(oldest.Key)
		delete(s.index, rec.ID)
		evicted = append(evicted, rec)
	}
	return evicted
}

// Remove deletes the record with the given identifier, if present.
func (s *Store) Remove(id model.ID) (model.Record, bool) {
	seq, ok := s.index[id]
	if !ok {
		return model.Record{}, false
	}
	v, _ := s.tree.Get(seq)
	s.tree.Remove(seq)
	delete(s.index, id)
	return v.(model.Record), true
}

// Clear empties the store and returns what was removed.
// The identifier cursor is left untouched.
func (s *Store) Clear() []model.Record {
	removed := s.Snapshot()
	s.tree.Clear()
	s.index = make(map[model.ID]uint64)
	return removed
}

// SweepExpired removes every record whose expiry is defined and not after now.
// Permanent records are never touched.
func (s *Store) SweepExpired(now time.Time) []model.Record {
	var expired []model.Record
	var seqs []uint64

	it := s.tree.Iterator()
	for it.Next() {
		rec := it.Value().(model.Record)
		if rec.Expired(now) {
			expired = append(expired, rec)
			seqs = append(seqs, it.Key().(uint64))
		}
	}

	for i, seq := range seqs {
		s.tree.Remove(seq)
		delete(s.index, expired[i].ID)
	}
	return expired
}

// Snapshot returns the records in insertion order.
func (s *Store) Snapshot() []model.Record {
	out := make([]model.Record, 0, s.tree.Size())
	it := s.tree.Iterator()
	for it.Next() {
		out = append(out, it.Value().(model.Record))
	}
	return out
}

// Get returns the record with the given identifier.
func (s *Store) Get(id model.ID) (model.Record, bool) {
	seq, ok := s.index[id]
	if !ok {
		return model.Record{}, false
	}
	v, _ := s.tree.Get(seq)
	return v.(model.Record), true
}

// Len returns the number of live records.
func (s *Store) Len() int {
	return s.tree.Size()
}

// Capacity returns the configured bound.
func (s *Store) Capacity() int {
	return s.capacity
}

// SetCapacity changes the bound and evicts the oldest records that no longer fit.
func (s *Store) SetCapacity(capacity int) []model.Record {
	s.capacity = max(capacity, 0)
	return s.evictOverflow()
}
