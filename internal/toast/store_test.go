package toast

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastd/internal/model"
)

var epoch = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func TestNewStore(t *testing.T) {
	s := NewStore(DefaultCapacity)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 6, s.Capacity())

	assert.Equal(t, 0, NewStore(-3).Capacity())
}

func TestStore_InsertReturnsDistinctIDs(t *testing.T) {
	s := NewStore(100)
	seen := make(map[model.ID]bool)
	for i := range 50 {
		id, evicted := s.Insert(model.Simple(fmt.Sprint(i)), epoch)
		assert.Empty(t, evicted)
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Equal(t, 50, s.Len())
}

func TestStore_FIFOEviction(t *testing.T) {
	s := NewStore(6)

	var ids []model.ID
	for i := 1; i <= 7; i++ {
		id, evicted := s.Insert(model.Simple(fmt.Sprintf("toast %d", i)), epoch)
		ids = append(ids, id)
		if i <= 6 {
			assert.Empty(t, evicted)
		} else {
			require.Len(t, evicted, 1)
			assert.Equal(t, ids[0], evicted[0].ID)
			assert.Equal(t, "toast 1", evicted[0].Content.Body)
		}
	}

	snap := s.Snapshot()
	require.Len(t, snap, 6)
	for i, r := range snap {
		assert.Equal(t, ids[i+1], r.ID)
		assert.Equal(t, fmt.Sprintf("toast %d", i+2), r.Content.Body)
	}

	_, ok := s.Get(ids[0])
	assert.False(t, ok)
}

func TestStore_CapacityBound(t *testing.T) {
	for _, capacity := range []int{0, 1, 2, 5, 6} {
		t.Run(fmt.Sprintf("capacity %d", capacity), func(t *testing.T) {
			s := NewStore(capacity)
			for i := range 20 {
				s.Insert(model.Simple(fmt.Sprint(i)), epoch)
				assert.LessOrEqual(t, len(s.Snapshot()), capacity)
			}
		})
	}
}

func TestStore_ZeroCapacity(t *testing.T) {
	s := NewStore(0)

	id, evicted := s.Insert(model.Simple("gone"), epoch)
	assert.Equal(t, model.ID(1), id)
	require.Len(t, evicted, 1)
	assert.Equal(t, id, evicted[0].ID)

	_, ok := s.Get(id)
	assert.False(t, ok)
	assert.Empty(t, s.Snapshot())

	id2, _ := s.Insert(model.Simple("gone too"), epoch)
	assert.Equal(t, model.ID(2), id2)
}

func TestStore_NoDeduplication(t *testing.T) {
	s := NewStore(10)
	a, _ := s.Insert(model.Simple("same"), epoch)
	b, _ := s.Insert(model.Simple("same"), epoch)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, s.Len())
}

func TestStore_Remove(t *testing.T) {
	s := NewStore(10)
	a, _ := s.Insert(model.Simple("a"), epoch)
	b, _ := s.Insert(model.Simple("b"), epoch)
	c, _ := s.Insert(model.Simple("c"), epoch)

	rec, ok := s.Remove(b)
	require.True(t, ok)
	assert.Equal(t, "b", rec.Content.Body)

	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, a, snap[0].ID)
	assert.Equal(t, c, snap[1].ID)

	t.Run("unknown id is a no-op", func(t *testing.T) {
		_, ok := s.Remove(999)
		assert.False(t, ok)
		assert.Equal(t, 2, s.Len())
	})

	t.Run("second remove is a no-op", func(t *testing.T) {
		_, ok := s.Remove(b)
		assert.False(t, ok)
		assert.Equal(t, 2, s.Len())
	})
}

func TestStore_Clear(t *testing.T) {
	s := NewStore(10)
	for i := range 4 {
		s.Insert(model.Simple(fmt.Sprint(i)), epoch)
	}

	removed := s.Clear()
	assert.Len(t, removed, 4)
	assert.Empty(t, s.Snapshot())

	id, _ := s.Insert(model.Simple("after"), epoch)
	assert.Equal(t, model.ID(5), id, "clear does not rewind the allocator")
	assert.Equal(t, 1, s.Len())
}

func TestStore_SweepExpired(t *testing.T) {
	s := NewStore(10)

	short, _ := s.Insert(model.Simple("short").WithHideAfter(time.Second), epoch)
	forever, _ := s.Insert(model.Simple("forever").Permanent(), epoch)
	long, _ := s.Insert(model.Simple("long").WithHideAfter(10*time.Second), epoch)
	zero, _ := s.Insert(model.Simple("zero").WithHideAfter(0), epoch)

	t.Run("zero ttl goes on first sweep", func(t *testing.T) {
		expired := s.SweepExpired(epoch)
		require.Len(t, expired, 1)
		assert.Equal(t, zero, expired[0].ID)
	})

	t.Run("before expiry nothing changes", func(t *testing.T) {
		assert.Empty(t, s.SweepExpired(epoch.Add(999*time.Millisecond)))
		assert.Equal(t, 3, s.Len())
	})

	t.Run("expiry is inclusive", func(t *testing.T) {
		expired := s.SweepExpired(epoch.Add(1100 * time.Millisecond))
		require.Len(t, expired, 1)
		assert.Equal(t, short, expired[0].ID)
	})

	t.Run("survivors keep their order", func(t *testing.T) {
		snap := s.Snapshot()
		require.Len(t, snap, 2)
		assert.Equal(t, forever, snap[0].ID)
		assert.Equal(t, long, snap[1].ID)
	})

	t.Run("permanent toasts are never swept", func(t *testing.T) {
		for i := range 100 {
			s.SweepExpired(epoch.Add(time.Duration(i) * 1000 * time.Second))
		}
		snap := s.Snapshot()
		require.Len(t, snap, 1)
		assert.Equal(t, forever, snap[0].ID)
	})
}

func TestStore_SetCapacity(t *testing.T) {
	s := NewStore(6)
	var ids []model.ID
	for i := range 6 {
		id, _ := s.Insert(model.Simple(fmt.Sprint(i)), epoch)
		ids = append(ids, id)
	}

	evicted := s.SetCapacity(2)
	require.Len(t, evicted, 4)
	for i, r := range evicted {
		assert.Equal(t, ids[i], r.ID)
	}

	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, ids[4], snap[0].ID)
	assert.Equal(t, ids[5], snap[1].ID)

	assert.Empty(t, s.SetCapacity(10))
}

func TestStore_NormalizesInvalidEnums(t *testing.T) {
	s := NewStore(5)
	c := model.Simple("odd")
	c.Position = model.Position(42)
	c.Icon = model.Icon(-1)

	id, _ := s.Insert(c, epoch)
	rec, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, model.PositionBottomLeft, rec.Content.Position)
	assert.Equal(t, model.IconNone, rec.Content.Icon)
}

// After the identifier space wraps, a very old id can be numerically larger
// than a fresh one. Ordering follows arrival, not id value, and live ids are
// never handed out twice.
func TestStore_Wraparound(t *testing.T) {
	s := NewStore(3)
	s.ids = &IDAllocator{next: math.MaxUint32}

	oldest, _ := s.Insert(model.Simple("oldest").Permanent(), epoch)
	assert.Equal(t, model.ID(math.MaxUint32), oldest)

	wrapped, _ := s.Insert(model.Simple("wrapped").Permanent(), epoch)
	assert.Equal(t, model.ID(0), wrapped)

	next, _ := s.Insert(model.Simple("next").Permanent(), epoch)
	assert.Equal(t, model.ID(1), next)

	snap := s.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []string{"oldest", "wrapped", "next"},
		[]string{snap[0].Content.Body, snap[1].Content.Body, snap[2].Content.Body})

	_, evicted := s.Insert(model.Simple("newest").Permanent(), epoch)
	require.Len(t, evicted, 1)
	assert.Equal(t, oldest, evicted[0].ID, "eviction follows arrival order across the wrap")

	t.Run("live ids are skipped", func(t *testing.T) {
		s := NewStore(10)
		first, _ := s.Insert(model.Simple("first").Permanent(), epoch)
		s.ids = &IDAllocator{next: first}

		id, _ := s.Insert(model.Simple("second").Permanent(), epoch)
		assert.NotEqual(t, first, id)
		assert.Equal(t, 2, s.Len())
	})
}

func TestStore_SweepAtZeroTime(t *testing.T) {
	s := NewStore(DefaultCapacity)
	var zero time.Time

	s.Insert(model.Simple("ttl zero").WithHideAfter(0), zero)
	keep, _ := s.Insert(model.Simple("permanent").Permanent(), zero)

	swept := s.SweepExpired(zero)
	require.Len(t, swept, 1)
	assert.Equal(t, "ttl zero", swept[0].Content.Body)
	_, ok := s.Get(keep)
	assert.True(t, ok)
}
