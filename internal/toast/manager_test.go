package toast

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastd/internal/model"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: epoch}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestManager(t *testing.T, capacity int) (*Manager, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	m := NewManager(capacity, nil)
	m.SetClock(clock.Now)
	t.Cleanup(m.Close)
	return m, clock
}

func drain(ch <-chan ChangeEvent) []ChangeEvent {
	var out []ChangeEvent
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestManager_OverflowEvictsOldest(t *testing.T) {
	m, _ := newTestManager(t, DefaultCapacity)

	for i := 1; i <= 7; i++ {
		id := m.Popup(model.Simple(fmt.Sprintf("toast %d", i)))
		assert.Equal(t, model.ID(i), id)
	}

	snap := m.Snapshot()
	require.Len(t, snap, 6)
	_, ok := m.Get(1)
	assert.False(t, ok)
	for i, r := range snap {
		assert.Equal(t, model.ID(i+2), r.ID)
	}
}

func TestManager_ExpiryAndPermanent(t *testing.T) {
	m, clock := newTestManager(t, DefaultCapacity)

	short := m.Popup(model.Info("short", "").WithHideAfter(time.Second))
	forever := m.Popup(model.Info("forever", "").Permanent())

	clock.Advance(1100 * time.Millisecond)
	assert.Equal(t, 1, m.Sweep(clock.Now()))

	_, ok := m.Get(short)
	assert.False(t, ok)

	clock.Advance(1000 * time.Second)
	assert.Equal(t, 0, m.Sweep(clock.Now()))
	_, ok = m.Get(forever)
	assert.True(t, ok)
}

func TestManager_Buckets(t *testing.T) {
	m, _ := newTestManager(t, DefaultCapacity)

	a := m.Popup(model.Simple("A"))
	b := m.Popup(model.Simple("B").At(model.PositionTopRight))

	buckets := m.Buckets()
	require.Len(t, buckets.BottomLeft, 1)
	require.Len(t, buckets.TopRight, 1)
	assert.Empty(t, buckets.BottomRight)
	assert.Empty(t, buckets.TopLeft)
	assert.Equal(t, a, buckets.BottomLeft[0].ID)
	assert.Equal(t, b, buckets.TopRight[0].ID)
}

func TestManager_RemoveUnknownIsNoop(t *testing.T) {
	m, _ := newTestManager(t, DefaultCapacity)
	m.Popup(model.Simple("a"))
	m.Popup(model.Simple("b"))

	before := m.Snapshot()
	assert.False(t, m.Remove(999))
	assert.Equal(t, before, m.Snapshot())
}

func TestManager_RemoveTwice(t *testing.T) {
	m, _ := newTestManager(t, DefaultCapacity)
	id := m.Popup(model.Simple("a"))

	assert.True(t, m.Remove(id))
	assert.False(t, m.Remove(id))
	assert.Equal(t, 0, m.Len())
}

func TestManager_ClearThenPopup(t *testing.T) {
	m, _ := newTestManager(t, DefaultCapacity)
	m.Popup(model.Simple("a"))
	m.Popup(model.Simple("b"))
	m.Popup(model.Simple("c"))

	assert.Equal(t, 3, m.Clear())
	assert.Empty(t, m.Snapshot())

	id := m.Popup(model.Simple("d"))
	assert.Equal(t, model.ID(4), id)
	require.Len(t, m.Snapshot(), 1)

	assert.Equal(t, 1, m.Clear())
	assert.Equal(t, 0, m.Clear())
}

func TestManager_ZeroTTL(t *testing.T) {
	m, clock := newTestManager(t, DefaultCapacity)
	id := m.Popup(model.Simple("blink").WithHideAfter(0))

	_, ok := m.Get(id)
	assert.True(t, ok, "visible until the first sweep")

	assert.Equal(t, 1, m.Sweep(clock.Now()))
	assert.Equal(t, 0, m.Len())
}

func TestManager_ZeroCapacity(t *testing.T) {
	m, _ := newTestManager(t, 0)
	id := m.Popup(model.Simple("nowhere"))
	assert.Equal(t, model.ID(1), id)
	assert.Empty(t, m.Snapshot())
}

func TestManager_SetCapacity(t *testing.T) {
	m, _ := newTestManager(t, 6)
	for i := range 6 {
		m.Popup(model.Simple(fmt.Sprint(i)))
	}
	ch := m.Subscribe()

	m.SetCapacity(2)
	assert.Equal(t, 2, m.Capacity())
	assert.Equal(t, 2, m.Len())

	events := drain(ch)
	require.Len(t, events, 1)
	assert.Equal(t, ChangeTypeRemove, events[0].Type)
	assert.Equal(t, ReasonEvicted, events[0].Reason)
	assert.Equal(t, []model.ID{1, 2, 3, 4}, events[0].IDs)
}

func TestManager_Events(t *testing.T) {
	m, clock := newTestManager(t, 2)
	ch := m.Subscribe()

	a := m.Popup(model.Simple("a").WithHideAfter(time.Second))
	b := m.Popup(model.Simple("b").Permanent())
	c := m.Popup(model.Simple("c").Permanent())
	m.Remove(b)
	m.Remove(999)
	clock.Advance(time.Hour)
	m.Sweep(clock.Now())
	m.Clear()

	events := drain(ch)
	want := []ChangeEvent{
		{Type: ChangeTypeAdd, IDs: []model.ID{a}},
		{Type: ChangeTypeAdd, IDs: []model.ID{b}},
		{Type: ChangeTypeAdd, IDs: []model.ID{c}},
		{Type: ChangeTypeRemove, IDs: []model.ID{a}, Reason: ReasonEvicted},
		{Type: ChangeTypeRemove, IDs: []model.ID{b}, Reason: ReasonDismissed},
		{Type: ChangeTypeRemove, IDs: []model.ID{c}, Reason: ReasonCleared},
	}
	assert.Equal(t, want, events)
}

func TestManager_SlowSubscriberDoesNotBlock(t *testing.T) {
	m, _ := newTestManager(t, 1000)
	ch := m.Subscribe()

	done := make(chan struct{})
	go func() {
		for range subscriberBuffer * 3 {
			m.Popup(model.Simple("spam"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Popup blocked on a full subscriber")
	}
	assert.Len(t, drain(ch), subscriberBuffer)
}

func TestManager_Unsubscribe(t *testing.T) {
	m, _ := newTestManager(t, DefaultCapacity)
	ch := m.Subscribe()
	m.Unsubscribe(ch)

	_, ok := <-ch
	assert.False(t, ok)

	m.Popup(model.Simple("after"))
	m.Unsubscribe(ch)
}

func TestManager_SweeperRemovesExpired(t *testing.T) {
	m := NewManager(DefaultCapacity, nil)
	defer m.Close()

	m.Popup(model.Simple("quick").WithHideAfter(20 * time.Millisecond))
	keep := m.Popup(model.Simple("stay").Permanent())

	m.StartSweeper(context.Background(), 5*time.Millisecond)
	assert.True(t, m.SweeperRunning())

	require.Eventually(t, func() bool { return m.Len() == 1 }, 2*time.Second, 5*time.Millisecond)
	_, ok := m.Get(keep)
	assert.True(t, ok)
}

func TestManager_SweeperContextCancel(t *testing.T) {
	m, _ := newTestManager(t, DefaultCapacity)

	ctx, cancel := context.WithCancel(context.Background())
	m.StartSweeper(ctx, 5*time.Millisecond)
	cancel()

	require.Eventually(t, func() bool { return !m.SweeperRunning() }, 2*time.Second, 5*time.Millisecond)

	// The manager keeps working after the sweeper is gone.
	id := m.Popup(model.Simple("still here"))
	_, ok := m.Get(id)
	assert.True(t, ok)
}

func TestManager_SetSweepInterval(t *testing.T) {
	m, _ := newTestManager(t, DefaultCapacity)

	m.SetSweepInterval(time.Millisecond)
	assert.False(t, m.SweeperRunning(), "no sweeper to restart")

	m.StartSweeper(context.Background(), time.Hour)
	m.SetSweepInterval(10 * time.Millisecond)
	assert.True(t, m.SweeperRunning())
}

func TestManager_StopSweeperRestarts(t *testing.T) {
	m := NewManager(DefaultCapacity, nil)
	defer m.Close()

	m.StartSweeper(context.Background(), 5*time.Millisecond)
	m.StopSweeper()
	assert.False(t, m.SweeperRunning())
	m.StopSweeper()

	m.Popup(model.Simple("gone soon").WithHideAfter(0))
	m.StartSweeper(context.Background(), 5*time.Millisecond)
	assert.True(t, m.SweeperRunning())
	require.Eventually(t, func() bool { return m.Len() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestManager_CloseRacingStartSweeper(t *testing.T) {
	for range 200 {
		m := NewManager(DefaultCapacity, nil)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.StartSweeper(context.Background(), time.Millisecond)
		}()
		go func() {
			defer wg.Done()
			m.Close()
		}()
		wg.Wait()

		// Whichever ran first, no sweep loop outlives Close.
		m.Popup(model.Simple("left alone").WithHideAfter(0))
		time.Sleep(3 * time.Millisecond)
		require.Equal(t, 1, m.Len())
		require.False(t, m.SweeperRunning())
	}
}

func TestManager_SubscribeWithBuffer(t *testing.T) {
	m, _ := newTestManager(t, 1)
	ch := m.SubscribeWithBuffer(subscriberBuffer * 4)

	for range subscriberBuffer {
		m.Popup(model.Simple("burst"))
	}

	// Every popup but the first also evicts.
	assert.Len(t, drain(ch), subscriberBuffer*2-1)
}

func TestManager_Close(t *testing.T) {
	m := NewManager(DefaultCapacity, nil)
	ch := m.Subscribe()
	m.StartSweeper(context.Background(), 5*time.Millisecond)

	m.Close()
	assert.False(t, m.SweeperRunning())

	_, ok := <-ch
	assert.False(t, ok)

	late := m.Subscribe()
	_, ok = <-late
	assert.False(t, ok)

	m.StartSweeper(context.Background(), 5*time.Millisecond)
	assert.False(t, m.SweeperRunning())

	id := m.Popup(model.Simple("closed but usable"))
	assert.True(t, m.Remove(id))

	m.Close()
}

func TestManager_ConcurrentSnapshots(t *testing.T) {
	m, clock := newTestManager(t, 4)

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				id := m.Popup(model.Simple(fmt.Sprint(w, i)).WithHideAfter(time.Duration(i%3) * time.Millisecond))
				if i%5 == 0 {
					m.Remove(id)
				}
				if i%17 == 0 {
					m.Sweep(clock.Now().Add(time.Second))
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 500 {
			snap := m.Snapshot()
			assert.LessOrEqual(t, len(snap), 4)
			seen := make(map[model.ID]bool)
			for _, r := range snap {
				assert.False(t, seen[r.ID])
				seen[r.ID] = true
			}
		}
	}()

	wg.Wait()
}

func TestManager_Independent(t *testing.T) {
	a, _ := newTestManager(t, DefaultCapacity)
	b, _ := newTestManager(t, DefaultCapacity)

	assert.Equal(t, model.ID(1), a.Popup(model.Simple("a")))
	assert.Equal(t, model.ID(1), b.Popup(model.Simple("b")))
	a.Clear()
	assert.Equal(t, 1, b.Len())
}
