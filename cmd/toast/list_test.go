package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastd/internal/core"
	"github.com/jmylchreest/toastd/internal/model"
)

func recordIDs(records []model.Record) []model.ID {
	out := make([]model.ID, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func setListOpts(t *testing.T, set func()) {
	t.Helper()
	saved := listOpts
	t.Cleanup(func() { listOpts = saved })
	listOpts.sortBy = string(core.SortByCreated)
	listOpts.sortOrder = string(core.SortAsc)
	set()
}

func TestListQuery(t *testing.T) {
	now := time.Now()
	recs := []model.Record{
		model.NewRecord(1, model.Error("disk", "Backup").WithHideAfter(10*time.Second), now),
		model.NewRecord(2, model.Error("net", "Backup").WithHideAfter(2*time.Second), now),
		model.NewRecord(3, model.Info("done", "Deploy"), now),
		model.NewRecord(4, model.Error("cpu", "Monitor").At(model.PositionTopRight), now),
	}

	setListOpts(t, func() {
		listOpts.icon = "error"
		listOpts.position = "bottom-left"
		listOpts.sortBy = "expires"
	})

	q, err := newListQuery()
	require.NoError(t, err)
	assert.Equal(t, []model.ID{2, 1}, recordIDs(q.apply(recs, now)))
}

func TestListQuery_LimitAfterSort(t *testing.T) {
	now := time.Now()
	recs := []model.Record{
		model.NewRecord(1, model.Simple("a").WithHideAfter(3*time.Second), now),
		model.NewRecord(2, model.Simple("b").WithHideAfter(time.Second), now),
		model.NewRecord(3, model.Simple("c").WithHideAfter(2*time.Second), now),
	}

	setListOpts(t, func() {
		listOpts.sortBy = "expires"
		listOpts.limit = 2
	})

	q, err := newListQuery()
	require.NoError(t, err)
	assert.Equal(t, []model.ID{2, 3}, recordIDs(q.apply(recs, now)))
}

func TestListQuery_FilterAndSearch(t *testing.T) {
	now := time.Now()
	recs := []model.Record{
		model.NewRecord(1, model.Info("rollout started", "Deploy"), now),
		model.NewRecord(2, model.Info("rollout started", "Deploy").Permanent(), now),
		model.NewRecord(3, model.Info("lunch", "Calendar"), now),
	}

	setListOpts(t, func() {
		listOpts.filter = "permanent=false"
		listOpts.search = "ROLLOUT"
	})

	q, err := newListQuery()
	require.NoError(t, err)
	assert.Equal(t, []model.ID{1}, recordIDs(q.apply(recs, now)))
}

func TestListQuery_Errors(t *testing.T) {
	tests := []struct {
		name string
		set  func()
	}{
		{"filter", func() { listOpts.filter = "colour=red" }},
		{"position", func() { listOpts.position = "middle" }},
		{"icon", func() { listOpts.icon = "sparkles" }},
		{"since", func() { listOpts.since = "later" }},
		{"sort", func() { listOpts.sortBy = "app" }},
		{"order", func() { listOpts.sortOrder = "sideways" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setListOpts(t, tt.set)
			_, err := newListQuery()
			assert.Error(t, err)
		})
	}
}

func TestLookup(t *testing.T) {
	now := time.Now()
	recs := []model.Record{
		model.NewRecord(10, model.Simple("a"), now),
		model.NewRecord(20, model.Simple("b"), now),
	}

	r := lookup(recs, "20", false)
	require.NotNil(t, r)
	assert.Equal(t, model.ID(20), r.ID)

	r = lookup(recs, "2", true)
	require.NotNil(t, r)
	assert.Equal(t, model.ID(20), r.ID)

	r = lookup(recs, recs[0].Token, false)
	require.NotNil(t, r)
	assert.Equal(t, model.ID(10), r.ID)

	assert.Nil(t, lookup(recs, "2", false))
	assert.Nil(t, lookup(recs, "x", true))
}
