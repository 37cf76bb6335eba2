package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastd/internal/model"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// rec builds a record popped age before testNow.
func rec(id model.ID, c model.Content, age time.Duration) model.Record {
	return model.NewRecord(id, c, testNow.Add(-age))
}

func ids(records []model.Record) []model.ID {
	out := make([]model.ID, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestFilter_Empty(t *testing.T) {
	result := Filter(nil, FilterOptions{})
	assert.Len(t, result, 0)
}

func TestFilter_NoFilters(t *testing.T) {
	records := []model.Record{
		rec(1, model.Simple("a"), 0),
		rec(2, model.Simple("b"), 0),
	}

	result := Filter(records, FilterOptions{Now: testNow})
	assert.Len(t, result, 2)
}

func TestFilter_ByPosition(t *testing.T) {
	records := []model.Record{
		rec(1, model.Simple("a"), 0),
		rec(2, model.Simple("b").At(model.PositionTopRight), 0),
		rec(3, model.Simple("c").At(model.PositionTopRight), 0),
	}

	p := model.PositionTopRight
	result := Filter(records, FilterOptions{Position: &p, Now: testNow})
	assert.Equal(t, []model.ID{2, 3}, ids(result))
}

func TestFilter_ByIcon(t *testing.T) {
	records := []model.Record{
		rec(1, model.Error("a", ""), 0),
		rec(2, model.Info("b", ""), 0),
		rec(3, model.Error("c", ""), 0),
	}

	icon := model.IconError
	result := Filter(records, FilterOptions{Icon: &icon, Now: testNow})
	assert.Equal(t, []model.ID{1, 3}, ids(result))
}

func TestFilter_ByPermanent(t *testing.T) {
	records := []model.Record{
		rec(1, model.Simple("a").Permanent(), 0),
		rec(2, model.Simple("b"), 0),
	}

	yes, no := true, false
	assert.Equal(t, []model.ID{1}, ids(Filter(records, FilterOptions{Permanent: &yes, Now: testNow})))
	assert.Equal(t, []model.ID{2}, ids(Filter(records, FilterOptions{Permanent: &no, Now: testNow})))
}

func TestFilter_BySince(t *testing.T) {
	records := []model.Record{
		rec(1, model.Simple("a").Permanent(), 30*time.Second),
		rec(2, model.Simple("b").Permanent(), 2*time.Minute),
		rec(3, model.Simple("c").Permanent(), 5*time.Minute),
	}

	result := Filter(records, FilterOptions{Since: time.Minute, Now: testNow})
	assert.Equal(t, []model.ID{1}, ids(result))
}

func TestFilter_WithLimit(t *testing.T) {
	var records []model.Record
	for i := range 5 {
		records = append(records, rec(model.ID(i+1), model.Simple("x"), 0))
	}

	result := Filter(records, FilterOptions{Limit: 3, Now: testNow})
	assert.Equal(t, []model.ID{1, 2, 3}, ids(result))
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		hasError bool
	}{
		{"0", 0, false},
		{"", 0, false},
		{"1h", time.Hour, false},
		{"30s", 30 * time.Second, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"1w", 7 * 24 * time.Hour, false},
		{"invalid", 0, true},
		{"xd", 0, true},
		{"xw", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseDuration(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestParseFilter(t *testing.T) {
	records := []model.Record{
		rec(1, model.Error("disk full", "Backup"), 10*time.Second),
		rec(2, model.Info("rollout done", "Deploy").At(model.PositionTopRight), 2*time.Minute),
		rec(3, model.Warning("rollout slow", "Deploy").Permanent(), 20*time.Second),
		rec(4, model.Simple("plain").WithHideAfter(time.Minute), 50*time.Second),
	}

	tests := []struct {
		expr string
		want []model.ID
	}{
		{"", []model.ID{1, 2, 3, 4}},
		{"icon=error", []model.ID{1}},
		{"icon!=error", []model.ID{2, 3, 4}},
		{"icon=none", []model.ID{4}},
		{"heading=Deploy", []model.ID{2, 3}},
		{"title~deP", []model.ID{2, 3}},
		{"body~=^rollout", []model.ID{2, 3}},
		{"position=top-right", []model.ID{2}},
		{"pos=bottom-left,heading=Deploy", []model.ID{3}},
		{"permanent=true", []model.ID{3}},
		{"sticky=no", []model.ID{1, 2, 4}},
		{"closable=true", []model.ID{1, 2, 3, 4}},
		{"created>1m", []model.ID{1, 3, 4}},
		{"age<1m", []model.ID{2}},
		{"left<5s", []model.ID{1, 2}},
		{"left>=10s", []model.ID{4}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			expr, err := parseFilterAt(tt.expr, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(FilterWithExpr(records, expr)))
		})
	}
}

func TestParseFilter_Errors(t *testing.T) {
	for _, expr := range []string{
		"icon",
		"=error",
		"colour=red",
		"icon=sparkles",
		"position=middle",
		"body~=(",
		"created>soon",
	} {
		_, err := ParseFilter(expr)
		assert.Error(t, err, expr)
	}
}
