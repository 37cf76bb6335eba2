package daemon

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastd/internal/model"
)

type popupRecorder struct {
	contents []model.Content
}

func (r *popupRecorder) popup(c model.Content) model.ID {
	r.contents = append(r.contents, c)
	return model.ID(len(r.contents))
}

func newTestNotifier(t *testing.T) (*InternalNotifier, *popupRecorder, *time.Time) {
	t.Helper()
	rec := &popupRecorder{}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	n := NewInternalNotifier(nil)
	n.SetNotifyHandler(rec.popup)
	n.now = func() time.Time { return now }
	return n, rec, &now
}

func TestInternalNotifier_LevelIcons(t *testing.T) {
	tests := []struct {
		level NotificationLevel
		icon  model.Icon
	}{
		{NotificationLevelInfo, model.IconInfo},
		{NotificationLevelWarning, model.IconWarning},
		{NotificationLevelError, model.IconError},
	}

	for _, tt := range tests {
		n, rec, _ := newTestNotifier(t)
		id := n.Notify("k", "Heading", "body", tt.level)
		require.Equal(t, model.ID(1), id)
		require.Len(t, rec.contents, 1)

		c := rec.contents[0]
		assert.Equal(t, tt.icon, c.Icon)
		assert.Equal(t, "Heading", c.Heading)
		assert.Equal(t, "body", c.Body)
		require.NotNil(t, c.HideAfter)
		assert.Equal(t, DefaultNotifyHideAfter, *c.HideAfter)
	}
}

func TestInternalNotifier_RateLimit(t *testing.T) {
	n, rec, now := newTestNotifier(t)
	n.SetMinInterval(time.Second)

	assert.NotZero(t, n.Notify("same", "a", "", NotificationLevelInfo))
	assert.Zero(t, n.Notify("same", "a", "", NotificationLevelInfo))

	// Different keys are limited independently
	assert.NotZero(t, n.Notify("other", "b", "", NotificationLevelInfo))

	*now = now.Add(time.Second)
	assert.NotZero(t, n.Notify("same", "a", "", NotificationLevelInfo))
	assert.Len(t, rec.contents, 3)
}

func TestInternalNotifier_Disabled(t *testing.T) {
	n, rec, _ := newTestNotifier(t)
	n.SetEnabled(false)

	assert.Zero(t, n.NotifyConfigReloaded())
	assert.Empty(t, rec.contents)
}

func TestInternalNotifier_NoHandler(t *testing.T) {
	n := NewInternalNotifier(nil)
	assert.Zero(t, n.NotifyStartup("1.0.0"))
}

func TestInternalNotifier_Position(t *testing.T) {
	n, rec, _ := newTestNotifier(t)
	n.SetPosition(model.PositionTopRight)

	n.NotifyConfigError(errors.New("bad capacity"))
	require.Len(t, rec.contents, 1)
	assert.Equal(t, model.PositionTopRight, rec.contents[0].Position)
	assert.Contains(t, rec.contents[0].Body, "bad capacity")
	assert.Equal(t, model.IconWarning, rec.contents[0].Icon)
}
