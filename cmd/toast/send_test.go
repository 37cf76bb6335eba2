package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastd/internal/config"
	"github.com/jmylchreest/toastd/internal/model"
)

func TestBuildContent_Defaults(t *testing.T) {
	defaults := config.DefaultConfig().Defaults

	c, err := buildContent(defaults, "hello", sendOptions{})
	require.NoError(t, err)

	assert.Equal(t, "hello", c.Body)
	assert.Empty(t, c.Heading)
	assert.Equal(t, model.IconNone, c.Icon)
	assert.Equal(t, model.PositionBottomLeft, c.Position)
	assert.True(t, c.Closable)
	require.NotNil(t, c.HideAfter)
	assert.Equal(t, config.DefaultHideAfter, *c.HideAfter)
}

func TestBuildContent_Flags(t *testing.T) {
	defaults := config.DefaultConfig().Defaults

	c, err := buildContent(defaults, "disk full", sendOptions{
		heading:     "Backup",
		icon:        "error",
		position:    "top-right",
		ttl:         "1500",
		closable:    false,
		closableSet: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Backup", c.Heading)
	assert.Equal(t, model.IconError, c.Icon)
	assert.Equal(t, model.PositionTopRight, c.Position)
	assert.False(t, c.Closable)
	require.NotNil(t, c.HideAfter)
	assert.Equal(t, 1500*time.Millisecond, *c.HideAfter)
}

func TestBuildContent_Permanent(t *testing.T) {
	c, err := buildContent(config.DefaultConfig().Defaults, "x", sendOptions{permanent: true})
	require.NoError(t, err)
	assert.Nil(t, c.HideAfter)
}

func TestBuildContent_PermanentDefault(t *testing.T) {
	defaults := config.DefaultConfig().Defaults
	defaults.Permanent = true

	c, err := buildContent(defaults, "x", sendOptions{})
	require.NoError(t, err)
	assert.Nil(t, c.HideAfter)

	// An explicit ttl still wins
	c, err = buildContent(defaults, "x", sendOptions{ttl: "2s"})
	require.NoError(t, err)
	require.NotNil(t, c.HideAfter)
	assert.Equal(t, 2*time.Second, *c.HideAfter)
}

func TestBuildContent_Errors(t *testing.T) {
	defaults := config.DefaultConfig().Defaults

	tests := []struct {
		name string
		opts sendOptions
	}{
		{"bad icon", sendOptions{icon: "sparkles"}},
		{"bad position", sendOptions{position: "middle"}},
		{"bad ttl", sendOptions{ttl: "soon"}},
		{"negative ttl", sendOptions{ttl: "-1s"}},
		{"permanent and ttl", sendOptions{permanent: true, ttl: "1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildContent(defaults, "x", tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"1", "42", "4294967295"})
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 42, 4294967295}, ids)

	for _, bad := range []string{"0", "-1", "abc", "4294967296"} {
		_, err := parseIDs([]string{bad})
		assert.Error(t, err, bad)
	}
}
