package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListEmbeddedThemes(t *testing.T) {
	assert.ElementsMatch(t, BundledThemes, ListEmbeddedThemes())
}

func TestEmbeddedThemesParse(t *testing.T) {
	for _, name := range BundledThemes {
		t.Run(name, func(t *testing.T) {
			assert.True(t, IsEmbeddedTheme(name))

			th, err := Embedded(name)
			require.NoError(t, err)
			assert.Equal(t, name, th.Name)
			assert.Empty(t, th.Path)
			assert.Equal(t, name == DefaultThemeName, th.IsDefault)

			// Every bundled theme colors every icon
			assert.NotEmpty(t, th.Palette.Success)
			assert.NotEmpty(t, th.Palette.Warning)
			assert.NotEmpty(t, th.Palette.Error)
			assert.NotEmpty(t, th.Palette.Info)
		})
	}
}

func TestDefault(t *testing.T) {
	th := Default()
	assert.Equal(t, DefaultThemeName, th.Name)
	assert.True(t, th.IsDefault)
	assert.Equal(t, "rounded", th.BorderStyle)
	assert.Equal(t, "9", th.Palette.Error)
}

func TestMinimalInheritsDefault(t *testing.T) {
	th, err := Embedded("minimal")
	require.NoError(t, err)

	assert.Equal(t, "normal", th.BorderStyle)
	assert.Equal(t, "1", th.Palette.Error)
	// Unset in minimal, taken from default
	assert.Equal(t, "8", th.Palette.Meta)
}

func TestEmbedded_Unknown(t *testing.T) {
	assert.False(t, IsEmbeddedTheme("nope"))
	_, err := Embedded("nope")
	assert.Error(t, err)
}
