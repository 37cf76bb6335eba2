package theme

import (
	"fmt"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastd/internal/model"
)

// mapSource serves themes from memory.
func mapSource(files map[string]string) SourceFunc {
	return func(name string) ([]byte, string, error) {
		data, ok := files[name]
		if !ok {
			return nil, "", fmt.Errorf("no theme %q", name)
		}
		return []byte(data), "", nil
	}
}

func TestParse_NoInherit(t *testing.T) {
	data := `
border_style = "double"

[colors]
border = "#111111"
error  = "1"
`
	th, err := Parse("solo", []byte(data), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "solo", th.Name)
	assert.Equal(t, "double", th.BorderStyle)
	assert.Equal(t, "#111111", th.Palette.Border)
	assert.Equal(t, "1", th.Palette.Error)
	assert.Empty(t, th.Palette.Info)
}

func TestParse_Inherit(t *testing.T) {
	src := mapSource(map[string]string{
		"base": `
border_style = "thick"
[colors]
border = "8"
info   = "12"
error  = "9"
`,
		"middle": `
inherit = "base"
[colors]
error = "#ff0000"
`,
	})

	data := `
inherit = "middle"
[colors]
info = "#0000ff"
`
	th, err := Parse("child", []byte(data), src, nil)
	require.NoError(t, err)

	assert.Equal(t, "thick", th.BorderStyle)
	assert.Equal(t, "8", th.Palette.Border)
	assert.Equal(t, "#ff0000", th.Palette.Error)
	assert.Equal(t, "#0000ff", th.Palette.Info)
}

func TestParse_CircularInherit(t *testing.T) {
	src := mapSource(map[string]string{
		"a": `inherit = "b"`,
		"b": `inherit = "a"`,
	})

	_, err := Parse("a", []byte(`inherit = "b"`), src, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad toml", `[colors`},
		{"bad border", `border_style = "wavy"`},
		{"missing parent", `inherit = "nowhere"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("x", []byte(tt.data), mapSource(nil), nil)
			assert.Error(t, err)
		})
	}
}

func TestPalette_Merge(t *testing.T) {
	base := Palette{Border: "8", Error: "9", Info: "12"}
	merged := base.Merge(Palette{Error: "1", Heading: "15"})

	assert.Equal(t, Palette{Border: "8", Error: "1", Info: "12", Heading: "15"}, merged)
}

func TestPalette_IconColor(t *testing.T) {
	p := Palette{Border: "8", Success: "10", Warning: "11", Error: "9", Info: "12"}

	assert.Equal(t, lipgloss.Color("10"), p.IconColor(model.IconSuccess))
	assert.Equal(t, lipgloss.Color("11"), p.IconColor(model.IconWarning))
	assert.Equal(t, lipgloss.Color("9"), p.IconColor(model.IconError))
	assert.Equal(t, lipgloss.Color("12"), p.IconColor(model.IconInfo))
	assert.Equal(t, lipgloss.Color("8"), p.IconColor(model.IconNone))
}

func TestTheme_Border(t *testing.T) {
	assert.Equal(t, lipgloss.RoundedBorder(), (&Theme{}).Border())
	assert.Equal(t, lipgloss.NormalBorder(), (&Theme{BorderStyle: "normal"}).Border())
	assert.Equal(t, lipgloss.DoubleBorder(), (&Theme{BorderStyle: "double"}).Border())
}
