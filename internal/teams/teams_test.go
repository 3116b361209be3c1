package teams

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	styles, err := Load()
	require.NoError(t, err)
	assert.Len(t, styles, 32)

	ne, ok := styles["NE"]
	require.True(t, ok)
	assert.Equal(t, "New England Patriots", ne.Name)
	assert.Equal(t, "#002244", ne.Color)
	assert.Equal(t, "https://a.espncdn.com/i/teamlogos/nfl/500/ne.png", ne.Logo)

	for code, style := range styles {
		assert.Equal(t, code, style.Code)
		assert.True(t, strings.HasPrefix(style.Color, "#"), "color for %s", code)
		assert.NotEmpty(t, style.Logo, "logo for %s", code)
	}
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"LAR", "LA"},
		{"STL", "LA"},
		{"SD", "LAC"},
		{"OAK", "LV"},
		{"WSH", "WAS"},
		{"JAC", "JAX"},
		{"ne", "NE"},
		{" KC ", "KC"},
		{"DEN/KC", "DEN/KC"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCode(tt.input))
			assert.Equal(t, tt.want, NormalizeCode(NormalizeCode(tt.input)))
		})
	}
}

func TestLookupAlias(t *testing.T) {
	styles, err := Load()
	require.NoError(t, err)

	style, ok := styles.Lookup("LAR")
	require.True(t, ok, "LAR should resolve through its alias")
	assert.Equal(t, "LA", style.Code)
	assert.Equal(t, "https://a.espncdn.com/i/teamlogos/nfl/500/lar.png", style.Logo)

	_, ok = styles.Lookup("XYZ")
	assert.False(t, ok)
}

func TestIsMultiTeam(t *testing.T) {
	assert.False(t, IsMultiTeam("NE"))
	assert.False(t, IsMultiTeam("LAC"))
	assert.True(t, IsMultiTeam("DEN/KC"))
	assert.True(t, IsMultiTeam("KC/DEN"))
}

func TestLoadFile(t *testing.T) {
	t.Run("empty path uses embedded table", func(t *testing.T) {
		styles, err := LoadFile("")
		require.NoError(t, err)
		assert.Len(t, styles, 32)
	})

	t.Run("custom file with reordered columns and aliases", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "teams.csv")
		content := "logo,code,color\nhttps://img/oak.png,OAK,#000000\n,,\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		styles, err := LoadFile(path)
		require.NoError(t, err)
		require.Len(t, styles, 1)
		assert.Equal(t, "https://img/oak.png", styles["LV"].Logo)
	})

	t.Run("missing code column", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "teams.csv")
		require.NoError(t, os.WriteFile(path, []byte("name,color\nX,#fff\n"), 0o644))
		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.csv"))
		assert.Error(t, err)
	})
}
