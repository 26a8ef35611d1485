// pkg/level/level_test.go
package level

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-outbreak/pkg/entity"
	"github.com/opd-ai/go-outbreak/pkg/physics"
	"github.com/opd-ai/go-outbreak/pkg/spatial"
)

const sampleLevel = "courtyard 3\r\n" +
	"RRRRR\r\n" +
	"R.@.G\r\n" +
	"R.Z?L\r\n" +
	"BBBBB\r\n"

func TestParse(t *testing.T) {
	lvl, err := Parse(strings.NewReader(sampleLevel), 64)
	require.NoError(t, err)

	assert.Equal(t, "courtyard", lvl.Name)
	assert.Equal(t, 3, lvl.HumanCount)
	assert.Equal(t, 5, lvl.Cols)
	assert.Equal(t, 4, lvl.Rows)

	assert.Equal(t, physics.Vector2D{X: 160, Y: 96}, lvl.PlayerStart)
	assert.Equal(t, []physics.Vector2D{{X: 160, Y: 160}}, lvl.ZombieStarts)

	assert.Len(t, lvl.Tiles, 14)
	glass := lvl.Tiles[6]
	assert.Equal(t, entity.Glass, glass.Material)
	assert.Equal(t, spatial.MustAABB(256, 64, 320, 128), glass.Box)

	require.Len(t, lvl.Warnings, 1)
	assert.Equal(t, Warning{Row: 2, Col: 3, Byte: '?'}, lvl.Warnings[0])

	assert.Equal(t, []physics.Vector2D{
		{X: 96, Y: 96},
		{X: 224, Y: 96},
		{X: 96, Y: 160},
	}, lvl.FreeCells())
}

func TestParse_BoundsHoldEveryTile(t *testing.T) {
	lvl, err := Parse(strings.NewReader(sampleLevel), 64)
	require.NoError(t, err)

	bounds := lvl.Bounds()
	for _, tile := range lvl.Tiles {
		assert.True(t, tile.Box.FitsIn(bounds), "tile %v outside %v", tile.Box, bounds)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   error
	}{
		{name: "empty_input", input: "", err: ErrEmptyLevel},
		{name: "header_only", input: "lonely 2\n", err: ErrEmptyLevel},
		{name: "bad_header", input: "nohumans\nR@R\n", err: ErrBadHeader},
		{name: "bad_name", input: "<yard> 1\nR@R\n", err: ErrBadHeader},
		{name: "negative_humans", input: "x -1\nR@R\n", err: ErrBadHeader},
		{name: "no_player", input: "empty 1\nR.R\n", err: ErrNoPlayer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), 64)
			if !errors.Is(err, tt.err) {
				t.Errorf("Parse() error = %v, expected %v", err, tt.err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleLevel), 0o644))

	lvl, err := Load(path, 0)
	require.NoError(t, err)
	assert.Equal(t, float64(DefaultTileSize), lvl.TileSize)

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"), 64)
	assert.Error(t, err)
}

func TestShippedLevels(t *testing.T) {
	paths, err := filepath.Glob("../../levels/*.txt")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			lvl, err := Load(path, DefaultTileSize)
			require.NoError(t, err)
			assert.Empty(t, lvl.Warnings)
			assert.NotEmpty(t, lvl.ZombieStarts)
			assert.GreaterOrEqual(t, len(lvl.FreeCells()), lvl.HumanCount)
		})
	}
}
