// pkg/level/level.go
package level

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/opd-ai/go-outbreak/pkg/entity"
	"github.com/opd-ai/go-outbreak/pkg/physics"
	"github.com/opd-ai/go-outbreak/pkg/spatial"
	"github.com/opd-ai/go-outbreak/pkg/validation"
)

// DefaultTileSize is the world size of one grid cell.
const DefaultTileSize = 64

var (
	// ErrEmptyLevel is returned when a level has no header or no grid.
	ErrEmptyLevel = errors.New("level: empty level")

	// ErrBadHeader is returned when the first line is not "<name> <humans>".
	ErrBadHeader = errors.New("level: malformed header")

	// ErrNoPlayer is returned when the grid has no '@' cell.
	ErrNoPlayer = errors.New("level: no player start")
)

// Grid cell markers.
const (
	cellEmpty  = '.'
	cellPlayer = '@'
	cellZombie = 'Z'
)

// Tile is a wall cell.
type Tile struct {
	Material entity.Material
	Col, Row int
	Box      spatial.AABB
}

// Warning describes a byte in the grid that was not understood.
type Warning struct {
	Row, Col int
	Byte     byte
}

func (w Warning) String() string {
	return fmt.Sprintf("unknown cell %q at row %d col %d", w.Byte, w.Row, w.Col)
}

// Level is a parsed level file.
type Level struct {
	Name         string
	HumanCount   int
	TileSize     float64
	Cols, Rows   int
	Tiles        []Tile
	PlayerStart  physics.Vector2D
	ZombieStarts []physics.Vector2D
	Warnings     []Warning

	free []physics.Vector2D
}

// Load reads and parses the level at path.
func Load(path string, tileSize float64) (*Level, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open level %s: %w", path, err)
	}
	defer f.Close()

	lvl, err := Parse(f, tileSize)
	if err != nil {
		return nil, fmt.Errorf("parse level %s: %w", path, err)
	}
	return lvl, nil
}

// Parse reads a level. The first line holds the level name and the number of
// humans to spawn; every following line is one grid row. Row r, column c
// covers [c*tile, (c+1)*tile) x [r*tile, (r+1)*tile) in world space.
func Parse(r io.Reader, tileSize float64) (*Level, error) {
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}

	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, ErrEmptyLevel
	}

	lvl := &Level{TileSize: tileSize}
	header := strings.TrimRight(scanner.Text(), "\r")
	if _, err := fmt.Sscanf(header, "%s %d", &lvl.Name, &lvl.HumanCount); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrBadHeader, header, err)
	}
	if err := validation.LevelName(lvl.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if lvl.HumanCount < 0 {
		return nil, fmt.Errorf("%w: negative human count %d", ErrBadHeader, lvl.HumanCount)
	}

	havePlayer := false
	row := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		col := 0
		for _, b := range line {
			if b == '\r' {
				continue
			}
			center := lvl.cellCenter(col, row)
			switch b {
			case cellEmpty:
				lvl.free = append(lvl.free, center)
			case cellPlayer:
				lvl.PlayerStart = center
				havePlayer = true
			case cellZombie:
				lvl.ZombieStarts = append(lvl.ZombieStarts, center)
			case byte(entity.RedBrick), byte(entity.BlueBrick), byte(entity.Glass), byte(entity.LightBrick):
				lvl.Tiles = append(lvl.Tiles, Tile{
					Material: entity.Material(b),
					Col:      col,
					Row:      row,
					Box:      lvl.cellBox(col, row),
				})
			default:
				lvl.Warnings = append(lvl.Warnings, Warning{Row: row, Col: col, Byte: b})
			}
			col++
		}
		if col > lvl.Cols {
			lvl.Cols = col
		}
		row++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	lvl.Rows = row

	if lvl.Rows == 0 || lvl.Cols == 0 {
		return nil, ErrEmptyLevel
	}
	if !havePlayer {
		return nil, ErrNoPlayer
	}
	return lvl, nil
}

func (l *Level) cellBox(col, row int) spatial.AABB {
	x := float64(col) * l.TileSize
	y := float64(row) * l.TileSize
	return spatial.AABB{MinX: x, MinY: y, MaxX: x + l.TileSize, MaxY: y + l.TileSize}
}

func (l *Level) cellCenter(col, row int) physics.Vector2D {
	return physics.Vector2D{
		X: (float64(col) + 0.5) * l.TileSize,
		Y: (float64(row) + 0.5) * l.TileSize,
	}
}

// Bounds returns the world region that holds the whole grid with a margin of
// one tile on every side, suitable as the initial root of a spatial index.
func (l *Level) Bounds() spatial.AABB {
	return spatial.AABB{
		MinX: -l.TileSize,
		MinY: -l.TileSize,
		MaxX: float64(l.Cols+1) * l.TileSize,
		MaxY: float64(l.Rows+1) * l.TileSize,
	}
}

// FreeCells returns the centers of every empty cell, in reading order.
func (l *Level) FreeCells() []physics.Vector2D {
	out := make([]physics.Vector2D, len(l.free))
	copy(out, l.free)
	return out
}
