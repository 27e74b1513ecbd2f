package game

import (
	"math/rand/v2"

	"github.com/sweeplab/minesweeper-live/internal/domain/model"
)

// cellState tracks what the player has done to a cell. Revealed is terminal
// within one game; only a restart (which rebuilds the field) undoes it.
type cellState uint8

const (
	hidden cellState = iota
	flagged
	marked
	revealed
)

// cell is the in-memory representation of one board square. The adjacency
// count is computed once at construction and never changes.
type cell struct {
	bomb     bool
	adjacent uint8
	state    cellState
}

// Field is the pure game board: bombs, adjacency counts and reveal state.
// It carries no locks; the owning session serializes all access.
type Field struct {
	width    int
	height   int
	bombs    int
	revealed int
	finished bool
	cells    []cell
}

// neighborOffsets enumerates the 8-connected neighborhood.
var neighborOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// New builds a field from normalized parameters. Bomb placement is a single
// streaming pass: position i receives a bomb with probability
// bombsLeft/cellsLeft, which yields exactly params.Bombs bombs and a uniform
// distribution over arrangements.
func New(params model.GameParams) *Field {
	params = params.Normalize()

	f := &Field{
		width:  params.Width,
		height: params.Height,
		bombs:  params.Bombs,
		cells:  make([]cell, params.Width*params.Height),
	}

	bombsLeft := params.Bombs
	for i := range f.cells {
		cellsLeft := len(f.cells) - i
		if rand.IntN(cellsLeft) < bombsLeft {
			f.cells[i].bomb = true
			bombsLeft--
		}
	}

	for i := range f.cells {
		f.cells[i].adjacent = f.countAdjacent(i)
	}

	return f
}

func (f *Field) countAdjacent(index int) uint8 {
	x := index % f.width
	y := index / f.width

	var count uint8
	for _, d := range neighborOffsets {
		nx, ny := x+d[0], y+d[1]
		if nx < 0 || nx >= f.width || ny < 0 || ny >= f.height {
			continue
		}
		if f.cells[nx+ny*f.width].bomb {
			count++
		}
	}
	return count
}

// Width and Height report the board extents; Bombs the placed bomb count.
func (f *Field) Width() int  { return f.width }
func (f *Field) Height() int { return f.height }
func (f *Field) Bombs() int  { return f.bombs }

// Revealed reports how many safe cells have been revealed so far.
func (f *Field) Revealed() int { return f.revealed }

// Finished reports whether the game has ended. Finish latches it; no client
// action mutates a finished field.
func (f *Field) Finished() bool { return f.finished }
func (f *Field) Finish()        { f.finished = true }

// InBounds reports whether pos addresses a cell on this board.
func (f *Field) InBounds(pos model.Pos) bool {
	return pos.X >= 0 && pos.X < f.width && pos.Y >= 0 && pos.Y < f.height
}

func (f *Field) at(pos model.Pos) *cell {
	return &f.cells[pos.X+pos.Y*f.width]
}

// IsBomb reports whether the cell at pos carries a bomb. Callers must check
// bounds first.
func (f *Field) IsBomb(pos model.Pos) bool { return f.at(pos).bomb }

// IsFlagged reports whether the cell at pos carries a protective flag.
func (f *Field) IsFlagged(pos model.Pos) bool { return f.at(pos).state == flagged }

// Won reports the win condition: every non-bomb cell revealed.
func (f *Field) Won() bool {
	return f.width*f.height == f.bombs+f.revealed
}

// Reveal flood-fills from pos, appending one CellUpdate per newly revealed
// cell. An explicit work stack replaces recursion so a large zero-adjacency
// region cannot exhaust the goroutine stack; the Revealed state doubles as
// the visited set.
func (f *Field) Reveal(pos model.Pos, updates []model.CellUpdate) []model.CellUpdate {
	stack := []model.Pos{pos}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !f.InBounds(p) {
			continue
		}
		c := f.at(p)
		if c.state == revealed {
			continue
		}

		c.state = revealed
		if !c.bomb {
			f.revealed++
		}
		updates = append(updates, model.CellUpdate{Pos: p, Value: f.project(c)})

		if c.adjacent != 0 || c.bomb {
			continue
		}
		for _, d := range neighborOffsets {
			stack = append(stack, model.Pos{X: p.X + d[0], Y: p.Y + d[1]})
		}
	}

	return updates
}

// RevealBombs flips every bomb cell to revealed in row-major order,
// appending a CellUpdate for each. Safe cells are untouched. Used on loss.
func (f *Field) RevealBombs(updates []model.CellUpdate) []model.CellUpdate {
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			pos := model.Pos{X: x, Y: y}
			c := f.at(pos)
			if !c.bomb {
				continue
			}
			c.state = revealed
			updates = append(updates, model.CellUpdate{Pos: pos, Value: f.project(c)})
		}
	}
	return updates
}

// CycleFlag advances the annotation at pos one step through
// hidden -> flagged -> marked -> hidden. Revealed cells are left alone.
// The second return reports whether anything changed.
func (f *Field) CycleFlag(pos model.Pos) (model.CellUpdate, bool) {
	c := f.at(pos)
	switch c.state {
	case hidden:
		c.state = flagged
	case flagged:
		c.state = marked
	case marked:
		c.state = hidden
	case revealed:
		return model.CellUpdate{}, false
	}
	return model.CellUpdate{Pos: pos, Value: f.project(c)}, true
}

// project maps a cell to its wire form. A bomb only ever projects as "bomb"
// once it has been revealed, so the layout never leaks before a loss.
func (f *Field) project(c *cell) model.Cell {
	switch c.state {
	case marked:
		return model.MarkedCell()
	case flagged:
		return model.FlaggedCell()
	case revealed:
		if c.bomb {
			return model.BombCell()
		}
		return model.RevealedCell(c.adjacent)
	default:
		return model.HiddenCell()
	}
}

// Snapshot builds the full-board init event for the current state.
func (f *Field) Snapshot() model.InitMessage {
	rows := make([][]model.Cell, f.height)
	for y := 0; y < f.height; y++ {
		row := make([]model.Cell, f.width)
		for x := 0; x < f.width; x++ {
			row[x] = f.project(f.at(model.Pos{X: x, Y: y}))
		}
		rows[y] = row
	}

	return model.InitMessage{
		Type:   model.EventInit,
		Width:  f.width,
		Height: f.height,
		Bombs:  f.bombs,
		Field:  rows,
	}
}
