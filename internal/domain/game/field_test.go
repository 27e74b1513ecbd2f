package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeplab/minesweeper-live/internal/domain/model"
)

func countBombs(f *Field) int {
	n := 0
	for i := range f.cells {
		if f.cells[i].bomb {
			n++
		}
	}
	return n
}

func TestNewPlacesExactBombCount(t *testing.T) {
	for _, bombs := range []int{0, 1, 10, 40, 81} {
		f := New(model.GameParams{Width: 9, Height: 9, Bombs: bombs})
		assert.Equal(t, bombs, countBombs(f), "bombs=%d", bombs)
		assert.Equal(t, bombs, f.Bombs())
	}
}

func TestNewClampsBombsToBoardSize(t *testing.T) {
	f := New(model.GameParams{Width: 2, Height: 2, Bombs: 100})
	assert.Equal(t, 4, f.Bombs())
	assert.Equal(t, 4, countBombs(f))
}

func TestNewClampsExtents(t *testing.T) {
	f := New(model.GameParams{Width: 0, Height: -3, Bombs: 0})
	assert.Equal(t, 1, f.Width())
	assert.Equal(t, 1, f.Height())
}

func TestAdjacencyCountsMatchNeighborhood(t *testing.T) {
	f := New(model.GameParams{Width: 7, Height: 5, Bombs: 12})

	for y := 0; y < f.Height(); y++ {
		for x := 0; x < f.Width(); x++ {
			want := uint8(0)
			for _, d := range neighborOffsets {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || nx >= f.Width() || ny < 0 || ny >= f.Height() {
					continue
				}
				if f.cells[nx+ny*f.Width()].bomb {
					want++
				}
			}
			assert.Equal(t, want, f.cells[x+y*f.Width()].adjacent, "cell (%d,%d)", x, y)
		}
	}
}

func TestRevealFloodFillsEmptyBoard(t *testing.T) {
	f := New(model.GameParams{Width: 3, Height: 3, Bombs: 0})

	updates := f.Reveal(model.Pos{X: 1, Y: 1}, nil)

	require.Len(t, updates, 9)
	assert.Equal(t, 9, f.Revealed())
	assert.True(t, f.Won())
	for _, u := range updates {
		require.Equal(t, model.StateRevealed, u.Value.State)
		require.NotNil(t, u.Value.Adjacent)
		assert.Equal(t, uint8(0), *u.Value.Adjacent)
	}
}

func TestRevealIsIdempotent(t *testing.T) {
	f := New(model.GameParams{Width: 3, Height: 3, Bombs: 0})

	first := f.Reveal(model.Pos{X: 0, Y: 0}, nil)
	require.NotEmpty(t, first)

	again := f.Reveal(model.Pos{X: 0, Y: 0}, nil)
	assert.Empty(t, again)
	assert.Equal(t, 9, f.Revealed())
}

func TestRevealOutOfBoundsDoesNothing(t *testing.T) {
	f := New(model.GameParams{Width: 3, Height: 3, Bombs: 0})

	for _, pos := range []model.Pos{{X: -1, Y: 0}, {X: 3, Y: 0}, {X: 0, Y: -1}, {X: 0, Y: 3}} {
		assert.Empty(t, f.Reveal(pos, nil))
	}
	assert.Equal(t, 0, f.Revealed())
}

func TestRevealStopsAtNumberedCells(t *testing.T) {
	// 3x3 with one bomb in the corner: flood fill from the far corner must
	// reveal every safe cell but never the bomb.
	f := &Field{width: 3, height: 3, bombs: 1, cells: make([]cell, 9)}
	f.cells[0].bomb = true
	for i := range f.cells {
		f.cells[i].adjacent = f.countAdjacent(i)
	}

	updates := f.Reveal(model.Pos{X: 2, Y: 2}, nil)

	assert.Len(t, updates, 8)
	assert.Equal(t, 8, f.Revealed())
	assert.True(t, f.Won())
	assert.Equal(t, cellState(hidden), f.cells[0].state)
}

func TestRevealOverwritesAnnotations(t *testing.T) {
	f := New(model.GameParams{Width: 3, Height: 3, Bombs: 0})

	_, changed := f.CycleFlag(model.Pos{X: 0, Y: 0})
	require.True(t, changed)

	updates := f.Reveal(model.Pos{X: 2, Y: 2}, nil)
	assert.Len(t, updates, 9)
	assert.Equal(t, cellState(revealed), f.cells[0].state)
}

func TestRevealCornerEnumeratesInBoundsNeighborsOnly(t *testing.T) {
	// All-safe 2x2 board: revealing a corner with adjacency zero reaches
	// exactly the three in-bounds neighbors.
	f := New(model.GameParams{Width: 2, Height: 2, Bombs: 0})

	updates := f.Reveal(model.Pos{X: 0, Y: 0}, nil)
	assert.Len(t, updates, 4)
	assert.True(t, f.Won())
}

func TestRevealBombsFlipsBombsOnly(t *testing.T) {
	f := New(model.GameParams{Width: 4, Height: 4, Bombs: 5})

	updates := f.RevealBombs(nil)

	require.Len(t, updates, 5)
	for _, u := range updates {
		assert.Equal(t, model.StateBomb, u.Value.State)
	}
	assert.Equal(t, 0, f.Revealed())

	revealedCells := 0
	for i := range f.cells {
		if f.cells[i].state == revealed {
			require.True(t, f.cells[i].bomb)
			revealedCells++
		}
	}
	assert.Equal(t, 5, revealedCells)
}

func TestCycleFlagRoundTrip(t *testing.T) {
	f := New(model.GameParams{Width: 3, Height: 3, Bombs: 0})
	pos := model.Pos{X: 1, Y: 1}

	u1, changed := f.CycleFlag(pos)
	require.True(t, changed)
	assert.Equal(t, model.StateFlagged, u1.Value.State)

	u2, changed := f.CycleFlag(pos)
	require.True(t, changed)
	assert.Equal(t, model.StateMarked, u2.Value.State)

	u3, changed := f.CycleFlag(pos)
	require.True(t, changed)
	assert.Equal(t, model.StateHidden, u3.Value.State)
}

func TestCycleFlagIgnoresRevealedCells(t *testing.T) {
	f := New(model.GameParams{Width: 3, Height: 3, Bombs: 0})
	pos := model.Pos{X: 1, Y: 1}
	f.Reveal(pos, nil)

	_, changed := f.CycleFlag(pos)
	assert.False(t, changed)
}

func TestAnnotationsDoNotAffectWin(t *testing.T) {
	f := New(model.GameParams{Width: 2, Height: 2, Bombs: 0})
	f.CycleFlag(model.Pos{X: 0, Y: 0})

	updates := f.Reveal(model.Pos{X: 1, Y: 1}, nil)
	assert.Len(t, updates, 4)
	assert.True(t, f.Won())
}

func TestBombNeverProjectedBeforeLoss(t *testing.T) {
	f := New(model.GameParams{Width: 5, Height: 5, Bombs: 24})

	snapshot := f.Snapshot()
	for _, row := range snapshot.Field {
		for _, c := range row {
			assert.NotEqual(t, model.StateBomb, c.State)
		}
	}

	// Flag a bomb cell: still projects as the annotation, not the bomb.
	for i := range f.cells {
		if f.cells[i].bomb {
			pos := model.Pos{X: i % f.width, Y: i / f.width}
			u, _ := f.CycleFlag(pos)
			assert.Equal(t, model.StateFlagged, u.Value.State)
			break
		}
	}
}

func TestSnapshotShape(t *testing.T) {
	f := New(model.GameParams{Width: 4, Height: 3, Bombs: 2})

	snapshot := f.Snapshot()
	assert.Equal(t, model.EventInit, snapshot.Type)
	assert.Equal(t, 4, snapshot.Width)
	assert.Equal(t, 3, snapshot.Height)
	assert.Equal(t, 2, snapshot.Bombs)
	require.Len(t, snapshot.Field, 3)
	for _, row := range snapshot.Field {
		require.Len(t, row, 4)
		for _, c := range row {
			assert.Equal(t, model.StateHidden, c.State)
		}
	}
}

func TestWonAccountsRevealedAgainstBombs(t *testing.T) {
	f := New(model.GameParams{Width: 9, Height: 9, Bombs: 10})
	assert.False(t, f.Won())
	assert.LessOrEqual(t, f.Revealed(), f.Width()*f.Height()-f.Bombs())
}
