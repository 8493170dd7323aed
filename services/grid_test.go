package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ReZorDos/TerraWar-sub000/models"
)

func positionsOf(hexes []*models.Hex) []models.Position {
	out := make([]models.Position, 0, len(hexes))
	for _, h := range hexes {
		out = append(out, h.Pos())
	}
	return out
}

func TestNeighborsInteriorHasSix(t *testing.T) {
	w := newTestWorld(t, 6, 6)
	for y := 1; y < 5; y++ {
		for x := 1; x < 5; x++ {
			assert.Len(t, w.Grid.Neighbors(x, y), 6, "cell (%d,%d)", x, y)
		}
	}
}

func TestNeighborsUseRowParity(t *testing.T) {
	w := newTestWorld(t, 5, 5)

	odd := positionsOf(w.Grid.Neighbors(1, 1))
	assert.ElementsMatch(t, []models.Position{pos(2, 1), pos(2, 0), pos(1, 0), pos(0, 1), pos(1, 2), pos(2, 2)}, odd)

	even := positionsOf(w.Grid.Neighbors(2, 2))
	assert.ElementsMatch(t, []models.Position{pos(3, 2), pos(2, 1), pos(1, 1), pos(1, 2), pos(1, 3), pos(2, 3)}, even)
}

func TestNeighborsAreSymmetric(t *testing.T) {
	w := newTestWorld(t, 7, 7)
	for _, hex := range w.Grid.Cells() {
		for _, n := range w.Grid.Neighbors(hex.X, hex.Y) {
			back := positionsOf(w.Grid.Neighbors(n.X, n.Y))
			assert.Contains(t, back, hex.Pos(), "%v -> %v", hex.Pos(), n.Pos())
		}
	}
}

func TestNeighborsAtEdgesAndMasks(t *testing.T) {
	w := newTestWorld(t, 5, 5)
	assert.ElementsMatch(t, []models.Position{pos(1, 0), pos(0, 1)}, positionsOf(w.Grid.Neighbors(0, 0)))

	w.Grid.Remove(1, 0)
	assert.ElementsMatch(t, []models.Position{pos(0, 1)}, positionsOf(w.Grid.Neighbors(0, 0)))
	assert.Len(t, w.Grid.Neighbors(1, 1), 5)
}

func TestGetOutOfRangeAndMasked(t *testing.T) {
	w := newTestWorld(t, 3, 3)

	_, ok := w.Grid.Get(-1, 0)
	assert.False(t, ok)
	_, ok = w.Grid.Get(3, 0)
	assert.False(t, ok)

	w.Grid.Remove(1, 1)
	_, ok = w.Grid.Get(1, 1)
	assert.False(t, ok)

	hex, ok := w.Grid.Get(2, 2)
	require.True(t, ok)
	assert.Equal(t, pos(2, 2), hex.Pos())
	assert.Len(t, w.Grid.Cells(), 8)
}
