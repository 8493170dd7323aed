package services

import (
	"testing"

	"github.com/ReZorDos/TerraWar-sub000/models"
)

const (
	alice = 0
	bob   = 1
)

// newTestWorld builds a fully populated neutral grass map with two players.
func newTestWorld(t *testing.T, width, height int) *World {
	t.Helper()
	w := NewWorld(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			w.Grid.Set(&models.Hex{X: x, Y: y, Terrain: models.TerrainGrass, OwnerID: models.NoOwner})
		}
	}
	w.AddPlayer(&models.Player{ID: alice, Name: "alice", BaseIncome: 5})
	w.AddPlayer(&models.Player{ID: bob, Name: "bob", BaseIncome: 5})
	return w
}

func claim(t *testing.T, w *World, owner int, cells ...models.Position) {
	t.Helper()
	for _, c := range cells {
		hex, ok := w.Grid.Get(c.X, c.Y)
		if !ok {
			t.Fatalf("no cell at %v", c)
		}
		hex.OwnerID = owner
	}
}

func pos(x, y int) models.Position {
	return models.Position{X: x, Y: y}
}

func mustPlayer(t *testing.T, w *World, id int) *models.Player {
	t.Helper()
	p, err := w.Players.Get(id)
	if err != nil {
		t.Fatalf("player %d: %v", id, err)
	}
	return p
}
