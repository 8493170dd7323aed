package services

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/ReZorDos/TerraWar-sub000/models"
)

const (
	MinPlayers = 2
	MaxPlayers = 4

	// MaxMapCells bounds width*height of any grid built from a snapshot
	MaxMapCells = 1 << 16

	minMapSide    = 6
	startingMoney = 10
	// one in maskChance cells away from the capitals is left out of the map
	maskChance = 12
)

var ErrPlayerCount = errors.New("a match needs between 2 and 4 players")

// NewMatchWorld generates the opening position for the given roster.
// The same seed always yields the same map.
func NewMatchWorld(names []string, width, height int, seed int64) (*World, error) {
	if len(names) < MinPlayers || len(names) > MaxPlayers {
		return nil, fmt.Errorf("%d players: %w", len(names), ErrPlayerCount)
	}
	if width < minMapSide || height < minMapSide {
		return nil, fmt.Errorf("map %dx%d is smaller than %dx%d", width, height, minMapSide, minMapSide)
	}

	rng := rand.New(rand.NewSource(seed))
	w := NewWorld(width, height)

	capitals := []models.Position{
		{X: 2, Y: 2},
		{X: width - 3, Y: height - 3},
		{X: width - 3, Y: 2},
		{X: 2, Y: height - 3},
	}[:len(names)]

	nearCapital := func(x, y int) bool {
		for _, c := range capitals {
			if abs(c.X-x) <= 2 && abs(c.Y-y) <= 2 {
				return true
			}
		}
		return false
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !nearCapital(x, y) && rng.Intn(maskChance) == 0 {
				continue
			}
			w.Grid.Set(&models.Hex{
				X:       x,
				Y:       y,
				Terrain: models.Terrains[rng.Intn(len(models.Terrains))],
				OwnerID: models.NoOwner,
			})
		}
	}

	for slot, name := range names {
		w.AddPlayer(&models.Player{
			ID:    slot,
			Name:  name,
			Color: models.ColorForSlot(slot),
			Money: startingMoney,
		})

		c := capitals[slot]
		capital, _ := w.Grid.Get(c.X, c.Y)
		capital.OwnerID = slot
		capital.Capital = true
		owned := 1

		neighbors := w.Grid.Neighbors(c.X, c.Y)
		for _, hex := range neighbors {
			hex.OwnerID = slot
			owned++
		}

		player, _ := w.Players.Get(slot)
		player.AdjustBaseIncome(owned)
		if len(neighbors) > 0 {
			w.Units.Create(slot, neighbors[0].X, neighbors[0].Y, models.MinUnitLevel)
		}
	}

	return w, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
