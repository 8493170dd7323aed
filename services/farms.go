package services

import (
	"sort"

	"github.com/ReZorDos/TerraWar-sub000/models"
)

// FarmLedger owns every farm of the match
type FarmLedger struct {
	ids     IDAllocator
	farms   map[int]*models.Farm
	players *PlayerLedger
}

func NewFarmLedger(players *PlayerLedger) *FarmLedger {
	return &FarmLedger{
		farms:   make(map[int]*models.Farm),
		players: players,
	}
}

// Create builds a farm and adds its income to the owner
func (l *FarmLedger) Create(ownerID, x, y int) *models.Farm {
	farm := &models.Farm{ID: l.ids.Next(), OwnerID: ownerID, X: x, Y: y, Income: models.FarmIncome}
	l.farms[farm.ID] = farm
	l.players.apply(ownerID, func(p *models.Player) { p.AddFarmIncome(farm.Income) })
	return farm
}

func (l *FarmLedger) Restore(farm *models.Farm) {
	l.ids.Observe(farm.ID)
	l.farms[farm.ID] = farm
}

func (l *FarmLedger) At(x, y int) (*models.Farm, bool) {
	for _, farm := range l.farms {
		if farm.X == x && farm.Y == y {
			return farm, true
		}
	}
	return nil, false
}

func (l *FarmLedger) ByOwner(ownerID int) []*models.Farm {
	var owned []*models.Farm
	for _, farm := range l.All() {
		if farm.OwnerID == ownerID {
			owned = append(owned, farm)
		}
	}
	return owned
}

func (l *FarmLedger) All() []*models.Farm {
	all := make([]*models.Farm, 0, len(l.farms))
	for _, farm := range l.farms {
		all = append(all, farm)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

func (l *FarmLedger) Len() int {
	return len(l.farms)
}

// Remove deletes a farm and takes its income away from the owner
func (l *FarmLedger) Remove(id int) bool {
	farm, ok := l.farms[id]
	if !ok {
		return false
	}
	l.players.apply(farm.OwnerID, func(p *models.Player) { p.AddFarmIncome(-farm.Income) })
	delete(l.farms, id)
	return true
}

func (l *FarmLedger) Clear() {
	l.farms = make(map[int]*models.Farm)
	l.ids.Reset()
}
