package services

import (
	"sort"

	"github.com/ReZorDos/TerraWar-sub000/models"
)

// TowerLedger owns every tower of the match
type TowerLedger struct {
	ids     IDAllocator
	towers  map[int]*models.Tower
	players *PlayerLedger
}

func NewTowerLedger(players *PlayerLedger) *TowerLedger {
	return &TowerLedger{
		towers:  make(map[int]*models.Tower),
		players: players,
	}
}

// Create builds a tower and charges its upkeep to the owner
func (l *TowerLedger) Create(ownerID, x, y, level int) *models.Tower {
	tower := &models.Tower{ID: l.ids.Next(), OwnerID: ownerID, X: x, Y: y, Level: level}
	l.towers[tower.ID] = tower
	l.players.apply(ownerID, func(p *models.Player) { p.AddTowerUpkeep(models.TowerUpkeep(level)) })
	return tower
}

func (l *TowerLedger) Restore(tower *models.Tower) {
	l.ids.Observe(tower.ID)
	l.towers[tower.ID] = tower
}

func (l *TowerLedger) At(x, y int) (*models.Tower, bool) {
	for _, tower := range l.towers {
		if tower.X == x && tower.Y == y {
			return tower, true
		}
	}
	return nil, false
}

func (l *TowerLedger) ByOwner(ownerID int) []*models.Tower {
	var owned []*models.Tower
	for _, tower := range l.All() {
		if tower.OwnerID == ownerID {
			owned = append(owned, tower)
		}
	}
	return owned
}

func (l *TowerLedger) All() []*models.Tower {
	all := make([]*models.Tower, 0, len(l.towers))
	for _, tower := range l.towers {
		all = append(all, tower)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

func (l *TowerLedger) Len() int {
	return len(l.towers)
}

// Remove deletes a tower and refunds its upkeep
func (l *TowerLedger) Remove(id int) bool {
	tower, ok := l.towers[id]
	if !ok {
		return false
	}
	l.players.apply(tower.OwnerID, func(p *models.Player) { p.AddTowerUpkeep(-models.TowerUpkeep(tower.Level)) })
	delete(l.towers, id)
	return true
}

func (l *TowerLedger) Clear() {
	l.towers = make(map[int]*models.Tower)
	l.ids.Reset()
}
