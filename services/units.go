package services

import (
	"sort"

	"github.com/ReZorDos/TerraWar-sub000/models"
)

// UnitLedger owns every unit of the match and keeps owner upkeep in sync
type UnitLedger struct {
	ids     IDAllocator
	units   map[int]*models.Unit
	players *PlayerLedger
}

// NewUnitLedger creates a unit ledger charging upkeep to the given players
func NewUnitLedger(players *PlayerLedger) *UnitLedger {
	return &UnitLedger{
		units:   make(map[int]*models.Unit),
		players: players,
	}
}

// Create adds a new unit and charges its upkeep to the owner.
// Affordability is the caller's concern.
func (l *UnitLedger) Create(ownerID, x, y, level int) *models.Unit {
	unit := models.NewUnit(l.ids.Next(), ownerID, x, y, level)
	l.units[unit.ID] = unit
	l.players.apply(ownerID, func(p *models.Player) { p.AddUnitUpkeep(unit.UpkeepCost) })
	return unit
}

// Restore inserts a unit as-is without touching the owner's economy
func (l *UnitLedger) Restore(unit *models.Unit) {
	l.ids.Observe(unit.ID)
	l.units[unit.ID] = unit
}

// Get looks a unit up by ID
func (l *UnitLedger) Get(id int) (*models.Unit, bool) {
	unit, ok := l.units[id]
	return unit, ok
}

// At returns the unit standing on (x, y)
func (l *UnitLedger) At(x, y int) (*models.Unit, bool) {
	for _, unit := range l.units {
		if unit.X == x && unit.Y == y {
			return unit, true
		}
	}
	return nil, false
}

// ByOwner lists a player's units ordered by ID
func (l *UnitLedger) ByOwner(ownerID int) []*models.Unit {
	var owned []*models.Unit
	for _, unit := range l.All() {
		if unit.OwnerID == ownerID {
			owned = append(owned, unit)
		}
	}
	return owned
}

// All lists every unit ordered by ID
func (l *UnitLedger) All() []*models.Unit {
	all := make([]*models.Unit, 0, len(l.units))
	for _, unit := range l.units {
		all = append(all, unit)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// Len returns the number of units
func (l *UnitLedger) Len() int {
	return len(l.units)
}

// Move relocates a unit
func (l *UnitLedger) Move(id, x, y int) bool {
	unit, ok := l.units[id]
	if !ok {
		return false
	}
	unit.X = x
	unit.Y = y
	return true
}

// Remove deletes a unit and refunds its upkeep to the owner
func (l *UnitLedger) Remove(id int) bool {
	unit, ok := l.units[id]
	if !ok {
		return false
	}
	l.players.apply(unit.OwnerID, func(p *models.Player) { p.AddUnitUpkeep(-unit.UpkeepCost) })
	delete(l.units, id)
	return true
}

// Clear drops every unit without touching economies and resets numbering
func (l *UnitLedger) Clear() {
	l.units = make(map[int]*models.Unit)
	l.ids.Reset()
}
