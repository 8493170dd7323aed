package services

import (
	"errors"

	"github.com/ReZorDos/TerraWar-sub000/models"
)

var (
	ErrUnknownUnit      = errors.New("unit not found")
	ErrAlreadyActed     = errors.New("unit has already acted this turn")
	ErrNoCell           = errors.New("no cell at target")
	ErrFriendlyOccupied = errors.New("target is occupied by a friendly entity")
	ErrUnreachable      = errors.New("target is outside the action area")
	ErrCombatLost       = errors.New("defender is stronger than the attacker")
)

// ActionArea is the set of cells a unit may act on
type ActionArea map[models.Position]struct{}

// Contains reports whether (x, y) is in the area
func (a ActionArea) Contains(x, y int) bool {
	_, ok := a[models.Position{X: x, Y: y}]
	return ok
}

// ActionResult describes the side effects of a resolved action
type ActionResult struct {
	From             models.Position
	To               models.Position
	Captured         bool
	PreviousOwner    int
	DefeatedUnitID   int
	DestroyedTowerID int
	DestroyedFarmID  int
}

// CanDefeat reports whether an attacker of the given level beats the defender; ties go to the attacker
func CanDefeat(attackerLevel, defenderLevel int) bool {
	return attackerLevel >= defenderLevel
}

// blockedCells collects the zone of control of every enemy the mover cannot pass
func (w *World) blockedCells(mover *models.Unit) map[models.Position]struct{} {
	blocked := make(map[models.Position]struct{})

	for _, enemy := range w.Units.All() {
		if enemy.OwnerID == mover.OwnerID || enemy.Level <= mover.Level {
			continue
		}
		blocked[enemy.Pos()] = struct{}{}
		for _, hex := range w.Grid.Neighbors(enemy.X, enemy.Y) {
			blocked[hex.Pos()] = struct{}{}
		}
	}

	for _, tower := range w.Towers.All() {
		if tower.OwnerID == mover.OwnerID || !tower.Blocks(mover.Level) {
			continue
		}
		blocked[tower.Pos()] = struct{}{}
		for _, hex := range w.Grid.Neighbors(tower.X, tower.Y) {
			if hex.OwnerID == tower.OwnerID {
				blocked[hex.Pos()] = struct{}{}
			}
		}
	}

	return blocked
}

// friendlyOccupied reports whether the owner already has a unit, tower or farm on (x, y)
func (w *World) friendlyOccupied(ownerID, x, y int) bool {
	if unit, ok := w.Units.At(x, y); ok && unit.OwnerID == ownerID {
		return true
	}
	if tower, ok := w.Towers.At(x, y); ok && tower.OwnerID == ownerID {
		return true
	}
	if farm, ok := w.Farms.At(x, y); ok && farm.OwnerID == ownerID {
		return true
	}
	return false
}

// ComputeActionArea runs a breadth-first search from the unit's cell.
// Owned, unblocked cells are traversed up to the unit's radius; a foreign or
// neutral cell can only be entered straight from owned territory and ends the path.
func (w *World) ComputeActionArea(unit *models.Unit) ActionArea {
	area := make(ActionArea)
	if unit == nil || unit.HasActed {
		return area
	}
	if _, ok := w.Grid.Get(unit.X, unit.Y); !ok {
		return area
	}

	blocked := w.blockedCells(unit)

	type step struct {
		pos  models.Position
		dist int
	}
	start := unit.Pos()
	visited := map[models.Position]bool{start: true}
	queue := []step{{pos: start}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current.dist >= unit.ActionRadius {
			continue
		}

		for _, hex := range w.Grid.Neighbors(current.pos.X, current.pos.Y) {
			pos := hex.Pos()
			if visited[pos] {
				continue
			}
			visited[pos] = true

			if _, isBlocked := blocked[pos]; isBlocked {
				continue
			}

			if !w.friendlyOccupied(unit.OwnerID, pos.X, pos.Y) {
				area[pos] = struct{}{}
			}
			if hex.OwnerID == unit.OwnerID {
				queue = append(queue, step{pos: pos, dist: current.dist + 1})
			}
		}
	}

	return area
}

// ResolveAction moves a unit onto (x, y), fighting and capturing as needed.
// On error nothing has changed.
func (w *World) ResolveAction(unitID, x, y int) (ActionResult, error) {
	unit, ok := w.Units.Get(unitID)
	if !ok {
		return ActionResult{}, ErrUnknownUnit
	}
	if unit.HasActed {
		return ActionResult{}, ErrAlreadyActed
	}
	target, ok := w.Grid.Get(x, y)
	if !ok {
		return ActionResult{}, ErrNoCell
	}
	if w.friendlyOccupied(unit.OwnerID, x, y) {
		return ActionResult{}, ErrFriendlyOccupied
	}
	if !w.ComputeActionArea(unit).Contains(x, y) {
		return ActionResult{}, ErrUnreachable
	}

	result := ActionResult{From: unit.Pos(), To: target.Pos(), PreviousOwner: target.OwnerID}

	if defender, ok := w.Units.At(x, y); ok {
		if !CanDefeat(unit.Level, defender.Level) {
			return ActionResult{}, ErrCombatLost
		}
		w.Units.Remove(defender.ID)
		result.DefeatedUnitID = defender.ID
	}

	if target.OwnerID != unit.OwnerID {
		w.capture(unit.OwnerID, target, &result)
	}

	w.Units.Move(unit.ID, x, y)
	unit.HasActed = true
	return result, nil
}

func (w *World) capture(ownerID int, target *models.Hex, result *ActionResult) {
	previous, claimed := target.OwnerID, target.Claimed()
	target.OwnerID = ownerID
	target.Capital = false
	result.Captured = true

	w.Players.apply(ownerID, func(p *models.Player) { p.AdjustBaseIncome(1) })
	if claimed {
		w.Players.apply(previous, func(p *models.Player) {
			// income never drops below zero through a capture
			if p.Income > 0 {
				p.AdjustBaseIncome(-1)
			}
		})
	}

	if tower, ok := w.Towers.At(target.X, target.Y); ok {
		w.Towers.Remove(tower.ID)
		result.DestroyedTowerID = tower.ID
	}
	if farm, ok := w.Farms.At(target.X, target.Y); ok {
		w.Farms.Remove(farm.ID)
		result.DestroyedFarmID = farm.ID
	}
}
