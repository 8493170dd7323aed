package services

import (
	"github.com/ReZorDos/TerraWar-sub000/models"
)

// World is the complete live state of one match: map, entities, economies and turn order.
// It is not safe for concurrent use; owners serialise access.
type World struct {
	Grid    *HexGrid
	Players *PlayerLedger
	Units   *UnitLedger
	Towers  *TowerLedger
	Farms   *FarmLedger
	Match   *MatchState
	Turns   *TurnController

	placement Placement
}

// NewWorld creates an empty world with a width x height grid
func NewWorld(width, height int) *World {
	players := NewPlayerLedger()
	match := &MatchState{}
	units := NewUnitLedger(players)
	w := &World{
		Grid:      NewHexGrid(width, height),
		Players:   players,
		Units:     units,
		Towers:    NewTowerLedger(players),
		Farms:     NewFarmLedger(players),
		Match:     match,
		placement: NoPlacement{},
	}
	w.Turns = NewTurnController(match, players, units)
	return w
}

// AddPlayer registers a player with the economy and appends them to the turn order
func (w *World) AddPlayer(player *models.Player) {
	w.Players.Add(player)
	if w.Match.IndexOf(player.Name) < 0 {
		w.Match.AddPlayer(player.Name)
	}
}

// CurrentPlayer returns the player holding the turn
func (w *World) CurrentPlayer() (*models.Player, error) {
	name, ok := w.Match.CurrentPlayer()
	if !ok {
		return nil, ErrUnknownPlayer
	}
	return w.Players.ByName(name)
}

// Occupied reports whether anything stands on (x, y)
func (w *World) Occupied(x, y int) bool {
	if _, ok := w.Units.At(x, y); ok {
		return true
	}
	if _, ok := w.Towers.At(x, y); ok {
		return true
	}
	_, ok := w.Farms.At(x, y)
	return ok
}

// RemovePlayerEntities deletes every entity of a player and returns their hexes to neutral
func (w *World) RemovePlayerEntities(playerID int) {
	for _, unit := range w.Units.ByOwner(playerID) {
		w.Units.Remove(unit.ID)
	}
	for _, tower := range w.Towers.ByOwner(playerID) {
		w.Towers.Remove(tower.ID)
	}
	for _, farm := range w.Farms.ByOwner(playerID) {
		w.Farms.Remove(farm.ID)
	}
	for _, hex := range w.Grid.OwnedBy(playerID) {
		hex.OwnerID = models.NoOwner
		hex.Capital = false
	}
}

// RemovePlayer drops a player, their entities and their place in the turn order
func (w *World) RemovePlayer(name string) bool {
	player, err := w.Players.ByName(name)
	if err != nil {
		return false
	}
	w.RemovePlayerEntities(player.ID)
	w.Players.Remove(player.ID)
	w.Match.RemovePlayer(name)
	return true
}

// Reset clears every ledger and the map, keeping the grid size
func (w *World) Reset() {
	w.Units.Clear()
	w.Towers.Clear()
	w.Farms.Clear()
	w.Players.Clear()
	w.Grid.Reset(w.Grid.Width(), w.Grid.Height())
	*w.Match = MatchState{}
	w.Turns.reset()
	w.placement = NoPlacement{}
}
