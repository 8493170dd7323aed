package services

import (
	"errors"

	"github.com/ReZorDos/TerraWar-sub000/models"
)

var ErrUnknownPlayer = errors.New("player not found")

// PlayerLedger keeps the economy of every player in the match, in roster order
type PlayerLedger struct {
	order   []int
	players map[int]*models.Player
}

// NewPlayerLedger creates an empty player ledger
func NewPlayerLedger() *PlayerLedger {
	return &PlayerLedger{
		players: make(map[int]*models.Player),
	}
}

// Add registers a player, replacing any player with the same ID
func (pl *PlayerLedger) Add(player *models.Player) {
	if _, exists := pl.players[player.ID]; !exists {
		pl.order = append(pl.order, player.ID)
	}
	player.RecalculateIncome()
	pl.players[player.ID] = player
}

// Get retrieves a player by ID
func (pl *PlayerLedger) Get(playerID int) (*models.Player, error) {
	player, exists := pl.players[playerID]
	if !exists {
		return nil, ErrUnknownPlayer
	}
	return player, nil
}

// ByName retrieves a player by nickname
func (pl *PlayerLedger) ByName(name string) (*models.Player, error) {
	for _, id := range pl.order {
		if pl.players[id].Name == name {
			return pl.players[id], nil
		}
	}
	return nil, ErrUnknownPlayer
}

// Has reports whether the player is part of the ledger
func (pl *PlayerLedger) Has(playerID int) bool {
	_, exists := pl.players[playerID]
	return exists
}

// All returns the players in insertion order
func (pl *PlayerLedger) All() []*models.Player {
	all := make([]*models.Player, 0, len(pl.order))
	for _, id := range pl.order {
		all = append(all, pl.players[id])
	}
	return all
}

// Len returns the number of players
func (pl *PlayerLedger) Len() int {
	return len(pl.order)
}

// Remove deletes a player from the ledger
func (pl *PlayerLedger) Remove(playerID int) {
	if _, exists := pl.players[playerID]; !exists {
		return
	}
	delete(pl.players, playerID)
	for i, id := range pl.order {
		if id == playerID {
			pl.order = append(pl.order[:i], pl.order[i+1:]...)
			break
		}
	}
}

// Clear removes every player
func (pl *PlayerLedger) Clear() {
	pl.order = nil
	pl.players = make(map[int]*models.Player)
}

// apply runs fn against the player if it exists
func (pl *PlayerLedger) apply(playerID int, fn func(*models.Player)) {
	if player, exists := pl.players[playerID]; exists {
		fn(player)
	}
}
