package services

import (
	"github.com/ReZorDos/TerraWar-sub000/models"
)

// TurnPhase is the state of the turn state machine
type TurnPhase int

const (
	PhaseIdle TurnPhase = iota
	PhasePlayerTurnActive
)

func (p TurnPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePlayerTurnActive:
		return "player_turn_active"
	default:
		return "unknown"
	}
}

// TurnController drives Idle -> PlayerTurnActive -> Idle(next player)
type TurnController struct {
	match   *MatchState
	players *PlayerLedger
	units   *UnitLedger
	phase   TurnPhase
	turn    int
}

func NewTurnController(match *MatchState, players *PlayerLedger, units *UnitLedger) *TurnController {
	return &TurnController{match: match, players: players, units: units, turn: 1}
}

// StartPlayerTurn readies the current player's units and pays out their income
func (tc *TurnController) StartPlayerTurn() error {
	name, ok := tc.match.CurrentPlayer()
	if !ok {
		return ErrUnknownPlayer
	}
	player, err := tc.players.ByName(name)
	if err != nil {
		return err
	}
	for _, unit := range tc.units.ByOwner(player.ID) {
		unit.HasActed = false
	}
	player.CreditIncome()
	tc.phase = PhasePlayerTurnActive
	return nil
}

// EndPlayerTurn passes the turn to the next player; it does nothing outside an active turn
func (tc *TurnController) EndPlayerTurn() {
	if tc.phase != PhasePlayerTurnActive {
		return
	}
	if tc.match.Advance() {
		tc.turn++
	}
	tc.phase = PhaseIdle
}

// CanCurrentPlayerMove reports whether the current player owns any unit
func (tc *TurnController) CanCurrentPlayerMove() bool {
	player, err := tc.currentPlayer()
	if err != nil {
		return false
	}
	return len(tc.units.ByOwner(player.ID)) > 0
}

// Active reports whether a player's turn is in progress
func (tc *TurnController) Active() bool {
	return tc.phase == PhasePlayerTurnActive
}

// Phase returns the current state
func (tc *TurnController) Phase() TurnPhase {
	return tc.phase
}

// Turn is the global round counter, starting at 1
func (tc *TurnController) Turn() int {
	return tc.turn
}

func (tc *TurnController) currentPlayer() (*models.Player, error) {
	name, ok := tc.match.CurrentPlayer()
	if !ok {
		return nil, ErrUnknownPlayer
	}
	return tc.players.ByName(name)
}

func (tc *TurnController) reset() {
	tc.phase = PhaseIdle
	tc.turn = 1
}
