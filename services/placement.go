package services

import (
	"errors"
	"fmt"

	"github.com/ReZorDos/TerraWar-sub000/models"
)

var (
	ErrInsufficientFunds = errors.New("not enough money")
	ErrInvalidPlacement  = errors.New("cannot place there")
	ErrNoPlacement       = errors.New("nothing to place")
	ErrInvalidLevel      = errors.New("invalid level")
)

// Placement is what the current player is about to put on the map.
// The variants are NoPlacement, PlacingUnit, PlacingFarm and PlacingTower.
type Placement interface {
	placement()
}

type NoPlacement struct{}

type PlacingUnit struct {
	Level int
	Price int
}

type PlacingFarm struct {
	Price int
}

type PlacingTower struct {
	Level int
	Price int
}

func (NoPlacement) placement()  {}
func (PlacingUnit) placement()  {}
func (PlacingFarm) placement()  {}
func (PlacingTower) placement() {}

// PlacementPrice returns what placing p will cost
func PlacementPrice(p Placement) int {
	switch v := p.(type) {
	case PlacingUnit:
		return v.Price
	case PlacingFarm:
		return v.Price
	case PlacingTower:
		return v.Price
	case NoPlacement:
		return 0
	default:
		panic(fmt.Sprintf("unhandled placement %T", p))
	}
}

// Placement returns the armed placement
func (w *World) Placement() Placement {
	return w.placement
}

// CancelPlacement disarms any pending placement
func (w *World) CancelPlacement() {
	w.placement = NoPlacement{}
}

// BuyUnit arms a unit placement for the current player
func (w *World) BuyUnit(level int) (PlacingUnit, error) {
	if !models.ValidUnitLevel(level) {
		return PlacingUnit{}, fmt.Errorf("unit level %d: %w", level, ErrInvalidLevel)
	}
	p := PlacingUnit{Level: level, Price: UnitPrice(level)}
	if err := w.arm(p); err != nil {
		return PlacingUnit{}, err
	}
	return p, nil
}

// BuyFarm arms a farm placement priced by the farms the player already holds
func (w *World) BuyFarm() (PlacingFarm, error) {
	player, err := w.CurrentPlayer()
	if err != nil {
		return PlacingFarm{}, err
	}
	p := PlacingFarm{Price: FarmPrice(len(w.Farms.ByOwner(player.ID)))}
	if err := w.arm(p); err != nil {
		return PlacingFarm{}, err
	}
	return p, nil
}

// BuyTower arms a tower placement priced by the towers the player already holds
func (w *World) BuyTower(level int) (PlacingTower, error) {
	if !models.ValidTowerLevel(level) {
		return PlacingTower{}, fmt.Errorf("tower level %d: %w", level, ErrInvalidLevel)
	}
	player, err := w.CurrentPlayer()
	if err != nil {
		return PlacingTower{}, err
	}
	p := PlacingTower{Level: level, Price: TowerPrice(level, len(w.Towers.ByOwner(player.ID)))}
	if err := w.arm(p); err != nil {
		return PlacingTower{}, err
	}
	return p, nil
}

func (w *World) arm(p Placement) error {
	player, err := w.CurrentPlayer()
	if err != nil {
		return err
	}
	if player.Money < PlacementPrice(p) {
		return ErrInsufficientFunds
	}
	w.placement = p
	return nil
}

// PlaceAt spends the money for the armed placement and creates the entity on (x, y).
// The cell must belong to the current player and be empty.
func (w *World) PlaceAt(x, y int) error {
	if _, none := w.placement.(NoPlacement); none {
		return ErrNoPlacement
	}
	player, err := w.CurrentPlayer()
	if err != nil {
		return err
	}
	hex, ok := w.Grid.Get(x, y)
	if !ok || hex.OwnerID != player.ID || w.Occupied(x, y) {
		return ErrInvalidPlacement
	}
	price := PlacementPrice(w.placement)
	if player.Money < price {
		return ErrInsufficientFunds
	}

	player.Money -= price
	switch p := w.placement.(type) {
	case PlacingUnit:
		w.Units.Create(player.ID, x, y, p.Level)
	case PlacingFarm:
		w.Farms.Create(player.ID, x, y)
	case PlacingTower:
		w.Towers.Create(player.ID, x, y, p.Level)
	default:
		panic(fmt.Sprintf("unhandled placement %T", p))
	}
	w.placement = NoPlacement{}
	return nil
}
