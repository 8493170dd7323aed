package services

import (
	"fmt"

	"github.com/ReZorDos/TerraWar-sub000/messages"
	"github.com/ReZorDos/TerraWar-sub000/models"
)

// ToSnapshot flattens the world into its wire representation.
// Cells are emitted row-major, entities by ID and players in roster order.
func ToSnapshot(w *World) messages.Snapshot {
	snap := messages.Snapshot{
		MapWidth:     w.Grid.Width(),
		MapHeight:    w.Grid.Height(),
		Hexes:        make([]messages.HexState, 0, w.Grid.Width()*w.Grid.Height()),
		Units:        make([]messages.UnitState, 0, w.Units.Len()),
		Towers:       make([]messages.TowerState, 0, w.Towers.Len()),
		Farms:        make([]messages.FarmState, 0, w.Farms.Len()),
		PlayersState: make([]messages.PlayerState, 0, w.Players.Len()),
	}

	for _, hex := range w.Grid.Cells() {
		unitLevel := 0
		if unit, ok := w.Units.At(hex.X, hex.Y); ok {
			unitLevel = unit.Level
		}
		snap.Hexes = append(snap.Hexes, messages.HexState{
			X:         hex.X,
			Y:         hex.Y,
			Type:      string(hex.Terrain),
			OwnerID:   hex.OwnerID,
			UnitLevel: unitLevel,
			Capital:   hex.Capital,
		})
	}

	for _, u := range w.Units.All() {
		snap.Units = append(snap.Units, messages.UnitState{
			ID:           u.ID,
			OwnerID:      u.OwnerID,
			HexX:         u.X,
			HexY:         u.Y,
			Level:        u.Level,
			ActionRadius: u.ActionRadius,
			HasActed:     u.HasActed,
			UpkeepCost:   u.UpkeepCost,
		})
	}
	for _, t := range w.Towers.All() {
		snap.Towers = append(snap.Towers, messages.TowerState{ID: t.ID, OwnerID: t.OwnerID, HexX: t.X, HexY: t.Y, Level: t.Level})
	}
	for _, f := range w.Farms.All() {
		snap.Farms = append(snap.Farms, messages.FarmState{ID: f.ID, OwnerID: f.OwnerID, HexX: f.X, HexY: f.Y, Income: f.Income})
	}

	for _, p := range w.Players.All() {
		snap.PlayersState = append(snap.PlayersState, messages.PlayerState{
			ID:          p.ID,
			Name:        p.Name,
			Color:       p.Color,
			Money:       p.Money,
			Income:      p.Income,
			BaseIncome:  p.BaseIncome,
			UnitUpkeep:  p.UnitUpkeep,
			TowerUpkeep: p.TowerUpkeep,
			FarmIncome:  p.FarmIncome,
		})
	}

	return snap
}

// ApplySnapshot replaces the whole world with the snapshot.
// Only players named in activeNames survive; anything owned by someone else is
// dropped and their cells become unclaimed. The roster follows activeNames.
func ApplySnapshot(snap messages.Snapshot, w *World, activeNames []string) error {
	if snap.MapWidth < 0 || snap.MapHeight < 0 {
		return fmt.Errorf("invalid map size %dx%d", snap.MapWidth, snap.MapHeight)
	}
	if snap.MapWidth > 0 && snap.MapHeight > MaxMapCells/snap.MapWidth {
		return fmt.Errorf("map %dx%d exceeds %d cells", snap.MapWidth, snap.MapHeight, MaxMapCells)
	}

	active := make(map[string]bool, len(activeNames))
	for _, name := range activeNames {
		active[name] = true
	}
	activeIDs := make(map[int]bool)
	byName := make(map[string]messages.PlayerState)
	for _, p := range snap.PlayersState {
		if active[p.Name] {
			activeIDs[p.ID] = true
			byName[p.Name] = p
		}
	}

	w.Units.Clear()
	w.Towers.Clear()
	w.Farms.Clear()
	w.Players.Clear()
	w.Grid.Reset(snap.MapWidth, snap.MapHeight)
	w.placement = NoPlacement{}

	for _, name := range activeNames {
		p, ok := byName[name]
		if !ok {
			continue
		}
		w.Players.Add(&models.Player{
			ID:          p.ID,
			Name:        p.Name,
			Color:       p.Color,
			Money:       p.Money,
			BaseIncome:  p.BaseIncome,
			UnitUpkeep:  p.UnitUpkeep,
			TowerUpkeep: p.TowerUpkeep,
			FarmIncome:  p.FarmIncome,
		})
	}

	for _, h := range snap.Hexes {
		hex := &models.Hex{X: h.X, Y: h.Y, Terrain: models.Terrain(h.Type), OwnerID: h.OwnerID, Capital: h.Capital}
		if !hex.Terrain.Valid() {
			hex.Terrain = models.TerrainGrass
		}
		if hex.OwnerID != models.NoOwner && !activeIDs[hex.OwnerID] {
			hex.OwnerID = models.NoOwner
			hex.Capital = false
		}
		w.Grid.Set(hex)
	}

	for _, u := range snap.Units {
		if !activeIDs[u.OwnerID] {
			continue
		}
		w.Units.Restore(&models.Unit{
			ID:           u.ID,
			OwnerID:      u.OwnerID,
			X:            u.HexX,
			Y:            u.HexY,
			Level:        u.Level,
			ActionRadius: u.ActionRadius,
			HasActed:     u.HasActed,
			UpkeepCost:   u.UpkeepCost,
		})
	}
	for _, t := range snap.Towers {
		if activeIDs[t.OwnerID] {
			w.Towers.Restore(&models.Tower{ID: t.ID, OwnerID: t.OwnerID, X: t.HexX, Y: t.HexY, Level: t.Level})
		}
	}
	for _, f := range snap.Farms {
		if activeIDs[f.OwnerID] {
			w.Farms.Restore(&models.Farm{ID: f.ID, OwnerID: f.OwnerID, X: f.HexX, Y: f.HexY, Income: f.Income})
		}
	}

	w.Match.Players = append([]string(nil), activeNames...)
	if w.Match.CurrentPlayerIndex >= len(w.Match.Players) || w.Match.CurrentPlayerIndex < 0 {
		w.Match.CurrentPlayerIndex = 0
	}
	w.Match.Start()
	return nil
}
