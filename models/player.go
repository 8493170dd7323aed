package models

// Player represents a participant and their economy
type Player struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Money       int    `json:"money"`
	Income      int    `json:"income"`
	BaseIncome  int    `json:"baseIncome"`
	UnitUpkeep  int    `json:"unitUpkeep"`
	TowerUpkeep int    `json:"towerUpkeep"`
	FarmIncome  int    `json:"farmIncome"`
}

// PlayerColors are handed out by roster slot
var PlayerColors = []string{"#d94141", "#3f7fd9", "#43b54a", "#e0b43a"}

// ColorForSlot returns the display color for a roster slot
func ColorForSlot(slot int) string {
	if slot < 0 {
		slot = -slot
	}
	return PlayerColors[slot%len(PlayerColors)]
}

// RecalculateIncome derives Income from its components
func (p *Player) RecalculateIncome() {
	p.Income = p.BaseIncome - p.UnitUpkeep - p.TowerUpkeep + p.FarmIncome
}

// AddUnitUpkeep changes the unit upkeep by delta
func (p *Player) AddUnitUpkeep(delta int) {
	p.UnitUpkeep += delta
	if p.UnitUpkeep < 0 {
		p.UnitUpkeep = 0
	}
	p.RecalculateIncome()
}

// AddTowerUpkeep changes the tower upkeep by delta
func (p *Player) AddTowerUpkeep(delta int) {
	p.TowerUpkeep += delta
	if p.TowerUpkeep < 0 {
		p.TowerUpkeep = 0
	}
	p.RecalculateIncome()
}

// AddFarmIncome changes the farm income by delta
func (p *Player) AddFarmIncome(delta int) {
	p.FarmIncome += delta
	if p.FarmIncome < 0 {
		p.FarmIncome = 0
	}
	p.RecalculateIncome()
}

// AdjustBaseIncome changes the territory income by delta, never going below zero
func (p *Player) AdjustBaseIncome(delta int) {
	p.BaseIncome += delta
	if p.BaseIncome < 0 {
		p.BaseIncome = 0
	}
	p.RecalculateIncome()
}

// CreditIncome adds the current income to the player's money
func (p *Player) CreditIncome() {
	p.Money += p.Income
}
