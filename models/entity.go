package models

const (
	MinUnitLevel  = 1
	MaxUnitLevel  = 3
	MinTowerLevel = 1
	MaxTowerLevel = 2

	// FarmIncome is what every farm adds to its owner's income each turn
	FarmIncome = 4
)

var (
	unitUpkeep  = map[int]int{1: 1, 2: 4, 3: 12}
	towerUpkeep = map[int]int{1: 1, 2: 2}
)

// Unit represents a soldier standing on a hex
type Unit struct {
	ID           int  `json:"id"`
	OwnerID      int  `json:"ownerId"`
	X            int  `json:"hexX"`
	Y            int  `json:"hexY"`
	Level        int  `json:"level"`
	ActionRadius int  `json:"actionRadius"`
	HasActed     bool `json:"hasActed"`
	UpkeepCost   int  `json:"upkeepCost"`
}

// NewUnit builds a unit whose radius and upkeep follow its level
func NewUnit(id, ownerID, x, y, level int) *Unit {
	return &Unit{
		ID:           id,
		OwnerID:      ownerID,
		X:            x,
		Y:            y,
		Level:        level,
		ActionRadius: UnitActionRadius(level),
		UpkeepCost:   UnitUpkeep(level),
	}
}

// Pos returns the cell the unit stands on
func (u *Unit) Pos() Position {
	return Position{X: u.X, Y: u.Y}
}

// ValidUnitLevel reports whether level is a purchasable unit level
func ValidUnitLevel(level int) bool {
	return level >= MinUnitLevel && level <= MaxUnitLevel
}

// UnitActionRadius is the number of hexes a unit of the given level may travel
func UnitActionRadius(level int) int {
	if !ValidUnitLevel(level) {
		return 0
	}
	return level
}

// UnitUpkeep is the per-turn cost of keeping a unit of the given level
func UnitUpkeep(level int) int {
	return unitUpkeep[level]
}

// Tower represents a defensive building projecting a zone of control
type Tower struct {
	ID      int `json:"id"`
	OwnerID int `json:"ownerId"`
	X       int `json:"hexX"`
	Y       int `json:"hexY"`
	Level   int `json:"level"`
}

// Pos returns the cell the tower stands on
func (t *Tower) Pos() Position {
	return Position{X: t.X, Y: t.Y}
}

// ValidTowerLevel reports whether level is a buildable tower level
func ValidTowerLevel(level int) bool {
	return level >= MinTowerLevel && level <= MaxTowerLevel
}

// TowerUpkeep is the per-turn cost of keeping a tower of the given level
func TowerUpkeep(level int) int {
	return towerUpkeep[level]
}

// Blocks reports whether the tower stops a unit of the given level.
// A level 1 tower stops units below level 2, a level 2 tower units below level 3.
func (t *Tower) Blocks(unitLevel int) bool {
	return unitLevel < t.Level+1
}

// Farm represents an income building
type Farm struct {
	ID      int `json:"id"`
	OwnerID int `json:"ownerId"`
	X       int `json:"hexX"`
	Y       int `json:"hexY"`
	Income  int `json:"income"`
}

// Pos returns the cell the farm stands on
func (f *Farm) Pos() Position {
	return Position{X: f.X, Y: f.Y}
}
