package models

// NoOwner marks an unclaimed hex or an entity without a player
const NoOwner = -1

// Terrain is the ground type of a hex
type Terrain string

const (
	TerrainGrass    Terrain = "grass"
	TerrainForest   Terrain = "forest"
	TerrainMountain Terrain = "mountain"
	TerrainDesert   Terrain = "desert"
)

// Terrains lists every terrain type in a stable order
var Terrains = []Terrain{TerrainGrass, TerrainForest, TerrainMountain, TerrainDesert}

// Valid reports whether t is a known terrain
func (t Terrain) Valid() bool {
	for _, known := range Terrains {
		if t == known {
			return true
		}
	}
	return false
}

// Hex represents a single cell of the game map
type Hex struct {
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Terrain Terrain `json:"type"`
	OwnerID int     `json:"ownerId"`
	Capital bool    `json:"capital"`
}

// Position is a cell coordinate on the map
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pos returns the coordinate of the hex
func (h *Hex) Pos() Position {
	return Position{X: h.X, Y: h.Y}
}

// Claimed reports whether any player owns the hex
func (h *Hex) Claimed() bool {
	return h.OwnerID != NoOwner
}
