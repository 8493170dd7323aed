package services

import (
	"github.com/ReZorDos/TerraWar-sub000/models"
)

// Direction tables for offset coordinates where odd rows are shifted right.
var (
	evenRowDirections = [6]models.Position{
		{X: 1, Y: 0}, {X: 0, Y: -1}, {X: -1, Y: -1},
		{X: -1, Y: 0}, {X: -1, Y: 1}, {X: 0, Y: 1},
	}
	oddRowDirections = [6]models.Position{
		{X: 1, Y: 0}, {X: 1, Y: -1}, {X: 0, Y: -1},
		{X: -1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1},
	}
)

// HexGrid is a fixed width x height array of optional cells
type HexGrid struct {
	width  int
	height int
	cells  []*models.Hex
}

// NewHexGrid creates an empty grid; every cell starts absent
func NewHexGrid(width, height int) *HexGrid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &HexGrid{
		width:  width,
		height: height,
		cells:  make([]*models.Hex, width*height),
	}
}

// Width returns the number of columns
func (g *HexGrid) Width() int { return g.width }

// Height returns the number of rows
func (g *HexGrid) Height() int { return g.height }

// InBounds reports whether (x, y) lies inside the array
func (g *HexGrid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

func (g *HexGrid) index(x, y int) int {
	return y*g.width + x
}

// Get returns the cell at (x, y); out of range and masked cells report false
func (g *HexGrid) Get(x, y int) (*models.Hex, bool) {
	if !g.InBounds(x, y) {
		return nil, false
	}
	hex := g.cells[g.index(x, y)]
	return hex, hex != nil
}

// Set places a cell at its own coordinates, replacing whatever was there
func (g *HexGrid) Set(hex *models.Hex) bool {
	if hex == nil || !g.InBounds(hex.X, hex.Y) {
		return false
	}
	g.cells[g.index(hex.X, hex.Y)] = hex
	return true
}

// Remove masks the cell at (x, y) so it is no longer addressable
func (g *HexGrid) Remove(x, y int) {
	if g.InBounds(x, y) {
		g.cells[g.index(x, y)] = nil
	}
}

// Neighbors returns the existing cells adjacent to (x, y)
func (g *HexGrid) Neighbors(x, y int) []*models.Hex {
	directions := evenRowDirections
	if y%2 != 0 {
		directions = oddRowDirections
	}

	neighbors := make([]*models.Hex, 0, 6)
	for _, d := range directions {
		if hex, ok := g.Get(x+d.X, y+d.Y); ok {
			neighbors = append(neighbors, hex)
		}
	}
	return neighbors
}

// Cells returns every existing cell in row-major order
func (g *HexGrid) Cells() []*models.Hex {
	cells := make([]*models.Hex, 0, len(g.cells))
	for _, hex := range g.cells {
		if hex != nil {
			cells = append(cells, hex)
		}
	}
	return cells
}

// OwnedBy returns the cells owned by the given player in row-major order
func (g *HexGrid) OwnedBy(ownerID int) []*models.Hex {
	var owned []*models.Hex
	for _, hex := range g.cells {
		if hex != nil && hex.OwnerID == ownerID {
			owned = append(owned, hex)
		}
	}
	return owned
}

// Reset resizes the grid and masks every cell
func (g *HexGrid) Reset(width, height int) {
	*g = *NewHexGrid(width, height)
}
