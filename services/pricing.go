package services

var (
	unitPrices      = map[int]int{1: 10, 2: 20, 3: 30}
	towerBasePrices = map[int]int{1: 15, 2: 35}
)

const (
	farmBasePrice  = 12
	farmPriceStep  = 2
	towerPriceStep = 2
)

// UnitPrice is the flat cost of a unit of the given level, 0 for unknown levels
func UnitPrice(level int) int {
	return unitPrices[level]
}

// TowerPrice is the cost of a tower when the buyer already holds owned towers of any level
func TowerPrice(level, owned int) int {
	base, ok := towerBasePrices[level]
	if !ok {
		return 0
	}
	if owned < 0 {
		owned = 0
	}
	return base + towerPriceStep*owned
}

// FarmPrice is the cost of the next farm when the buyer already holds owned farms
func FarmPrice(owned int) int {
	if owned < 0 {
		owned = 0
	}
	return farmBasePrice + farmPriceStep*owned
}
