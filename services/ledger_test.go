package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ReZorDos/TerraWar-sub000/models"
)

func TestUnitLedgerTracksUpkeep(t *testing.T) {
	w := newTestWorld(t, 4, 4)
	a := mustPlayer(t, w, alice)

	first := w.Units.Create(alice, 0, 0, 1)
	second := w.Units.Create(alice, 1, 0, 3)
	assert.Greater(t, second.ID, first.ID)
	assert.Equal(t, 13, a.UnitUpkeep)
	assert.Equal(t, 5-13, a.Income)
	assert.Equal(t, 3, second.ActionRadius)

	got, ok := w.Units.At(1, 0)
	require.True(t, ok)
	assert.Equal(t, second.ID, got.ID)

	require.True(t, w.Units.Remove(second.ID))
	assert.Equal(t, 1, a.UnitUpkeep)
	assert.Equal(t, 4, a.Income)
	assert.False(t, w.Units.Remove(second.ID))

	third := w.Units.Create(bob, 2, 2, 2)
	assert.Greater(t, third.ID, second.ID, "ids are never reused")
	assert.Len(t, w.Units.ByOwner(alice), 1)
	assert.Len(t, w.Units.ByOwner(bob), 1)
}

func TestTowerAndFarmLedgers(t *testing.T) {
	w := newTestWorld(t, 4, 4)
	a := mustPlayer(t, w, alice)

	tower := w.Towers.Create(alice, 0, 0, 2)
	farm := w.Farms.Create(alice, 1, 0)
	assert.Equal(t, models.TowerUpkeep(2), a.TowerUpkeep)
	assert.Equal(t, models.FarmIncome, a.FarmIncome)
	assert.Equal(t, 5-2+4, a.Income)

	w.Towers.Remove(tower.ID)
	w.Farms.Remove(farm.ID)
	assert.Equal(t, 5, a.Income)
	assert.Zero(t, w.Towers.Len())
	assert.Zero(t, w.Farms.Len())
}

func TestRestoreAdvancesAllocator(t *testing.T) {
	w := newTestWorld(t, 4, 4)
	w.Units.Restore(&models.Unit{ID: 41, OwnerID: alice, Level: 1})

	next := w.Units.Create(alice, 0, 0, 1)
	assert.Equal(t, 42, next.ID)
	assert.Equal(t, 1, mustPlayer(t, w, alice).UnitUpkeep, "restore does not charge upkeep")
}

func TestPricesAreMonotonic(t *testing.T) {
	for owned := 0; owned < 10; owned++ {
		assert.LessOrEqual(t, FarmPrice(owned), FarmPrice(owned+1))
		assert.LessOrEqual(t, TowerPrice(1, owned), TowerPrice(1, owned+1))
		assert.LessOrEqual(t, TowerPrice(2, owned), TowerPrice(2, owned+1))
	}
	assert.Equal(t, 12, FarmPrice(0))
	assert.Equal(t, 16, FarmPrice(2))
	assert.Equal(t, 17, TowerPrice(1, 1))
	assert.Equal(t, []int{10, 20, 30}, []int{UnitPrice(1), UnitPrice(2), UnitPrice(3)})
	assert.Zero(t, UnitPrice(4))
}

func TestPlayerLedgerOrder(t *testing.T) {
	pl := NewPlayerLedger()
	pl.Add(&models.Player{ID: 3, Name: "c"})
	pl.Add(&models.Player{ID: 1, Name: "a"})

	names := []string{}
	for _, p := range pl.All() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"c", "a"}, names)

	pl.Remove(3)
	_, err := pl.ByName("c")
	assert.ErrorIs(t, err, ErrUnknownPlayer)
	assert.Equal(t, 1, pl.Len())
}
