package messages

// Snapshot is the flattened, wire-transmissible state of a whole match
type Snapshot struct {
	MapWidth     int           `json:"mapWidth"`
	MapHeight    int           `json:"mapHeight"`
	Hexes        []HexState    `json:"hexes"`
	Units        []UnitState   `json:"units"`
	Towers       []TowerState  `json:"towers"`
	Farms        []FarmState   `json:"farms"`
	PlayersState []PlayerState `json:"playersState"`
}

type HexState struct {
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Type      string `json:"type"`
	OwnerID   int    `json:"ownerId"`
	UnitLevel int    `json:"unitLevel"`
	Capital   bool   `json:"capital"`
}

type UnitState struct {
	ID           int  `json:"id"`
	OwnerID      int  `json:"ownerId"`
	HexX         int  `json:"hexX"`
	HexY         int  `json:"hexY"`
	Level        int  `json:"level"`
	ActionRadius int  `json:"actionRadius"`
	HasActed     bool `json:"hasActed"`
	UpkeepCost   int  `json:"upkeepCost"`
}

type TowerState struct {
	ID      int `json:"id"`
	OwnerID int `json:"ownerId"`
	HexX    int `json:"hexX"`
	HexY    int `json:"hexY"`
	Level   int `json:"level"`
}

type FarmState struct {
	ID      int `json:"id"`
	OwnerID int `json:"ownerId"`
	HexX    int `json:"hexX"`
	HexY    int `json:"hexY"`
	Income  int `json:"income"`
}

type PlayerState struct {
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

// PlayerIDByName returns the ID of the named player in the snapshot
func (s *Snapshot) PlayerIDByName(name string) (int, bool) {
	for _, p := range s.PlayersState {
		if p.Name == name {
			return p.ID, true
		}
	}
	return 0, false
}

// PurgeOwner removes every trace of a player: their entities and economy are dropped
// and their hexes become unclaimed.
func (s *Snapshot) PurgeOwner(ownerID int) {
	for i := range s.Hexes {
		if s.Hexes[i].OwnerID == ownerID {
			s.Hexes[i].OwnerID = -1
			s.Hexes[i].Capital = false
		}
	}

	units := s.Units[:0]
	removedCells := make(map[[2]int]bool)
	for _, u := range s.Units {
		if u.OwnerID == ownerID {
			removedCells[[2]int{u.HexX, u.HexY}] = true
			continue
		}
		units = append(units, u)
	}
	s.Units = units
	for i := range s.Hexes {
		if removedCells[[2]int{s.Hexes[i].X, s.Hexes[i].Y}] {
			s.Hexes[i].UnitLevel = 0
		}
	}

	towers := s.Towers[:0]
	for _, t := range s.Towers {
		if t.OwnerID != ownerID {
			towers = append(towers, t)
		}
	}
	s.Towers = towers

	farms := s.Farms[:0]
	for _, f := range s.Farms {
		if f.OwnerID != ownerID {
			farms = append(farms, f)
		}
	}
	s.Farms = farms

	players := s.PlayersState[:0]
	for _, p := range s.PlayersState {
		if p.ID != ownerID {
			players = append(players, p)
		}
	}
	s.PlayersState = players
}

// Clone returns a deep copy
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Hexes = cloneSlice(s.Hexes)
	c.Units = cloneSlice(s.Units)
	c.Towers = cloneSlice(s.Towers)
	c.Farms = cloneSlice(s.Farms)
	c.PlayersState = cloneSlice(s.PlayersState)
	return &c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
