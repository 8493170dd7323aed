package services

// MatchState is the ordered roster plus whose turn it is
type MatchState struct {
	Players            []string
	CurrentPlayerIndex int
	Started            bool
}

// AddPlayer appends a player to the end of the turn order
func (m *MatchState) AddPlayer(name string) {
	m.Players = append(m.Players, name)
}

// IndexOf returns the roster slot of name or -1
func (m *MatchState) IndexOf(name string) int {
	for i, p := range m.Players {
		if p == name {
			return i
		}
	}
	return -1
}

// CurrentPlayer returns the name of the player holding the turn
func (m *MatchState) CurrentPlayer() (string, bool) {
	if len(m.Players) == 0 {
		return "", false
	}
	return m.Players[m.normalizedIndex()], true
}

// Advance moves the turn to the next player and reports whether rotation wrapped to slot 0
func (m *MatchState) Advance() bool {
	if len(m.Players) == 0 {
		m.CurrentPlayerIndex = 0
		return false
	}
	m.CurrentPlayerIndex = (m.normalizedIndex() + 1) % len(m.Players)
	return m.CurrentPlayerIndex == 0
}

// RemovePlayer drops name from the roster keeping the turn on the same logical player
func (m *MatchState) RemovePlayer(name string) bool {
	roster, current, removed := RemoveFromRoster(m.Players, m.CurrentPlayerIndex, name)
	m.Players = roster
	m.CurrentPlayerIndex = current
	return removed
}

// Start marks the match as running
func (m *MatchState) Start() {
	m.Started = true
}

func (m *MatchState) normalizedIndex() int {
	if len(m.Players) == 0 {
		return 0
	}
	idx := m.CurrentPlayerIndex % len(m.Players)
	if idx < 0 {
		idx += len(m.Players)
	}
	return idx
}

// RemoveFromRoster removes name from roster and fixes up the current turn index.
// A departing turn holder passes the turn to the next surviving slot; a departure
// below the current index shifts it down so it still points at the same player.
func RemoveFromRoster(roster []string, current int, name string) ([]string, int, bool) {
	idx := -1
	for i, p := range roster {
		if p == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return roster, current, false
	}

	out := make([]string, 0, len(roster)-1)
	out = append(out, roster[:idx]...)
	out = append(out, roster[idx+1:]...)

	if len(out) == 0 {
		return out, 0, true
	}
	if idx < current {
		current--
	}
	if current >= len(out) || current < 0 {
		current = 0
	}
	return out, current, true
}
