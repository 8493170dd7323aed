package services

// IDAllocator hands out strictly increasing identifiers for one ledger
type IDAllocator struct {
	last int
}

// Next returns a fresh identifier
func (a *IDAllocator) Next() int {
	a.last++
	return a.last
}

// Observe makes sure future identifiers are greater than id
func (a *IDAllocator) Observe(id int) {
	if id > a.last {
		a.last = id
	}
}

// Reset starts numbering from scratch
func (a *IDAllocator) Reset() {
	a.last = 0
}
