package cache

// A VictimFinder decides which way of a set receives a new tag.
type VictimFinder interface {
	FindVictim(set []Line) (wayID int)
}

// LRUVictimFinder evicts the way with the largest recency. Empty ways are
// not preferred: they carry recency 0 and only win when every way ties.
type LRUVictimFinder struct {
}

// NewLRUVictimFinder creates the default victim finder of LRU caches.
func NewLRUVictimFinder() *LRUVictimFinder {
	return &LRUVictimFinder{}
}

// FindVictim returns the way with the strictly largest recency, the lowest
// way winning ties.
func (e *LRUVictimFinder) FindVictim(set []Line) int {
	victim := 0
	for wayID := 1; wayID < len(set); wayID++ {
		if set[wayID].Recency > set[victim].Recency {
			victim = wayID
		}
	}

	return victim
}

// EmptyFirstVictimFinder fills empty ways before evicting. Once the set is
// full it falls back to the LRU rule.
type EmptyFirstVictimFinder struct {
	LRUVictimFinder
}

// NewEmptyFirstVictimFinder creates a victim finder that fills empty ways
// first.
func NewEmptyFirstVictimFinder() *EmptyFirstVictimFinder {
	return &EmptyFirstVictimFinder{}
}

// FindVictim returns the first empty way, if any.
func (e *EmptyFirstVictimFinder) FindVictim(set []Line) int {
	for wayID, line := range set {
		if !line.IsValid {
			return wayID
		}
	}

	return e.LRUVictimFinder.FindVictim(set)
}
