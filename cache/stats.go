package cache

// Stats counts the accesses that a simulator has processed.
type Stats struct {
	Hits     uint64 `json:"hits"`
	Accesses uint64 `json:"accesses"`
}

// Misses returns the number of accesses that did not hit.
func (s Stats) Misses() uint64 {
	return s.Accesses - s.Hits
}

// HitRate returns the percentage of accesses that hit. The second return
// value is false when there is no access, in which case the rate is
// undefined and reported as 0.
func (s Stats) HitRate() (float64, bool) {
	if s.Accesses == 0 {
		return 0, false
	}

	return float64(s.Hits) / float64(s.Accesses) * 100, true
}
