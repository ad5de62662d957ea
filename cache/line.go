package cache

import "fmt"

// A Line is one slot of the cache.
type Line struct {
	Tag     uint64
	IsValid bool
	// Recency is only maintained by LRU caches. 0 means just used.
	Recency uint64
}

// lineArray is the fixed storage of a cache. Every access goes through an
// index check.
type lineArray struct {
	lines []Line
}

func newLineArray(numLines int) lineArray {
	return lineArray{lines: make([]Line, numLines)}
}

func (a lineArray) len() int {
	return len(a.lines)
}

func (a lineArray) inRange(index int) bool {
	return index >= 0 && index < len(a.lines)
}

func (a lineArray) at(index int) *Line {
	if !a.inRange(index) {
		panic(fmt.Sprintf("line %d out of range [0, %d)", index, len(a.lines)))
	}

	return &a.lines[index]
}

// set returns the lines of a set. The returned slice aliases the storage.
func (a lineArray) set(setID, numWays int) []Line {
	first := setID * numWays
	if first < 0 || first+numWays > len(a.lines) {
		panic(fmt.Sprintf("set %d out of range", setID))
	}

	return a.lines[first : first+numWays]
}

func (a lineArray) snapshot() []Line {
	lines := make([]Line, len(a.lines))
	copy(lines, a.lines)

	return lines
}
