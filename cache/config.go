package cache

import (
	"errors"
	"fmt"
)

// DefaultNumLines is the number of lines of a cache unless configured
// otherwise.
const DefaultNumLines = 32

// Policy is how a simulator places an address in the cache.
type Policy int

// The supported placement policies.
const (
	DirectMapped Policy = iota
	LRU
	Random
)

func (p Policy) String() string {
	switch p {
	case DirectMapped:
		return "direct-mapped"
	case LRU:
		return "lru"
	case Random:
		return "random"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Config is the organization of a simulated cache. It does not change during
// a run.
type Config struct {
	// NumLines is the total number of lines.
	NumLines int
	// NumWays is the number of lines per set. 1 is direct-mapped and
	// NumLines is fully associative.
	NumWays int
	// UseLRU selects LRU replacement and recency aging. Without it, a cache
	// with more than one way replaces at random.
	UseLRU bool
	// Seed seeds the default random source.
	Seed int64
}

// Validate checks that the config describes a cache with an integral number
// of sets.
func (c Config) Validate() error {
	if c.NumLines <= 0 {
		return fmt.Errorf("number of lines must be positive, got %d",
			c.NumLines)
	}

	if c.NumWays < 1 || c.NumWays > c.NumLines {
		return fmt.Errorf("number of ways must be in [1, %d], got %d",
			c.NumLines, c.NumWays)
	}

	if c.NumLines%c.NumWays != 0 {
		return errors.New("cache must have an integer number of sets")
	}

	return nil
}

// NumSets returns the number of sets.
func (c Config) NumSets() int {
	return c.NumLines / c.NumWays
}

// Policy returns the placement policy that the config selects.
func (c Config) Policy() Policy {
	switch {
	case c.NumWays == 1:
		return DirectMapped
	case c.UseLRU:
		return LRU
	default:
		return Random
	}
}

// IsFullyAssociative returns true if all the lines form a single set.
func (c Config) IsFullyAssociative() bool {
	return c.NumWays == c.NumLines
}

func (c Config) directMappedIndex(addr uint64) int {
	return int(addr % uint64(c.NumLines))
}

func (c Config) setID(addr uint64) int {
	return int(addr % uint64(c.NumSets()))
}

// recencyResetIndex returns the line whose recency is cleared after each LRU
// access. It drops the two word-offset bits and reads the set and a tag
// proxy from the remaining bits, so it generally differs from the line the
// lookup touched. The result can fall outside the cache.
func (c Config) recencyResetIndex(addr uint64) int {
	numSets := uint64(c.NumSets())
	setID := (addr >> 2) % numSets
	tagProxy := (addr >> (2 + numSets)) % numSets

	return int(setID*uint64(c.NumWays) + tagProxy)
}
