package simulation

import (
	"strconv"

	"github.com/sarchlab/cachesim/cache"
)

// A Run is one cache configuration to replay the trace against.
type Run struct {
	Title  string
	Config cache.Config
}

// DefaultRuns returns the four standard organizations of a cache with
// numLines lines: direct-mapped, 2-way LRU, 4-way LRU and fully associative
// with random replacement.
func DefaultRuns(numLines int, seed int64) []Run {
	return []Run{
		{
			Title: "Direct-Mapped Cache",
			Config: cache.Config{
				NumLines: numLines, NumWays: 1, Seed: seed,
			},
		},
		{
			Title: "2-Way Set-Associative Cache (LRU)",
			Config: cache.Config{
				NumLines: numLines, NumWays: 2, UseLRU: true, Seed: seed,
			},
		},
		{
			Title: "4-Way Set-Associative Cache (LRU)",
			Config: cache.Config{
				NumLines: numLines, NumWays: 4, UseLRU: true, Seed: seed,
			},
		},
		{
			Title: "Fully Associative Cache (Random Replacement)",
			Config: cache.Config{
				NumLines: numLines, NumWays: numLines, Seed: seed,
			},
		},
	}
}

// CustomRun returns a run with a title derived from its configuration.
func CustomRun(config cache.Config) Run {
	return Run{Title: Title(config), Config: config}
}

// Title names a configuration the way the default runs are named.
func Title(config cache.Config) string {
	switch {
	case config.NumWays == 1:
		return "Direct-Mapped Cache"
	case config.IsFullyAssociative() && config.UseLRU:
		return "Fully Associative Cache (LRU)"
	case config.IsFullyAssociative():
		return "Fully Associative Cache (Random Replacement)"
	case config.UseLRU:
		return strconv.Itoa(config.NumWays) + "-Way Set-Associative Cache (LRU)"
	default:
		return strconv.Itoa(config.NumWays) +
			"-Way Set-Associative Cache (Random Replacement)"
	}
}
