package cache

// Builder can build simulators.
type Builder struct {
	numLines     int
	numWays      int
	useLRU       bool
	seed         int64
	randSource   RandSource
	victimFinder VictimFinder
}

// MakeBuilder creates a new builder with a 32-line direct-mapped cache.
func MakeBuilder() Builder {
	return Builder{
		numLines: DefaultNumLines,
		numWays:  1,
		seed:     1,
	}
}

// WithConfig copies every field of config into the builder.
func (b Builder) WithConfig(config Config) Builder {
	b.numLines = config.NumLines
	b.numWays = config.NumWays
	b.useLRU = config.UseLRU
	b.seed = config.Seed

	return b
}

// WithNumLines sets the total number of lines.
func (b Builder) WithNumLines(numLines int) Builder {
	b.numLines = numLines
	return b
}

// WithNumWays sets the number of lines per set.
func (b Builder) WithNumWays(numWays int) Builder {
	b.numWays = numWays
	return b
}

// WithLRU selects between LRU and random replacement.
func (b Builder) WithLRU(useLRU bool) Builder {
	b.useLRU = useLRU
	return b
}

// WithSeed sets the seed of the default random source.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// WithRandSource replaces the default random source.
func (b Builder) WithRandSource(randSource RandSource) Builder {
	b.randSource = randSource
	return b
}

// WithVictimFinder replaces the LRU victim finder.
func (b Builder) WithVictimFinder(victimFinder VictimFinder) Builder {
	b.victimFinder = victimFinder
	return b
}

// Build builds a simulator. It panics if the configuration is invalid.
func (b Builder) Build(name string) *Simulator {
	config := Config{
		NumLines: b.numLines,
		NumWays:  b.numWays,
		UseLRU:   b.useLRU,
		Seed:     b.seed,
	}

	err := config.Validate()
	if err != nil {
		panic(err)
	}

	s := &Simulator{
		name:         name,
		config:       config,
		lines:        newLineArray(config.NumLines),
		victimFinder: b.victimFinder,
		randSource:   b.randSource,
	}

	if s.victimFinder == nil {
		s.victimFinder = NewLRUVictimFinder()
	}

	if s.randSource == nil {
		s.randSource = NewRandSource(config.Seed)
	}

	return s
}
