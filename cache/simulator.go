// Package cache simulates how a small cache responds to a stream of memory
// addresses.
//
// A Simulator only tracks which addresses are resident. It does not model
// data, write policies, or timing.
package cache

import "github.com/sarchlab/cachesim/hooking"

// HookPosAccess marks that the simulator has processed an access.
var HookPosAccess = &hooking.HookPos{Name: "CacheAccess"}

// AccessEvent is passed to the hooks after each access.
type AccessEvent struct {
	Seq       uint64
	Address   uint64
	Hit       bool
	LineIndex int
}

// An AddressSource provides the addresses of a trace in order.
type AddressSource interface {
	Next() (addr uint64, ok bool)
}

// Simulator replays addresses against one cache configuration.
type Simulator struct {
	hooking.HookableBase

	name         string
	config       Config
	lines        lineArray
	victimFinder VictimFinder
	randSource   RandSource
	stats        Stats
}

// Name returns the name of the simulator.
func (s *Simulator) Name() string {
	return s.name
}

// Config returns the configuration of the simulator.
func (s *Simulator) Config() Config {
	return s.config
}

// Stats returns the counters accumulated so far.
func (s *Simulator) Stats() Stats {
	return s.stats
}

// Lines returns a copy of all the lines.
func (s *Simulator) Lines() []Line {
	return s.lines.snapshot()
}

// Line returns the line at index. The second return value is false if the
// index is out of range.
func (s *Simulator) Line(index int) (Line, bool) {
	if !s.lines.inRange(index) {
		return Line{}, false
	}

	return *s.lines.at(index), true
}

// Access looks up addr, updates the lines and the counters, and returns
// whether the access hit.
func (s *Simulator) Access(addr uint64) bool {
	var (
		hit       bool
		lineIndex int
	)

	switch s.config.Policy() {
	case DirectMapped:
		hit, lineIndex = s.accessDirectMapped(addr)
	case LRU:
		hit, lineIndex = s.accessLRU(addr)
	case Random:
		hit, lineIndex = s.accessRandom(addr)
	}

	if s.config.UseLRU {
		s.ageAll()
	}

	if s.config.UseLRU && s.config.NumWays > 1 {
		s.resetRecency(addr)
	}

	s.stats.Accesses++
	if hit {
		s.stats.Hits++
	}

	s.notifyAccess(addr, hit, lineIndex)

	return hit
}

// Run feeds every address of src into the simulator and returns the final
// counters.
func (s *Simulator) Run(src AddressSource) Stats {
	for {
		addr, ok := src.Next()
		if !ok {
			break
		}

		s.Access(addr)
	}

	return s.stats
}

func (s *Simulator) accessDirectMapped(addr uint64) (bool, int) {
	index := s.config.directMappedIndex(addr)
	line := s.lines.at(index)

	if line.IsValid && line.Tag == addr {
		return true, index
	}

	line.IsValid = true
	line.Tag = addr

	return false, index
}

func (s *Simulator) accessLRU(addr uint64) (bool, int) {
	setID := s.config.setID(addr)
	firstWay := setID * s.config.NumWays
	set := s.lines.set(setID, s.config.NumWays)

	hitWay := -1
	for wayID := range set {
		line := &set[wayID]

		switch {
		case line.IsValid && line.Tag == addr:
			hitWay = wayID
			line.Recency = 0
		case line.IsValid:
			line.Recency++
		}
	}

	if hitWay >= 0 {
		return true, firstWay + hitWay
	}

	victim := s.victimFinder.FindVictim(set)
	set[victim] = Line{
		Tag:     addr,
		IsValid: true,
		Recency: 0,
	}

	return false, firstWay + victim
}

func (s *Simulator) accessRandom(addr uint64) (bool, int) {
	index := s.randSource.Intn(s.lines.len())
	line := s.lines.at(index)

	if line.IsValid && line.Tag == addr {
		return true, index
	}

	line.IsValid = true
	line.Tag = addr

	return false, index
}

func (s *Simulator) ageAll() {
	for i := range s.lines.lines {
		line := &s.lines.lines[i]
		if line.IsValid {
			line.Recency++
		}
	}
}

func (s *Simulator) resetRecency(addr uint64) {
	index := s.config.recencyResetIndex(addr)
	if !s.lines.inRange(index) {
		return
	}

	s.lines.at(index).Recency = 0
}

func (s *Simulator) notifyAccess(addr uint64, hit bool, lineIndex int) {
	if s.NumHooks() == 0 {
		return
	}

	ctx := hooking.HookCtx{
		Domain: s,
		Pos:    HookPosAccess,
		Item: AccessEvent{
			Seq:       s.stats.Accesses,
			Address:   addr,
			Hit:       hit,
			LineIndex: lineIndex,
		},
	}
	s.InvokeHook(ctx)
}
