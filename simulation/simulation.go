// Package simulation replays a trace against a sequence of cache
// configurations.
package simulation

import (
	"log"

	"github.com/rs/xid"
	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/report"
	"github.com/sarchlab/cachesim/trace"
)

// A TraceSource yields the addresses of one pass over a trace.
type TraceSource interface {
	cache.AddressSource

	// Truncated returns true if reading stopped at a malformed token.
	Truncated() bool

	// Err returns the I/O error that ended the reading, if any.
	Err() error

	Close() error
}

// A TraceOpener opens a new pass over the trace. Each run calls it once, so
// that every configuration sees the full trace.
type TraceOpener func() (TraceSource, error)

// FileTrace opens the trace file at path for every run.
func FileTrace(path string) TraceOpener {
	return func() (TraceSource, error) {
		f, err := trace.Open(path)
		if err != nil {
			return nil, err
		}

		return f, nil
	}
}

// Result is the outcome of one run.
type Result struct {
	ID        string
	Run       Run
	Stats     cache.Stats
	Truncated bool
	// Err is set when the run produced no statistics.
	Err error
}

// A Simulation provides the services required to run a set of configurations.
type Simulation struct {
	id             string
	openTrace      TraceOpener
	logger         *log.Logger
	printer        report.Printer
	dataRecorder   datarecording.DataRecorder
	recordAccesses bool
	monitor        *monitoring.Monitor
}

// ID returns the ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// GetDataRecorder returns the data recorder used in the simulation, or nil.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation, or nil.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// Execute performs the runs one after another and returns their results in
// the same order. A run whose trace cannot be opened is skipped without
// stopping the others.
func (s *Simulation) Execute(runs []Run) []Result {
	var bar *monitoring.ProgressBar
	if s.monitor != nil {
		bar = s.monitor.CreateProgressBar("Runs", uint64(len(runs)))
		defer s.monitor.CompleteProgressBar(bar)
	}

	results := make([]Result, 0, len(runs))

	for _, run := range runs {
		if bar != nil {
			bar.IncrementInProgress(1)
		}

		result := s.execute(run)
		results = append(results, result)

		s.recordResult(result)
		s.printResult(result)

		if bar != nil {
			bar.MoveInProgressToFinished(1)
		}
	}

	return results
}

func (s *Simulation) execute(run Run) Result {
	result := Result{
		ID:  xid.New().String(),
		Run: run,
	}

	src, err := s.openTrace()
	if err != nil {
		s.logger.Printf("%s: %v", run.Title, err)
		result.Err = err

		return result
	}
	defer src.Close()

	simulator := cache.MakeBuilder().WithConfig(run.Config).Build(run.Title)

	if s.dataRecorder != nil && s.recordAccesses {
		simulator.AcceptHook(&accessRecorder{
			runID:    result.ID,
			recorder: s.dataRecorder,
		})
	}

	var bar *monitoring.ProgressBar
	if s.monitor != nil {
		bar = s.monitor.Watch(simulator, 0)
	}

	result.Stats = simulator.Run(src)
	result.Truncated = src.Truncated()

	if src.Truncated() {
		s.logger.Printf("%s: trace truncated at a malformed token after %d addresses",
			run.Title, result.Stats.Accesses)
	}

	if err := src.Err(); err != nil {
		result.Truncated = true
		s.logger.Printf("%s: trace read stopped: %v", run.Title, err)
	}

	if s.monitor != nil {
		s.monitor.Publish(simulator)
		s.monitor.CompleteProgressBar(bar)
	}

	return result
}

func (s *Simulation) recordResult(result Result) {
	if s.dataRecorder == nil {
		return
	}

	s.dataRecorder.InsertData(RunTableName, newRunRecord(s.id, result))
	s.dataRecorder.Flush()
}

func (s *Simulation) printResult(result Result) {
	if s.printer == nil {
		return
	}

	var err error
	if result.Err != nil {
		err = s.printer.Skip(result.Run.Title, result.Err)
	} else {
		err = s.printer.Print(report.Entry{
			Title:  result.Run.Title,
			Config: result.Run.Config,
			Stats:  result.Stats,
		})
	}

	if err != nil {
		s.logger.Printf("cannot print result of %s: %v", result.Run.Title, err)
	}
}

// Terminate flushes the recorded data and stops the monitor.
func (s *Simulation) Terminate() {
	if s.dataRecorder != nil {
		err := s.dataRecorder.Close()
		if err != nil {
			s.logger.Printf("cannot close data recorder: %v", err)
		}
	}

	if s.monitor != nil {
		s.monitor.StopServer()
	}
}
