package simulation

import (
	"io"
	"log"
	"os"

	"github.com/rs/xid"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/report"
)

// Builder can be used to build a simulation.
type Builder struct {
	openTrace      TraceOpener
	logger         *log.Logger
	printer        report.Printer
	dataRecorder   datarecording.DataRecorder
	recordAccesses bool
	monitor        *monitoring.Monitor
}

// MakeBuilder creates a new builder that reads traces.txt.
func MakeBuilder() Builder {
	return Builder{
		openTrace: FileTrace("traces.txt"),
	}
}

// WithTraceFile makes every run read the trace file at path.
func (b Builder) WithTraceFile(path string) Builder {
	b.openTrace = FileTrace(path)
	return b
}

// WithTraceOpener sets how each run opens the trace.
func (b Builder) WithTraceOpener(opener TraceOpener) Builder {
	b.openTrace = opener
	return b
}

// WithLogger sets the logger that receives diagnostics.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

// WithPrinter makes the simulation print each result as soon as its run
// finishes.
func (b Builder) WithPrinter(printer report.Printer) Builder {
	b.printer = printer
	return b
}

// WithDataRecorder records run summaries with the given recorder.
func (b Builder) WithDataRecorder(recorder datarecording.DataRecorder) Builder {
	b.dataRecorder = recorder
	return b
}

// WithAccessRecording also records every access. It requires a data
// recorder.
func (b Builder) WithAccessRecording() Builder {
	b.recordAccesses = true
	return b
}

// WithMonitor publishes the simulators to a monitor.
func (b Builder) WithMonitor(monitor *monitoring.Monitor) Builder {
	b.monitor = monitor
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.openTrace == nil {
		panic("trace opener must be set")
	}

	if b.recordAccesses && b.dataRecorder == nil {
		panic("access recording requires a data recorder")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:             xid.New().String(),
		openTrace:      b.openTrace,
		logger:         b.logger,
		printer:        b.printer,
		dataRecorder:   b.dataRecorder,
		recordAccesses: b.recordAccesses,
		monitor:        b.monitor,
	}

	if s.logger == nil {
		s.logger = log.New(os.Stderr, "cachesim: ", 0)
	}

	if s.dataRecorder != nil {
		s.dataRecorder.CreateTable(RunTableName, RunRecord{})

		if s.recordAccesses {
			s.dataRecorder.CreateTable(AccessTableName, AccessRecord{})
		}
	}

	return s
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}
