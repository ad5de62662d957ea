package cmd

import (
	"fmt"
	"os"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/report"
	"github.com/sarchlab/cachesim/simulation"
	"github.com/spf13/cobra"
)

type runOptions struct {
	tracePath      string
	numLines       int
	numWays        int
	useLRU         bool
	seed           int64
	format         string
	recordPath     string
	recordAccesses bool
	monitor        bool
	monitorPort    int
	openBrowser    bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a trace against the cache organizations.",
	Long: "`run` replays the trace against a direct-mapped, a 2-way LRU, a " +
		"4-way LRU and a fully associative random-replacement cache. " +
		"`--ways` replays it against a single organization instead.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := parseRunOptions(cmd)
		if err != nil {
			return err
		}

		runs, err := opts.runs()
		if err != nil {
			return err
		}

		return execute(opts, runs)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()
	flags.String("trace", "traces.txt", "Trace file of hexadecimal addresses.")
	flags.Int("lines", cache.DefaultNumLines, "Number of cache lines.")
	flags.Int("ways", 0,
		"Number of ways of a single organization to run. "+
			"0 runs the four default organizations.")
	flags.Bool("lru", false, "Use LRU replacement with --ways.")
	flags.Int64("seed", 1, "Seed of the random replacement policy.")
	flags.String("format", "text", "Output format, text or json.")
	flags.String("record", "",
		"Record the results into this SQLite database (without extension).")
	flags.Bool("record-accesses", false,
		"Also record every access. Requires --record.")
	flags.Bool("monitor", false, "Serve the simulation state over HTTP.")
	flags.Int("monitor-port", 0, "Port of the monitoring server.")
	flags.Bool("open-browser", false, "Open the monitor in a browser.")
}

func parseRunOptions(cmd *cobra.Command) (runOptions, error) {
	var (
		opts runOptions
		err  error
	)

	opts.tracePath, err = stringSetting(cmd, "trace", envTrace)
	if err != nil {
		return opts, err
	}

	opts.numLines, err = intSetting(cmd, "lines", envLines)
	if err != nil {
		return opts, err
	}

	opts.seed, err = int64Setting(cmd, "seed", envSeed)
	if err != nil {
		return opts, err
	}

	opts.recordPath, err = stringSetting(cmd, "record", envRecord)
	if err != nil {
		return opts, err
	}

	flags := cmd.Flags()
	opts.numWays, _ = flags.GetInt("ways")
	opts.useLRU, _ = flags.GetBool("lru")
	opts.format, _ = flags.GetString("format")
	opts.recordAccesses, _ = flags.GetBool("record-accesses")
	opts.monitor, _ = flags.GetBool("monitor")
	opts.monitorPort, _ = flags.GetInt("monitor-port")
	opts.openBrowser, _ = flags.GetBool("open-browser")

	if opts.recordAccesses && opts.recordPath == "" {
		return opts, fmt.Errorf("--record-accesses requires --record")
	}

	if opts.useLRU && opts.numWays == 0 {
		return opts, fmt.Errorf("--lru requires --ways")
	}

	return opts, nil
}

func (o runOptions) runs() ([]simulation.Run, error) {
	if o.numWays == 0 {
		runs := simulation.DefaultRuns(o.numLines, o.seed)
		for _, r := range runs {
			if err := r.Config.Validate(); err != nil {
				return nil, fmt.Errorf("%s: %w", r.Title, err)
			}
		}

		return runs, nil
	}

	config := cache.Config{
		NumLines: o.numLines,
		NumWays:  o.numWays,
		UseLRU:   o.useLRU,
		Seed:     o.seed,
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return []simulation.Run{simulation.CustomRun(config)}, nil
}

func execute(opts runOptions, runs []simulation.Run) error {
	printer, err := report.NewPrinter(opts.format, os.Stdout)
	if err != nil {
		return err
	}

	builder := simulation.MakeBuilder().
		WithTraceFile(opts.tracePath).
		WithLogger(logger).
		WithPrinter(printer)

	if opts.recordPath != "" {
		builder = builder.WithDataRecorder(datarecording.New(opts.recordPath))

		if opts.recordAccesses {
			builder = builder.WithAccessRecording()
		}
	}

	if opts.monitor {
		monitor := monitoring.NewMonitor().
			WithPortNumber(opts.monitorPort).
			WithBrowser(opts.openBrowser)
		monitor.StartServer()

		builder = builder.WithMonitor(monitor)
	}

	s := builder.Build()
	defer s.Terminate()

	s.Execute(runs)

	return nil
}
