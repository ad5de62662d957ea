package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/report"
	"github.com/sarchlab/cachesim/simulation"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [database.sqlite3]",
	Short: "Print the runs recorded in a database.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		return show(cmd.Context(), args[0], format)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().String("format", "text", "Output format, text or json.")
}

func show(ctx context.Context, path, format string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot open recording: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	printer, err := report.NewPrinter(format, os.Stdout)
	if err != nil {
		return err
	}

	reader := datarecording.NewReader(path)
	defer reader.Close()

	runs, err := simulation.LoadRuns(ctx, reader)
	if err != nil {
		return err
	}

	for _, r := range runs {
		if r.Error != "" {
			err = printer.Skip(r.Title, fmt.Errorf("%s", r.Error))
		} else {
			err = printer.Print(report.Entry{
				Title: r.Title,
				Config: cache.Config{
					NumLines: r.NumLines,
					NumWays:  r.NumWays,
					UseLRU:   r.UseLRU,
					Seed:     r.Seed,
				},
				Stats: cache.Stats{Hits: r.Hits, Accesses: r.Accesses},
			})
		}

		if err != nil {
			return err
		}
	}

	return nil
}
