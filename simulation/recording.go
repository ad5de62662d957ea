package simulation

import (
	"context"
	"fmt"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/hooking"
)

// Table names used in the recording database.
const (
	RunTableName    = "cache_runs"
	AccessTableName = "cache_accesses"
)

// RunRecord is the row recorded for each run.
type RunRecord struct {
	ID           string
	SimulationID string
	Title        string
	NumLines     int
	NumWays      int
	UseLRU       bool
	Policy       string
	Seed         int64
	Hits         uint64
	Accesses     uint64
	HitRate      float64
	Truncated    bool
	Error        string
}

// AccessRecord is the row recorded for each access when access recording is
// enabled. Addresses are stored as hex strings since SQLite integers are
// signed.
type AccessRecord struct {
	RunID     string
	Seq       uint64
	Address   string
	Hit       bool
	LineIndex int
}

func newRunRecord(simulationID string, result Result) RunRecord {
	config := result.Run.Config
	rate, _ := result.Stats.HitRate()

	record := RunRecord{
		ID:           result.ID,
		SimulationID: simulationID,
		Title:        result.Run.Title,
		NumLines:     config.NumLines,
		NumWays:      config.NumWays,
		UseLRU:       config.UseLRU,
		Policy:       config.Policy().String(),
		Seed:         config.Seed,
		Hits:         result.Stats.Hits,
		Accesses:     result.Stats.Accesses,
		HitRate:      rate,
		Truncated:    result.Truncated,
	}

	if result.Err != nil {
		record.Error = result.Err.Error()
	}

	return record
}

// accessRecorder is a hook that records every access of a simulator.
type accessRecorder struct {
	runID    string
	recorder datarecording.DataRecorder
}

func (r *accessRecorder) Func(ctx hooking.HookCtx) {
	if ctx.Pos != cache.HookPosAccess {
		return
	}

	event := ctx.Item.(cache.AccessEvent)

	r.recorder.InsertData(AccessTableName, AccessRecord{
		RunID:     r.runID,
		Seq:       event.Seq,
		Address:   fmt.Sprintf("0x%x", event.Address),
		Hit:       event.Hit,
		LineIndex: event.LineIndex,
	})
}

// LoadRuns reads back the runs recorded in a database, in recording order.
func LoadRuns(
	ctx context.Context,
	reader datarecording.DataReader,
) ([]RunRecord, error) {
	reader.MapTable(RunTableName, RunRecord{})

	results, _, err := reader.Query(ctx, RunTableName,
		datarecording.QueryParams{OrderBy: "rowid"})
	if err != nil {
		return nil, fmt.Errorf("failed to load runs: %w", err)
	}

	runs := make([]RunRecord, 0, len(results))
	for _, r := range results {
		runs = append(runs, r.(RunRecord))
	}

	return runs, nil
}
