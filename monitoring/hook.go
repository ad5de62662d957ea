package monitoring

import (
	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/hooking"
)

// DefaultPublishInterval is the number of accesses between two snapshots of
// a watched simulator.
const DefaultPublishInterval = 1024

// simulatorHook advances a progress bar on every access and publishes the
// simulator state periodically.
type simulatorHook struct {
	monitor  *Monitor
	bar      *ProgressBar
	interval uint64
}

func (h *simulatorHook) Func(ctx hooking.HookCtx) {
	if ctx.Pos != cache.HookPosAccess {
		return
	}

	event := ctx.Item.(cache.AccessEvent)
	h.bar.IncrementFinished(1)

	if h.interval > 0 && event.Seq%h.interval == 0 {
		if s, ok := ctx.Domain.(*cache.Simulator); ok {
			h.monitor.Publish(s)
		}
	}
}
