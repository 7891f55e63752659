// Package bench builds synthetic dependency graphs on a runtime and measures
// how the scheduler propagates writes through them.
package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/AnatoleLucet/reactive"
	"github.com/AnatoleLucet/reactive/internal/config"
	"golang.org/x/xerrors"
)

// Stats summarizes one bench run.
type Stats struct {
	Scenario string        `json:"scenario"`
	Size     int           `json:"size"`
	Writes   int           `json:"writes"`
	Tasks    int           `json:"tasks"`
	Runs     int           `json:"runs"`
	Final    int           `json:"final"`
	Elapsed  time.Duration `json:"elapsed"`
}

// PerWrite returns the average time spent propagating one write.
func (s Stats) PerWrite() time.Duration {
	if s.Writes == 0 {
		return 0
	}

	return s.Elapsed / time.Duration(s.Writes)
}

func (s Stats) String() string {
	return fmt.Sprintf("%s(size=%d): %d writes, %d watcher runs, %d tasks, final=%d, %s/write",
		s.Scenario, s.Size, s.Writes, s.Runs, s.Tasks, s.Final, s.PerWrite())
}

// graph is a built scenario: writing source propagates to a single sink.
type graph struct {
	source *reactive.Object
	sink   *reactive.Watcher

	// watcher callbacks run so far
	runs *int
}

// Options returns the runtime options matching cfg.
func Options(cfg config.Config) []reactive.Option {
	return []reactive.Option{
		reactive.WithAsync(!cfg.Sync),
		reactive.WithMaxUpdateCount(cfg.MaxUpdateCount),
	}
}

// Run builds the scenario of cfg on rt, writes to its source cfg.Writes times
// and tears everything down. rt must not be used by another goroutine meanwhile.
func Run(ctx context.Context, rt *reactive.Runtime, cfg config.Config) (Stats, error) {
	if err := cfg.Validate(); err != nil {
		return Stats{}, err
	}

	owner := reactive.NewOwnerOn(rt, "bench "+cfg.Scenario)
	defer owner.Destroy()

	g, err := build(rt, owner, cfg)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Scenario: cfg.Scenario, Size: cfg.Size}
	start := time.Now()

	for i := range cfg.Writes {
		if err := ctx.Err(); err != nil {
			return stats, xerrors.Errorf("bench interrupted after %d writes: %w", i, err)
		}

		g.source.Set("value", i+1)
		stats.Tasks += rt.Tick()
		stats.Writes++
	}

	stats.Elapsed = time.Since(start)
	stats.Runs = *g.runs
	stats.Final, _ = g.sink.Value().(int)

	logger := rt.Logger()
	logger.Debug().Str("stats", stats.String()).Msg("bench done")

	return stats, nil
}

func build(rt *reactive.Runtime, owner *reactive.Owner, cfg config.Config) (*graph, error) {
	source := reactive.NewObject(map[string]any{"value": 0})
	rt.Observe(source)

	g := &graph{source: source, runs: new(int)}

	on := []reactive.WatchOption{reactive.OnRuntime(rt), reactive.InOwner(owner)}
	count := func(_, _ int) { *g.runs++ }
	read := func() int { return source.Get("value").(int) }

	switch cfg.Scenario {
	case "chain":
		// value -> c1 -> c2 -> ... -> cN -> sink
		last := read
		for range cfg.Size {
			prev := last
			last = reactive.NewComputed(func() int { return prev() + 1 }, on...).Get
		}
		g.sink = reactive.Watch(last, count, on...)

	case "fanout":
		// value -> N watchers, the sink being the last one
		for range cfg.Size {
			g.sink = reactive.Watch(read, count, on...)
		}

	case "diamond":
		// value -> N computed -> one sink reading them all
		branches := make([]*reactive.Computed[int], cfg.Size)
		for i := range branches {
			branches[i] = reactive.NewComputed(func() int { return read() + i }, on...)
		}

		g.sink = reactive.Watch(func() int {
			total := 0
			for _, b := range branches {
				total += b.Get()
			}
			return total
		}, count, on...)

	default:
		return nil, xerrors.Errorf("unknown scenario %q", cfg.Scenario)
	}

	return g, nil
}
