// Command aethelworld is a small demonstration harness: it wires a
// Kernel with two toy subsystems, runs it for a configurable number of
// ticks, and periodically saves — exercising scheduling, cascade
// propagation, and persistence end to end. It is a harness, not a
// deliverable subsystem: domain logic here stays minimal on purpose.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/talgya/aethelgard/internal/cascade"
	"github.com/talgya/aethelgard/internal/ecs"
	"github.com/talgya/aethelgard/internal/eventbus"
	"github.com/talgya/aethelgard/internal/eventlog"
	"github.com/talgya/aethelgard/internal/ident"
	"github.com/talgya/aethelgard/internal/kernel"
	"github.com/talgya/aethelgard/internal/save"
	"github.com/talgya/aethelgard/internal/scheduler"
	"github.com/talgya/aethelgard/internal/snapshot"
	"github.com/talgya/aethelgard/internal/worldclock"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ticks := flag.Int("ticks", 400, "number of ticks to run")
	saveDir := flag.String("save-dir", "data/saves", "directory for save files")
	saveEvery := flag.Int("save-every", 100, "ticks between full saves")
	seed := flag.Int64("seed", 42, "cascade RNG seed")
	flag.Parse()

	slog.Info("aethelworld starting", "ticks", *ticks, "saveDir", *saveDir, "seed", *seed)

	allocs := ident.NewAllocators()
	w := ecs.NewWorld()
	ecs.RegisterComponent[Settlement](w)

	clock := worldclock.New()
	log := eventlog.New()
	bus := eventbus.New(func(f eventbus.HandlerFailed) {
		slog.Warn("handler failed", "subtype", f.Subtype, "index", f.Index, "cause", f.Cause)
	})

	rng := newSeededFloat64(*seed)
	cascadeEngine := cascade.New(log, bus, allocs, cascade.Config{RandomFn: rng})

	storage := save.NewFileStorage(*saveDir)
	if err := storage.EnsureDir(); err != nil {
		slog.Error("ensure save dir", "error", err)
		os.Exit(1)
	}
	saveManager := save.NewManager(storage, allocs)
	tracker := save.NewTracker()
	snapshots := snapshot.NewManager(allocs)

	sched := scheduler.New()

	k := kernel.New(kernel.Config{
		World:       w,
		Clock:       clock,
		Scheduler:   sched,
		Bus:         bus,
		Log:         log,
		Cascade:     cascadeEngine,
		SaveManager: saveManager,
		Snapshots:   snapshots,
		Tracker:     tracker,
		SaveMeta:    map[string]string{"harness": "aethelworld"},
	})

	k.Register(newPopulationPressure(allocs))
	k.Register(newRumorUnrest(allocs))

	seedWorld(w, allocs, tracker)

	ctx := context.Background()
	for i := 0; i < *ticks; i++ {
		if err := k.Advance(ctx); err != nil {
			slog.Error("tick failed", "tick", clock.CurrentTick(), "error", err)
			os.Exit(1)
		}
		if *saveEvery > 0 && i > 0 && i%*saveEvery == 0 {
			name := "periodic"
			if _, err := saveManager.SaveFull(name, w, clock, log, map[string]string{"harness": "aethelworld"}); err != nil {
				slog.Warn("periodic save failed", "error", err)
			} else {
				slog.Info("periodic save written", "tick", clock.CurrentTick())
			}
			tracker.Reset()
		}
	}

	slog.Info("aethelworld finished",
		"finalTick", clock.CurrentTick(),
		"eventCount", log.GetCount(),
		"pendingConsequences", cascadeEngine.PendingCount(),
	)
}
