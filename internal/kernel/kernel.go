// Package kernel wires the world, clock, scheduler, event bus, event
// log, and cascade engine into the tick driver spec.md's subsystems
// describe but never name: Kernel.Advance is the "repeat" in "Scheduler
// -> subsystems mutate ECS, emit on Bus -> Bus fans out -> cascade
// resolves due consequences -> Clock.advance() -> repeat."
package kernel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/talgya/aethelgard/internal/cascade"
	"github.com/talgya/aethelgard/internal/ecs"
	"github.com/talgya/aethelgard/internal/event"
	"github.com/talgya/aethelgard/internal/eventbus"
	"github.com/talgya/aethelgard/internal/eventlog"
	"github.com/talgya/aethelgard/internal/ident"
	"github.com/talgya/aethelgard/internal/kernelerr"
	"github.com/talgya/aethelgard/internal/save"
	"github.com/talgya/aethelgard/internal/scheduler"
	"github.com/talgya/aethelgard/internal/snapshot"
	"github.com/talgya/aethelgard/internal/worldclock"
)

// OnKernelError reports a best-effort failure that the kernel absorbed
// rather than propagated. kind identifies the failure class; context
// carries whatever detail the call site had on hand. The kernel calls it
// only for a failed autosave ("autosave_failed"); handler panics go to
// the bus's own ErrorSink, and cascade clamping or undefined-transition
// penalties are applied silently, not reported here.
type OnKernelError func(kind string, context map[string]any)

// Kernel is the tick driver. Construct one with New, register
// subsystems, then call Advance once per tick.
type Kernel struct {
	World  *ecs.World
	Clock  *worldclock.Clock
	Bus    *eventbus.Bus
	Log    *eventlog.Log
	Cascade *cascade.Engine

	scheduler *scheduler.Scheduler
	subsystems map[string]Subsystem

	saveManager *save.Manager
	snapshots   *snapshot.Manager
	tracker     *save.Tracker
	saveMeta    map[string]string

	onError OnKernelError
}

// Config bundles the collaborators a Kernel wires together. World,
// Clock, Bus and Log are used as given. A nil Scheduler gets a fresh
// scheduler with no registrations and a nil OnError a slog Debug call;
// a nil Cascade disables cascade processing, a nil SaveManager or
// Tracker disables autosave, and nil Snapshots disables pre-tick
// rollback.
type Config struct {
	World     *ecs.World
	Clock     *worldclock.Clock
	Scheduler *scheduler.Scheduler
	Bus       *eventbus.Bus
	Log       *eventlog.Log
	Cascade   *cascade.Engine

	SaveManager *save.Manager
	Snapshots   *snapshot.Manager
	Tracker     *save.Tracker
	SaveMeta    map[string]string

	OnError OnKernelError
}

// New builds a Kernel from cfg. Subsystems register afterward via
// Register.
func New(cfg Config) *Kernel {
	k := &Kernel{
		World:       cfg.World,
		Clock:       cfg.Clock,
		Bus:         cfg.Bus,
		Log:         cfg.Log,
		Cascade:     cfg.Cascade,
		scheduler:   cfg.Scheduler,
		subsystems:  make(map[string]Subsystem),
		saveManager: cfg.SaveManager,
		snapshots:   cfg.Snapshots,
		tracker:     cfg.Tracker,
		saveMeta:    cfg.SaveMeta,
		onError:     cfg.OnError,
	}
	if k.scheduler == nil {
		k.scheduler = scheduler.New()
	}
	if k.onError == nil {
		k.onError = defaultOnKernelError
	}
	if k.Bus != nil {
		k.Bus.OnAny(k.admitEvent)
	}
	return k
}

// admitEvent is the kernel's own onAny subscriber — every event any
// subsystem emits passes through here once: recorded in the append-only
// log (spec: "all events are recorded in an append-only log") and
// offered to the cascade engine for consequence scheduling. Events the
// cascade engine itself fires also pass through here (fire emits on the
// same bus); that's harmless, since a fired consequence's
// ConsequencePotential is always empty, so ProcessEvent is a no-op for
// it, and the log append simply fails fast on the duplicate id cascade
// already recorded.
func (k *Kernel) admitEvent(e event.Event) {
	if err := k.Log.Append(e); err == nil {
		for _, cause := range e.Causes {
			_ = k.Log.LinkCause(cause, e.ID)
		}
	}
	if k.Cascade != nil {
		k.Cascade.ProcessEvent(e, k.Clock.CurrentTick(), 0)
	}
}

func defaultOnKernelError(kind string, context map[string]any) {
	slog.Debug("kernel error absorbed", "kind", kind, "context", context)
}

// Register wires sys into the scheduler at its declared frequency and
// execution order, and makes it reachable by name for Unregister.
func (k *Kernel) Register(sys Subsystem) {
	k.subsystems[sys.Name()] = sys
	k.scheduler.Register(sys.Name(), sys.Frequency(), 0, sys.ExecutionOrder())
}

// Unregister removes sys by name, running its Cleanup hook first if it
// has one.
func (k *Kernel) Unregister(name string) {
	if sys, ok := k.subsystems[name]; ok {
		if c, ok := sys.(Cleanup); ok {
			c.CleanupSubsystem()
		}
	}
	delete(k.subsystems, name)
	k.scheduler.Unregister(name)
}

// Advance runs one tick: select eligible subsystems via the scheduler,
// run each in ExecutionOrder, resolve due cascade consequences, advance
// the clock, and check for an autosave. ctx is consulted only at the
// tick boundary (before the tick starts) — never mid-tick, matching the
// "non-reentrant across ticks" / "never auto-save mid-tick" invariants.
//
// A tick either commits entirely or aborts entirely: Advance takes a
// snapshot before mutating anything, and a Fatal kernelerr.Invariant
// panic from any subsystem or from cascade resolution is recovered here,
// with the pre-tick snapshot restored into World/Clock/Log before the
// invariant is returned as an error.
func (k *Kernel) Advance(ctx context.Context) (err error) {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var preTickSnap ident.SnapshotId
	var haveSnap bool
	if k.snapshots != nil {
		id, snapErr := k.snapshots.Take(k.World, k.Clock, k.Log)
		if snapErr == nil {
			preTickSnap = id
			haveSnap = true
		}
	}

	defer func() {
		if r := recover(); r != nil {
			inv, ok := r.(kernelerr.Invariant)
			if !ok {
				panic(r)
			}
			if haveSnap {
				if restoredClock, restoredLog, restoreErr := k.snapshots.Restore(preTickSnap, k.World); restoreErr == nil {
					*k.Clock = *restoredClock
					*k.Log = *restoredLog
				}
			}
			err = inv
		}
		if haveSnap {
			k.snapshots.Discard(preTickSnap)
		}
	}()

	tick := k.Clock.CurrentTick()
	for _, name := range k.scheduler.SystemsForTick(tick) {
		sys, ok := k.subsystems[name]
		if !ok {
			continue
		}
		sys.Execute(k.World, k.Clock, k.Bus)
	}

	if k.Cascade != nil {
		k.Cascade.ResolveTick(tick)
	}

	k.Clock.Advance()

	if k.saveManager != nil && k.tracker != nil {
		if saveErr := k.saveManager.CheckAutoSave(k.World, k.Clock, k.Log, k.tracker, k.saveMeta); saveErr != nil {
			k.onError("autosave_failed", map[string]any{"tick": tick, "error": fmt.Sprint(saveErr)})
		}
	}

	return nil
}
