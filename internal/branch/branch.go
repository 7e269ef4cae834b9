// Package branch implements counterfactual divergence: fork a snapshot,
// apply a divergence action, and advance the fork in isolation while the
// main timeline keeps running untouched.
package branch

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"

	"github.com/talgya/aethelgard/internal/ecs"
	"github.com/talgya/aethelgard/internal/eventbus"
	"github.com/talgya/aethelgard/internal/eventlog"
	"github.com/talgya/aethelgard/internal/ident"
	"github.com/talgya/aethelgard/internal/kernelerr"
	"github.com/talgya/aethelgard/internal/snapshot"
	"github.com/talgya/aethelgard/internal/worldclock"
)

// MaxBranches bounds how many branches may coexist at once.
const MaxBranches = 16

// Branch is one counterfactual fork: its own world, clock, log, and bus,
// sharing no mutable state with the main timeline or any sibling branch.
type Branch struct {
	ID         ident.BranchId
	SourceTick uint64
	Seed       int64

	// TraceID is a branch's identity in structured logs — a uuid rather
	// than the small, recycled-looking BranchId, so log lines from two
	// unrelated runs never collide when grepped together.
	TraceID string

	Clock *worldclock.Clock
	World *ecs.World
	Log   *eventlog.Log
	Bus   *eventbus.Bus

	// RandomFn is this branch's own seeded draw source, for callers
	// building a cascade.Engine via EngineFactory. Never math/rand's
	// global source — each branch is independently reproducible.
	RandomFn func() float64
}

// TickEngine advances one branch by one tick. Kernel.Advance satisfies
// this interface, so an EngineFactory can hand back a real Kernel wired
// to the branch's own world/clock/log/bus.
type TickEngine interface {
	Advance(ctx context.Context) error
}

// EngineFactory builds the TickEngine a branch uses to advance itself,
// given that branch's own isolated structures.
type EngineFactory func(w *ecs.World, clock *worldclock.Clock, bus *eventbus.Bus, log *eventlog.Log) TickEngine

// WorldFactory builds an empty world with every component type the
// caller's domain uses already registered on it. Branch forks need one
// per branch — snapshot.Manager.Restore can only populate rows into
// stores that already exist, and only the caller (who knows the
// concrete Go component types) can create those stores.
type WorldFactory func() *ecs.World

// Manager owns the set of live branches, forked from a shared snapshot
// manager.
type Manager struct {
	allocs    *ident.Allocators
	snapshots *snapshot.Manager
	newWorld  WorldFactory
	branches  map[ident.BranchId]*Branch
}

// NewManager returns an empty branch manager. snapshots supplies the
// Restore call each CreateBranch uses to fork state; newWorld mints the
// empty, pre-registered world each fork restores into.
func NewManager(allocs *ident.Allocators, snapshots *snapshot.Manager, newWorld WorldFactory) *Manager {
	return &Manager{allocs: allocs, snapshots: snapshots, newWorld: newWorld, branches: make(map[ident.BranchId]*Branch)}
}

// Count reports how many branches currently coexist.
func (m *Manager) Count() int { return len(m.branches) }

// CreateBranch restores snapshotID into a fresh world/clock/log/bus,
// applies action, and registers the resulting Branch. Fails with
// kernelerr.ErrBranchLimitExceeded if MaxBranches already coexist.
func (m *Manager) CreateBranch(snapshotID ident.SnapshotId, action Action, seed int64) (*Branch, error) {
	if len(m.branches) >= MaxBranches {
		return nil, fmt.Errorf("branch: create from %s: %w", snapshotID, kernelerr.ErrBranchLimitExceeded)
	}

	w := m.newWorld()
	clock, log, err := m.snapshots.Restore(snapshotID, w)
	if err != nil {
		return nil, fmt.Errorf("branch: restore %s: %w", snapshotID, err)
	}

	b := &Branch{
		ID:         m.allocs.NextBranch(),
		SourceTick: clock.CurrentTick(),
		Seed:       seed,
		TraceID:    uuid.NewString(),
		Clock:      clock,
		World:      w,
		Log:        log,
		Bus:        eventbus.New(nil),
		RandomFn:   randomFnFromSeed(seed),
	}
	slog.Info("branch created", "branch", b.ID, "trace", b.TraceID, "sourceSnapshot", snapshotID, "sourceTick", b.SourceTick)

	if err := applyAction(b, action); err != nil {
		return nil, fmt.Errorf("branch: apply action to %s: %w", b.ID, err)
	}

	m.branches[b.ID] = b
	return b, nil
}

// Get returns the branch registered under id, if any.
func (m *Manager) Get(id ident.BranchId) (*Branch, bool) {
	b, ok := m.branches[id]
	return b, ok
}

// DeleteBranch removes id's branch, freeing its slot. Idempotent.
func (m *Manager) DeleteBranch(id ident.BranchId) {
	delete(m.branches, id)
}

// RunResult summarizes one RunBranch call.
type RunResult struct {
	TicksRun int
	StartTick uint64
	EndTick   uint64
}

// RunBranch advances branch id by nTicks using an engine built by
// factory for that branch's isolated structures. Fails with
// kernelerr.ErrBranchNotFound if id is unknown.
func (m *Manager) RunBranch(id ident.BranchId, nTicks int, factory EngineFactory) (RunResult, error) {
	b, ok := m.branches[id]
	if !ok {
		return RunResult{}, fmt.Errorf("branch: run %s: %w", id, kernelerr.ErrBranchNotFound)
	}

	engine := factory(b.World, b.Clock, b.Bus, b.Log)
	result := RunResult{StartTick: b.Clock.CurrentTick()}

	for i := 0; i < nTicks; i++ {
		if err := engine.Advance(context.Background()); err != nil {
			result.EndTick = b.Clock.CurrentTick()
			return result, err
		}
		result.TicksRun++
	}
	result.EndTick = b.Clock.CurrentTick()
	return result, nil
}

// randomFnFromSeed builds a RandomFn-shaped closure over a seeded
// *rand.Rand, matching the teacher's agents.Spawner "own the rng,
// never touch the global source" convention.
func randomFnFromSeed(seed int64) func() float64 {
	r := rand.New(rand.NewSource(seed))
	return r.Float64
}
