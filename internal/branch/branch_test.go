package branch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/aethelgard/internal/ecs"
	"github.com/talgya/aethelgard/internal/event"
	"github.com/talgya/aethelgard/internal/eventbus"
	"github.com/talgya/aethelgard/internal/eventlog"
	"github.com/talgya/aethelgard/internal/ident"
	"github.com/talgya/aethelgard/internal/kernelerr"
	"github.com/talgya/aethelgard/internal/snapshot"
	"github.com/talgya/aethelgard/internal/worldclock"
)

func newTestWorld() *ecs.World {
	w := ecs.NewWorld()
	ecs.RegisterComponent[ecs.Tag](w)
	return w
}

func takeTestSnapshot(t *testing.T, snaps *snapshot.Manager) ident.SnapshotId {
	t.Helper()
	w := newTestWorld()
	e := w.CreateEntity()
	require.NoError(t, ecs.AddComponent(w, e, ecs.Tag{Name: "seed"}))
	clock := worldclock.New()
	require.NoError(t, clock.SetTick(100))
	log := eventlog.New()
	id, err := snaps.Take(w, clock, log)
	require.NoError(t, err)
	return id
}

func TestCreateBranchForksIndependentState(t *testing.T) {
	allocs := ident.NewAllocators()
	snaps := snapshot.NewManager(allocs)
	snapID := takeTestSnapshot(t, snaps)

	mgr := NewManager(allocs, snaps, newTestWorld)

	b, err := mgr.CreateBranch(snapID, Action{}, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), b.SourceTick)
	assert.NotEmpty(t, b.TraceID)
	assert.Equal(t, 1, mgr.Count())

	got, ok := mgr.Get(b.ID)
	require.True(t, ok)
	assert.Same(t, b, got)
}

func TestCreateBranchEnforcesLimit(t *testing.T) {
	allocs := ident.NewAllocators()
	snaps := snapshot.NewManager(allocs)
	snapID := takeTestSnapshot(t, snaps)
	mgr := NewManager(allocs, snaps, newTestWorld)

	for i := 0; i < MaxBranches; i++ {
		_, err := mgr.CreateBranch(snapID, Action{}, int64(i))
		require.NoError(t, err)
	}

	_, err := mgr.CreateBranch(snapID, Action{}, 999)
	assert.ErrorIs(t, err, kernelerr.ErrBranchLimitExceeded)
}

func TestRemoveCharacterActionDestroysEntity(t *testing.T) {
	allocs := ident.NewAllocators()
	snaps := snapshot.NewManager(allocs)

	w := newTestWorld()
	e := w.CreateEntity()
	require.NoError(t, ecs.AddComponent(w, e, ecs.Tag{Name: "alive"}))
	clock := worldclock.New()
	log := eventlog.New()
	snapID, err := snaps.Take(w, clock, log)
	require.NoError(t, err)

	mgr := NewManager(allocs, snaps, newTestWorld)
	b, err := mgr.CreateBranch(snapID, Action{RemoveCharacter: &RemoveCharacterAction{ID: ident.CharacterId(e)}}, 1)
	require.NoError(t, err)

	assert.False(t, b.World.IsAlive(e))
}

func TestAddEventActionAppendsToLogAndEmits(t *testing.T) {
	allocs := ident.NewAllocators()
	snaps := snapshot.NewManager(allocs)
	snapID := takeTestSnapshot(t, snaps)
	mgr := NewManager(allocs, snaps, newTestWorld)

	injected := event.Event{ID: 500, Category: event.Political, Subtype: "coup"}
	b, err := mgr.CreateBranch(snapID, Action{AddEvent: &AddEventAction{Event: injected}}, 1)
	require.NoError(t, err)

	got, ok := b.Log.GetByID(500)
	require.True(t, ok)
	assert.Equal(t, "coup", got.Subtype)
}

func TestDifferentSeedActionReplacesRandomFn(t *testing.T) {
	allocs := ident.NewAllocators()
	snaps := snapshot.NewManager(allocs)
	snapID := takeTestSnapshot(t, snaps)
	mgr := NewManager(allocs, snaps, newTestWorld)

	b, err := mgr.CreateBranch(snapID, Action{DifferentSeed: &DifferentSeedAction{Seed: 12345}}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), b.Seed)
	assert.Equal(t, randomFnFromSeed(12345)(), b.RandomFn(), "RandomFn must draw from the new seed")
}

func TestDeleteBranchIsIdempotent(t *testing.T) {
	allocs := ident.NewAllocators()
	snaps := snapshot.NewManager(allocs)
	snapID := takeTestSnapshot(t, snaps)
	mgr := NewManager(allocs, snaps, newTestWorld)

	b, err := mgr.CreateBranch(snapID, Action{}, 1)
	require.NoError(t, err)

	mgr.DeleteBranch(b.ID)
	assert.Equal(t, 0, mgr.Count())
	mgr.DeleteBranch(b.ID)
}

type stubEngine struct {
	advanceErr error
	calls      int
}

func (s *stubEngine) Advance(ctx context.Context) error {
	s.calls++
	return s.advanceErr
}

func TestRunBranchAdvancesForNTicks(t *testing.T) {
	allocs := ident.NewAllocators()
	snaps := snapshot.NewManager(allocs)
	snapID := takeTestSnapshot(t, snaps)
	mgr := NewManager(allocs, snaps, newTestWorld)

	b, err := mgr.CreateBranch(snapID, Action{}, 1)
	require.NoError(t, err)

	stub := &stubEngine{}
	result, err := mgr.RunBranch(b.ID, 5, func(w *ecs.World, c *worldclock.Clock, bus *eventbus.Bus, l *eventlog.Log) TickEngine {
		return stub
	})
	require.NoError(t, err)
	assert.Equal(t, 5, result.TicksRun)
	assert.Equal(t, 5, stub.calls)
}

func TestRunBranchUnknownID(t *testing.T) {
	allocs := ident.NewAllocators()
	snaps := snapshot.NewManager(allocs)
	mgr := NewManager(allocs, snaps, newTestWorld)

	_, err := mgr.RunBranch(999, 1, nil)
	assert.ErrorIs(t, err, kernelerr.ErrBranchNotFound)
}
