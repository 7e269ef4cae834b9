package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/aethelgard/internal/ecs"
	"github.com/talgya/aethelgard/internal/event"
	"github.com/talgya/aethelgard/internal/eventlog"
	"github.com/talgya/aethelgard/internal/ident"
	"github.com/talgya/aethelgard/internal/worldclock"
)

func TestTakeThenRestoreReproducesWorld(t *testing.T) {
	allocs := ident.NewAllocators()
	mgr := NewManager(allocs)

	w := ecs.NewWorld()
	ecs.RegisterComponent[ecs.Position](w)
	e := w.CreateEntity()
	require.NoError(t, ecs.AddComponent(w, e, ecs.Position{X: 7, Y: 8}))

	clock := worldclock.New()
	require.NoError(t, clock.SetTick(42))
	log := eventlog.New()
	require.NoError(t, log.Append(event.Event{ID: 1, Category: event.Military, Subtype: "raid", Timestamp: 10}))

	id, err := mgr.Take(w, clock, log)
	require.NoError(t, err)
	assert.Equal(t, 1, mgr.Count())

	// mutate the live world after the snapshot to prove restore is independent.
	require.NoError(t, ecs.AddComponent(w, e, ecs.Position{X: 999, Y: 999}))

	dst := ecs.NewWorld()
	ecs.RegisterComponent[ecs.Position](dst)
	restoredClock, restoredLog, err := mgr.Restore(id, dst)
	require.NoError(t, err)

	assert.Equal(t, uint64(42), restoredClock.CurrentTick())
	assert.Equal(t, 1, restoredLog.GetCount())
	assert.True(t, dst.IsAlive(e))

	pos, ok := ecs.GetComponent[ecs.Position](dst, e)
	require.True(t, ok)
	assert.Equal(t, ecs.Position{X: 7, Y: 8}, pos, "restore must reflect the state at Take time, not the live world's later mutation")
}

func TestRestoreUnknownSnapshot(t *testing.T) {
	mgr := NewManager(ident.NewAllocators())
	_, _, err := mgr.Restore(999, ecs.NewWorld())
	assert.ErrorIs(t, err, ErrUnknownSnapshot)
}

func TestDiscardIsIdempotentAndDropsCount(t *testing.T) {
	allocs := ident.NewAllocators()
	mgr := NewManager(allocs)
	w := ecs.NewWorld()
	clock := worldclock.New()
	log := eventlog.New()

	id, err := mgr.Take(w, clock, log)
	require.NoError(t, err)
	assert.Equal(t, 1, mgr.Count())

	mgr.Discard(id)
	assert.Equal(t, 0, mgr.Count())
	mgr.Discard(id) // idempotent
}

func TestRestoreDropsRowsForUnregisteredTypes(t *testing.T) {
	allocs := ident.NewAllocators()
	mgr := NewManager(allocs)

	w := ecs.NewWorld()
	ecs.RegisterComponent[ecs.Position](w)
	e := w.CreateEntity()
	require.NoError(t, ecs.AddComponent(w, e, ecs.Position{X: 1, Y: 1}))

	clock := worldclock.New()
	log := eventlog.New()
	id, err := mgr.Take(w, clock, log)
	require.NoError(t, err)

	dst := ecs.NewWorld() // Position never registered on dst
	_, _, err = mgr.Restore(id, dst)
	require.NoError(t, err)
	assert.True(t, dst.IsAlive(e), "the entity itself still revives even if its component type is unregistered")
	_, ok := ecs.GetComponent[ecs.Position](dst, e)
	assert.False(t, ok)
}

func TestRestoreResetsDestinationWorldFirst(t *testing.T) {
	allocs := ident.NewAllocators()
	mgr := NewManager(allocs)

	w := ecs.NewWorld()
	clock := worldclock.New()
	log := eventlog.New()
	id, err := mgr.Take(w, clock, log)
	require.NoError(t, err)

	dst := ecs.NewWorld()
	ecs.RegisterComponent[ecs.Tag](dst)
	stale := dst.CreateEntity()
	require.NoError(t, ecs.AddComponent(dst, stale, ecs.Tag{Name: "stale"}))

	_, _, err = mgr.Restore(id, dst)
	require.NoError(t, err)
	assert.False(t, dst.IsAlive(stale), "Restore must clear dst's pre-existing entities before repopulating")
}
