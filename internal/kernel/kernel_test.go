package kernel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/aethelgard/internal/cascade"
	"github.com/talgya/aethelgard/internal/ecs"
	"github.com/talgya/aethelgard/internal/event"
	"github.com/talgya/aethelgard/internal/eventbus"
	"github.com/talgya/aethelgard/internal/eventlog"
	"github.com/talgya/aethelgard/internal/ident"
	"github.com/talgya/aethelgard/internal/kernelerr"
	"github.com/talgya/aethelgard/internal/scheduler"
	"github.com/talgya/aethelgard/internal/snapshot"
	"github.com/talgya/aethelgard/internal/worldclock"
)

func newTestKernel(t *testing.T) *Kernel {
	t.Helper()
	w := ecs.NewWorld()
	ecs.RegisterComponent[ecs.Tag](w)
	allocs := ident.NewAllocators()
	return New(Config{
		World:     w,
		Clock:     worldclock.New(),
		Scheduler: scheduler.New(),
		Bus:       eventbus.New(nil),
		Log:       eventlog.New(),
		Snapshots: snapshot.NewManager(allocs),
	})
}

type countingSubsystem struct {
	name   string
	freq   uint64
	order  int
	ran    int
	action func(w *ecs.World, clock *worldclock.Clock, bus *eventbus.Bus)
}

func (c *countingSubsystem) Name() string          { return c.name }
func (c *countingSubsystem) Frequency() uint64      { return c.freq }
func (c *countingSubsystem) ExecutionOrder() int    { return c.order }
func (c *countingSubsystem) Execute(w *ecs.World, clock *worldclock.Clock, bus *eventbus.Bus) {
	c.ran++
	if c.action != nil {
		c.action(w, clock, bus)
	}
}

func TestAdvanceRunsEligibleSubsystemsAndTicksClock(t *testing.T) {
	k := newTestKernel(t)
	sys := &countingSubsystem{name: "tester", freq: 1, order: 0}
	k.Register(sys)

	require.NoError(t, k.Advance(context.Background()))
	assert.Equal(t, 1, sys.ran)
	assert.Equal(t, uint64(1), k.Clock.CurrentTick())
}

func TestAdvanceSkipsIneligibleSubsystems(t *testing.T) {
	k := newTestKernel(t)
	sys := &countingSubsystem{name: "weekly", freq: worldclock.Weekly, order: 0}
	k.Register(sys)

	require.NoError(t, k.Advance(context.Background())) // tick 0: eligible
	assert.Equal(t, 1, sys.ran)
	require.NoError(t, k.Advance(context.Background())) // tick 1: not eligible
	assert.Equal(t, 1, sys.ran)
}

func TestAdvanceRejectsCancelledContext(t *testing.T) {
	k := newTestKernel(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := k.Advance(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(0), k.Clock.CurrentTick(), "a cancelled context must abort before any tick work runs")
}

func TestAdmitEventAppendsToLogAndLinksCauses(t *testing.T) {
	k := newTestKernel(t)
	cause := event.Event{ID: 1, Category: event.Military, Subtype: "raid", Timestamp: 0}
	require.NoError(t, k.Log.Append(cause))

	effect := event.Event{ID: 2, Category: event.Political, Subtype: "unrest", Timestamp: 0, Causes: []ident.EventId{1}}
	k.Bus.Emit(effect)

	got, ok := k.Log.GetByID(2)
	require.True(t, ok)
	assert.Equal(t, "unrest", got.Subtype)

	updatedCause, _ := k.Log.GetByID(1)
	assert.Contains(t, updatedCause.Consequences, ident.EventId(2))
}

func TestAdmitEventOffersEmittedEventsToCascade(t *testing.T) {
	k := newTestKernel(t)
	k.Cascade = cascade.New(k.Log, k.Bus, ident.NewAllocators(), cascade.Config{RandomFn: func() float64 { return 0 }})

	source := event.Event{
		ID: 1, Category: event.Military, Subtype: "raid", Timestamp: 0, Significance: 50,
		ConsequencePotential: []event.ConsequenceRule{
			{EventSubtype: "unrest", BaseProbability: 1, Category: event.Political, DelayTicks: 0, Dampening: 0},
		},
	}
	k.Bus.Emit(source)

	assert.Equal(t, 1, k.Cascade.PendingCount(), "admitEvent must hand every emitted event to the cascade engine")
}

func TestAdvanceRollsBackWorldClockAndLogOnInvariantPanic(t *testing.T) {
	k := newTestKernel(t)
	e := k.World.CreateEntity()
	require.NoError(t, ecs.AddComponent(k.World, e, ecs.Tag{Name: "before"}))
	require.NoError(t, k.Log.Append(event.Event{ID: 1, Category: event.Military, Subtype: "seed", Timestamp: 0}))

	sys := &countingSubsystem{
		name: "breaker", freq: 1, order: 0,
		action: func(w *ecs.World, clock *worldclock.Clock, bus *eventbus.Bus) {
			w.DestroyEntity(e)
			_ = ecs.AddComponent(w, w.CreateEntity(), ecs.Tag{Name: "during"})
			panic(kernelerr.Invariant{Reason: "boom"})
		},
	}
	k.Register(sys)

	err := k.Advance(context.Background())
	require.Error(t, err)
	var inv kernelerr.Invariant
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "boom", inv.Reason)

	assert.True(t, k.World.IsAlive(e), "the entity destroyed mid-tick must be restored")
	assert.Equal(t, 1, k.World.EntityCount(), "the entity created mid-tick must not survive rollback")
	assert.Equal(t, uint64(0), k.Clock.CurrentTick(), "the clock must not have advanced past the rolled-back tick")
	assert.Equal(t, 1, k.Log.GetCount(), "log entries appended mid-tick must be rolled back")
}

func TestRegisterAndUnregisterRunsCleanupHook(t *testing.T) {
	k := newTestKernel(t)
	cleaned := false
	sys := &cleanupSubsystem{countingSubsystem: countingSubsystem{name: "temp", freq: 1, order: 0}, cleanup: func() { cleaned = true }}
	k.Register(sys)
	k.Unregister("temp")

	require.NoError(t, k.Advance(context.Background()))
	assert.Equal(t, 0, sys.ran, "unregistered subsystem must not run")
	assert.True(t, cleaned)
}

type cleanupSubsystem struct {
	countingSubsystem
	cleanup func()
}

func (c *cleanupSubsystem) CleanupSubsystem() { c.cleanup() }
