package kernel

import (
	"github.com/talgya/aethelgard/internal/ecs"
	"github.com/talgya/aethelgard/internal/eventbus"
	"github.com/talgya/aethelgard/internal/worldclock"
)

// Subsystem is anything the Kernel schedules and runs once per eligible
// tick. External collaborators implement this; the kernel never knows
// what a subsystem actually does.
type Subsystem interface {
	Name() string
	Frequency() uint64
	ExecutionOrder() int
	Execute(w *ecs.World, clock *worldclock.Clock, bus *eventbus.Bus)
}

// Cleanup is an optional extension a Subsystem may also implement, run
// once when the subsystem is removed via Kernel.Unregister.
type Cleanup interface {
	CleanupSubsystem()
}
