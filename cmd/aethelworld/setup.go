package main

import (
	"math/rand"

	"github.com/talgya/aethelgard/internal/ecs"
	"github.com/talgya/aethelgard/internal/ident"
	"github.com/talgya/aethelgard/internal/save"
)

// seedWorld creates a handful of settlements near their capacity, so
// population-pressure starts emitting within the first few ticks
// instead of a long empty runway.
func seedWorld(w *ecs.World, allocs *ident.Allocators, tracker *save.Tracker) {
	seeds := []Settlement{
		{Name: "Aldermoor", Population: 900, Capacity: 1000},
		{Name: "Brackenfen", Population: 600, Capacity: 1200},
		{Name: "Crosswick", Population: 1150, Capacity: 1200},
	}
	for _, s := range seeds {
		e := w.CreateEntity()
		_ = ecs.AddComponent(w, e, s)
		tracker.MarkCreated(e)
	}
}

// newSeededFloat64 wraps a seeded *rand.Rand as a cascade.RandomFn,
// never the global math/rand source, so a run is reproducible given the
// same seed.
func newSeededFloat64(seed int64) func() float64 {
	r := rand.New(rand.NewSource(seed))
	return r.Float64
}
