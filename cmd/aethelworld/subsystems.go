package main

import (
	"github.com/talgya/aethelgard/internal/ecs"
	"github.com/talgya/aethelgard/internal/event"
	"github.com/talgya/aethelgard/internal/eventbus"
	"github.com/talgya/aethelgard/internal/ident"
	"github.com/talgya/aethelgard/internal/worldclock"
)

// Settlement is the demo's one domain component: a population figure
// and the carrying capacity it's measured against. Real deployments
// bring their own components; the kernel never looks inside this one.
type Settlement struct {
	Name       string  `json:"name"`
	Population int32   `json:"population"`
	Capacity   int32   `json:"capacity"`
	Unrest     float64 `json:"unrest"`
}

// pressureThreshold is the population/capacity ratio above which a
// settlement's pressure subsystem starts raising unrest.
const pressureThreshold = 0.85

// growthRate is the daily population growth applied below capacity.
const growthRate = 1.01

// populationPressure grows each settlement toward its capacity and, once
// a settlement crosses pressureThreshold, emits an Economic "overcrowding"
// event carrying a consequence rule that may later fire a Political
// "unrest" event — the cascade engine, not this subsystem, decides
// whether and when that follow-on actually happens.
type populationPressure struct {
	allocs *ident.Allocators
}

func newPopulationPressure(allocs *ident.Allocators) *populationPressure {
	return &populationPressure{allocs: allocs}
}

func (p *populationPressure) Name() string       { return "population-pressure" }
func (p *populationPressure) Frequency() uint64   { return worldclock.Daily }
func (p *populationPressure) ExecutionOrder() int { return 10 }

func (p *populationPressure) Execute(w *ecs.World, clock *worldclock.Clock, bus *eventbus.Bus) {
	for _, e := range ecs.Query[Settlement](w) {
		s, ok := ecs.GetComponent[Settlement](w, e)
		if !ok {
			continue
		}
		if s.Population < s.Capacity {
			s.Population = int32(float64(s.Population) * growthRate)
			if s.Population > s.Capacity {
				s.Population = s.Capacity
			}
		}

		pressure := float64(s.Population) / float64(s.Capacity)
		if pressure >= pressureThreshold {
			s.Unrest += (pressure - pressureThreshold) * 10
		}
		_ = ecs.AddComponent(w, e, s)

		if pressure < pressureThreshold {
			continue
		}

		significance := int32(pressure * 100)
		if significance > 100 {
			significance = 100
		}

		bus.Emit(event.Event{
			ID:           ident.ToEventId(p.allocs.NextEntity()),
			Category:     event.Economic,
			Subtype:      "overcrowding",
			Timestamp:    clock.CurrentTick(),
			Participants: []ident.EntityId{e},
			Significance: significance,
			Data: map[string]any{
				"settlement": s.Name,
				"pressure":   pressure,
			},
			ConsequencePotential: []event.ConsequenceRule{
				{
					EventSubtype:    "unrest",
					BaseProbability: 0.4,
					Category:        event.Political,
					DelayTicks:      worldclock.Weekly,
					Dampening:       0.2,
				},
			},
		})
	}
}

// rumorUnrest checks each settlement weekly and, once the unrest that
// populationPressure accumulates reaches 5, emits a Personal
// "grievance-aired" event carrying its own consequence rule and resets
// that settlement's unrest — a second cascade source layered on top of
// the first.
type rumorUnrest struct {
	allocs *ident.Allocators
}

func newRumorUnrest(allocs *ident.Allocators) *rumorUnrest {
	return &rumorUnrest{allocs: allocs}
}

func (r *rumorUnrest) Name() string       { return "rumor-unrest" }
func (r *rumorUnrest) Frequency() uint64  { return worldclock.Weekly }
func (r *rumorUnrest) ExecutionOrder() int { return 20 }

func (r *rumorUnrest) Execute(w *ecs.World, clock *worldclock.Clock, bus *eventbus.Bus) {
	for _, e := range ecs.Query[Settlement](w) {
		s, ok := ecs.GetComponent[Settlement](w, e)
		if !ok || s.Unrest < 5 {
			continue
		}

		bus.Emit(event.Event{
			ID:           ident.ToEventId(r.allocs.NextEntity()),
			Category:     event.Personal,
			Subtype:      "grievance-aired",
			Timestamp:    clock.CurrentTick(),
			Participants: []ident.EntityId{e},
			Significance: int32(s.Unrest),
			Data: map[string]any{
				"settlement": s.Name,
				"unrest":     s.Unrest,
			},
			ConsequencePotential: []event.ConsequenceRule{
				{
					EventSubtype:    "faction-schism",
					BaseProbability: 0.15,
					Category:        event.Political,
					DelayTicks:      worldclock.Monthly,
					Dampening:       0.3,
				},
			},
		})

		s.Unrest = 0
		_ = ecs.AddComponent(w, e, s)
	}
}
