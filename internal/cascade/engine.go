// Package cascade turns an event's declared consequence rules into
// scheduled, probabilistically-resolved follow-on events — the kernel's
// consequence-propagation engine.
package cascade

import (
	"math"

	"github.com/talgya/aethelgard/internal/event"
	"github.com/talgya/aethelgard/internal/eventbus"
	"github.com/talgya/aethelgard/internal/eventlog"
	"github.com/talgya/aethelgard/internal/ident"
)

const (
	// DefaultMaxCascadeDepth bounds recursive consequence chains.
	DefaultMaxCascadeDepth = 10
	// DefaultMinProbabilityThreshold is the floor below which a
	// consequence is not worth scheduling at all.
	DefaultMinProbabilityThreshold = 0.01

	// significanceDecayPerDepth is the flat per-depth decay applied to a
	// fired consequence's inherited significance (spec: (1-0.1)^depth).
	significanceDecayPerDepth = 0.1
)

// RandomFn draws a uniform value in [0,1). Injectable so cascade
// resolution is deterministic under test and under replay — never
// math/rand's global source, matching the teacher's own owned-*rand.Rand
// pattern in agents.Spawner.
type RandomFn func() float64

// Engine is the pending-consequence scheduler and resolver. Not safe
// for concurrent use.
type Engine struct {
	pending []event.PendingConsequence

	maxCascadeDepth         int
	minProbabilityThreshold float64
	randomFn                RandomFn

	log    *eventlog.Log
	bus    *eventbus.Bus
	allocs *ident.Allocators

	onConsequenceCreated OnConsequenceCreated
}

// OnConsequenceCreated lets a caller enrich a freshly fired consequence
// (source is the event that caused it) before it is logged and emitted.
// The default is pass-through: return consequence unchanged.
type OnConsequenceCreated func(source, consequence event.Event) event.Event

// Config customizes an Engine's limits and randomness source.
// Zero-value fields fall back to the package defaults.
type Config struct {
	MaxCascadeDepth         int
	MinProbabilityThreshold float64
	RandomFn                RandomFn
	OnConsequenceCreated    OnConsequenceCreated
}

// New returns an Engine wired to log, bus, and allocs. cfg may be the
// zero value, in which case package defaults apply; RandomFn must be
// supplied by the caller to get non-degenerate behavior (the zero
// Engine has no randomness source and treats every draw as 1, so no
// consequence ever fires — a safe, inert default).
func New(log *eventlog.Log, bus *eventbus.Bus, allocs *ident.Allocators, cfg Config) *Engine {
	e := &Engine{
		log:                     log,
		bus:                     bus,
		allocs:                  allocs,
		maxCascadeDepth:         cfg.MaxCascadeDepth,
		minProbabilityThreshold: cfg.MinProbabilityThreshold,
		randomFn:                cfg.RandomFn,
		onConsequenceCreated:    cfg.OnConsequenceCreated,
	}
	if e.maxCascadeDepth <= 0 {
		e.maxCascadeDepth = DefaultMaxCascadeDepth
	}
	if e.minProbabilityThreshold <= 0 {
		e.minProbabilityThreshold = DefaultMinProbabilityThreshold
	}
	if e.randomFn == nil {
		e.randomFn = func() float64 { return 1 }
	}
	if e.onConsequenceCreated == nil {
		e.onConsequenceCreated = func(_, consequence event.Event) event.Event { return consequence }
	}
	return e
}

// PendingCount reports how many consequences are scheduled but not yet
// resolved.
func (e *Engine) PendingCount() int { return len(e.pending) }

// Clear drops every pending consequence without firing any of them.
func (e *Engine) Clear() { e.pending = nil }

// ProcessEvent evaluates source's declared consequence rules and
// schedules the ones that clear the dampening/cross-domain/threshold
// gauntlet as pending consequences. depth is the recursion depth of
// source itself (0 for an externally-originated event).
func (e *Engine) ProcessEvent(source event.Event, currentTick uint64, depth int) {
	if depth >= e.maxCascadeDepth {
		return
	}
	for _, rule := range source.ConsequencePotential {
		effectiveDampening := AdjustDampeningForSignificance(rule.Dampening, source.Significance)
		effectiveProbability := DampenedProbability(rule.BaseProbability, effectiveDampening, depth)

		if mult, ok := CrossDomainModifier(source.Category, rule.Category); ok {
			effectiveProbability *= mult
		} else {
			effectiveProbability *= UndefinedTransitionPenalty
		}
		effectiveProbability = clamp01(effectiveProbability)

		if !ShouldContinueCascade(effectiveProbability, e.minProbabilityThreshold) {
			continue
		}

		e.pending = append(e.pending, event.PendingConsequence{
			Rule:                 rule,
			SourceEventID:        source.ID,
			FireTick:             currentTick + uint64(rule.DelayTicks),
			Depth:                depth + 1,
			EffectiveProbability: effectiveProbability,
		})
	}
}

// TickResult summarizes one ResolveTick call.
type TickResult struct {
	EventsGenerated int
	PendingCount    int
}

// ResolveTick pops every due pending consequence (fireTick <=
// currentTick), rolls each against its effective probability, and for
// the ones that fire: constructs the consequence event, links it
// causally to its source, appends it to the log, emits it on the bus,
// and recurses into ProcessEvent for same-tick chaining. Newly scheduled
// consequences that are themselves immediately due are picked up in a
// follow-up pass within the same call, repeating until no due entries
// remain.
func (e *Engine) ResolveTick(currentTick uint64) TickResult {
	result := TickResult{}
	for {
		due, notYetDue := partitionDue(e.pending, currentTick)
		e.pending = notYetDue
		if len(due) == 0 {
			break
		}
		for _, entry := range due {
			if e.randomFn() >= entry.EffectiveProbability {
				continue
			}
			consequence := e.fire(entry, currentTick)
			result.EventsGenerated++
			e.ProcessEvent(consequence, currentTick, entry.Depth)
		}
	}
	result.PendingCount = len(e.pending)
	return result
}

func partitionDue(pending []event.PendingConsequence, currentTick uint64) (due, notYetDue []event.PendingConsequence) {
	for _, p := range pending {
		if p.FireTick <= currentTick {
			due = append(due, p)
		} else {
			notYetDue = append(notYetDue, p)
		}
	}
	return due, notYetDue
}

func (e *Engine) fire(entry event.PendingConsequence, currentTick uint64) event.Event {
	significance := decayedSignificance(e.sourceSignificance(entry.SourceEventID), entry.Depth)

	consequence := event.Event{
		ID:                   ident.ToEventId(e.allocs.NextEntity()),
		Category:             entry.Rule.Category,
		Subtype:              entry.Rule.EventSubtype,
		Timestamp:            currentTick,
		Participants:         nil,
		Causes:               []ident.EventId{entry.SourceEventID},
		Consequences:         nil,
		Data:                 map[string]any{},
		Significance:         significance,
		ConsequencePotential: nil,
	}

	source, _ := e.log.GetByID(entry.SourceEventID)
	consequence = e.onConsequenceCreated(source, consequence)

	if err := e.log.Append(consequence); err == nil {
		// Absent source is not fatal: LinkCause simply fails and the
		// consequence keeps its Causes entry without a matching
		// Consequences backlink on a source that no longer exists.
		_ = e.log.LinkCause(entry.SourceEventID, consequence.ID)
	}
	e.bus.Emit(consequence)
	return consequence
}

func (e *Engine) sourceSignificance(id ident.EventId) int32 {
	src, ok := e.log.GetByID(id)
	if !ok {
		return 0
	}
	return src.Significance
}

func decayedSignificance(base int32, depth int) int32 {
	factor := math.Pow(1-significanceDecayPerDepth, float64(depth))
	v := math.Round(float64(base) * factor)
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int32(v)
}
