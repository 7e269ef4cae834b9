// Package scheduler maps named subsystems to tick frequencies, with
// per-registration offset staggering so same-tier subsystems don't all
// fire on the same tick.
package scheduler

import "sort"

// Registration describes when one subsystem runs.
type Registration struct {
	Name           string
	Frequency      uint64
	Offset         uint64
	ExecutionOrder int
}

// Scheduler holds the subsystem → registration map.
type Scheduler struct {
	regs map[string]Registration
}

// New returns a scheduler with the default registration set (see
// Reset).
func New() *Scheduler {
	s := &Scheduler{}
	s.Reset()
	return s
}

// Register adds or overwrites subsystem's registration.
func (s *Scheduler) Register(name string, frequency, offset uint64, executionOrder int) {
	s.regs[name] = Registration{Name: name, Frequency: frequency, Offset: offset, ExecutionOrder: executionOrder}
}

// Unregister removes subsystem's registration. Idempotent.
func (s *Scheduler) Unregister(name string) {
	delete(s.regs, name)
}

// ShouldRun reports whether subsystem is registered and eligible to run
// on tick, i.e. (tick - offset) mod frequency == 0.
func (s *Scheduler) ShouldRun(name string, tick uint64) bool {
	r, ok := s.regs[name]
	if !ok {
		return false
	}
	return shouldRun(r, tick)
}

func shouldRun(r Registration, tick uint64) bool {
	if r.Frequency == 0 {
		return false
	}
	if tick < r.Offset {
		return false
	}
	return (tick-r.Offset)%r.Frequency == 0
}

// SystemsForTick enumerates eligible subsystem names for tick, sorted
// by ascending ExecutionOrder (ties broken by name for determinism).
func (s *Scheduler) SystemsForTick(tick uint64) []string {
	var eligible []Registration
	for _, r := range s.regs {
		if shouldRun(r, tick) {
			eligible = append(eligible, r)
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].ExecutionOrder != eligible[j].ExecutionOrder {
			return eligible[i].ExecutionOrder < eligible[j].ExecutionOrder
		}
		return eligible[i].Name < eligible[j].Name
	})
	names := make([]string, len(eligible))
	for i, r := range eligible {
		names[i] = r.Name
	}
	return names
}

// Registrations returns a snapshot of every current registration,
// unordered.
func (s *Scheduler) Registrations() []Registration {
	out := make([]Registration, 0, len(s.regs))
	for _, r := range s.regs {
		out = append(out, r)
	}
	return out
}
