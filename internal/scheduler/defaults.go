package scheduler

import "github.com/talgya/aethelgard/internal/worldclock"

// defaultSpec is one entry in the default 27-subsystem registration.
// The kernel does not prescribe what these subsystems actually do —
// spec §4.D is explicit that "the core does not prescribe offsets;
// callers do" — this table only exists so Reset is deterministic and
// so a fresh Scheduler has something plausible to demonstrate against
// in cmd/aethelworld. Real deployments register their own subsystems.
type defaultSpec struct {
	name      string
	frequency uint64
	offset    uint64
}

var defaultTiers = [][]defaultSpec{
	{ // Daily
		{"needs-decay", worldclock.Daily, 0},
		{"agent-decisions", worldclock.Daily, 0},
		{"market-resolution", worldclock.Daily, 0},
		{"weather-update", worldclock.Daily, 0},
		{"event-resolution", worldclock.Daily, 0},
	},
	{ // Weekly
		{"faction-update", worldclock.Weekly, 0},
		{"diplomatic-cycle", worldclock.Weekly, 1},
		{"infrastructure-growth", worldclock.Weekly, 2},
		{"settlement-viability", worldclock.Weekly, 3},
		{"tier2-cognition", worldclock.Weekly, 4},
	},
	{ // Monthly
		{"population-growth", worldclock.Monthly, 0},
		{"migration", worldclock.Monthly, 5},
		{"governance-review", worldclock.Monthly, 10},
		{"crime-resolution", worldclock.Monthly, 15},
		{"relationship-decay", worldclock.Monthly, 20},
	},
	{ // Seasonal
		{"harvest", worldclock.Seasonal, 0},
		{"seasonal-shift", worldclock.Seasonal, 22},
		{"trade-route-update", worldclock.Seasonal, 45},
		{"cultural-drift", worldclock.Seasonal, 67},
	},
	{ // Annual
		{"census", worldclock.Annual, 0},
		{"succession", worldclock.Annual, 90},
		{"treasury-audit", worldclock.Annual, 180},
		{"archetype-recalibration", worldclock.Annual, 270},
	},
	{ // Decadal
		{"dynastic-succession", worldclock.Decadal, 0},
		{"world-legacy-review", worldclock.Decadal, 900},
		{"monument-decay", worldclock.Decadal, 1800},
		{"oracle-realignment", worldclock.Decadal, 2700},
	},
}

// Reset restores the default 27-subsystem registration across the six
// frequency tiers. Idempotent and deterministic: calling it twice in a
// row, or after arbitrary Register/Unregister calls, always yields the
// same registration set with the same execution order.
func (s *Scheduler) Reset() {
	s.regs = make(map[string]Registration)
	order := 0
	for _, tier := range defaultTiers {
		for _, d := range tier {
			s.regs[d.name] = Registration{
				Name:           d.name,
				Frequency:      d.frequency,
				Offset:         d.offset,
				ExecutionOrder: order,
			}
			order++
		}
	}
}
