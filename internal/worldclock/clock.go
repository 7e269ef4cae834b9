// Package worldclock provides the simulation's tick counter and its
// two unrelated notions of "how long is a year": a 360-day calendar
// used only for human-readable display, and 365/3650-tick
// annual/decadal frequencies used for scheduling and elapsed-period
// math. Both are load-bearing and intentionally asymmetric — see
// spec §3.
package worldclock

import (
	"fmt"

	"github.com/talgya/aethelgard/internal/kernelerr"
)

// Tick frequencies, in ticks per period. Monthly/Seasonal in this table
// are derived from the 30-day calendar month deliberately; Annual and
// Decadal deliberately are not (365 and 3650, not 360 and 3600).
const (
	Daily    uint64 = 1
	Weekly   uint64 = 7
	Monthly  uint64 = 30
	Seasonal uint64 = 90
	Annual   uint64 = 365
	Decadal  uint64 = 3650
)

// Calendar constants for display conversion only. Never consulted by
// scheduling math.
const (
	daysPerMonth  = 30
	monthsPerYear = 12
	daysPerYear   = daysPerMonth * monthsPerYear // 360
)

// Clock holds the world's tick counter. currentTick is monotone
// non-decreasing across Advance/AdvanceBy/SetTick(>=current); an
// explicit Load (outside this package, via the save loader) may reset
// it.
type Clock struct {
	currentTick uint64
}

// New returns a clock at tick 0.
func New() *Clock { return &Clock{} }

// CurrentTick returns the current tick.
func (c *Clock) CurrentTick() uint64 { return c.currentTick }

// Advance increments the tick by 1.
func (c *Clock) Advance() { c.currentTick++ }

// AdvanceBy increments the tick by n. Fails with ErrNegativeAdvance if
// n < 0.
func (c *Clock) AdvanceBy(n int64) error {
	if n < 0 {
		return fmt.Errorf("worldclock: advance by %d: %w", n, kernelerr.ErrNegativeAdvance)
	}
	c.currentTick += uint64(n)
	return nil
}

// SetTick sets the absolute tick. Fails with kernelerr.ErrNegativeTick
// if t < 0. Per C-1, setting to a tick below the current one is only
// permitted through this explicit call (monotonicity is not otherwise
// enforced by SetTick — the save loader relies on exactly this to
// restore a clock's state).
func (c *Clock) SetTick(t int64) error {
	if t < 0 {
		return fmt.Errorf("worldclock: set tick %d: %w", t, kernelerr.ErrNegativeTick)
	}
	c.currentTick = uint64(t)
	return nil
}

// Reset returns the clock to tick 0.
func (c *Clock) Reset() { c.currentTick = 0 }

// IsNewWeek reports whether the current tick begins a new week.
func (c *Clock) IsNewWeek() bool { return c.currentTick%Weekly == 0 }

// IsNewMonth reports whether the current tick begins a new month.
func (c *Clock) IsNewMonth() bool { return c.currentTick%Monthly == 0 }

// IsNewSeason reports whether the current tick begins a new season.
func (c *Clock) IsNewSeason() bool { return c.currentTick%Seasonal == 0 }

// IsNewYear reports whether the current tick begins a new year.
func (c *Clock) IsNewYear() bool { return c.currentTick%Annual == 0 }

// IsNewDecade reports whether the current tick begins a new decade.
func (c *Clock) IsNewDecade() bool { return c.currentTick%Decadal == 0 }

// GetElapsedYears floors currentTick/365. Elapsed-period accessors
// always floor, per spec §4.C.
func (c *Clock) GetElapsedYears() uint64 { return c.currentTick / Annual }

// GetElapsedDecades floors currentTick/3650.
func (c *Clock) GetElapsedDecades() uint64 { return c.currentTick / Decadal }

// Calendar is the 360-day-calendar breakdown of a tick, used only for
// display and for the worldAge field emitted on saves.
type Calendar struct {
	Year  uint64 // 1-based
	Month uint64 // 1-based, 1..12
	Day   uint64 // 1-based, 1..30
}

// CalendarAt converts tick into a 360-day calendar date. Ticks here are
// treated as days (the kernel does not model sub-day resolution itself
// — external subsystems layer finer-grained time atop ticks if needed).
func CalendarAt(tick uint64) Calendar {
	day := tick % daysPerMonth
	totalMonths := tick / daysPerMonth
	month := totalMonths % monthsPerYear
	year := totalMonths / monthsPerYear
	return Calendar{Year: year + 1, Month: month + 1, Day: day + 1}
}

// Calendar returns the clock's current calendar date.
func (c *Clock) Calendar() Calendar { return CalendarAt(c.currentTick) }

// String renders the calendar as "Year Y, Month M Day D".
func (cal Calendar) String() string {
	return fmt.Sprintf("Year %d, Month %d Day %d", cal.Year, cal.Month, cal.Day)
}
