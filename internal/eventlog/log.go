// Package eventlog is the kernel's append-only, queryable record of
// every event that has ever happened. Entries are never removed; causal
// links between events accumulate as the cascade engine discovers them.
package eventlog

import (
	"fmt"

	"github.com/talgya/aethelgard/internal/event"
	"github.com/talgya/aethelgard/internal/ident"
	"github.com/talgya/aethelgard/internal/kernelerr"
)

// Log is the append-only event store. Not safe for concurrent use —
// callers own it exclusively, same as every other kernel structure (see
// SPEC_FULL §5).
type Log struct {
	entries  []event.Event
	byID     map[ident.EventId]int // index into entries
	byCat    map[event.Category][]ident.EventId
	bySub    map[string][]ident.EventId
}

// New returns an empty log.
func New() *Log {
	return &Log{
		byID:  make(map[ident.EventId]int),
		byCat: make(map[event.Category][]ident.EventId),
		bySub: make(map[string][]ident.EventId),
	}
}

// Append records e and indexes it by category and subtype. The caller
// is responsible for having allocated e.ID via ident.Allocators before
// calling Append. Fails with kernelerr.ErrDuplicateEventID if e.ID was
// already appended.
func (l *Log) Append(e event.Event) error {
	if _, exists := l.byID[e.ID]; exists {
		return fmt.Errorf("eventlog: append %s: %w", e.ID, kernelerr.ErrDuplicateEventID)
	}
	l.byID[e.ID] = len(l.entries)
	l.entries = append(l.entries, e)
	l.byCat[e.Category] = append(l.byCat[e.Category], e.ID)
	l.bySub[e.Subtype] = append(l.bySub[e.Subtype], e.ID)
	return nil
}

// GetAll returns every recorded event in insertion order. The returned
// slice is a copy; mutating it does not affect the log.
func (l *Log) GetAll() []event.Event {
	out := make([]event.Event, len(l.entries))
	copy(out, l.entries)
	return out
}

// GetCount reports how many events have been appended.
func (l *Log) GetCount() int { return len(l.entries) }

// GetByID returns the event with id, if it exists.
func (l *Log) GetByID(id ident.EventId) (event.Event, bool) {
	idx, ok := l.byID[id]
	if !ok {
		return event.Event{}, false
	}
	return l.entries[idx], true
}

// GetByCategory returns every event of the given category, in insertion
// order.
func (l *Log) GetByCategory(cat event.Category) []event.Event {
	ids := l.byCat[cat]
	out := make([]event.Event, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.entries[l.byID[id]])
	}
	return out
}

// GetBySubtype returns every event with the given subtype, in insertion
// order.
func (l *Log) GetBySubtype(subtype string) []event.Event {
	ids := l.bySub[subtype]
	out := make([]event.Event, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.entries[l.byID[id]])
	}
	return out
}

// GetInTickRange returns every event with start <= Timestamp <= end, in
// insertion order. A full scan: the log keeps no tick index, since
// range queries are rare relative to category/subtype lookups.
func (l *Log) GetInTickRange(start, end uint64) []event.Event {
	var out []event.Event
	for _, e := range l.entries {
		if e.Timestamp >= start && e.Timestamp <= end {
			out = append(out, e)
		}
	}
	return out
}

// LinkCause records that cause is a cause of effect: effect.Causes gains
// cause, and cause.Consequences gains effect. Idempotent — linking the
// same pair twice is a no-op the second time. Fails with
// kernelerr.ErrUnknownEvent if either id has not been appended.
func (l *Log) LinkCause(cause, effect ident.EventId) error {
	causeIdx, ok := l.byID[cause]
	if !ok {
		return fmt.Errorf("eventlog: link cause %s: %w", cause, kernelerr.ErrUnknownEvent)
	}
	effectIdx, ok := l.byID[effect]
	if !ok {
		return fmt.Errorf("eventlog: link effect %s: %w", effect, kernelerr.ErrUnknownEvent)
	}
	if !containsID(l.entries[effectIdx].Causes, cause) {
		l.entries[effectIdx].Causes = append(l.entries[effectIdx].Causes, cause)
	}
	if !containsID(l.entries[causeIdx].Consequences, effect) {
		l.entries[causeIdx].Consequences = append(l.entries[causeIdx].Consequences, effect)
	}
	return nil
}

func containsID(ids []ident.EventId, target ident.EventId) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
