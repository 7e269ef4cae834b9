// Package kernelerr collects the kernel's closed set of Validation
// sentinel errors and its Invariant panic type for Fatal failures.
// Validation failures are reported by returning one of these, usually
// wrapped with fmt.Errorf("...: %w", ...) at the call site, so callers
// can test them with errors.Is. A few package-local errors exist beside
// them (snapshot.ErrUnknownSnapshot, save.ErrFileNotFound).
package kernelerr

import "errors"

var (
	// ErrNegativeTick is returned when a clock is set to a tick below zero.
	ErrNegativeTick = errors.New("kernelerr: negative tick")
	// ErrNegativeAdvance is returned when a clock is advanced by a negative amount.
	ErrNegativeAdvance = errors.New("kernelerr: negative advance")
	// ErrStoreUnregistered is returned when a component operation targets
	// a type with no registered store.
	ErrStoreUnregistered = errors.New("kernelerr: component store not registered")
	// ErrEntityDead is returned when a component operation targets a
	// non-alive entity.
	ErrEntityDead = errors.New("kernelerr: entity is not alive")
	// ErrDuplicateEventID is returned when an event log append reuses an
	// existing id.
	ErrDuplicateEventID = errors.New("kernelerr: duplicate event id")
	// ErrUnknownEvent is returned when a causal link names an id the log
	// has never recorded.
	ErrUnknownEvent = errors.New("kernelerr: unknown event id")
	// ErrBranchLimitExceeded is returned when creating a branch would
	// exceed MaxBranches.
	ErrBranchLimitExceeded = errors.New("kernelerr: branch limit exceeded")
	// ErrBranchNotFound is returned when a branch operation names an
	// unknown branch id.
	ErrBranchNotFound = errors.New("kernelerr: branch not found")
	// ErrUnsupportedVersion is returned when a save payload's version
	// does not match the version this build understands.
	ErrUnsupportedVersion = errors.New("kernelerr: unsupported save version")
	// ErrIncrementalBaseNotFull is returned when an incremental save's
	// base does not resolve to a full save — chained incremental replay
	// is not supported.
	ErrIncrementalBaseNotFull = errors.New("kernelerr: incremental base is not a full save")
)

// Invariant is the panic value raised for Fatal (bug-class) failures —
// conditions the kernel's own contracts guarantee can't happen, so a
// caller seeing one has found an actual defect rather than a validation
// failure. Kernel.Advance recovers Invariant at the tick boundary,
// rolls back to the pre-tick snapshot, and returns it as an error.
type Invariant struct {
	Reason string
}

func (i Invariant) Error() string { return "kernelerr: invariant violated: " + i.Reason }
