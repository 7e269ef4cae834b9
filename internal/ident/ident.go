// Package ident provides the kernel's branded identifier types and the
// process-wide allocators that mint them.
//
// Every identifier kind in Aethelgard is a distinct int32 alias so that
// an EntityId can never be passed where a FactionId is expected, even
// though both are, underneath, just integers. EventId is the one
// derived kind: events are entities, so toEventId wraps an EntityId
// rather than allocating its own sequence.
package ident

import "fmt"

// EntityId identifies an entity in the world's component store.
type EntityId int32

// EventId identifies an event. Events are entities, so an EventId is
// always derived from an EntityId rather than separately allocated.
type EventId int32

// CharacterId identifies a character external to the kernel's ECS.
type CharacterId int32

// FactionId identifies a faction external to the kernel's ECS.
type FactionId int32

// SiteId identifies a location external to the kernel's ECS.
type SiteId int32

// ArcId identifies a narrative arc external to the kernel's ECS.
type ArcId int32

// SaveId identifies a persisted save file.
type SaveId int32

// SnapshotId identifies an in-memory snapshot.
type SnapshotId int32

// BranchId identifies a counterfactual branch.
type BranchId int32

func (e EntityId) String() string   { return fmt.Sprintf("entity#%d", int32(e)) }
func (e EventId) String() string    { return fmt.Sprintf("event#%d", int32(e)) }
func (c CharacterId) String() string { return fmt.Sprintf("character#%d", int32(c)) }
func (f FactionId) String() string  { return fmt.Sprintf("faction#%d", int32(f)) }
func (s SiteId) String() string     { return fmt.Sprintf("site#%d", int32(s)) }
func (a ArcId) String() string      { return fmt.Sprintf("arc#%d", int32(a)) }
func (s SaveId) String() string     { return fmt.Sprintf("save#%d", int32(s)) }
func (s SnapshotId) String() string { return fmt.Sprintf("snapshot#%d", int32(s)) }
func (b BranchId) String() string   { return fmt.Sprintf("branch#%d", int32(b)) }

// ToEntityId constructs an EntityId from a raw integer. Used at
// deserialization boundaries where the value has already been validated
// as a once-allocated id.
func ToEntityId(i int32) EntityId { return EntityId(i) }

// ToEventId derives an EventId from the EntityId backing the event.
func ToEventId(e EntityId) EventId { return EventId(e) }

// ToCharacterId constructs a CharacterId from a raw integer.
func ToCharacterId(i int32) CharacterId { return CharacterId(i) }

// ToFactionId constructs a FactionId from a raw integer.
func ToFactionId(i int32) FactionId { return FactionId(i) }

// ToSiteId constructs a SiteId from a raw integer.
func ToSiteId(i int32) SiteId { return SiteId(i) }

// ToArcId constructs an ArcId from a raw integer.
func ToArcId(i int32) ArcId { return ArcId(i) }

// ToSaveId constructs a SaveId from a raw integer.
func ToSaveId(i int32) SaveId { return SaveId(i) }

// ToSnapshotId constructs a SnapshotId from a raw integer.
func ToSnapshotId(i int32) SnapshotId { return SnapshotId(i) }

// ToBranchId constructs a BranchId from a raw integer.
func ToBranchId(i int32) BranchId { return BranchId(i) }

// Allocators owns one monotone, process-wide counter per id kind. A
// World embeds an *Allocators instead of relying on package-level
// mutable state, which would otherwise make parallel test execution
// unsafe.
type Allocators struct {
	nextEntity   int32
	nextSave     int32
	nextSnapshot int32
	nextBranch   int32
}

// NewAllocators returns a fresh set of counters, all starting at 1 (0 is
// never allocated, so the zero value of an id type unambiguously means
// "absent").
func NewAllocators() *Allocators {
	return &Allocators{nextEntity: 1, nextSave: 1, nextSnapshot: 1, nextBranch: 1}
}

// NextEntity allocates the next EntityId.
func (a *Allocators) NextEntity() EntityId {
	id := a.nextEntity
	a.nextEntity++
	return EntityId(id)
}

// NextSave allocates the next SaveId.
func (a *Allocators) NextSave() SaveId {
	id := a.nextSave
	a.nextSave++
	return SaveId(id)
}

// NextSnapshot allocates the next SnapshotId.
func (a *Allocators) NextSnapshot() SnapshotId {
	id := a.nextSnapshot
	a.nextSnapshot++
	return SnapshotId(id)
}

// NextBranch allocates the next BranchId.
func (a *Allocators) NextBranch() BranchId {
	id := a.nextBranch
	a.nextBranch++
	return BranchId(id)
}

// HighWaterEntity reports the smallest EntityId that has never been
// allocated. Used by the save loader to reproduce a source world's
// allocator state exactly (P-1).
func (a *Allocators) HighWaterEntity() EntityId { return EntityId(a.nextEntity) }

// SetNextEntity forces the entity counter's high-water mark. Used only
// by the full-load path, which must reproduce the saved world's
// allocator state exactly, and by tests.
func (a *Allocators) SetNextEntity(next EntityId) { a.nextEntity = int32(next) }

// ResetEntityForTest resets the entity counter to 1. Exposed for tests
// and load paths only, per the kernel's "explicit reset, never implicit"
// counter policy.
func (a *Allocators) ResetEntityForTest() { a.nextEntity = 1 }

// ResetSaveForTest resets the save counter to 1.
func (a *Allocators) ResetSaveForTest() { a.nextSave = 1 }

// ResetSnapshotForTest resets the snapshot counter to 1.
func (a *Allocators) ResetSnapshotForTest() { a.nextSnapshot = 1 }

// ResetBranchForTest resets the branch counter to 1.
func (a *Allocators) ResetBranchForTest() { a.nextBranch = 1 }
