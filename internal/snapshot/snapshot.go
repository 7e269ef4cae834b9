// Package snapshot deep-copies a world's live state into an in-memory
// point-in-time capture, keyed by a monotone SnapshotId. Unlike
// internal/save, snapshots never touch disk — they exist purely to let
// branch execution and rollback restore state within a single process.
package snapshot

import (
	"encoding/json"
	"errors"

	"github.com/talgya/aethelgard/internal/codec"
	"github.com/talgya/aethelgard/internal/ecs"
	"github.com/talgya/aethelgard/internal/event"
	"github.com/talgya/aethelgard/internal/eventlog"
	"github.com/talgya/aethelgard/internal/ident"
	"github.com/talgya/aethelgard/internal/worldclock"
)

// ErrUnknownSnapshot is returned by Restore when id has not been taken
// (or has since been discarded).
var ErrUnknownSnapshot = errors.New("snapshot: unknown snapshot id")

// componentRow is the type-erased wire shape for one captured component,
// mirroring the save payload's components[].entries[] shape so the same
// stripFuncs/Map/Set round-trip law (T-8) covers both paths.
type componentRow struct {
	Entity ident.EntityId  `json:"entityId"`
	Data   json.RawMessage `json:"data"`
}

type componentBlock struct {
	Type    string         `json:"type"`
	Entries []componentRow `json:"entries"`
}

// Snapshot is a deep-copied capture of a world, clock, and event log at
// the tick it was taken.
type Snapshot struct {
	ID   ident.SnapshotId
	Tick uint64

	registeredTypes []string
	highWaterEntity ident.EntityId
	aliveEntityIds  []ident.EntityId
	components      []componentBlock
	events          []event.Event
}

// Manager owns the process's snapshot set.
type Manager struct {
	allocs    *ident.Allocators
	snapshots map[ident.SnapshotId]*Snapshot
}

// NewManager returns an empty snapshot manager using allocs for
// SnapshotId allocation, the same allocator set the rest of the kernel
// shares.
func NewManager(allocs *ident.Allocators) *Manager {
	return &Manager{allocs: allocs, snapshots: make(map[ident.SnapshotId]*Snapshot)}
}

// Take captures w, clock, and log into a new Snapshot and returns its
// id. Component payloads are deep-copied via the same Encode/Decode
// round-trip the save layer uses — see DESIGN.md for why snapshot does
// not warrant its own deep-copy mechanism.
func (m *Manager) Take(w *ecs.World, clock *worldclock.Clock, log *eventlog.Log) (ident.SnapshotId, error) {
	id := m.allocs.NextSnapshot()

	snap := &Snapshot{
		ID:              id,
		Tick:            clock.CurrentTick(),
		registeredTypes: w.RegisteredTypeNames(),
		highWaterEntity: w.Allocators().HighWaterEntity(),
		aliveEntityIds:  w.GetAllEntities(),
		events:          log.GetAll(),
	}

	for _, store := range w.Stores() {
		block := componentBlock{Type: store.TypeName()}
		for _, raw := range store.RawEntries() {
			data, err := codec.Encode(raw.Data)
			if err != nil {
				return 0, err
			}
			block.Entries = append(block.Entries, componentRow{Entity: raw.Entity, Data: data})
		}
		snap.components = append(snap.components, block)
	}

	m.snapshots[id] = snap
	return id, nil
}

// Discard drops a snapshot. Idempotent.
func (m *Manager) Discard(id ident.SnapshotId) {
	delete(m.snapshots, id)
}

// Count reports how many snapshots are currently held.
func (m *Manager) Count() int { return len(m.snapshots) }

// Restore repopulates dst in place from the snapshot identified by id
// and returns a fresh clock and event log. dst must already have every
// component type the snapshot may reference registered on it — Restore
// cannot invent Store[T] instances for types it was never told about in
// this process, since registration is generic and type-erased callers
// (this package included) cannot instantiate one. dst's existing
// entities and component rows are cleared via World.Reset before the
// snapshot's own entities are revived, so a caller may pass the live
// world itself (for an in-place rollback) or a freshly built, freshly
// registered one (for a branch fork).
func (m *Manager) Restore(id ident.SnapshotId, dst *ecs.World) (*worldclock.Clock, *eventlog.Log, error) {
	snap, ok := m.snapshots[id]
	if !ok {
		return nil, nil, ErrUnknownSnapshot
	}

	clock := worldclock.New()
	if err := clock.SetTick(int64(snap.Tick)); err != nil {
		return nil, nil, err
	}

	log := eventlog.New()
	for _, e := range snap.events {
		if err := log.Append(e); err != nil {
			return nil, nil, err
		}
	}

	dst.Reset()

	aliveSet := make(map[ident.EntityId]struct{}, len(snap.aliveEntityIds))
	for _, e := range snap.aliveEntityIds {
		aliveSet[e] = struct{}{}
	}
	for _, e := range snap.aliveEntityIds {
		dst.ReviveEntityForRestore(e)
	}
	dst.Allocators().SetNextEntity(snap.highWaterEntity)

	for _, block := range snap.components {
		store, ok := dst.StoreByName(block.Type)
		if !ok {
			continue // caller hasn't registered this type; row is dropped
		}
		for _, row := range block.Entries {
			if _, alive := aliveSet[row.Entity]; !alive {
				continue
			}
			if err := store.DecodeAndSet(row.Entity, row.Data); err != nil {
				return nil, nil, err
			}
		}
	}

	return clock, log, nil
}
