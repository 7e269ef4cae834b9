package save

import (
	"encoding/json"

	"github.com/talgya/aethelgard/internal/ecs"
	"github.com/talgya/aethelgard/internal/eventlog"
	"github.com/talgya/aethelgard/internal/ident"
	"github.com/talgya/aethelgard/internal/kernelerr"
	"github.com/talgya/aethelgard/internal/worldclock"
)

// LoadResult is a rebuilt world, clock, and log plus the payload's raw
// metadata, as read back from a full save.
type LoadResult struct {
	World    *ecs.World
	Clock    *worldclock.Clock
	Log      *eventlog.Log
	Metadata map[string]string
}

// LoadFull reads and reconstructs a full save named name into dst. dst
// must already have every component type the save may reference
// registered on it — registration is generic (RegisterComponent[T])
// and this package, working only with the save's string type names,
// cannot instantiate a Store[T] it was never told the concrete type
// of; see ecs.World.Reset and snapshot.Manager.Restore for the same
// constraint. dst's existing entities and component rows are cleared
// via World.Reset before the save's own entities are revived, so a
// caller may pass a live world (to load in place) or a freshly built,
// freshly registered one.
//
// The world rebuilds by creating entities 0..maxEntityId in allocation
// order then destroying the ones absent from aliveEntityIds, which
// reproduces the source world's id alignment exactly (spec §4.K)
// rather than simply reviving the alive set directly.
func (m *Manager) LoadFull(name string, dst *ecs.World) (*LoadResult, error) {
	raw, err := m.storage.ReadFile(name + payloadSuffix)
	if err != nil {
		return nil, err
	}
	data, err := gunzipBytes(raw)
	if err != nil {
		return nil, err
	}

	var payload FullPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	if payload.Version != CurrentVersion {
		return nil, kernelerr.ErrUnsupportedVersion
	}
	if payload.Metadata["isIncremental"] == "true" {
		return nil, kernelerr.ErrIncrementalBaseNotFull
	}

	dst.Reset()
	w := dst
	clock := worldclock.New()
	if err := clock.SetTick(int64(payload.Tick)); err != nil {
		return nil, err
	}

	aliveSet := make(map[ident.EntityId]struct{}, len(payload.AliveEntityIDs))
	for _, e := range payload.AliveEntityIDs {
		aliveSet[e] = struct{}{}
	}
	for i := int32(1); i < payload.MaxEntityID; i++ {
		e := ident.ToEntityId(i)
		w.ReviveEntityForRestore(e)
		if _, alive := aliveSet[e]; !alive {
			w.DestroyEntity(e)
		}
	}
	w.Allocators().SetNextEntity(ident.ToEntityId(payload.MaxEntityID))

	for _, block := range payload.Components {
		store, ok := w.StoreByName(block.Type)
		if !ok {
			continue
		}
		for _, row := range block.Entries {
			if _, alive := aliveSet[row.Entity]; !alive {
				continue
			}
			if err := store.DecodeAndSet(row.Entity, row.Data); err != nil {
				return nil, err
			}
		}
	}

	log := eventlog.New()
	for _, e := range payload.Events {
		if err := log.Append(e); err != nil {
			return nil, err
		}
	}
	for _, e := range payload.Events {
		for _, cause := range e.Causes {
			_ = log.LinkCause(cause, e.ID)
		}
	}

	m.lastFullSaveName = name
	m.lastFullTick = payload.Tick
	m.lastSaveTick = payload.Tick

	return &LoadResult{World: w, Clock: clock, Log: log, Metadata: payload.Metadata}, nil
}

// LoadIncremental reconstructs a world by first loading the
// incremental payload's base full save into dst, then applying the
// delta. dst is subject to the same pre-registration requirement as
// LoadFull's. Chained incremental-on-incremental replay is not
// supported: if baseSaveName itself names an incremental save, this
// returns ErrIncrementalBaseNotFull.
func (m *Manager) LoadIncremental(name string, dst *ecs.World) (*LoadResult, error) {
	raw, err := m.storage.ReadFile(name + payloadSuffix)
	if err != nil {
		return nil, err
	}
	data, err := gunzipBytes(raw)
	if err != nil {
		return nil, err
	}

	var payload IncrementalPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	if payload.Version != CurrentVersion {
		return nil, kernelerr.ErrUnsupportedVersion
	}

	base, err := m.LoadFull(payload.BaseSaveName, dst)
	if err != nil {
		return nil, kernelerr.ErrIncrementalBaseNotFull
	}

	for _, e := range payload.NewEntityIDs {
		base.World.ReviveEntityForRestore(e)
	}
	for _, e := range payload.DestroyedEntityIDs {
		base.World.DestroyEntity(e)
	}
	for _, block := range payload.ChangedComponents {
		store, ok := base.World.StoreByName(block.Type)
		if !ok {
			continue
		}
		for _, row := range block.Entries {
			if !base.World.IsAlive(row.Entity) {
				continue
			}
			if err := store.DecodeAndSet(row.Entity, row.Data); err != nil {
				return nil, err
			}
		}
	}
	for _, e := range payload.NewEvents {
		if err := base.Log.Append(e); err != nil {
			return nil, err
		}
	}

	if err := base.Clock.SetTick(int64(payload.CurrentTick)); err != nil {
		return nil, err
	}
	base.Metadata = payload.Metadata

	m.lastSaveTick = payload.CurrentTick

	return base, nil
}
