// Package ecs implements the kernel's entity-component store: the
// world's authoritative state container. An entity is a bare id; all of
// its data lives in component stores keyed by that id.
package ecs

import (
	"reflect"

	"github.com/talgya/aethelgard/internal/ident"
	"github.com/talgya/aethelgard/internal/kernelerr"
)

// World owns the entity id allocator, the set of alive entities, and the
// map of component stores.
type World struct {
	alloc *ident.Allocators

	alive      map[ident.EntityId]struct{}
	aliveOrder []ident.EntityId

	stores       map[reflect.Type]ComponentStore
	storesByName map[string]reflect.Type
}

// NewWorld returns an empty world with its own allocator set.
func NewWorld() *World {
	return &World{
		alloc:        ident.NewAllocators(),
		alive:        make(map[ident.EntityId]struct{}),
		stores:       make(map[reflect.Type]ComponentStore),
		storesByName: make(map[string]reflect.Type),
	}
}

// Allocators exposes the world's id allocator set, e.g. for a save
// loader reproducing a source world's high-water mark.
func (w *World) Allocators() *ident.Allocators { return w.alloc }

// CreateEntity allocates the next id, marks it alive, and returns it.
func (w *World) CreateEntity() ident.EntityId {
	e := w.alloc.NextEntity()
	w.alive[e] = struct{}{}
	w.aliveOrder = append(w.aliveOrder, e)
	return e
}

// ReviveEntityForRestore marks e alive without consuming an allocator
// slot. Used only by the snapshot and save load paths, which must
// reproduce a source world's exact alive set — including ids the
// allocator in this process never minted — rather than creating fresh
// ones. Reviving an already-alive entity is a no-op.
func (w *World) ReviveEntityForRestore(e ident.EntityId) {
	if _, ok := w.alive[e]; ok {
		return
	}
	w.alive[e] = struct{}{}
	w.aliveOrder = append(w.aliveOrder, e)
}

// DestroyEntity marks e dead and evicts its rows from every store.
// Destroying an already-dead entity is a no-op.
func (w *World) DestroyEntity(e ident.EntityId) {
	if _, ok := w.alive[e]; !ok {
		return
	}
	delete(w.alive, e)
	for i, id := range w.aliveOrder {
		if id == e {
			w.aliveOrder = append(w.aliveOrder[:i], w.aliveOrder[i+1:]...)
			break
		}
	}
	for _, s := range w.stores {
		s.remove(e)
	}
}

// Reset destroys every alive entity and clears every registered
// store's rows, while leaving store registrations and the allocator set
// untouched. Used by snapshot restore and save load to repopulate an
// existing, already-registered world in place rather than build a new
// one that would have no component stores at all.
func (w *World) Reset() {
	for _, e := range w.aliveOrder {
		for _, s := range w.stores {
			s.remove(e)
		}
	}
	w.alive = make(map[ident.EntityId]struct{})
	w.aliveOrder = nil
}

// IsAlive reports whether e is a currently-alive entity.
func (w *World) IsAlive(e ident.EntityId) bool {
	_, ok := w.alive[e]
	return ok
}

// EntityCount returns the number of currently-alive entities.
func (w *World) EntityCount() int { return len(w.aliveOrder) }

// GetAllEntities returns alive entities in creation order.
func (w *World) GetAllEntities() []ident.EntityId {
	out := make([]ident.EntityId, len(w.aliveOrder))
	copy(out, w.aliveOrder)
	return out
}

// ComponentStore is the type-erased view onto a single registered
// component store, used by the serialization layer to walk every store
// without knowing each one's concrete Go type at compile time.
type ComponentStore interface {
	TypeName() string
	Len() int
	Order() []ident.EntityId
	RawEntries() []RawEntry
	DecodeAndSet(e ident.EntityId, raw []byte) error
	remove(e ident.EntityId) bool
	has(e ident.EntityId) bool
}

// RawEntry is a type-erased (entity, component value) pair, as produced
// by ComponentStore.RawEntries for serialization.
type RawEntry struct {
	Entity ident.EntityId
	Data   any
}

// Stores returns every registered component store, for callers (save,
// snapshot) that must walk the whole world without generic type
// parameters.
func (w *World) Stores() []ComponentStore {
	out := make([]ComponentStore, 0, len(w.stores))
	for _, s := range w.stores {
		out = append(out, s)
	}
	return out
}

// StoreByName looks up a registered store by its serialized type name
// (as it appears in registeredTypes / components[].type in a save
// payload).
func (w *World) StoreByName(name string) (ComponentStore, bool) {
	t, ok := w.storesByName[name]
	if !ok {
		return nil, false
	}
	return w.stores[t], true
}

// RegisteredTypeNames returns every registered component type name.
func (w *World) RegisteredTypeNames() []string {
	out := make([]string, 0, len(w.storesByName))
	for name := range w.storesByName {
		out = append(out, name)
	}
	return out
}
